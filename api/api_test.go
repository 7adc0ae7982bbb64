package api_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/sksmith/fulfilment/api"
	"github.com/sksmith/fulfilment/config"
	"github.com/sksmith/fulfilment/core/catalog"
	"github.com/sksmith/fulfilment/core/fulfilment"
	"github.com/sksmith/fulfilment/core/warehouse"
	"github.com/sksmith/fulfilment/test"
	"github.com/sksmith/fulfilment/testutil"
)

func TestMain(m *testing.M) {
	test.ConfigLogging()
	os.Exit(m.Run())
}

func TestCorsConfig(t *testing.T) {
	tests := []struct {
		origin string
		want   string
	}{
		{origin: "https://evilorigin.com", want: ""},
		{origin: "http://evilorigin.com", want: ""},
		{origin: "https://subdomain.seanksmith.me", want: "https://subdomain.seanksmith.me"},
		{origin: "http://subdomain.seanksmith.me", want: "http://subdomain.seanksmith.me"},
		{origin: "http://subdomain.seanksmith.evil.me", want: ""},
		{origin: "http://localhost:8080", want: "http://localhost:8080"},
		{origin: "http://localhost:3000", want: "http://localhost:3000"},
		{origin: "https://localhost:8080", want: "https://localhost:8080"},
		{origin: "https://localhost:3000", want: "https://localhost:3000"},
		{origin: "https://localhostevil:3000", want: ""},
		{origin: "http://localhost.evil.com", want: ""},
		{origin: "http://localhost", want: "http://localhost"},
		{origin: "https://seanksmith.me.evil.com", want: ""},
		{origin: "https://evilseanksmith.me", want: ""},
		{origin: "ftp://localhost:21", want: ""},
	}

	r := getRouter()
	ts := httptest.NewServer(r)
	defer ts.Close()

	client := http.DefaultClient
	url := ts.URL + api.ApiPath + api.WarehousePath

	for _, test := range tests {
		req, err := http.NewRequest("GET", url, nil)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Add("Origin", test.origin)

		res, err := client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()

		got := res.Header.Get("Access-Control-Allow-Origin")
		if got != test.want {
			t.Errorf("failed cors test got=[%v] want=[%v]", got, test.want)
		}
	}
}

func TestHealth(t *testing.T) {
	ts := httptest.NewServer(getRouter())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Errorf("unexpected status code got=%v want=%v", res.StatusCode, http.StatusOK)
	}
}

func getRouter() chi.Router {
	cfg := config.LoadDefaults()
	return api.ConfigureRouter(cfg, warehouse.NewMockService(), fulfilment.NewMockService(), catalog.NewMockService())
}

func unmarshal(res *http.Response, v interface{}, t *testing.T) {
	testutil.Unmarshal(res, v, t)
}
