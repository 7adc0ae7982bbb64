package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sksmith/fulfilment/config"
	"github.com/sksmith/fulfilment/core/catalog"
	"github.com/sksmith/fulfilment/core/fulfilment"
	"github.com/sksmith/fulfilment/core/warehouse"
)

const (
	ApiPath        = "/api/v1"
	WarehousePath  = "/warehouse"
	FulfilmentPath = "/fulfilment"
	StorePath      = "/store"
	ProductPath    = "/product"
)

type CtxKey string

const allowedDomain = ".seanksmith.me"

// AllowOrigin accepts http and https origins on localhost, on any port, and
// on subdomains of seanksmith.me. The host must match exactly.
func AllowOrigin(_ *http.Request, origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "localhost" || (strings.HasSuffix(host, allowedDomain) && len(host) > len(allowedDomain))
}

func ConfigureRouter(cfg *config.Config, whSvc warehouse.Service, fulSvc fulfilment.Service, catSvc catalog.Service) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  AllowOrigin,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(Metrics)
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(Logging)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("UP"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/env", NewEnvApi(cfg).ConfigureRouter)
	r.Route(ApiPath, func(r chi.Router) {
		r.Route(WarehousePath, NewWarehouseApi(whSvc).ConfigureRouter)
		r.Route(FulfilmentPath, NewFulfilmentApi(fulSvc).ConfigureRouter)
		catApi := NewCatalogApi(catSvc)
		r.Route(StorePath, catApi.ConfigureStoreRouter)
		r.Route(ProductPath, catApi.ConfigureProductRouter)
	})

	return r
}
