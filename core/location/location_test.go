package location_test

import (
	"context"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/sksmith/fulfilment/core"
	"github.com/sksmith/fulfilment/core/location"
	"github.com/sksmith/fulfilment/test"
)

func TestMain(m *testing.M) {
	test.ConfigLogging()
	os.Exit(m.Run())
}

func TestStaticDirectoryResolve(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		want       location.Location
		wantKind   core.Kind
	}{
		{
			name:       "known location",
			identifier: "AMSTERDAM-001",
			want:       location.Location{Identification: "AMSTERDAM-001", MaxNumberOfWarehouses: 5, MaxCapacity: 100},
		},
		{name: "blank identifier", identifier: "  ", wantKind: core.KindLocationIdentifierInvalid},
		{name: "empty identifier", identifier: "", wantKind: core.KindLocationIdentifierInvalid},
		{name: "unknown identifier", identifier: "ROTTERDAM-001", wantKind: core.KindLocationNotFound},
	}

	dir := location.NewStaticDirectory()

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := dir.Resolve(context.Background(), test.identifier)
			if kind := core.KindOf(err); kind != test.wantKind {
				t.Errorf("unexpected error kind got=%v want=%v", kind, test.wantKind)
			}
			if got != test.want {
				t.Errorf("unexpected location got=%v want=%v", got, test.want)
			}
		})
	}
}

func TestStaticDirectoryCustomCatalogue(t *testing.T) {
	dir := location.NewStaticDirectory(location.Location{Identification: "Z", MaxNumberOfWarehouses: 1, MaxCapacity: 40})

	if _, err := dir.Resolve(context.Background(), "Z"); err != nil {
		t.Errorf("did not want error, got=%v", err)
	}
	if _, err := dir.Resolve(context.Background(), "ZWOLLE-001"); !core.IsKind(err, core.KindLocationNotFound) {
		t.Errorf("expected location not found, got=%v", err)
	}
}

func TestCachedDirectory(t *testing.T) {
	mock := location.NewMockDirectory()
	dir := location.NewCachedDirectory(mock, 2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := dir.Resolve(ctx, "TILBURG-001"); err != nil {
			t.Fatalf("did not want error, got=%v", err)
		}
	}
	mock.VerifyCount("Resolve", 1, t)

	for i := 0; i < 2; i++ {
		if _, err := dir.Resolve(ctx, "NOWHERE"); !core.IsKind(err, core.KindLocationNotFound) {
			t.Errorf("expected location not found, got=%v", err)
		}
	}
	mock.VerifyCount("Resolve", 3, t)
}

func TestCachedDirectoryDoesNotCacheFailures(t *testing.T) {
	mock := location.NewMockDirectory()
	failing := true
	static := location.NewStaticDirectory()
	mock.ResolveFunc = func(ctx context.Context, identifier string) (location.Location, error) {
		if failing {
			return location.Location{}, errors.New("connection refused")
		}
		return static.Resolve(ctx, identifier)
	}
	dir := location.NewCachedDirectory(mock, 0)

	if _, err := dir.Resolve(context.Background(), "VETSBY-001"); err == nil {
		t.Fatalf("expected error, got none")
	}

	failing = false
	got, err := dir.Resolve(context.Background(), "VETSBY-001")
	if err != nil {
		t.Fatalf("did not want error, got=%v", err)
	}
	if got.MaxCapacity != 90 {
		t.Errorf("unexpected capacity got=%v want=%v", got.MaxCapacity, 90)
	}
}

func TestTranslateNotFound(t *testing.T) {
	err := location.TranslateNotFound("X", errors.WithStack(core.ErrNotFound))
	if !core.IsKind(err, core.KindLocationNotFound) {
		t.Errorf("expected location not found, got=%v", err)
	}

	err = location.TranslateNotFound("X", errors.New("boom"))
	if core.KindOf(err) != "" {
		t.Errorf("expected infrastructure error to stay unclassified, got=%v", core.KindOf(err))
	}
}
