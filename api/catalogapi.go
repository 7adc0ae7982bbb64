package api

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/sksmith/fulfilment/core/catalog"
)

// CatalogApi lets operators seed the store and product replica without
// going through the broker.
type CatalogApi struct {
	service catalog.Service
}

func NewCatalogApi(service catalog.Service) *CatalogApi {
	return &CatalogApi{service: service}
}

func (a *CatalogApi) ConfigureStoreRouter(r chi.Router) {
	r.Put("/", a.SaveStore)
}

func (a *CatalogApi) ConfigureProductRouter(r chi.Router) {
	r.Put("/", a.SaveProduct)
}

func (a *CatalogApi) SaveStore(w http.ResponseWriter, r *http.Request) {
	data := &StoreRequest{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	if err := a.service.SaveStore(r.Context(), data.Store); err != nil {
		Render(w, r, ErrRejected(r, err))
		return
	}

	Render(w, r, &StoreResponse{Store: data.Store})
}

func (a *CatalogApi) SaveProduct(w http.ResponseWriter, r *http.Request) {
	data := &ProductRequest{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	if err := a.service.SaveProduct(r.Context(), data.Product); err != nil {
		Render(w, r, ErrRejected(r, err))
		return
	}

	Render(w, r, &ProductResponse{Product: data.Product})
}
