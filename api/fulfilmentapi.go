package api

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/sksmith/fulfilment/core/fulfilment"
)

const (
	CtxKeyStoreID   CtxKey = "storeId"
	CtxKeyProductID CtxKey = "productId"
)

type FulfilmentApi struct {
	service fulfilment.Service
}

func NewFulfilmentApi(service fulfilment.Service) *FulfilmentApi {
	return &FulfilmentApi{service: service}
}

func (a *FulfilmentApi) ConfigureRouter(r chi.Router) {
	r.Get("/", a.List)

	r.Route("/store/{storeId}/product/{productId}/warehouse/{warehouseId}", func(r chi.Router) {
		r.Use(IDParam("storeId", CtxKeyStoreID, InvalidID("storeId")))
		r.Use(IDParam("productId", CtxKeyProductID, InvalidID("productId")))
		r.Use(IDParam("warehouseId", CtxKeyWarehouseID, InvalidID("warehouseId")))
		r.Post("/", a.Assign)
		r.Delete("/", a.Unassign)
	})
}

// List returns the assignments of a store, or of a warehouse when only
// warehouseId is given. With neither the result is empty.
func (a *FulfilmentApi) List(w http.ResponseWriter, r *http.Request) {
	storeID, byStore, err := queryID(r, "storeId")
	if err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}
	warehouseID, byWarehouse, err := queryID(r, "warehouseId")
	if err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	assignments := []fulfilment.Assignment{}
	switch {
	case byStore:
		assignments, err = a.service.ListByStore(r.Context(), storeID)
	case byWarehouse:
		assignments, err = a.service.ListByWarehouse(r.Context(), warehouseID)
	}
	if err != nil {
		Render(w, r, ErrRejected(r, err))
		return
	}

	RenderList(w, r, NewAssignmentListResponse(assignments))
}

func (a *FulfilmentApi) Assign(w http.ResponseWriter, r *http.Request) {
	storeID, productID, warehouseID := scope(r)

	if _, err := a.service.Assign(r.Context(), storeID, productID, warehouseID); err != nil {
		Render(w, r, ErrRejected(r, err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *FulfilmentApi) Unassign(w http.ResponseWriter, r *http.Request) {
	storeID, productID, warehouseID := scope(r)

	if err := a.service.Unassign(r.Context(), storeID, productID, warehouseID); err != nil {
		Render(w, r, ErrRejected(r, err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func scope(r *http.Request) (storeID, productID, warehouseID int64) {
	ctx := r.Context()
	return ctx.Value(CtxKeyStoreID).(int64), ctx.Value(CtxKeyProductID).(int64), ctx.Value(CtxKeyWarehouseID).(int64)
}
