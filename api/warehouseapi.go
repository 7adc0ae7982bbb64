package api

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/sksmith/fulfilment/core/warehouse"
)

const CtxKeyWarehouseID CtxKey = "warehouseId"

type WarehouseApi struct {
	service warehouse.Service
}

func NewWarehouseApi(service warehouse.Service) *WarehouseApi {
	return &WarehouseApi{service: service}
}

func (a *WarehouseApi) ConfigureRouter(r chi.Router) {
	r.Get("/", a.List)
	r.Post("/", a.Create)

	r.Post("/{businessUnitCode}/replacement", a.Replace)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(IDParam("id", CtxKeyWarehouseID, WarehouseNotFound))
		r.Get("/", a.Get)
		r.Delete("/", a.Archive)
	})
}

func (a *WarehouseApi) List(w http.ResponseWriter, r *http.Request) {
	warehouses, err := a.service.GetAllWarehouses(r.Context())
	if err != nil {
		Render(w, r, ErrRejected(r, err))
		return
	}

	RenderList(w, r, NewWarehouseListResponse(warehouses))
}

func (a *WarehouseApi) Create(w http.ResponseWriter, r *http.Request) {
	data := &WarehouseRequest{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	wh, err := a.service.Create(r.Context(), data.Request)
	if err != nil {
		Render(w, r, ErrRejected(r, err))
		return
	}

	render.Status(r, http.StatusCreated)
	Render(w, r, NewWarehouseResponse(wh))
}

func (a *WarehouseApi) Replace(w http.ResponseWriter, r *http.Request) {
	data := &ReplacementRequest{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := data.bindCode(chi.URLParam(r, "businessUnitCode")); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	wh, err := a.service.Replace(r.Context(), data.Request)
	if err != nil {
		Render(w, r, ErrRejected(r, err))
		return
	}

	Render(w, r, NewWarehouseResponse(wh))
}

func (a *WarehouseApi) Get(w http.ResponseWriter, r *http.Request) {
	id := r.Context().Value(CtxKeyWarehouseID).(int64)

	wh, err := a.service.GetWarehouse(r.Context(), id)
	if err != nil {
		Render(w, r, ErrRejected(r, err))
		return
	}

	Render(w, r, NewWarehouseResponse(wh))
}

func (a *WarehouseApi) Archive(w http.ResponseWriter, r *http.Request) {
	id := r.Context().Value(CtxKeyWarehouseID).(int64)

	if _, err := a.service.ArchiveByID(r.Context(), id); err != nil {
		Render(w, r, ErrRejected(r, err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
