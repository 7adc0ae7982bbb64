package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"github.com/sksmith/fulfilment/core/warehouse"
)

type WarehouseResponse struct {
	warehouse.Warehouse
}

func NewWarehouseResponse(wh warehouse.Warehouse) *WarehouseResponse {
	return &WarehouseResponse{Warehouse: wh}
}

func (rd *WarehouseResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewWarehouseListResponse(warehouses []warehouse.Warehouse) []render.Renderer {
	list := make([]render.Renderer, 0, len(warehouses))
	for _, wh := range warehouses {
		list = append(list, NewWarehouseResponse(wh))
	}
	return list
}

// WarehouseRequest is the body of a create or replace call. Field
// validation belongs to the warehouse service so that every caller sees the
// same rejection kinds.
type WarehouseRequest struct {
	warehouse.Request
}

func (p *WarehouseRequest) Bind(_ *http.Request) error {
	p.BusinessUnitCode = strings.TrimSpace(p.BusinessUnitCode)
	p.Location = strings.TrimSpace(p.Location)
	return nil
}

// ReplacementRequest targets the warehouse named in the url. A code in the
// body must agree with it.
type ReplacementRequest struct {
	WarehouseRequest
}

func (p *ReplacementRequest) bindCode(code string) error {
	if p.BusinessUnitCode != "" && p.BusinessUnitCode != code {
		return errors.Errorf("business unit code %s does not match %s", p.BusinessUnitCode, code)
	}
	p.BusinessUnitCode = code
	return nil
}
