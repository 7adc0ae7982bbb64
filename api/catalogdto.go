package api

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/sksmith/fulfilment/core/catalog"
)

type StoreRequest struct {
	catalog.Store
}

func (p *StoreRequest) Bind(_ *http.Request) error {
	if p.ID <= 0 {
		return errors.New("id is required")
	}
	return nil
}

type StoreResponse struct {
	catalog.Store
}

func (rd *StoreResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

type ProductRequest struct {
	catalog.Product
}

func (p *ProductRequest) Bind(_ *http.Request) error {
	if p.ID <= 0 {
		return errors.New("id is required")
	}
	return nil
}

type ProductResponse struct {
	catalog.Product
}

func (rd *ProductResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}
