package api

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/sksmith/fulfilment/core/fulfilment"
)

type AssignmentResponse struct {
	fulfilment.Assignment
}

func (rd *AssignmentResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewAssignmentListResponse(assignments []fulfilment.Assignment) []render.Renderer {
	list := make([]render.Renderer, 0, len(assignments))
	for _, a := range assignments {
		list = append(list, &AssignmentResponse{Assignment: a})
	}
	return list
}
