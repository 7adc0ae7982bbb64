package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/fulfilment/core"
)

// IDParam parses the named url parameter as an id and stores it in the
// request context under key. A non numeric id is answered with whatever
// reject renders.
func IDParam(param string, key CtxKey, reject func(r *http.Request, raw string) render.Renderer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := chi.URLParam(r, param)
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				log.Debug().Str("param", param).Str("value", raw).Msg("invalid id")
				Render(w, r, reject(r, raw))
				return
			}

			ctx := context.WithValue(r.Context(), key, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// InvalidID rejects a non numeric id as a bad request.
func InvalidID(param string) func(r *http.Request, raw string) render.Renderer {
	return func(_ *http.Request, _ string) render.Renderer {
		return ErrInvalidRequest(errors.Errorf("%s must be a number", param))
	}
}

// WarehouseNotFound rejects a non numeric warehouse id the same way as an id
// that matches no warehouse.
func WarehouseNotFound(r *http.Request, raw string) render.Renderer {
	return ErrRejected(r, core.NewError(core.KindWarehouseNotFound, "warehouse not found with id: %s", raw))
}

// queryID reads an optional numeric query parameter. ok is false when the
// parameter is absent.
func queryID(r *http.Request, name string) (id int64, ok bool, err error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	id, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, errors.Errorf("%s must be a number", name)
	}
	return id, true, nil
}
