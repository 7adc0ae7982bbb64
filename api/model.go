package api

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/fulfilment/core"
)

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string `json:"status"`          // user-level status message
	Kind       string `json:"kind,omitempty"`  // rejection kind, see core.Kind
	ErrorText  string `json:"error,omitempty"` // application-level error message, for debugging
}

func (e *ErrResponse) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

// ErrRejected renders a failed service call. Rejections carrying a kind are
// reported to the caller, anything else is logged and hidden behind a 500.
func ErrRejected(r *http.Request, err error) render.Renderer {
	kind := core.KindOf(err)
	switch {
	case core.IsNotFound(err):
		rejections.WithLabelValues(string(kind)).Inc()
		return &ErrResponse{
			Err:            err,
			HTTPStatusCode: http.StatusNotFound,
			StatusText:     "Resource not found.",
			Kind:           string(kind),
			ErrorText:      err.Error(),
		}
	case kind != "":
		rejections.WithLabelValues(string(kind)).Inc()
		return &ErrResponse{
			Err:            err,
			HTTPStatusCode: http.StatusBadRequest,
			StatusText:     "Request rejected.",
			Kind:           string(kind),
			ErrorText:      err.Error(),
		}
	default:
		log.Error().Err(err).Str("uri", r.RequestURI).Msg("request failed")
		return ErrInternalServer
	}
}

func Render(w http.ResponseWriter, r *http.Request, rnd render.Renderer) {
	if err := render.Render(w, r, rnd); err != nil {
		log.Warn().Err(err).Msg("failed to render")
	}
}

func RenderList(w http.ResponseWriter, r *http.Request, l []render.Renderer) {
	if err := render.RenderList(w, r, l); err != nil {
		log.Warn().Err(err).Msg("failed to render")
	}
}

var ErrNotFound = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}
var ErrInternalServer = &ErrResponse{
	Err:            nil,
	HTTPStatusCode: http.StatusInternalServerError,
	StatusText:     "Internal server error.",
	ErrorText:      "An internal server error has occurred.",
}

var rejections = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fulfilment_rejections",
		Help: "Number of requests rejected by a business rule, by kind",
	},
	[]string{"kind"},
)

func init() {
	prometheus.MustRegister(rejections)
}
