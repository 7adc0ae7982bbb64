package api

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/sksmith/fulfilment/config"
)

type EnvApi struct {
	cfg *config.Config
}

func NewEnvApi(cfg *config.Config) *EnvApi {
	return &EnvApi{cfg: cfg}
}

func (a *EnvApi) ConfigureRouter(r chi.Router) {
	r.Get("/", a.Get)
}

// Get renders a scrubbed copy of the running configuration.
func (a *EnvApi) Get(w http.ResponseWriter, r *http.Request) {
	Render(w, r, NewEnvResponse(*a.cfg))
}
