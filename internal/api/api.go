// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/intake/internal/config"
	"github.com/JaimeStill/intake/internal/infrastructure"
	"github.com/JaimeStill/intake/pkg/middleware"
)

// NewHandler creates the API handler with all domain routes and middleware.
// Routes are relative; mount the handler beneath cfg.API.BasePath.
func NewHandler(cfg *config.Config, infra *infrastructure.Infrastructure) (http.Handler, error) {
	runtime, err := NewRuntime(cfg, infra)
	if err != nil {
		return nil, err
	}
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	return middleware.Chain(
		mux,
		middleware.Recover(runtime.Logger),
		middleware.Logger(runtime.Logger),
		middleware.CORS(&cfg.API.CORS),
	), nil
}
