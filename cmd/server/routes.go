package main

import (
	"net/http"

	"github.com/asmira/fleetdocs/internal/assembly"
	"github.com/asmira/fleetdocs/internal/config"
	"github.com/asmira/fleetdocs/internal/expiry"
	"github.com/asmira/fleetdocs/internal/fleet"
	"github.com/asmira/fleetdocs/internal/infrastructure"
	"github.com/asmira/fleetdocs/internal/lifecycle"
	"github.com/asmira/fleetdocs/internal/staging"
	"github.com/asmira/fleetdocs/pkg/routes"
)

// registerRoutes configures all HTTP routes for the service.
func registerRoutes(r routes.System, infra *infrastructure.Infrastructure, domain *Domain, cfg *config.Config) {
	maxUpload := cfg.Storage.MaxUploadSizeBytes()

	fleetHandler := fleet.NewHandler(domain.Fleet, infra.Logger, cfg.Pagination, maxUpload)
	for _, group := range fleetHandler.Routes() {
		r.RegisterGroup(group)
	}

	stagingHandler := staging.NewHandler(domain.Staging, infra.Logger, maxUpload)
	r.RegisterGroup(stagingHandler.Routes())

	expiryHandler := expiry.NewHandler(domain.Expiry, infra.Logger)
	r.RegisterGroup(expiryHandler.Routes())

	assemblyHandler := assembly.NewHandler(domain.Assembly, infra.Logger)
	r.RegisterGroup(assemblyHandler.Routes())

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/healthz",
		Handler: handleHealthCheck,
	})

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/readyz",
		Handler: func(w http.ResponseWriter, req *http.Request) {
			handleReadinessCheck(w, infra.Lifecycle)
		},
	})
}

// handleHealthCheck responds with OK status for health monitoring.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func handleReadinessCheck(w http.ResponseWriter, ready lifecycle.ReadinessChecker) {
	if !ready.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("NOT READY"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
