package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/asmira/fleetdocs/internal/config"
	"github.com/asmira/fleetdocs/internal/infrastructure"
	"github.com/asmira/fleetdocs/internal/server"
	"github.com/asmira/fleetdocs/pkg/middleware"
	"github.com/asmira/fleetdocs/pkg/routes"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fleetdocs: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Finalize(); err != nil {
		return fmt.Errorf("finalize config: %w", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		return err
	}
	if err := infra.Start(); err != nil {
		return err
	}

	domain := NewDomain(infra, cfg)

	routeSys := routes.New(infra.Logger)
	registerRoutes(routeSys, infra, domain, cfg)

	handler := buildHandler(routeSys.Build(), infra, cfg)

	srv := server.New(&cfg.Server, handler, infra.Logger)
	if err := srv.Start(infra.Lifecycle); err != nil {
		return err
	}

	infra.Lifecycle.WaitForStartup()
	infra.Logger.Info("service ready")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	infra.Logger.Info("shutdown signal received")
	infra.Lifecycle.Shutdown()
	infra.Logger.Info("service stopped")
	return nil
}

// buildHandler wraps the routed mux in the shared middleware stack.
func buildHandler(next http.Handler, infra *infrastructure.Infrastructure, cfg *config.Config) http.Handler {
	handler := middleware.CORS(&cfg.CORS)(next)
	handler = middleware.Logger(infra.Logger)(handler)
	handler = middleware.TrimSlash()(handler)
	return handler
}
