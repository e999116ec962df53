package main

import (
	"github.com/asmira/fleetdocs/internal/assembly"
	"github.com/asmira/fleetdocs/internal/config"
	"github.com/asmira/fleetdocs/internal/expiry"
	"github.com/asmira/fleetdocs/internal/fleet"
	"github.com/asmira/fleetdocs/internal/infrastructure"
	"github.com/asmira/fleetdocs/internal/staging"
)

// Domain holds the initialized domain systems.
type Domain struct {
	Fleet    fleet.System
	Staging  *staging.Manager
	Expiry   expiry.System
	Assembly assembly.System
}

// NewDomain wires the domain systems over the shared infrastructure.
func NewDomain(infra *infrastructure.Infrastructure, cfg *config.Config) *Domain {
	store := fleet.New(infra.Database.DB(), infra.Storage, infra.Logger, cfg.Pagination)

	return &Domain{
		Fleet:    store,
		Staging:  staging.NewManager(store, infra.Logger),
		Expiry:   expiry.New(store, infra.Logger, cfg.Compliance),
		Assembly: assembly.New(store, infra.Storage, assembly.NewMerger(), infra.Logger),
	}
}
