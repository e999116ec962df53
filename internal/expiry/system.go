package expiry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/asmira/fleetdocs/internal/config"
	"github.com/asmira/fleetdocs/internal/fleet"
)

// System produces the expiry alert feed from the current store state.
type System interface {
	Alerts(ctx context.Context) ([]Alert, error)
}

// Store is the slice of the entity store the evaluator reads from.
type Store interface {
	AllHolders(ctx context.Context) ([]fleet.HolderDocuments, error)
}

type system struct {
	store  Store
	logger *slog.Logger
	cfg    config.ComplianceConfig
	now    func() time.Time
}

// New creates the expiry system with the configured alert windows.
func New(store Store, logger *slog.Logger, cfg config.ComplianceConfig) System {
	return &system{
		store:  store,
		logger: logger.With("system", "expiry"),
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *system) Alerts(ctx context.Context) ([]Alert, error) {
	holders, err := s.store.AllHolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load holders: %w", err)
	}

	alerts := Evaluate(holders, s.now(), s.cfg.WarningWindowDays, s.cfg.GraceWindowDays)

	s.logger.Debug("expiry feed evaluated", "holders", len(holders), "alerts", len(alerts))
	return alerts, nil
}
