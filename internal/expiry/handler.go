package expiry

import (
	"log/slog"
	"net/http"

	"github.com/asmira/fleetdocs/pkg/handlers"
	"github.com/asmira/fleetdocs/pkg/routes"
)

// Handler provides the HTTP endpoint for the expiry alert feed.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates an expiry handler.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "expiry"),
	}
}

// Routes returns the expiry endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/alerts",
		Tags:        []string{"Expiry"},
		Description: "Document expiry alert feed",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.sys.Alerts(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, alerts)
}
