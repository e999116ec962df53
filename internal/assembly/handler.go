package assembly

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/asmira/fleetdocs/pkg/handlers"
	"github.com/asmira/fleetdocs/pkg/routes"
)

// Handler provides the HTTP endpoint for document assembly.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates an assembly handler.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "assembly"),
	}
}

// Routes returns the assembly endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/assembly",
		Tags:        []string{"Assembly"},
		Description: "Merged document package generation",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Assemble},
		},
	}
}

type assembleRequest struct {
	Selections []Selection `json:"selections"`
}

func (h *Handler) Assemble(w http.ResponseWriter, r *http.Request) {
	var req assembleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	pkg, err := h.sys.Assemble(r.Context(), req.Selections)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, pkg.FileName))
	w.WriteHeader(http.StatusOK)
	w.Write(pkg.Data)
}
