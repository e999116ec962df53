package staging

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/asmira/fleetdocs/internal/catalog"
	"github.com/asmira/fleetdocs/internal/fleet"
	"github.com/asmira/fleetdocs/pkg/handlers"
	"github.com/asmira/fleetdocs/pkg/routes"
	"github.com/google/uuid"
)

// Handler provides HTTP endpoints for staging sessions.
type Handler struct {
	manager       *Manager
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a staging handler with the specified configuration.
func NewHandler(manager *Manager, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		manager:       manager,
		logger:        logger.With("handler", "staging"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the staging endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/sessions",
		Tags:        []string{"Staging"},
		Description: "Staged document editing sessions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Open},
			{Method: "GET", Pattern: "/{id}", Handler: h.Summarize},
			{Method: "POST", Pattern: "/{id}/uploads", Handler: h.StageUpload},
			{Method: "POST", Pattern: "/{id}/expiry", Handler: h.StageExpiry},
			{Method: "POST", Pattern: "/{id}/deletions", Handler: h.StageDeletion},
			{Method: "GET", Pattern: "/{id}/effective", Handler: h.EffectiveSlot},
			{Method: "POST", Pattern: "/{id}/commit", Handler: h.Commit},
			{Method: "POST", Pattern: "/{id}/discard", Handler: h.Discard},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Close},
		},
	}
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	session := h.manager.Open()
	handlers.RespondJSON(w, http.StatusCreated, session.Summarize())
}

func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	handlers.RespondJSON(w, http.StatusOK, session.Summarize())
}

func (h *Handler) StageUpload(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: multipart form exceeds limit", ErrInvalid))
		return
	}

	key, err := keyFromForm(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: missing file field", ErrInvalid))
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge,
			fmt.Errorf("%w: file exceeds upload limit", ErrInvalid))
		return
	}

	data := make([]byte, header.Size)
	if _, err := file.Read(data); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: unreadable file content", ErrInvalid))
		return
	}

	if err := session.StageUpload(key, header.Filename, data); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, session.Summarize())
}

type expiryRequest struct {
	Key        fleet.DocumentKey `json:"key"`
	ExpiryDate *time.Time        `json:"expiry_date"`
}

func (h *Handler) StageExpiry(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req expiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if err := validateKey(req.Key); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := session.StageExpiry(req.Key, req.ExpiryDate); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, session.Summarize())
}

type deletionRequest struct {
	Key fleet.DocumentKey `json:"key"`
}

func (h *Handler) StageDeletion(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req deletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if err := validateKey(req.Key); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := session.StageDeletion(req.Key); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, session.Summarize())
}

func (h *Handler) EffectiveSlot(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	key, err := keyFromQuery(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	slot, err := session.EffectiveSlot(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, slot)
}

func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Commit(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, session.Summarize())
}

func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	session.Discard()
	handlers.RespondJSON(w, http.StatusOK, session.Summarize())
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	force := r.URL.Query().Get("force") == "true"

	if err := h.manager.Close(id, force); err != nil {
		if errors.Is(err, ErrPendingChanges) {
			handlers.RespondJSON(w, http.StatusConflict, map[string]any{
				"error":   err.Error(),
				"pending": true,
			})
			return
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return nil, false
	}

	session, err := h.manager.Get(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}

	return session, true
}

func keyFromForm(r *http.Request) (fleet.DocumentKey, error) {
	return buildKey(r.FormValue("kind"), r.FormValue("holder_id"), r.FormValue("type"))
}

func keyFromQuery(r *http.Request) (fleet.DocumentKey, error) {
	q := r.URL.Query()
	return buildKey(q.Get("kind"), q.Get("holder_id"), q.Get("type"))
}

func buildKey(kind, holderID, docType string) (fleet.DocumentKey, error) {
	key := fleet.DocumentKey{
		Ref: fleet.HolderRef{
			Kind: fleet.HolderKind(kind),
		},
		Type: catalog.DocumentType(docType),
	}

	id, err := uuid.Parse(holderID)
	if err != nil {
		return fleet.DocumentKey{}, fmt.Errorf("%w: invalid holder_id", ErrInvalid)
	}
	key.Ref.ID = id

	if err := validateKey(key); err != nil {
		return fleet.DocumentKey{}, err
	}
	return key, nil
}

func validateKey(key fleet.DocumentKey) error {
	if !key.Ref.Kind.Valid() {
		return fmt.Errorf("%w: unknown holder kind %q", ErrInvalid, key.Ref.Kind)
	}

	var known bool
	if key.Ref.Kind == fleet.KindDriver {
		known = catalog.IsDriverType(key.Type)
	} else {
		known = catalog.IsVehicleType(key.Type)
	}
	if !known {
		return fmt.Errorf("%w: document type %q not in %s catalog", ErrInvalid, key.Type, key.Ref.Kind)
	}

	return nil
}
