package fleet

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/asmira/fleetdocs/internal/catalog"
	"github.com/asmira/fleetdocs/pkg/handlers"
	"github.com/asmira/fleetdocs/pkg/pagination"
	"github.com/asmira/fleetdocs/pkg/routes"
	"github.com/google/uuid"
)

// Handler provides HTTP endpoints for fleet entities and their document slots.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a fleet handler with the specified configuration.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "fleet"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the fleet endpoint route groups.
func (h *Handler) Routes() []routes.Group {
	return []routes.Group{
		{
			Prefix:      "/trucks",
			Tags:        []string{"Trucks"},
			Description: "Truck registry and compliance checklists",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.ListTrucks},
				{Method: "POST", Pattern: "", Handler: h.CreateTruck},
				{Method: "GET", Pattern: "/{id}", Handler: h.GetTruck},
				{Method: "PUT", Pattern: "/{id}", Handler: h.UpdateTruck},
				{Method: "DELETE", Pattern: "/{id}", Handler: h.DeleteTruck},
			},
		},
		{
			Prefix:      "/trailers",
			Tags:        []string{"Trailers"},
			Description: "Trailer registry and compliance checklists",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.ListTrailers},
				{Method: "POST", Pattern: "", Handler: h.CreateTrailer},
				{Method: "GET", Pattern: "/{id}", Handler: h.GetTrailer},
				{Method: "PUT", Pattern: "/{id}", Handler: h.UpdateTrailer},
				{Method: "DELETE", Pattern: "/{id}", Handler: h.DeleteTrailer},
			},
		},
		{
			Prefix:      "/drivers",
			Tags:        []string{"Drivers"},
			Description: "Driver registry and compliance checklists",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.ListDrivers},
				{Method: "POST", Pattern: "", Handler: h.CreateDriver},
				{Method: "GET", Pattern: "/{id}", Handler: h.GetDriver},
				{Method: "PUT", Pattern: "/{id}", Handler: h.UpdateDriver},
				{Method: "DELETE", Pattern: "/{id}", Handler: h.DeleteDriver},
			},
		},
		{
			Prefix:      "/vehicle-sets",
			Tags:        []string{"VehicleSets"},
			Description: "Truck and trailer pairings",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "/resolved", Handler: h.ResolveVehicleSets},
				{Method: "POST", Pattern: "", Handler: h.CreateVehicleSet},
				{Method: "DELETE", Pattern: "/{id}", Handler: h.DeleteVehicleSet},
			},
		},
		{
			Prefix:      "/holders/{kind}/{id}/documents",
			Tags:        []string{"Documents"},
			Description: "Document slot contents per holder",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.ListSlots},
				{Method: "GET", Pattern: "/{type}", Handler: h.GetSlot},
				{Method: "POST", Pattern: "/{type}", Handler: h.UploadDocument},
				{Method: "PUT", Pattern: "/{type}", Handler: h.UpdateDocument},
				{Method: "DELETE", Pattern: "/{type}", Handler: h.DeleteDocument},
			},
		},
	}
}

func (h *Handler) CreateTruck(w http.ResponseWriter, r *http.Request) {
	var cmd CreateTruckCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	truck, err := h.sys.CreateTruck(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, truck)
}

func (h *Handler) GetTruck(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	truck, err := h.sys.GetTruck(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, truck)
}

func (h *Handler) ListTrucks(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.ListTrucks(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) UpdateTruck(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var cmd UpdateTruckCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.UpdateTruck(r.Context(), id, cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteTruck(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.DeleteTruck(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateTrailer(w http.ResponseWriter, r *http.Request) {
	var cmd CreateTrailerCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	trailer, err := h.sys.CreateTrailer(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, trailer)
}

func (h *Handler) GetTrailer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	trailer, err := h.sys.GetTrailer(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, trailer)
}

func (h *Handler) ListTrailers(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.ListTrailers(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) UpdateTrailer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var cmd UpdateTrailerCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.UpdateTrailer(r.Context(), id, cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteTrailer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.DeleteTrailer(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var cmd CreateDriverCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	driver, err := h.sys.CreateDriver(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, driver)
}

func (h *Handler) GetDriver(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	driver, err := h.sys.GetDriver(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, driver)
}

func (h *Handler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.ListDrivers(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var cmd UpdateDriverCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.UpdateDriver(r.Context(), id, cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.DeleteDriver(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateVehicleSet(w http.ResponseWriter, r *http.Request) {
	var cmd CreateVehicleSetCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	set, err := h.sys.CreateVehicleSet(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, set)
}

func (h *Handler) DeleteVehicleSet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.DeleteVehicleSet(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ResolveVehicleSets(w http.ResponseWriter, r *http.Request) {
	var ownership *Ownership
	if o := Ownership(r.URL.Query().Get("ownership")); o.Valid() {
		ownership = &o
	}

	sets, err := h.sys.ResolveVehicleSets(r.Context(), ownership)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, sets)
}

func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	ref, err := refFromRequest(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	slots, err := h.sys.ListSlots(r.Context(), ref)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, slots)
}

func (h *Handler) GetSlot(w http.ResponseWriter, r *http.Request) {
	ref, docType, err := slotFromRequest(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	slot, err := h.sys.GetSlot(r.Context(), ref, docType)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, slot)
}

func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	ref, docType, err := slotFromRequest(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	cmd, err := h.readUpload(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := h.sys.UploadDocument(r.Context(), ref, docType, *cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	ref, docType, err := slotFromRequest(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var cmd UpdateDocumentCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.UpdateDocument(r.Context(), ref, docType, cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	ref, docType, err := slotFromRequest(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.DeleteDocument(r.Context(), ref, docType); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// readUpload extracts the multipart file from an upload request.
func (h *Handler) readUpload(r *http.Request) (*UploadCommand, error) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return nil, fmt.Errorf("%w: multipart form exceeds limit", ErrInvalid)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: missing file field", ErrInvalid)
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		return nil, fmt.Errorf("%w: file exceeds upload limit", ErrInvalid)
	}

	data := make([]byte, header.Size)
	if _, err := file.Read(data); err != nil {
		return nil, fmt.Errorf("%w: unreadable file content", ErrInvalid)
	}

	return &UploadCommand{FileName: header.Filename, Data: data}, nil
}

func refFromRequest(r *http.Request) (HolderRef, error) {
	kind := HolderKind(r.PathValue("kind"))
	if !kind.Valid() {
		return HolderRef{}, fmt.Errorf("%w: unknown holder kind %q", ErrInvalid, r.PathValue("kind"))
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return HolderRef{}, fmt.Errorf("%w: invalid holder id", ErrInvalid)
	}

	return HolderRef{Kind: kind, ID: id}, nil
}

func slotFromRequest(r *http.Request) (HolderRef, catalog.DocumentType, error) {
	ref, err := refFromRequest(r)
	if err != nil {
		return HolderRef{}, "", err
	}

	docType := catalog.DocumentType(r.PathValue("type"))
	var known bool
	if ref.Kind == KindDriver {
		known = catalog.IsDriverType(docType)
	} else {
		known = catalog.IsVehicleType(docType)
	}
	if !known {
		return HolderRef{}, "", fmt.Errorf("%w: document type %q not in %s catalog", ErrInvalid, docType, ref.Kind)
	}

	return ref, docType, nil
}
