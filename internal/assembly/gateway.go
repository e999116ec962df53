// Package assembly merges selected documents into a single handover PDF.
// The gateway resolves selections through the entity store and blob storage,
// delegates the page work to a Merger, and never persists anything.
package assembly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/asmira/fleetdocs/internal/catalog"
	"github.com/asmira/fleetdocs/internal/fleet"
	"github.com/google/uuid"
)

// Selection addresses one document slot to include in the output.
type Selection struct {
	Ref  fleet.HolderRef      `json:"ref"`
	Type catalog.DocumentType `json:"type"`
}

// Package is the merged output and its suggested download name.
type Package struct {
	FileName string `json:"file_name"`
	Data     []byte `json:"data"`
}

// System assembles document packages from slot selections.
type System interface {
	Assemble(ctx context.Context, selections []Selection) (*Package, error)
}

// Store is the slice of the entity store the gateway resolves through.
type Store interface {
	GetSlot(ctx context.Context, ref fleet.HolderRef, docType catalog.DocumentType) (*catalog.Slot, error)
	GetTruck(ctx context.Context, id uuid.UUID) (*fleet.Truck, error)
	GetTrailer(ctx context.Context, id uuid.UUID) (*fleet.Trailer, error)
	GetDriver(ctx context.Context, id uuid.UUID) (*fleet.Driver, error)
}

// Blobs is the read side of blob storage.
type Blobs interface {
	Retrieve(ctx context.Context, key string) ([]byte, error)
}

type gateway struct {
	store   Store
	storage Blobs
	merger  Merger
	logger  *slog.Logger
}

// New creates the assembly gateway.
func New(store Store, blobs Blobs, merger Merger, logger *slog.Logger) System {
	return &gateway{
		store:   store,
		storage: blobs,
		merger:  merger,
		logger:  logger.With("system", "assembly"),
	}
}

// Assemble resolves each selection to its stored file and merges the results
// in selection order. Empty slots and vanished holders drop out silently;
// if nothing remains the call fails with ErrEmptySelection.
func (g *gateway) Assemble(ctx context.Context, selections []Selection) (*Package, error) {
	var files []File
	var identifiers []string
	seen := make(map[fleet.HolderRef]struct{})

	for _, sel := range selections {
		if !sel.Ref.Kind.Valid() {
			return nil, fmt.Errorf("%w: unknown holder kind %q", ErrInvalid, sel.Ref.Kind)
		}

		slot, err := g.store.GetSlot(ctx, sel.Ref, sel.Type)
		if err != nil {
			if errors.Is(err, fleet.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if !slot.Filled() {
			continue
		}

		data, err := g.storage.Retrieve(ctx, *slot.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("retrieve %s: %w", *slot.StorageKey, err)
		}

		files = append(files, File{Name: *slot.FileName, Data: data})

		if _, ok := seen[sel.Ref]; !ok {
			seen[sel.Ref] = struct{}{}
			name, err := g.holderIdentifier(ctx, sel.Ref)
			if err != nil {
				return nil, err
			}
			identifiers = append(identifiers, name)
		}
	}

	if len(files) == 0 {
		return nil, ErrEmptySelection
	}

	data, err := g.merger.Merge(ctx, files)
	if err != nil {
		return nil, err
	}

	pkg := &Package{
		FileName: suggestFileName(identifiers),
		Data:     data,
	}

	g.logger.Info("package assembled", "files", len(files), "name", pkg.FileName, "bytes", len(data))
	return pkg, nil
}

// holderIdentifier returns the distinguishing identifier used in the output
// file name: plates for vehicles, the name for drivers.
func (g *gateway) holderIdentifier(ctx context.Context, ref fleet.HolderRef) (string, error) {
	switch ref.Kind {
	case fleet.KindTruck:
		truck, err := g.store.GetTruck(ctx, ref.ID)
		if err != nil {
			return "", err
		}
		return truck.Plate, nil
	case fleet.KindTrailer:
		trailer, err := g.store.GetTrailer(ctx, ref.ID)
		if err != nil {
			return "", err
		}
		return trailer.Plate, nil
	default:
		driver, err := g.store.GetDriver(ctx, ref.ID)
		if err != nil {
			return "", err
		}
		return driver.Name, nil
	}
}

func suggestFileName(identifiers []string) string {
	parts := make([]string, 0, len(identifiers))
	for _, id := range identifiers {
		if clean := sanitizeIdentifier(id); clean != "" {
			parts = append(parts, clean)
		}
	}
	if len(parts) == 0 {
		return "belgeler.pdf"
	}
	return strings.Join(parts, "_") + "_belgeler.pdf"
}

func sanitizeIdentifier(s string) string {
	s = strings.TrimSpace(s)
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "_",
		"\\", "_",
		":", "_",
	)
	return replacer.Replace(s)
}
