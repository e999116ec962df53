package assembly_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/asmira/fleetdocs/internal/assembly"
	"github.com/asmira/fleetdocs/internal/catalog"
	"github.com/asmira/fleetdocs/internal/fleet"
	"github.com/google/uuid"
)

type fakeStore struct {
	slots    map[fleet.DocumentKey]catalog.Slot
	trucks   map[uuid.UUID]fleet.Truck
	trailers map[uuid.UUID]fleet.Trailer
	drivers  map[uuid.UUID]fleet.Driver
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		slots:    map[fleet.DocumentKey]catalog.Slot{},
		trucks:   map[uuid.UUID]fleet.Truck{},
		trailers: map[uuid.UUID]fleet.Trailer{},
		drivers:  map[uuid.UUID]fleet.Driver{},
	}
}

func (f *fakeStore) GetSlot(ctx context.Context, ref fleet.HolderRef, docType catalog.DocumentType) (*catalog.Slot, error) {
	slot, ok := f.slots[fleet.DocumentKey{Ref: ref, Type: docType}]
	if !ok {
		return nil, fleet.ErrNotFound
	}
	copied := slot
	return &copied, nil
}

func (f *fakeStore) GetTruck(ctx context.Context, id uuid.UUID) (*fleet.Truck, error) {
	t, ok := f.trucks[id]
	if !ok {
		return nil, fleet.ErrNotFound
	}
	return &t, nil
}

func (f *fakeStore) GetTrailer(ctx context.Context, id uuid.UUID) (*fleet.Trailer, error) {
	t, ok := f.trailers[id]
	if !ok {
		return nil, fleet.ErrNotFound
	}
	return &t, nil
}

func (f *fakeStore) GetDriver(ctx context.Context, id uuid.UUID) (*fleet.Driver, error) {
	d, ok := f.drivers[id]
	if !ok {
		return nil, fleet.ErrNotFound
	}
	return &d, nil
}

type fakeBlobs struct {
	blobs map[string][]byte
}

func (f *fakeBlobs) Retrieve(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.blobs[key]
	if !ok {
		return nil, errors.New("blob missing")
	}
	return data, nil
}

type fakeMerger struct {
	files []assembly.File
}

func (f *fakeMerger) Merge(ctx context.Context, files []assembly.File) ([]byte, error) {
	f.files = files
	return []byte("merged"), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fillSlot(store *fakeStore, blobs *fakeBlobs, ref fleet.HolderRef, docType catalog.DocumentType, fileName string, data []byte) {
	key := "blob/" + fileName
	store.slots[fleet.DocumentKey{Ref: ref, Type: docType}] = catalog.Slot{
		Type:       docType,
		Label:      catalog.Label(docType),
		FileName:   &fileName,
		StorageKey: &key,
	}
	blobs.blobs[key] = data
}

func emptySlot(store *fakeStore, ref fleet.HolderRef, docType catalog.DocumentType) {
	store.slots[fleet.DocumentKey{Ref: ref, Type: docType}] = catalog.Slot{
		Type:  docType,
		Label: catalog.Label(docType),
	}
}

func TestAssembleDropsEmptySlots(t *testing.T) {
	store := newFakeStore()
	blobs := &fakeBlobs{blobs: map[string][]byte{}}
	merger := &fakeMerger{}

	truckID := uuid.New()
	store.trucks[truckID] = fleet.Truck{ID: truckID, Plate: "34 DEMO 001"}
	ref := fleet.HolderRef{Kind: fleet.KindTruck, ID: truckID}

	fillSlot(store, blobs, ref, catalog.Registration, "registration.pdf", []byte("%PDF-1.7 reg"))
	emptySlot(store, ref, catalog.TrafficInsurance)
	emptySlot(store, ref, catalog.EmissionTest)

	sys := assembly.New(store, blobs, merger, testLogger())

	pkg, err := sys.Assemble(context.Background(), []assembly.Selection{
		{Ref: ref, Type: catalog.Registration},
		{Ref: ref, Type: catalog.TrafficInsurance},
		{Ref: ref, Type: catalog.EmissionTest},
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if len(merger.files) != 1 {
		t.Fatalf("expected 1 file at the merger, got %d", len(merger.files))
	}
	if merger.files[0].Name != "registration.pdf" {
		t.Errorf("unexpected merged file %q", merger.files[0].Name)
	}
	if string(pkg.Data) != "merged" {
		t.Error("package should carry the merger output")
	}
}

func TestAssembleAllEmptySelection(t *testing.T) {
	store := newFakeStore()
	blobs := &fakeBlobs{blobs: map[string][]byte{}}

	truckID := uuid.New()
	store.trucks[truckID] = fleet.Truck{ID: truckID, Plate: "34 DEMO 001"}
	ref := fleet.HolderRef{Kind: fleet.KindTruck, ID: truckID}
	emptySlot(store, ref, catalog.Registration)

	sys := assembly.New(store, blobs, &fakeMerger{}, testLogger())

	_, err := sys.Assemble(context.Background(), []assembly.Selection{
		{Ref: ref, Type: catalog.Registration},
	})
	if !errors.Is(err, assembly.ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
}

func TestAssembleVanishedHolderDropsOut(t *testing.T) {
	store := newFakeStore()
	blobs := &fakeBlobs{blobs: map[string][]byte{}}
	merger := &fakeMerger{}

	truckID := uuid.New()
	store.trucks[truckID] = fleet.Truck{ID: truckID, Plate: "34 DEMO 001"}
	ref := fleet.HolderRef{Kind: fleet.KindTruck, ID: truckID}
	fillSlot(store, blobs, ref, catalog.Registration, "registration.pdf", []byte("%PDF-1.7"))

	gone := fleet.HolderRef{Kind: fleet.KindTrailer, ID: uuid.New()}

	sys := assembly.New(store, blobs, merger, testLogger())

	pkg, err := sys.Assemble(context.Background(), []assembly.Selection{
		{Ref: gone, Type: catalog.Registration},
		{Ref: ref, Type: catalog.Registration},
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(merger.files) != 1 {
		t.Fatalf("vanished holder should drop silently, got %d files", len(merger.files))
	}
	if pkg.FileName != "34_DEMO_001_belgeler.pdf" {
		t.Errorf("unexpected file name %q", pkg.FileName)
	}
}

func TestAssembleSuggestedFileName(t *testing.T) {
	store := newFakeStore()
	blobs := &fakeBlobs{blobs: map[string][]byte{}}

	truckID := uuid.New()
	trailerID := uuid.New()
	driverID := uuid.New()
	store.trucks[truckID] = fleet.Truck{ID: truckID, Plate: "34 DEMO 001"}
	store.trailers[trailerID] = fleet.Trailer{ID: trailerID, Plate: "34 DEMO 901"}
	store.drivers[driverID] = fleet.Driver{ID: driverID, Name: "Murat Aydin"}

	truckRef := fleet.HolderRef{Kind: fleet.KindTruck, ID: truckID}
	trailerRef := fleet.HolderRef{Kind: fleet.KindTrailer, ID: trailerID}
	driverRef := fleet.HolderRef{Kind: fleet.KindDriver, ID: driverID}

	fillSlot(store, blobs, truckRef, catalog.Registration, "t.pdf", []byte("a"))
	fillSlot(store, blobs, trailerRef, catalog.Registration, "tr.pdf", []byte("b"))
	fillSlot(store, blobs, driverRef, catalog.DriverLicense, "d.pdf", []byte("c"))

	sys := assembly.New(store, blobs, &fakeMerger{}, testLogger())

	pkg, err := sys.Assemble(context.Background(), []assembly.Selection{
		{Ref: truckRef, Type: catalog.Registration},
		{Ref: trailerRef, Type: catalog.Registration},
		{Ref: driverRef, Type: catalog.DriverLicense},
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	want := "34_DEMO_001_34_DEMO_901_Murat_Aydin_belgeler.pdf"
	if pkg.FileName != want {
		t.Errorf("expected %q, got %q", want, pkg.FileName)
	}
}

func TestAssembleUnknownKind(t *testing.T) {
	sys := assembly.New(newFakeStore(), &fakeBlobs{blobs: map[string][]byte{}}, &fakeMerger{}, testLogger())

	_, err := sys.Assemble(context.Background(), []assembly.Selection{
		{Ref: fleet.HolderRef{Kind: "boat", ID: uuid.New()}, Type: catalog.Registration},
	})
	if !errors.Is(err, assembly.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
