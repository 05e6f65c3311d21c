package tracking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Gobusters/ectologger"
	"github.com/gNutty/vesselradar/pkg/ais"
	"github.com/gNutty/vesselradar/pkg/models"
	"github.com/google/uuid"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakePositionStore struct {
	mu        sync.Mutex
	latest    map[uuid.UUID]*models.PositionRecord
	inserted  []*models.PositionRecord
	findErr   error
	insertErr error
}

func newFakePositionStore() *fakePositionStore {
	return &fakePositionStore{latest: make(map[uuid.UUID]*models.PositionRecord)}
}

func (f *fakePositionStore) FindLatestByShipment(_ context.Context, shipmentID uuid.UUID) (*models.PositionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.latest[shipmentID], nil
}

func (f *fakePositionStore) Insert(_ context.Context, record *models.PositionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	record.ID = uuid.New()
	f.inserted = append(f.inserted, record)
	if record.ShipmentID != nil {
		f.latest[*record.ShipmentID] = record
	}
	return nil
}

type fakeRemote struct {
	mu          sync.Mutex
	byID        map[string]*ais.Candidate
	byName      map[string][]ais.Candidate
	err         error
	idCalls     int
	searchCalls int
}

func (f *fakeRemote) LookupByID(_ context.Context, trackingID string) (*ais.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.idCalls++
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.byID[trackingID]
	if !ok {
		return nil, ais.ErrNoData
	}
	return c, nil
}

func (f *fakeRemote) SearchByName(_ context.Context, name string) ([]ais.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byName[name], nil
}

type fakeIdentityCache struct {
	mu        sync.Mutex
	entries   map[string]*models.VesselIdentity
	upserts   int
	findErr   error
	upsertErr error
}

func newFakeIdentityCache() *fakeIdentityCache {
	return &fakeIdentityCache{entries: make(map[string]*models.VesselIdentity)}
}

func (f *fakeIdentityCache) FindByName(_ context.Context, name string) (*models.VesselIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.entries[name], nil
}

func (f *fakeIdentityCache) Upsert(_ context.Context, identity *models.VesselIdentity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.entries[identity.VesselName] = identity
	return nil
}

type fakeEvents struct {
	published []*models.PositionRecord
	err       error
}

func (f *fakeEvents) PublishPositionRecorded(_ context.Context, record *models.PositionRecord) error {
	f.published = append(f.published, record)
	return f.err
}

var errBoom = errors.New("boom")

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }

// stalledRemote never answers before the caller's deadline.
type stalledRemote struct {
	calls atomic.Int32
}

func (f *stalledRemote) LookupByID(ctx context.Context, _ string) (*ais.Candidate, error) {
	f.calls.Add(1)
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *stalledRemote) SearchByName(ctx context.Context, _ string) ([]ais.Candidate, error) {
	f.calls.Add(1)
	<-ctx.Done()
	return nil, ctx.Err()
}
