package batchsync

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/gNutty/vesselradar/pkg/models"
	"github.com/gNutty/vesselradar/pkg/tracking"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShipments struct {
	shipments []models.Shipment
	err       error
}

func (f *fakeShipments) ListTracked(context.Context) ([]models.Shipment, error) {
	return f.shipments, f.err
}

type locatorResponse struct {
	result *tracking.LocationResult
	err    error
}

type fakeLocator struct {
	responses map[string]locatorResponse
	requests  []tracking.LocationRequest
}

func (f *fakeLocator) ResolveLocation(_ context.Context, req tracking.LocationRequest) (*tracking.LocationResult, error) {
	f.requests = append(f.requests, req)
	r, ok := f.responses[req.TrackingID]
	if !ok {
		return nil, tracking.ErrNotFound
	}
	return r.result, r.err
}

type fakePublisher struct {
	reports []*models.SyncReport
	err     error
}

func (f *fakePublisher) PublishSyncCompleted(_ context.Context, report *models.SyncReport) error {
	f.reports = append(f.reports, report)
	return f.err
}

func shipment(booking, trackingID string) models.Shipment {
	return models.Shipment{ID: uuid.New(), BookingNo: booking, TrackingID: &trackingID}
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestRun_MapsOutcomes(t *testing.T) {
	shipments := &fakeShipments{shipments: []models.Shipment{
		shipment("B-API", "1"),
		shipment("B-CACHE", "2"),
		shipment("B-MOCK", "3"),
		shipment("B-MISSING", "4"),
		shipment("B-ERR", "5"),
	}}
	locator := &fakeLocator{responses: map[string]locatorResponse{
		"1": {result: &tracking.LocationResult{Source: tracking.SourceAPI}},
		"2": {result: &tracking.LocationResult{Source: tracking.SourceCache, CacheAge: "2.5 hours"}},
		"3": {result: &tracking.LocationResult{Source: tracking.SourceMock}},
		"5": {err: errors.New("database unavailable")},
	}}
	publisher := &fakePublisher{}

	report, err := NewSyncer(shipments, locator, publisher, testLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.SyncSummary{Total: 5, Success: 1, Skipped: 3, Failed: 1}, report.Summary)
	assert.Equal(t, []models.SyncDetail{
		{BookingRef: "B-API", Status: models.SyncSuccess},
		{BookingRef: "B-CACHE", Status: models.SyncSkipped, Message: "cached position is 2.5 hours old"},
		{BookingRef: "B-MOCK", Status: models.SyncSkipped, Message: "no data from API"},
		{BookingRef: "B-MISSING", Status: models.SyncSkipped, Message: "no data from API"},
		{BookingRef: "B-ERR", Status: models.SyncError, Message: "database unavailable"},
	}, report.Details)

	require.Len(t, publisher.reports, 1)
	assert.Same(t, report, publisher.reports[0])
	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}

func TestRun_NeverForcesRefresh(t *testing.T) {
	s := shipment("B1", "440176000")
	locator := &fakeLocator{}

	_, err := NewSyncer(&fakeShipments{shipments: []models.Shipment{s}}, locator, nil, testLogger()).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, locator.requests, 1)
	assert.False(t, locator.requests[0].ForceRefresh)
	assert.Equal(t, "440176000", locator.requests[0].TrackingID)
	require.NotNil(t, locator.requests[0].ShipmentID)
	assert.Equal(t, s.ID, *locator.requests[0].ShipmentID)
}

func TestRun_ListFailureFailsRun(t *testing.T) {
	publisher := &fakePublisher{}
	_, err := NewSyncer(&fakeShipments{err: errors.New("boom")}, &fakeLocator{}, publisher, testLogger()).Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, publisher.reports)
}

func TestRun_EmptyBookingUsesShipmentID(t *testing.T) {
	s := shipment("", "9")
	report, err := NewSyncer(&fakeShipments{shipments: []models.Shipment{s}}, &fakeLocator{}, nil, testLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, s.ID.String(), report.Details[0].BookingRef)
}

func TestRun_PublishFailureIsIgnored(t *testing.T) {
	report, err := NewSyncer(&fakeShipments{}, &fakeLocator{}, &fakePublisher{err: errors.New("down")}, testLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Summary.Total)
	assert.Empty(t, report.Details)
}
