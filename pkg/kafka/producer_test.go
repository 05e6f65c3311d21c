package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/gNutty/vesselradar/pkg/models"
	"github.com/gNutty/vesselradar/pkg/tracing"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestProducer() (*Producer, *fakeWriter, *fakeWriter) {
	positions, syncs := &fakeWriter{}, &fakeWriter{}
	return &Producer{
		positions:     positions,
		syncs:         syncs,
		positionTopic: "vessel.position.recorded",
		syncTopic:     "vessel.sync.completed",
		logger:        ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}),
		now:           func() time.Time { return now },
	}, positions, syncs
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublishPositionRecorded(t *testing.T) {
	p, positions, syncs := newTestProducer()
	shipmentID := uuid.New()
	trackingID := "440176000"
	record := &models.PositionRecord{
		ID:         uuid.New(),
		ShipmentID: &shipmentID,
		TrackingID: &trackingID,
		Latitude:   13.05,
		Longitude:  100.88,
		LastSync:   now.Add(-time.Minute),
	}

	require.NoError(t, p.PublishPositionRecorded(context.Background(), record))
	require.Len(t, positions.messages, 1)
	assert.Empty(t, syncs.messages)

	msg := positions.messages[0]
	assert.Equal(t, trackingID, string(msg.Key))
	assert.Equal(t, EventPositionRecorded, header(msg, "type"))

	var body PositionRecordedMessage
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, record.ID.String(), body.PositionID)
	assert.Equal(t, shipmentID.String(), body.ShipmentID)
	assert.Equal(t, 13.05, body.Latitude)
	assert.True(t, now.Equal(body.Timestamp))
}

func TestPublishPositionRecorded_KeyFallsBackToShipment(t *testing.T) {
	p, positions, _ := newTestProducer()
	shipmentID := uuid.New()

	require.NoError(t, p.PublishPositionRecorded(context.Background(), &models.PositionRecord{ID: uuid.New(), ShipmentID: &shipmentID}))
	assert.Equal(t, shipmentID.String(), string(positions.messages[0].Key))
}

func TestPublishPositionRecorded_CarriesTraceContext(t *testing.T) {
	shutdown, err := tracing.Setup(context.Background(), tracing.OTLPConfig{ServiceName: "vesselradar-test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	p, positions, _ := newTestProducer()
	ctx, span := tracing.StartSpan(context.Background(), "sync")
	defer span.End()
	shipmentID := uuid.New()

	require.NoError(t, p.PublishPositionRecorded(ctx, &models.PositionRecord{ID: uuid.New(), ShipmentID: &shipmentID}))
	require.Len(t, positions.messages, 1)

	traceID := tracing.TraceID(ctx)
	require.NotEmpty(t, traceID)
	assert.Contains(t, header(positions.messages[0], "traceparent"), traceID)

	var body PositionRecordedMessage
	require.NoError(t, json.Unmarshal(positions.messages[0].Value, &body))
	assert.Equal(t, traceID, body.TraceID)
}

func TestPublishPositionRecorded_Nil(t *testing.T) {
	p, _, _ := newTestProducer()
	assert.Error(t, p.PublishPositionRecorded(context.Background(), nil))
}

func TestPublishSyncCompleted(t *testing.T) {
	p, positions, syncs := newTestProducer()
	report := &models.SyncReport{RunID: "run-1"}
	report.Add(models.SyncDetail{BookingRef: "B1", Status: models.SyncSuccess})
	report.Add(models.SyncDetail{BookingRef: "B2", Status: models.SyncSkipped})

	require.NoError(t, p.PublishSyncCompleted(context.Background(), report))
	require.Len(t, syncs.messages, 1)
	assert.Empty(t, positions.messages)

	var body SyncCompletedMessage
	require.NoError(t, json.Unmarshal(syncs.messages[0].Value, &body))
	assert.Equal(t, EventSyncCompleted, body.Type)
	assert.Equal(t, models.SyncSummary{Total: 2, Success: 1, Skipped: 1}, body.Summary)
}

func TestPublish_WriterError(t *testing.T) {
	p, positions, _ := newTestProducer()
	positions.err = errors.New("broker down")

	err := p.PublishPositionRecorded(context.Background(), &models.PositionRecord{ID: uuid.New()})
	assert.ErrorContains(t, err, "broker down")
}

func TestClose(t *testing.T) {
	p, positions, syncs := newTestProducer()
	require.NoError(t, p.Close())
	assert.True(t, positions.closed)
	assert.True(t, syncs.closed)
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092", "c:9092"}, ParseBrokers("a:9092, b:9092", "", "c:9092"))
	assert.Nil(t, ParseBrokers(""))
}
