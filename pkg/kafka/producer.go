package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/gNutty/vesselradar/pkg/metrics"
	"github.com/gNutty/vesselradar/pkg/models"
	"github.com/gNutty/vesselradar/pkg/tracing"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

const (
	EventPositionRecorded = "position.recorded"
	EventSyncCompleted    = "sync.completed"
)

type Config struct {
	Brokers       []string
	PositionTopic string
	SyncTopic     string
}

// ParseBrokers splits a comma-separated broker list.
func ParseBrokers(brokers ...string) []string {
	var out []string
	for _, b := range brokers {
		for _, part := range strings.Split(b, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PositionRecordedMessage announces a newly appended position record.
type PositionRecordedMessage struct {
	Type       string    `json:"type"`
	PositionID string    `json:"position_id"`
	ShipmentID string    `json:"shipment_id,omitempty"`
	TrackingID string    `json:"tracking_id,omitempty"`
	VesselName string    `json:"vessel_name,omitempty"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	SpeedKnots *float64  `json:"speed_knots,omitempty"`
	Course     *float64  `json:"course,omitempty"`
	LastSync   time.Time `json:"last_sync"`
	Timestamp  time.Time `json:"timestamp"`
	TraceID    string    `json:"trace_id,omitempty"`
}

type SyncCompletedMessage struct {
	Type       string             `json:"type"`
	RunID      string             `json:"run_id"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Summary    models.SyncSummary `json:"summary"`
	Timestamp  time.Time          `json:"timestamp"`
	TraceID    string             `json:"trace_id,omitempty"`
}

// Producer publishes domain events to Kafka.
type Producer struct {
	positions     messageWriter
	syncs         messageWriter
	positionTopic string
	syncTopic     string
	logger        ectologger.Logger
	now           func() time.Time
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              100,
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		Async:                  false,
		AllowAutoTopicCreation: true,
	}
}

func NewProducer(cfg Config, logger ectologger.Logger) *Producer {
	return &Producer{
		positions:     newWriter(cfg.Brokers, cfg.PositionTopic),
		syncs:         newWriter(cfg.Brokers, cfg.SyncTopic),
		positionTopic: cfg.PositionTopic,
		syncTopic:     cfg.SyncTopic,
		logger:        logger,
		now:           time.Now,
	}
}

func (p *Producer) Close() error {
	var firstErr error
	if err := p.positions.Close(); err != nil {
		firstErr = err
	}
	if err := p.syncs.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// PublishPositionRecorded is keyed by tracking id so a vessel's positions stay
// on one partition.
func (p *Producer) PublishPositionRecorded(ctx context.Context, record *models.PositionRecord) error {
	if record == nil {
		return fmt.Errorf("position record is nil")
	}

	msg := PositionRecordedMessage{
		Type:       EventPositionRecorded,
		PositionID: record.ID.String(),
		Latitude:   record.Latitude,
		Longitude:  record.Longitude,
		SpeedKnots: record.SpeedKnots,
		Course:     record.Course,
		LastSync:   record.LastSync,
		Timestamp:  p.now().UTC(),
		TraceID:    tracing.TraceID(ctx),
	}
	if record.ShipmentID != nil {
		msg.ShipmentID = record.ShipmentID.String()
	}
	if record.TrackingID != nil {
		msg.TrackingID = *record.TrackingID
	}
	if record.VesselName != nil {
		msg.VesselName = *record.VesselName
	}

	key := msg.TrackingID
	if key == "" {
		key = msg.ShipmentID
	}
	return p.publish(ctx, p.positions, p.positionTopic, EventPositionRecorded, key, msg)
}

func (p *Producer) PublishSyncCompleted(ctx context.Context, report *models.SyncReport) error {
	if report == nil {
		return fmt.Errorf("sync report is nil")
	}

	msg := SyncCompletedMessage{
		Type:       EventSyncCompleted,
		RunID:      report.RunID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Summary:    report.Summary,
		Timestamp:  p.now().UTC(),
		TraceID:    tracing.TraceID(ctx),
	}
	return p.publish(ctx, p.syncs, p.syncTopic, EventSyncCompleted, report.RunID, msg)
}

func (p *Producer) publish(ctx context.Context, w messageWriter, topic, eventType, key string, payload any) error {
	ctx, span := tracing.StartSpan(ctx, "Kafka.Publish")
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination", topic),
		attribute.String("messaging.operation", "publish"),
		attribute.String("event.type", eventType),
	)

	data, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal message")
		return fmt.Errorf("failed to marshal %s message: %w", eventType, err)
	}

	headers := []kafka.Header{{Key: "type", Value: []byte(eventType)}}
	carrier := propagation.MapCarrier{}
	tracing.Propagate(ctx, carrier)
	keys := carrier.Keys()
	sort.Strings(keys)
	for _, k := range keys {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(carrier.Get(k))})
	}

	if err := w.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   data,
		Headers: headers,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish message")
		metrics.RecordKafkaPublish(topic, "error")
		p.logger.WithContext(ctx).WithError(err).Errorf("Failed to publish %s to Kafka topic %s", eventType, topic)
		return err
	}

	span.SetStatus(codes.Ok, "message published")
	metrics.RecordKafkaPublish(topic, "success")
	p.logger.WithContext(ctx).Debugf("Published %s to Kafka topic %s key=%s", eventType, topic, key)
	return nil
}

// Noop drops every event. It is used when Kafka is disabled.
type Noop struct{}

func (Noop) PublishPositionRecorded(context.Context, *models.PositionRecord) error { return nil }
func (Noop) PublishSyncCompleted(context.Context, *models.SyncReport) error        { return nil }
func (Noop) Close() error                                                          { return nil }
