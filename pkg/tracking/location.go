package tracking

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/gNutty/vesselradar/pkg/ais"
	"github.com/gNutty/vesselradar/pkg/database"
	"github.com/gNutty/vesselradar/pkg/lookup"
	"github.com/gNutty/vesselradar/pkg/metrics"
	"github.com/gNutty/vesselradar/pkg/models"
	"github.com/gNutty/vesselradar/pkg/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type LocationRequest struct {
	TrackingID   string
	ShipmentID   *uuid.UUID
	ForceRefresh bool
}

type LocationResult struct {
	TrackingID string     `json:"trackingId"`
	ShipmentID *uuid.UUID `json:"shipmentId,omitempty"`
	Name       string     `json:"name,omitempty"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Speed      *float64   `json:"speed,omitempty"`
	Course     *float64   `json:"course,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
	Source     Source     `json:"source"`
	CacheAge   string     `json:"cacheAge,omitempty"`
	Message    string     `json:"message,omitempty"`
	IMO        string     `json:"imo,omitempty"`
	Flag       string     `json:"flag,omitempty"`
	Status     string     `json:"status,omitempty"`
}

// locationQuery is the state shared by the strategies of one resolution.
type locationQuery struct {
	LocationRequest
	cached *models.PositionRecord
	now    time.Time
}

// locationStrategy returns nil when it cannot answer, passing the query on
// to the next strategy.
type locationStrategy struct {
	name    string
	resolve func(ctx context.Context, q *locationQuery) *LocationResult
}

// LocationResolver answers "where is this vessel" from the cheapest tier that
// can: a fresh stored position, the AIS provider, then the fallback table.
type LocationResolver struct {
	store      PositionStore
	remote     RemoteLookup
	tables     *lookup.Tables
	events     EventPublisher
	policy     Policy
	logger     ectologger.Logger
	now        func() time.Time
	strategies []locationStrategy
}

type LocationOption func(*LocationResolver)

// WithEvents publishes every recorded position.
func WithEvents(events EventPublisher) LocationOption {
	return func(r *LocationResolver) { r.events = events }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) LocationOption {
	return func(r *LocationResolver) { r.now = now }
}

func NewLocationResolver(store PositionStore, remote RemoteLookup, tables *lookup.Tables, policy Policy, logger ectologger.Logger, opts ...LocationOption) *LocationResolver {
	r := &LocationResolver{
		store:  store,
		remote: remote,
		tables: tables,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.strategies = []locationStrategy{
		{name: "store", resolve: r.fromStore},
		{name: "remote", resolve: r.fromRemote},
		{name: "fallback", resolve: r.fromFallback},
	}
	return r
}

func (r *LocationResolver) ResolveLocation(ctx context.Context, req LocationRequest) (*LocationResult, error) {
	ctx, span := tracing.StartSpan(ctx, "LocationResolver.ResolveLocation")
	defer span.End()

	req.TrackingID = strings.TrimSpace(req.TrackingID)
	if req.TrackingID == "" {
		return nil, fmt.Errorf("%w: tracking id is required", ErrInvalidArgument)
	}
	span.SetAttributes(
		attribute.String("vessel.tracking_id", req.TrackingID),
		attribute.Bool("location.force_refresh", req.ForceRefresh),
	)

	q := &locationQuery{LocationRequest: req, now: r.now().UTC()}
	if req.ShipmentID != nil {
		cached, err := r.store.FindLatestByShipment(ctx, *req.ShipmentID)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).WithField("shipment_id", *req.ShipmentID).Warn("Failed to read stored position, treating as a miss")
		}
		q.cached = cached
	}

	for _, strategy := range r.strategies {
		if result := strategy.resolve(ctx, q); result != nil {
			span.SetAttributes(attribute.String("location.source", string(result.Source)))
			metrics.RecordLocationLookup(string(result.Source))
			return result, nil
		}
	}

	metrics.RecordLocationLookup("not_found")
	return nil, fmt.Errorf("%w: no position for vessel %s", ErrNotFound, req.TrackingID)
}

func (r *LocationResolver) fromStore(ctx context.Context, q *locationQuery) *LocationResult {
	if q.cached == nil {
		return nil
	}

	age := q.cached.Age(q.now)
	if age >= r.policy.Threshold(q.ForceRefresh) {
		return nil
	}

	result := fromRecord(q.cached, q.TrackingID)
	result.Source = SourceCache
	result.CacheAge = fmt.Sprintf("%.1f hours", age.Hours())
	if q.ForceRefresh {
		result.Message = fmt.Sprintf("Data is only %.1fh old. Minimum %s required for refresh.", age.Hours(), formatHours(r.policy.MinRefreshAge))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"tracking_id":   q.TrackingID,
		"age":           age,
		"force_refresh": q.ForceRefresh,
	}).Debug("Serving stored position")
	return result
}

func (r *LocationResolver) fromRemote(ctx context.Context, q *locationQuery) *LocationResult {
	if r.remote == nil {
		return nil
	}

	callCtx := ctx
	if r.policy.RemoteTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.policy.RemoteTimeout)
		defer cancel()
	}

	candidate, err := r.remote.LookupByID(callCtx, q.TrackingID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("tracking_id", q.TrackingID).Warn("AIS lookup failed, falling back")
		return nil
	}
	if candidate == nil || !candidate.HasPosition() {
		return nil
	}

	record := recordFromCandidate(candidate, q)
	if q.ShipmentID != nil {
		r.record(ctx, record)
	}

	result := fromRecord(record, q.TrackingID)
	result.Source = SourceAPI
	if q.ForceRefresh {
		result.Source = SourceAPIForced
	}
	return result
}

// record persists a shipment-scoped position and announces it. Failures are
// logged and never change the answer.
func (r *LocationResolver) record(ctx context.Context, record *models.PositionRecord) {
	if err := r.store.Insert(ctx, record); err != nil {
		metrics.RecordPersistenceFailure("positions")
		r.logger.WithContext(ctx).WithError(err).WithField("shipment_id", *record.ShipmentID).Error("Failed to record position")
		return
	}
	if r.events == nil {
		return
	}
	if err := r.events.PublishPositionRecorded(ctx, record); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("position_id", record.ID).Warn("Failed to publish recorded position")
	}
}

func (r *LocationResolver) fromFallback(ctx context.Context, q *locationQuery) *LocationResult {
	if r.tables == nil {
		return nil
	}
	pos, ok := r.tables.FallbackPosition(q.TrackingID)
	if !ok {
		return nil
	}

	r.logger.WithContext(ctx).WithField("tracking_id", q.TrackingID).Info("Serving fallback position")
	return &LocationResult{
		TrackingID: q.TrackingID,
		ShipmentID: q.ShipmentID,
		Name:       pos.Name,
		Latitude:   pos.Latitude,
		Longitude:  pos.Longitude,
		Speed:      pos.Speed,
		Course:     pos.Course,
		Timestamp:  q.now,
		Source:     SourceMock,
	}
}

func recordFromCandidate(c *ais.Candidate, q *locationQuery) *models.PositionRecord {
	trackingID := c.TrackingID
	if trackingID == "" {
		trackingID = q.TrackingID
	}
	return &models.PositionRecord{
		ShipmentID:   q.ShipmentID,
		TrackingID:   &trackingID,
		VesselName:   optional(c.Name),
		IMO:          optional(c.IMO),
		Latitude:     *c.Latitude,
		Longitude:    *c.Longitude,
		SpeedKnots:   c.Speed,
		Course:       c.Course,
		Heading:      c.Heading,
		Flag:         optional(c.Flag),
		CallSign:     optional(c.CallSign),
		VesselType:   optional(c.VesselType),
		Status:       optional(c.Status),
		PreviousPort: optional(c.PreviousPort),
		CurrentPort:  optional(c.CurrentPort),
		NextPort:     optional(c.NextPort),
		APIUpdatedAt: c.UpdatedAt,
		RawPayload:   database.NewJSONB(c.Raw),
		LastSync:     q.now,
	}
}

func fromRecord(p *models.PositionRecord, trackingID string) *LocationResult {
	if p.TrackingID != nil && *p.TrackingID != "" {
		trackingID = *p.TrackingID
	}
	return &LocationResult{
		TrackingID: trackingID,
		ShipmentID: p.ShipmentID,
		Name:       deref(p.VesselName),
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		Speed:      p.SpeedKnots,
		Course:     p.Course,
		Timestamp:  p.LastSync,
		IMO:        deref(p.IMO),
		Flag:       deref(p.Flag),
		Status:     deref(p.Status),
	}
}

func formatHours(d time.Duration) string {
	return strconv.FormatFloat(d.Hours(), 'f', -1, 64) + "h"
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
