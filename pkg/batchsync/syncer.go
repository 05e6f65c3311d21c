// Package batchsync refreshes the positions of every tracked shipment in one
// sequential pass.
package batchsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/gNutty/vesselradar/pkg/metrics"
	"github.com/gNutty/vesselradar/pkg/models"
	"github.com/gNutty/vesselradar/pkg/tracing"
	"github.com/gNutty/vesselradar/pkg/tracking"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const noDataMessage = "no data from API"

type ShipmentLister interface {
	ListTracked(ctx context.Context) ([]models.Shipment, error)
}

type Locator interface {
	ResolveLocation(ctx context.Context, req tracking.LocationRequest) (*tracking.LocationResult, error)
}

type Publisher interface {
	PublishSyncCompleted(ctx context.Context, report *models.SyncReport) error
}

type Syncer struct {
	shipments ShipmentLister
	locator   Locator
	publisher Publisher
	logger    ectologger.Logger
	now       func() time.Time
}

// NewSyncer builds a syncer. publisher may be nil.
func NewSyncer(shipments ShipmentLister, locator Locator, publisher Publisher, logger ectologger.Logger) *Syncer {
	return &Syncer{
		shipments: shipments,
		locator:   locator,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Run resolves every tracked shipment without forcing a refresh, so positions
// younger than the normal TTL are skipped. Item failures are reported, not
// returned; only a failure to list shipments fails the run.
func (s *Syncer) Run(ctx context.Context) (*models.SyncReport, error) {
	ctx, span := tracing.StartSpan(ctx, "Syncer.Run")
	defer span.End()

	report := &models.SyncReport{
		RunID:     uuid.NewString(),
		StartedAt: s.now().UTC(),
		Details:   []models.SyncDetail{},
	}
	log := s.logger.WithContext(ctx).WithField("run_id", report.RunID)

	shipments, err := s.shipments.ListTracked(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list tracked shipments")
		return nil, fmt.Errorf("list tracked shipments: %w", err)
	}
	log.Infof("Syncing %d tracked shipments", len(shipments))

	for _, shipment := range shipments {
		if ctx.Err() != nil {
			log.WithError(ctx.Err()).Warn("Sync cancelled")
			break
		}
		detail := s.syncOne(ctx, shipment)
		metrics.RecordSyncItem(string(detail.Status))
		report.Add(detail)
	}

	report.FinishedAt = s.now().UTC()
	metrics.RecordSyncRun(report.FinishedAt.Sub(report.StartedAt).Seconds())
	span.SetAttributes(
		attribute.Int("sync.total", report.Summary.Total),
		attribute.Int("sync.success", report.Summary.Success),
		attribute.Int("sync.skipped", report.Summary.Skipped),
		attribute.Int("sync.failed", report.Summary.Failed),
	)
	log.Infof("Sync completed: success=%d skipped=%d failed=%d",
		report.Summary.Success, report.Summary.Skipped, report.Summary.Failed)

	if s.publisher != nil {
		if err := s.publisher.PublishSyncCompleted(ctx, report); err != nil {
			log.WithError(err).Warn("Failed to publish sync summary")
		}
	}
	return report, nil
}

func (s *Syncer) syncOne(ctx context.Context, shipment models.Shipment) models.SyncDetail {
	ref := shipment.BookingNo
	if strings.TrimSpace(ref) == "" {
		ref = shipment.ID.String()
	}

	id := shipment.ID
	result, err := s.locator.ResolveLocation(ctx, tracking.LocationRequest{
		TrackingID: shipment.Tracking(),
		ShipmentID: &id,
	})
	switch {
	case errors.Is(err, tracking.ErrNotFound):
		return models.SyncDetail{BookingRef: ref, Status: models.SyncSkipped, Message: noDataMessage}
	case err != nil:
		s.logger.WithContext(ctx).WithError(err).WithField("booking_no", ref).Warn("Failed to sync shipment")
		return models.SyncDetail{BookingRef: ref, Status: models.SyncError, Message: err.Error()}
	}

	switch result.Source {
	case tracking.SourceAPI, tracking.SourceAPIForced:
		return models.SyncDetail{BookingRef: ref, Status: models.SyncSuccess}
	case tracking.SourceCache:
		return models.SyncDetail{BookingRef: ref, Status: models.SyncSkipped, Message: fmt.Sprintf("cached position is %s old", result.CacheAge)}
	default:
		return models.SyncDetail{BookingRef: ref, Status: models.SyncSkipped, Message: noDataMessage}
	}
}
