package handlers

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectologger"
	"github.com/gNutty/vesselradar/pkg/models"
	"github.com/gNutty/vesselradar/pkg/tracing"
	"github.com/labstack/echo/v4"
)

type SyncRunner interface {
	Run(ctx context.Context) (*models.SyncReport, error)
}

type TrackingHandler struct {
	syncer SyncRunner
	logger ectologger.Logger
}

func NewTrackingHandler(syncer SyncRunner, logger ectologger.Logger) *TrackingHandler {
	return &TrackingHandler{syncer: syncer, logger: logger}
}

// Sync refreshes every tracked shipment and reports per-item outcomes
// POST /api/v1/tracking/sync
func (h *TrackingHandler) Sync(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "tracking_handler.Sync")
	defer span.End()

	report, err := h.syncer.Run(ctx)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Batch sync failed")
		return domainError(err)
	}

	return c.JSON(http.StatusOK, report)
}
