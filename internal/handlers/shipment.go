package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	"github.com/gNutty/vesselradar/pkg/models"
	"github.com/gNutty/vesselradar/pkg/reconcile"
	"github.com/gNutty/vesselradar/pkg/tracing"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ShipmentReader interface {
	List(ctx context.Context) ([]models.Shipment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
}

type PositionReader interface {
	ListLatest(ctx context.Context) ([]models.PositionRecord, error)
	ListByShipment(ctx context.Context, shipmentID uuid.UUID, limit int) ([]models.PositionRecord, error)
}

type ShipmentHandler struct {
	shipments ShipmentReader
	positions PositionReader
	ports     reconcile.PortLookup
	logger    ectologger.Logger
	now       func() time.Time
}

func NewShipmentHandler(shipments ShipmentReader, positions PositionReader, ports reconcile.PortLookup, logger ectologger.Logger) *ShipmentHandler {
	return &ShipmentHandler{
		shipments: shipments,
		positions: positions,
		ports:     ports,
		logger:    logger,
		now:       time.Now,
	}
}

type DashboardResponse struct {
	Stats models.ShipmentStats    `json:"stats"`
	Views []models.ReconciledView `json:"views"`
}

// Dashboard joins every shipment with its best known position
// GET /api/v1/dashboard
func (h *ShipmentHandler) Dashboard(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "shipment_handler.Dashboard")
	defer span.End()

	shipments, err := h.shipments.List(ctx)
	if err != nil {
		return domainError(err)
	}
	latest, err := h.positions.ListLatest(ctx)
	if err != nil {
		return domainError(err)
	}

	positions := ectolinq.Map(latest, func(p models.PositionRecord) *models.PositionRecord { return &p })
	views := reconcile.Build(shipments, positions, h.now().UTC(), h.ports)

	return c.JSON(http.StatusOK, DashboardResponse{
		Stats: reconcile.Summarize(shipments, views),
		Views: views,
	})
}

type ShipmentListResponse struct {
	Items []models.Shipment `json:"items"`
	Count int               `json:"count"`
}

// List returns all shipments
// GET /api/v1/shipments
func (h *ShipmentHandler) List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "shipment_handler.List")
	defer span.End()

	shipments, err := h.shipments.List(ctx)
	if err != nil {
		return domainError(err)
	}
	if shipments == nil {
		shipments = []models.Shipment{}
	}

	return c.JSON(http.StatusOK, ShipmentListResponse{Items: shipments, Count: len(shipments)})
}

type PositionHistoryQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=500"`
}

type PositionHistoryResponse struct {
	ShipmentID uuid.UUID               `json:"shipment_id"`
	Items      []models.PositionRecord `json:"items"`
	Count      int                     `json:"count"`
}

// Positions returns the position history of a shipment, latest first
// GET /api/v1/shipments/:id/positions
func (h *ShipmentHandler) Positions(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "shipment_handler.Positions")
	defer span.End()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}
	q, err := bindQuery[PositionHistoryQuery](c)
	if err != nil {
		return err
	}
	if q.Limit == 0 {
		q.Limit = 50
	}

	if _, err := h.shipments.GetByID(ctx, id); err != nil {
		return domainError(err)
	}
	items, err := h.positions.ListByShipment(ctx, id, q.Limit)
	if err != nil {
		return domainError(err)
	}
	if items == nil {
		items = []models.PositionRecord{}
	}

	return c.JSON(http.StatusOK, PositionHistoryResponse{ShipmentID: id, Items: items, Count: len(items)})
}
