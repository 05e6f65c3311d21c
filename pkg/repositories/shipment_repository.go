package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/gNutty/vesselradar/pkg/database"
	"github.com/gNutty/vesselradar/pkg/models"
	"github.com/gNutty/vesselradar/pkg/tracing"
)

const shipmentsTable = "shipments"

var shipmentStruct = database.NewStruct(new(models.Shipment))

// ShipmentRepository reads shipments. They are written by the ingestion pipeline.
type ShipmentRepository struct {
	*Repository
}

func NewShipmentRepository(db database.DB, logger ectologger.Logger) *ShipmentRepository {
	return &ShipmentRepository{
		Repository: NewRepository(db, logger),
	}
}

func (r *ShipmentRepository) List(ctx context.Context) ([]models.Shipment, error) {
	ctx, span := tracing.StartSpan(ctx, "ShipmentRepository.List")
	defer span.End()

	sb := shipmentStruct.SelectFrom(shipmentsTable)
	sb.OrderBy("created_at DESC")

	return r.selectShipments(ctx, sb)
}

// ListTracked returns shipments that carry a vessel tracking id.
func (r *ShipmentRepository) ListTracked(ctx context.Context) ([]models.Shipment, error) {
	ctx, span := tracing.StartSpan(ctx, "ShipmentRepository.ListTracked")
	defer span.End()

	sb := shipmentStruct.SelectFrom(shipmentsTable)
	sb.Where(sb.IsNotNull("mmsi"), sb.NotEqual("mmsi", ""))
	sb.OrderBy("created_at DESC")

	return r.selectShipments(ctx, sb)
}

func (r *ShipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	ctx, span := tracing.StartSpan(ctx, "ShipmentRepository.GetByID")
	defer span.End()

	sb := shipmentStruct.SelectFrom(shipmentsTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var shipment models.Shipment
	err := r.DB().GetContext(ctx, &shipment, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("shipment %s does not exist", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("shipment_id", id).Error("failed to get shipment")
		return nil, Internal("failed to get shipment")
	}
	return &shipment, nil
}

func (r *ShipmentRepository) selectShipments(ctx context.Context, sb *database.SelectBuilder) ([]models.Shipment, error) {
	query, args := sb.Build()
	shipments := []models.Shipment{}
	if err := r.DB().SelectContext(ctx, &shipments, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list shipments")
		return nil, Internal("failed to list shipments")
	}
	r.logger.WithContext(ctx).Debugf("Listed %d %s", len(shipments), shipmentsTable)
	return shipments, nil
}
