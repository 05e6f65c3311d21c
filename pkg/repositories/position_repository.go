package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/gNutty/vesselradar/pkg/database"
	"github.com/gNutty/vesselradar/pkg/models"
	"github.com/gNutty/vesselradar/pkg/tracing"
)

const positionRecordsTable = "position_records"

var positionStruct = database.NewStruct(new(models.PositionRecord))

// latestPositionsQuery keeps the newest record per shipment, or per vessel for
// records without a shipment, joined with the owning shipment's reference.
const latestPositionsQuery = `
	SELECT * FROM (
		SELECT DISTINCT ON (COALESCE(p.shipment_id::text, p.tracking_id, p.vessel_name))
			p.*,
			s.booking_no AS shipment_booking_no,
			s.main_vessel_name AS shipment_vessel_name
		FROM position_records p
		LEFT JOIN shipments s ON s.id = p.shipment_id
		ORDER BY COALESCE(p.shipment_id::text, p.tracking_id, p.vessel_name), p.last_sync DESC, p.created_at DESC
	) latest
	ORDER BY last_sync DESC`

type positionRow struct {
	models.PositionRecord
	ShipmentBookingNo  *string `db:"shipment_booking_no"`
	ShipmentVesselName *string `db:"shipment_vessel_name"`
}

func (row positionRow) record() models.PositionRecord {
	record := row.PositionRecord
	if row.ShipmentBookingNo != nil {
		ref := &models.ShipmentRef{BookingNo: *row.ShipmentBookingNo}
		if row.ShipmentVesselName != nil {
			ref.MainVesselName = *row.ShipmentVesselName
		}
		record.Shipment = ref
	}
	return record
}

type PositionRepository struct {
	*Repository
	now func() time.Time
}

func NewPositionRepository(db database.DB, logger ectologger.Logger) *PositionRepository {
	return &PositionRepository{
		Repository: NewRepository(db, logger),
		now:        time.Now,
	}
}

func (r *PositionRepository) Insert(ctx context.Context, record *models.PositionRecord) error {
	ctx, span := tracing.StartSpan(ctx, "PositionRepository.Insert")
	defer span.End()

	if !record.HasOwner() {
		return BadRequest("position record needs a shipment id, tracking id or vessel name")
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := r.now().UTC()
	if record.LastSync.IsZero() {
		record.LastSync = now
	}
	record.CreatedAt = now
	if record.RawPayload.Data == nil {
		record.RawPayload.Data = map[string]any{}
	}

	ib := positionStruct.InsertInto(positionRecordsTable, record)
	query, args := ib.Build()

	if _, err := r.DB().ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"position_id": record.ID,
			"shipment_id": record.ShipmentID,
			"tracking_id": record.TrackingID,
		}).Error("failed to insert position record")
		return Internal("failed to insert position record")
	}

	r.logger.WithContext(ctx).WithField("position_id", record.ID).Debugf("Inserted %s %s", positionRecordsTable, record.ID)
	return nil
}

func (r *PositionRepository) FindLatestByShipment(ctx context.Context, shipmentID uuid.UUID) (*models.PositionRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "PositionRepository.FindLatestByShipment")
	defer span.End()

	sb := positionStruct.SelectFrom(positionRecordsTable)
	sb.Where(sb.Equal("shipment_id", shipmentID))
	sb.OrderBy("last_sync DESC", "created_at DESC")
	sb.Limit(1)

	query, args := sb.Build()
	var record models.PositionRecord
	err := r.DB().GetContext(ctx, &record, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("shipment_id", shipmentID).Error("failed to get latest position")
		return nil, Internal("failed to get latest position")
	}
	return &record, nil
}

// ListLatest returns the newest position of every shipment and of every
// unowned vessel, newest first, each with its shipment reference when known.
func (r *PositionRepository) ListLatest(ctx context.Context) ([]models.PositionRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "PositionRepository.ListLatest")
	defer span.End()

	var rows []positionRow
	if err := r.DB().SelectContext(ctx, &rows, latestPositionsQuery); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list latest positions")
		return nil, Internal("failed to list latest positions")
	}

	records := make([]models.PositionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}

	r.logger.WithContext(ctx).Debugf("Listed %d latest positions", len(records))
	return records, nil
}

func (r *PositionRepository) ListByShipment(ctx context.Context, shipmentID uuid.UUID, limit int) ([]models.PositionRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "PositionRepository.ListByShipment")
	defer span.End()

	if limit <= 0 || limit > 500 {
		limit = 100
	}

	sb := positionStruct.SelectFrom(positionRecordsTable)
	sb.Where(sb.Equal("shipment_id", shipmentID))
	sb.OrderBy("last_sync DESC", "created_at DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	records := []models.PositionRecord{}
	if err := r.DB().SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("shipment_id", shipmentID).Error("failed to list positions")
		return nil, Internal("failed to list positions")
	}
	return records, nil
}
