package repositories

import (
	"context"

	"github.com/gNutty/vesselradar/pkg/models"
	"github.com/google/uuid"
)

// PositionRepo is append-only: there is no update or delete.
type PositionRepo interface {
	Insert(ctx context.Context, record *models.PositionRecord) error
	// FindLatestByShipment returns nil, nil when the shipment has no positions.
	FindLatestByShipment(ctx context.Context, shipmentID uuid.UUID) (*models.PositionRecord, error)
	ListLatest(ctx context.Context) ([]models.PositionRecord, error)
	ListByShipment(ctx context.Context, shipmentID uuid.UUID, limit int) ([]models.PositionRecord, error)
}

type VesselIdentityRepo interface {
	// FindByName returns nil, nil when the name is not cached.
	FindByName(ctx context.Context, normalizedName string) (*models.VesselIdentity, error)
	Upsert(ctx context.Context, identity *models.VesselIdentity) error
}

type ShipmentRepo interface {
	List(ctx context.Context) ([]models.Shipment, error)
	ListTracked(ctx context.Context) ([]models.Shipment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
}
