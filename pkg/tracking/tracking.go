package tracking

import (
	"context"
	"time"

	"github.com/gNutty/vesselradar/pkg/ais"
	"github.com/gNutty/vesselradar/pkg/models"
	"github.com/google/uuid"
)

type Source string

const (
	SourceCache     Source = "cache"
	SourceAPI       Source = "api"
	SourceAPIForced Source = "api-forced"
	SourceMock      Source = "mock"
)

// Policy decides when a recorded position is fresh enough to serve.
type Policy struct {
	// NormalTTL is the maximum age served without a forced refresh.
	NormalTTL time.Duration
	// MinRefreshAge is the age a record must reach before a forced refresh
	// may call the provider.
	MinRefreshAge time.Duration
	// RemoteTimeout bounds one provider call.
	RemoteTimeout time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		NormalTTL:     6 * time.Hour,
		MinRefreshAge: time.Hour,
		RemoteTimeout: 10 * time.Second,
	}
}

// Threshold is the maximum age that is still served from the store.
func (p Policy) Threshold(forceRefresh bool) time.Duration {
	if forceRefresh {
		return p.MinRefreshAge
	}
	return p.NormalTTL
}

// RemoteLookup is the AIS provider.
type RemoteLookup interface {
	LookupByID(ctx context.Context, trackingID string) (*ais.Candidate, error)
	SearchByName(ctx context.Context, name string) ([]ais.Candidate, error)
}

type PositionStore interface {
	FindLatestByShipment(ctx context.Context, shipmentID uuid.UUID) (*models.PositionRecord, error)
	Insert(ctx context.Context, record *models.PositionRecord) error
}

type IdentityCache interface {
	FindByName(ctx context.Context, normalizedName string) (*models.VesselIdentity, error)
	Upsert(ctx context.Context, identity *models.VesselIdentity) error
}

// EventPublisher announces newly recorded positions.
type EventPublisher interface {
	PublishPositionRecorded(ctx context.Context, record *models.PositionRecord) error
}
