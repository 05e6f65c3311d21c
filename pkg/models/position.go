package models

import (
	"time"

	"github.com/gNutty/vesselradar/pkg/database"
	"github.com/google/uuid"
)

// PositionRecord is one captured vessel position. Records are append-only.
type PositionRecord struct {
	ID           uuid.UUID                      `db:"id" json:"id"`
	ShipmentID   *uuid.UUID                     `db:"shipment_id" json:"shipment_id,omitempty"`
	TrackingID   *string                        `db:"tracking_id" json:"tracking_id,omitempty"`
	VesselName   *string                        `db:"vessel_name" json:"vessel_name,omitempty"`
	IMO          *string                        `db:"imo" json:"imo,omitempty"`
	Latitude     float64                        `db:"latitude" json:"latitude"`
	Longitude    float64                        `db:"longitude" json:"longitude"`
	SpeedKnots   *float64                       `db:"speed_knots" json:"speed_knots,omitempty"`
	Course       *float64                       `db:"course" json:"course,omitempty"`
	Heading      *float64                       `db:"heading" json:"heading,omitempty"`
	Flag         *string                        `db:"flag" json:"flag,omitempty"`
	CallSign     *string                        `db:"call_sign" json:"call_sign,omitempty"`
	VesselType   *string                        `db:"vessel_type" json:"vessel_type,omitempty"`
	Status       *string                        `db:"status" json:"status,omitempty"`
	PreviousPort *string                        `db:"previous_port" json:"previous_port,omitempty"`
	CurrentPort  *string                        `db:"current_port" json:"current_port,omitempty"`
	NextPort     *string                        `db:"next_port" json:"next_port,omitempty"`
	APIUpdatedAt *time.Time                     `db:"api_updated_at" json:"api_updated_at,omitempty"`
	RawPayload   database.JSONB[map[string]any] `db:"raw_payload" json:"raw_payload"`
	LastSync     time.Time                      `db:"last_sync" json:"last_sync"`
	CreatedAt    time.Time                      `db:"created_at" json:"created_at"`

	// Shipment is set when the record is listed together with its shipment.
	Shipment *ShipmentRef `db:"-" json:"shipment,omitempty"`
}

func (PositionRecord) TableName() string {
	return "position_records"
}

type ShipmentRef struct {
	BookingNo      string `json:"booking_no"`
	MainVesselName string `json:"main_vessel_name"`
}

// Age is the time elapsed since the position was captured.
func (p PositionRecord) Age(now time.Time) time.Duration {
	return now.Sub(p.LastSync)
}

// HasOwner reports whether the record can be correlated with a shipment or vessel.
func (p PositionRecord) HasOwner() bool {
	return p.ShipmentID != nil ||
		(p.TrackingID != nil && *p.TrackingID != "") ||
		(p.VesselName != nil && *p.VesselName != "")
}
