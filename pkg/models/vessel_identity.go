package models

import "time"

// VesselIdentity caches the tracking id resolved for a normalised vessel name.
type VesselIdentity struct {
	VesselName string    `db:"vessel_name" json:"vessel_name"`
	TrackingID string    `db:"tracking_id" json:"tracking_id"`
	IMO        *string   `db:"imo" json:"imo,omitempty"`
	VesselType *string   `db:"vessel_type" json:"vessel_type,omitempty"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

func (VesselIdentity) TableName() string {
	return "vessel_identities"
}
