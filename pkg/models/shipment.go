package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type StatusStep string

const (
	StatusBooking  StatusStep = "Booking"
	StatusLoading  StatusStep = "Loading"
	StatusOnVessel StatusStep = "On Vessel"
	StatusArrived  StatusStep = "Arrived"
)

// Shipment is a booking as ingested from the document pipeline. The tracking
// core only reads it.
type Shipment struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	BookingNo         string     `db:"booking_no" json:"booking_no"`
	MainVesselName    string     `db:"main_vessel_name" json:"main_vessel_name"`
	VoyageNo          string     `db:"voyage_no" json:"voyage_no"`
	CarrierName       *string    `db:"carrier_name" json:"carrier_name,omitempty"`
	CurrentStatusStep StatusStep `db:"current_status_step" json:"current_status_step"`
	ShipperName       *string    `db:"shipper_name" json:"shipper_name,omitempty"`
	ConsigneeName     *string    `db:"consignee_name" json:"consignee_name,omitempty"`
	AgentCompany      *string    `db:"agent_company" json:"agent_company,omitempty"`
	PortOfLoading     *string    `db:"port_of_loading" json:"port_of_loading,omitempty"`
	FinalDestination  *string    `db:"final_destination" json:"final_destination,omitempty"`
	PodName           string     `db:"pod_name" json:"pod_name"`
	EtdAtPol          *time.Time `db:"etd_at_pol" json:"etd_at_pol,omitempty"`
	EtaAtPod          *time.Time `db:"eta_at_pod" json:"eta_at_pod,omitempty"`
	TrackingID        *string    `db:"mmsi" json:"mmsi,omitempty"`
	IMO               *string    `db:"imo" json:"imo,omitempty"`
	Origin            *string    `db:"origin" json:"origin,omitempty"`
	PlaceOfReceipt    *string    `db:"place_of_receipt" json:"place_of_receipt,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

func (Shipment) TableName() string {
	return "shipments"
}

// OriginPort is the declared port of origin, falling back through the loading
// port and the place of receipt.
func (s Shipment) OriginPort() string {
	for _, p := range []*string{s.Origin, s.PortOfLoading, s.PlaceOfReceipt} {
		if p != nil && strings.TrimSpace(*p) != "" {
			return strings.TrimSpace(*p)
		}
	}
	return ""
}

// Tracking returns the vessel tracking id or "" when the shipment has none.
func (s Shipment) Tracking() string {
	if s.TrackingID == nil {
		return ""
	}
	return strings.TrimSpace(*s.TrackingID)
}

type ShipmentStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	InTransit int `json:"in_transit"`
	Arrived   int `json:"arrived"`
	Live      int `json:"live"`
	Stale     int `json:"stale"`
	Estimated int `json:"estimated"`
}
