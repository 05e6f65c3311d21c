package models

import "time"

type Liveness string

const (
	LivenessLive      Liveness = "LIVE"
	LivenessStale     Liveness = "STALE"
	LivenessEstimated Liveness = "ESTIMATED"
)

type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// ReconciledView is a shipment joined with its best known position. It is
// computed on read and never stored.
type ReconciledView struct {
	Shipment   Shipment        `json:"shipment"`
	Position   *PositionRecord `json:"position,omitempty"`
	Coordinate Coordinate      `json:"coordinate"`
	Liveness   Liveness        `json:"liveness"`
	// AsOf is the capture time of the matched position. Zero for estimates.
	AsOf time.Time `json:"as_of,omitempty"`
}
