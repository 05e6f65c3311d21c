// Package reconcile joins shipments with their recorded positions for the
// dashboard. Views are computed on every read and never stored.
package reconcile

import (
	"time"

	"github.com/Gobusters/ectolinq"
	"github.com/gNutty/vesselradar/pkg/models"
)

// LiveWindow is how long a matched position counts as live.
const LiveWindow = 6 * time.Hour

// PortLookup resolves an origin port name to a coordinate. lookup.Tables
// satisfies it.
type PortLookup interface {
	PortCoordinate(port string) models.Coordinate
}

var inTransit = []models.StatusStep{models.StatusLoading, models.StatusOnVessel}

// matcher reports whether a position belongs to a shipment.
type matcher func(s models.Shipment, p *models.PositionRecord) bool

// Matchers run in order; the first one that finds a position wins.
var matchers = []matcher{
	func(s models.Shipment, p *models.PositionRecord) bool {
		return p.ShipmentID != nil && *p.ShipmentID == s.ID
	},
	func(s models.Shipment, p *models.PositionRecord) bool {
		return s.BookingNo != "" && p.Shipment != nil && p.Shipment.BookingNo == s.BookingNo
	},
	func(s models.Shipment, p *models.PositionRecord) bool {
		id := s.Tracking()
		return id != "" && p.TrackingID != nil && *p.TrackingID == id
	},
}

// Build produces one view per shipment, in shipment order. positions should be
// ordered latest first so the first match is the most recent one.
func Build(shipments []models.Shipment, positions []*models.PositionRecord, now time.Time, ports PortLookup) []models.ReconciledView {
	return ectolinq.Map(shipments, func(s models.Shipment) models.ReconciledView {
		return reconcileOne(s, positions, now, ports)
	})
}

func reconcileOne(s models.Shipment, positions []*models.PositionRecord, now time.Time, ports PortLookup) models.ReconciledView {
	if p := findPosition(s, positions); p != nil {
		liveness := models.LivenessStale
		if p.Age(now) < LiveWindow {
			liveness = models.LivenessLive
		}
		return models.ReconciledView{
			Shipment:   s,
			Position:   p,
			Coordinate: models.Coordinate{Latitude: p.Latitude, Longitude: p.Longitude},
			Liveness:   liveness,
			AsOf:       p.LastSync,
		}
	}

	return models.ReconciledView{
		Shipment:   s,
		Coordinate: ports.PortCoordinate(s.OriginPort()),
		Liveness:   models.LivenessEstimated,
	}
}

func findPosition(s models.Shipment, positions []*models.PositionRecord) *models.PositionRecord {
	for _, match := range matchers {
		for _, p := range positions {
			if p != nil && match(s, p) {
				return p
			}
		}
	}
	return nil
}

// Summarize counts shipments by status step and views by liveness.
func Summarize(shipments []models.Shipment, views []models.ReconciledView) models.ShipmentStats {
	stats := models.ShipmentStats{Total: len(shipments)}
	for _, s := range shipments {
		switch {
		case s.CurrentStatusStep == models.StatusBooking:
			stats.Pending++
		case s.CurrentStatusStep == models.StatusArrived:
			stats.Arrived++
		case ectolinq.Contains(inTransit, s.CurrentStatusStep):
			stats.InTransit++
		}
	}
	for _, v := range views {
		switch v.Liveness {
		case models.LivenessLive:
			stats.Live++
		case models.LivenessStale:
			stats.Stale++
		case models.LivenessEstimated:
			stats.Estimated++
		}
	}
	return stats
}
