package handlers

import "github.com/labstack/echo/v4"

type Handlers struct {
	Vessels   *VesselHandler
	Tracking  *TrackingHandler
	Shipments *ShipmentHandler
}

// Register mounts the API routes on g, normally /api/v1.
func (h Handlers) Register(g *echo.Group) {
	vessels := g.Group("/vessels")
	vessels.GET("/location", h.Vessels.Location)
	vessels.GET("/identity", h.Vessels.Identity)

	g.POST("/tracking/sync", h.Tracking.Sync)
	g.GET("/tracking/sync", h.Tracking.Sync)

	g.GET("/dashboard", h.Shipments.Dashboard)
	g.GET("/shipments", h.Shipments.List)
	g.GET("/shipments/:id/positions", h.Shipments.Positions)
}
