package handlers

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectologger"
	"github.com/gNutty/vesselradar/pkg/tracing"
	"github.com/gNutty/vesselradar/pkg/tracking"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type LocationResolver interface {
	ResolveLocation(ctx context.Context, req tracking.LocationRequest) (*tracking.LocationResult, error)
}

type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, vesselName string) (*tracking.IdentityResult, error)
}

type VesselHandler struct {
	locations  LocationResolver
	identities IdentityResolver
	logger     ectologger.Logger
}

func NewVesselHandler(locations LocationResolver, identities IdentityResolver, logger ectologger.Logger) *VesselHandler {
	return &VesselHandler{
		locations:  locations,
		identities: identities,
		logger:     logger,
	}
}

// LocationQuery accepts mmsi as an alias of trackingId.
type LocationQuery struct {
	TrackingID   string `query:"trackingId" validate:"required_without=MMSI"`
	MMSI         string `query:"mmsi"`
	ShipmentID   string `query:"shipmentId" validate:"omitempty,uuid"`
	ForceRefresh bool   `query:"forceRefresh"`
}

// Location resolves the current position of a vessel
// GET /api/v1/vessels/location
func (h *VesselHandler) Location(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "vessel_handler.Location")
	defer span.End()

	q, err := bindQuery[LocationQuery](c)
	if err != nil {
		return err
	}

	req := tracking.LocationRequest{
		TrackingID:   q.TrackingID,
		ForceRefresh: q.ForceRefresh,
	}
	if req.TrackingID == "" {
		req.TrackingID = q.MMSI
	}
	if q.ShipmentID != "" {
		id := uuid.MustParse(q.ShipmentID)
		req.ShipmentID = &id
	}

	result, err := h.locations.ResolveLocation(ctx, req)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).WithField("tracking_id", req.TrackingID).Debug("Location lookup failed")
		return domainError(err)
	}

	return c.JSON(http.StatusOK, result)
}

type IdentityQuery struct {
	Name string `query:"name" validate:"required"`
}

// Identity resolves the tracking id of a vessel by name
// GET /api/v1/vessels/identity
func (h *VesselHandler) Identity(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "vessel_handler.Identity")
	defer span.End()

	q, err := bindQuery[IdentityQuery](c)
	if err != nil {
		return err
	}

	result, err := h.identities.ResolveIdentity(ctx, q.Name)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).WithField("vessel_name", q.Name).Debug("Identity lookup failed")
		return domainError(err)
	}

	return c.JSON(http.StatusOK, result)
}
