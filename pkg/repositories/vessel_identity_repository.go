package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/gNutty/vesselradar/pkg/database"
	"github.com/gNutty/vesselradar/pkg/models"
	"github.com/gNutty/vesselradar/pkg/tracing"
)

const vesselIdentitiesTable = "vessel_identities"

var vesselIdentityStruct = database.NewStruct(new(models.VesselIdentity))

type VesselIdentityRepository struct {
	*Repository
	now func() time.Time
}

func NewVesselIdentityRepository(db database.DB, logger ectologger.Logger) *VesselIdentityRepository {
	return &VesselIdentityRepository{
		Repository: NewRepository(db, logger),
		now:        time.Now,
	}
}

func (r *VesselIdentityRepository) FindByName(ctx context.Context, normalizedName string) (*models.VesselIdentity, error) {
	ctx, span := tracing.StartSpan(ctx, "VesselIdentityRepository.FindByName")
	defer span.End()

	sb := vesselIdentityStruct.SelectFrom(vesselIdentitiesTable)
	sb.Where(sb.Equal("vessel_name", normalizedName))

	query, args := sb.Build()
	var identity models.VesselIdentity
	err := r.DB().GetContext(ctx, &identity, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("vessel_name", normalizedName).Error("failed to get vessel identity")
		return nil, Internal("failed to get vessel identity")
	}
	return &identity, nil
}

// Upsert stores the identity keyed by its normalised vessel name.
func (r *VesselIdentityRepository) Upsert(ctx context.Context, identity *models.VesselIdentity) error {
	ctx, span := tracing.StartSpan(ctx, "VesselIdentityRepository.Upsert")
	defer span.End()

	if identity.VesselName == "" || identity.TrackingID == "" {
		return BadRequest("vessel identity needs a name and a tracking id")
	}

	identity.UpdatedAt = r.now().UTC()

	ib := vesselIdentityStruct.InsertInto(vesselIdentitiesTable, identity)
	ub := ib.OnConflict("vessel_name")
	ub.Set(
		ub.Assign("tracking_id", database.Excluded("tracking_id")),
		ub.Assign("imo", database.Excluded("imo")),
		ub.Assign("vessel_type", database.Excluded("vessel_type")),
		ub.Assign("updated_at", database.Excluded("updated_at")),
	)

	query, args := ib.Build()
	if _, err := r.DB().ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("vessel_name", identity.VesselName).Error("failed to upsert vessel identity")
		return Internal("failed to upsert vessel identity")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"vessel_name": identity.VesselName,
		"tracking_id": identity.TrackingID,
	}).Infof("Upserted %s for %s", vesselIdentitiesTable, identity.VesselName)
	return nil
}
