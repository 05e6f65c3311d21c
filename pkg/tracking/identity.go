package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/gNutty/vesselradar/pkg/ais"
	"github.com/gNutty/vesselradar/pkg/lookup"
	"github.com/gNutty/vesselradar/pkg/metrics"
	"github.com/gNutty/vesselradar/pkg/models"
	"github.com/gNutty/vesselradar/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TierStatic = "static"
	TierCache  = "cache"
	TierRemote = "remote"
)

type IdentityResult struct {
	VesselName string `json:"vesselName"`
	TrackingID string `json:"trackingId"`
	IMO        string `json:"imo,omitempty"`
	VesselType string `json:"vesselType,omitempty"`
	FromCache  bool   `json:"fromCache"`
	Tier       string `json:"tier"`
}

// identityStrategy returns nil, nil to pass the name on to the next tier. An
// error ends the resolution.
type identityStrategy struct {
	name    string
	resolve func(ctx context.Context, normalizedName string) (*IdentityResult, error)
}

// IdentityResolver maps a vessel name to its tracking id through the static
// override table, the identity cache and finally a provider name search.
type IdentityResolver struct {
	cache      IdentityCache
	remote     RemoteLookup
	tables     *lookup.Tables
	logger     ectologger.Logger
	timeout    time.Duration
	strategies []identityStrategy
}

type IdentityOption func(*IdentityResolver)

// WithSearchTimeout bounds the provider name search.
func WithSearchTimeout(timeout time.Duration) IdentityOption {
	return func(r *IdentityResolver) { r.timeout = timeout }
}

func NewIdentityResolver(cache IdentityCache, remote RemoteLookup, tables *lookup.Tables, logger ectologger.Logger, opts ...IdentityOption) *IdentityResolver {
	r := &IdentityResolver{
		cache:  cache,
		remote: remote,
		tables: tables,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.strategies = []identityStrategy{
		{name: TierStatic, resolve: r.fromStatic},
		{name: TierCache, resolve: r.fromCache},
		{name: TierRemote, resolve: r.fromRemote},
	}
	return r
}

func (r *IdentityResolver) ResolveIdentity(ctx context.Context, vesselName string) (*IdentityResult, error) {
	ctx, span := tracing.StartSpan(ctx, "IdentityResolver.ResolveIdentity")
	defer span.End()

	name := lookup.NormalizeName(vesselName)
	if name == "" {
		return nil, fmt.Errorf("%w: vessel name is required", ErrInvalidArgument)
	}
	span.SetAttributes(attribute.String("vessel.name", name))

	for _, strategy := range r.strategies {
		result, err := strategy.resolve(ctx, name)
		if err != nil {
			metrics.RecordIdentityLookup("error")
			return nil, err
		}
		if result != nil {
			metrics.RecordIdentityLookup(strategy.name)
			return result, nil
		}
	}

	metrics.RecordIdentityLookup("not_found")
	return nil, fmt.Errorf("%w: no tracking id for vessel %s", ErrNotFound, name)
}

func (r *IdentityResolver) fromStatic(_ context.Context, name string) (*IdentityResult, error) {
	if r.tables == nil {
		return nil, nil
	}
	id, ok := r.tables.IdentityOverride(name)
	if !ok {
		return nil, nil
	}
	return &IdentityResult{VesselName: name, TrackingID: id, FromCache: true, Tier: TierStatic}, nil
}

func (r *IdentityResolver) fromCache(ctx context.Context, name string) (*IdentityResult, error) {
	if r.cache == nil {
		return nil, nil
	}
	identity, err := r.cache.FindByName(ctx, name)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("vessel_name", name).Warn("Failed to read identity cache, treating as a miss")
		return nil, nil
	}
	if identity == nil || identity.TrackingID == "" {
		return nil, nil
	}
	return &IdentityResult{
		VesselName: name,
		TrackingID: identity.TrackingID,
		IMO:        deref(identity.IMO),
		VesselType: deref(identity.VesselType),
		FromCache:  true,
		Tier:       TierCache,
	}, nil
}

func (r *IdentityResolver) fromRemote(ctx context.Context, name string) (*IdentityResult, error) {
	if r.remote == nil {
		return nil, fmt.Errorf("%w: no AIS provider configured", ErrConfiguration)
	}

	searchCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	candidates, err := r.remote.SearchByName(searchCtx, name)
	if errors.Is(err, ais.ErrMissingCredentials) {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("vessel_name", name).Warn("AIS name search failed")
		return nil, fmt.Errorf("%w: vessel %s could not be searched", ErrNotFound, name)
	}

	var cargoTypes []string
	if r.tables != nil {
		cargoTypes = r.tables.CargoTypes()
	}
	chosen, ok := SelectCandidate(candidates, cargoTypes)
	if !ok || chosen.TrackingID == "" {
		return nil, fmt.Errorf("%w: no tracking id for vessel %s", ErrNotFound, name)
	}

	identity := &models.VesselIdentity{
		VesselName: name,
		TrackingID: chosen.TrackingID,
		IMO:        optional(chosen.IMO),
		VesselType: optional(chosen.VesselType),
	}
	if r.cache != nil {
		if err := r.cache.Upsert(ctx, identity); err != nil {
			metrics.RecordPersistenceFailure("identities")
			r.logger.WithContext(ctx).WithError(err).WithField("vessel_name", name).Error("Failed to cache vessel identity")
		}
	}

	return &IdentityResult{
		VesselName: name,
		TrackingID: chosen.TrackingID,
		IMO:        chosen.IMO,
		VesselType: chosen.VesselType,
		FromCache:  false,
		Tier:       TierRemote,
	}, nil
}

// SelectCandidate prefers cargo carriers: for each type in cargoTypes, in
// order, the first candidate whose vessel type contains it wins. Without a
// match the first candidate is chosen.
func SelectCandidate(candidates []ais.Candidate, cargoTypes []string) (ais.Candidate, bool) {
	if len(candidates) == 0 {
		return ais.Candidate{}, false
	}
	for _, cargoType := range cargoTypes {
		cargoType = strings.ToLower(cargoType)
		if cargoType == "" {
			continue
		}
		for _, c := range candidates {
			if strings.Contains(strings.ToLower(c.VesselType), cargoType) {
				return c, true
			}
		}
	}
	return candidates[0], true
}
