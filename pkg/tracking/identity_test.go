package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/gNutty/vesselradar/pkg/ais"
	"github.com/gNutty/vesselradar/pkg/lookup"
	"github.com/gNutty/vesselradar/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIdentity_EmptyName(t *testing.T) {
	r := NewIdentityResolver(newFakeIdentityCache(), &fakeRemote{}, lookup.Default(), testLogger())

	_, err := r.ResolveIdentity(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestResolveIdentity_StaticOverride(t *testing.T) {
	cache := newFakeIdentityCache()
	remote := &fakeRemote{}
	r := NewIdentityResolver(cache, remote, lookup.Default(), testLogger())

	result, err := r.ResolveIdentity(context.Background(), " msc oscar ")
	require.NoError(t, err)
	assert.Equal(t, "355906000", result.TrackingID)
	assert.Equal(t, "MSC OSCAR", result.VesselName)
	assert.True(t, result.FromCache)
	assert.Equal(t, TierStatic, result.Tier)
	assert.Zero(t, remote.searchCalls)
	assert.Zero(t, cache.upserts)
}

func TestResolveIdentity_CacheHit(t *testing.T) {
	cache := newFakeIdentityCache()
	cache.entries["ONE APUS"] = &models.VesselIdentity{VesselName: "ONE APUS", TrackingID: "431000000", IMO: sptr("9806079")}
	remote := &fakeRemote{}
	r := NewIdentityResolver(cache, remote, lookup.Default(), testLogger())

	result, err := r.ResolveIdentity(context.Background(), "One Apus")
	require.NoError(t, err)
	assert.Equal(t, "431000000", result.TrackingID)
	assert.Equal(t, "9806079", result.IMO)
	assert.True(t, result.FromCache)
	assert.Equal(t, TierCache, result.Tier)
	assert.Zero(t, remote.searchCalls)
}

func TestResolveIdentity_RemoteThenCached(t *testing.T) {
	cache := newFakeIdentityCache()
	remote := &fakeRemote{byName: map[string][]ais.Candidate{
		"WAN HAI 301": {
			{TrackingID: "111", VesselType: "Tug"},
			{TrackingID: "222", IMO: "9000001", VesselType: "Container Ship"},
		},
	}}
	r := NewIdentityResolver(cache, remote, lookup.Default(), testLogger())

	first, err := r.ResolveIdentity(context.Background(), "Wan Hai 301")
	require.NoError(t, err)
	assert.Equal(t, "222", first.TrackingID)
	assert.False(t, first.FromCache)
	assert.Equal(t, TierRemote, first.Tier)

	second, err := r.ResolveIdentity(context.Background(), "WAN HAI 301")
	require.NoError(t, err)
	assert.Equal(t, "222", second.TrackingID)
	assert.True(t, second.FromCache)

	assert.Equal(t, 1, remote.searchCalls)
	assert.Equal(t, 1, cache.upserts)
}

func TestResolveIdentity_UpsertFailureIsNotFatal(t *testing.T) {
	cache := newFakeIdentityCache()
	cache.upsertErr = errBoom
	remote := &fakeRemote{byName: map[string][]ais.Candidate{"KOTA LUMBA": {{TrackingID: "563000000"}}}}
	r := NewIdentityResolver(cache, remote, lookup.Default(), testLogger())

	result, err := r.ResolveIdentity(context.Background(), "KOTA LUMBA")
	require.NoError(t, err)
	assert.Equal(t, "563000000", result.TrackingID)
}

func TestResolveIdentity_CacheReadErrorFallsThrough(t *testing.T) {
	cache := newFakeIdentityCache()
	cache.findErr = errBoom
	remote := &fakeRemote{byName: map[string][]ais.Candidate{"KOTA LUMBA": {{TrackingID: "563000000"}}}}
	r := NewIdentityResolver(cache, remote, lookup.Default(), testLogger())

	result, err := r.ResolveIdentity(context.Background(), "KOTA LUMBA")
	require.NoError(t, err)
	assert.Equal(t, TierRemote, result.Tier)
}

func TestResolveIdentity_MissingCredentials(t *testing.T) {
	remote := &fakeRemote{err: ais.ErrMissingCredentials}
	r := NewIdentityResolver(newFakeIdentityCache(), remote, lookup.Default(), testLogger())

	_, err := r.ResolveIdentity(context.Background(), "UNKNOWN VESSEL")
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestResolveIdentity_NoRemoteConfigured(t *testing.T) {
	r := NewIdentityResolver(newFakeIdentityCache(), nil, lookup.Default(), testLogger())

	_, err := r.ResolveIdentity(context.Background(), "UNKNOWN VESSEL")
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestResolveIdentity_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		remote *fakeRemote
	}{
		{name: "empty result", remote: &fakeRemote{}},
		{name: "candidate without id", remote: &fakeRemote{byName: map[string][]ais.Candidate{"GHOST": {{Name: "GHOST"}}}}},
		{name: "transport failure", remote: &fakeRemote{err: errBoom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newFakeIdentityCache()
			r := NewIdentityResolver(cache, tt.remote, lookup.Default(), testLogger())

			_, err := r.ResolveIdentity(context.Background(), "GHOST")
			require.ErrorIs(t, err, ErrNotFound)
			assert.Zero(t, cache.upserts)
		})
	}
}

func TestSelectCandidate(t *testing.T) {
	cargo := []string{"container", "cargo", "bulk", "tanker", "ro-ro", "reefer"}

	tests := []struct {
		name       string
		candidates []ais.Candidate
		want       string
		ok         bool
	}{
		{name: "empty", ok: false},
		{
			name:       "first when nothing matches",
			candidates: []ais.Candidate{{TrackingID: "1", VesselType: "Tug"}, {TrackingID: "2", VesselType: "Pilot"}},
			want:       "1", ok: true,
		},
		{
			name:       "allow-list order beats candidate order",
			candidates: []ais.Candidate{{TrackingID: "1", VesselType: "Oil Tanker"}, {TrackingID: "2", VesselType: "CONTAINER SHIP"}},
			want:       "2", ok: true,
		},
		{
			name:       "first matching candidate within an entry",
			candidates: []ais.Candidate{{TrackingID: "1", VesselType: "General Cargo"}, {TrackingID: "2", VesselType: "Cargo"}},
			want:       "1", ok: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectCandidate(tt.candidates, cargo)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got.TrackingID)
		})
	}
}

func TestResolveIdentity_SearchTimeout(t *testing.T) {
	cache := newFakeIdentityCache()
	remote := &stalledRemote{}
	r := NewIdentityResolver(cache, remote, lookup.Default(), testLogger(), WithSearchTimeout(20*time.Millisecond))

	started := time.Now()
	_, err := r.ResolveIdentity(context.Background(), "Unknown Vessel")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Less(t, time.Since(started), 2*time.Second)
	assert.Equal(t, int32(1), remote.calls.Load())
	assert.Zero(t, cache.upserts)
}
