package sdjwtvc

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eudiwallet/go-sdjwt/pkg/sdjwt"
)

type mapResolver map[string]*VCTM

func (m mapResolver) Resolve(ctx context.Context, vct string) (*VCTM, error) {
	v, ok := m[vct]
	if !ok {
		return nil, fmt.Errorf("no such vct: %s", vct)
	}
	return v, nil
}

func TestResolveEffective_MergesExtendsChain(t *testing.T) {
	resolver := mapResolver{
		"urn:base": {
			VCT: "urn:base",
			Claims: []Claim{
				{Path: sdjwt.ClaimPath{sdjwt.Key("given_name")}, SD: SDAllowed},
			},
		},
		"urn:leaf": {
			VCT:     "urn:leaf",
			Extends: "urn:base",
			Claims: []Claim{
				{Path: sdjwt.ClaimPath{sdjwt.Key("given_name")}, SD: SDAlways},
				{Path: sdjwt.ClaimPath{sdjwt.Key("family_name")}, SD: SDNever},
			},
		},
	}

	merged, err := ResolveEffective(context.Background(), resolver, "urn:leaf")
	require.NoError(t, err)
	require.Len(t, merged.Claims, 2)
	assert.Equal(t, SDAlways, merged.Claims[0].SD)
	assert.Equal(t, SDNever, merged.Claims[1].SD)
}

func TestResolveEffective_RejectsRelaxingAlwaysToAllowed(t *testing.T) {
	resolver := mapResolver{
		"urn:base": {
			VCT:    "urn:base",
			Claims: []Claim{{Path: sdjwt.ClaimPath{sdjwt.Key("given_name")}, SD: SDAlways}},
		},
		"urn:leaf": {
			VCT:     "urn:leaf",
			Extends: "urn:base",
			Claims:  []Claim{{Path: sdjwt.ClaimPath{sdjwt.Key("given_name")}, SD: SDAllowed}},
		},
	}

	_, err := ResolveEffective(context.Background(), resolver, "urn:leaf")
	require.Error(t, err)
	var vcErr *sdjwt.SdJwtVcError
	require.ErrorAs(t, err, &vcErr)
	assert.Equal(t, sdjwt.DetailTypeMetadataValidationFailure, vcErr.Detail)
}

func TestResolveEffective_RejectsMandatoryBecomingOptional(t *testing.T) {
	resolver := mapResolver{
		"urn:base": {
			VCT:    "urn:base",
			Claims: []Claim{{Path: sdjwt.ClaimPath{sdjwt.Key("given_name")}, SD: SDNever}},
		},
		"urn:leaf": {
			VCT:     "urn:leaf",
			Extends: "urn:base",
			Claims:  []Claim{{Path: sdjwt.ClaimPath{sdjwt.Key("given_name")}, SD: SDAllowed}},
		},
	}

	_, err := ResolveEffective(context.Background(), resolver, "urn:leaf")
	assert.Error(t, err)
}

func TestResolveEffective_DetectsCycle(t *testing.T) {
	resolver := mapResolver{
		"urn:a": {VCT: "urn:a", Extends: "urn:b"},
		"urn:b": {VCT: "urn:b", Extends: "urn:a"},
	}

	_, err := ResolveEffective(context.Background(), resolver, "urn:a")
	require.Error(t, err)
	var vcErr *sdjwt.SdJwtVcError
	require.ErrorAs(t, err, &vcErr)
	assert.Equal(t, sdjwt.DetailTypeMetadataResolutionFailure, vcErr.Detail)
}

func TestTypeMetadataCache_ServesFromCacheOnSecondCall(t *testing.T) {
	calls := 0
	counting := countingResolver{inner: mapResolver{"urn:x": {VCT: "urn:x"}}, calls: &calls}

	cache := NewTypeMetadataCache(counting, TypeMetadataCacheConfig{})
	defer cache.Stop()

	_, err := cache.Resolve(context.Background(), "urn:x")
	require.NoError(t, err)
	_, err = cache.Resolve(context.Background(), "urn:x")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

type countingResolver struct {
	inner TypeMetadataResolver
	calls *int
}

func (c countingResolver) Resolve(ctx context.Context, vct string) (*VCTM, error) {
	*c.calls++
	return c.inner.Resolve(ctx, vct)
}
