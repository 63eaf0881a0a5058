package sdjwtvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eudiwallet/go-sdjwt/pkg/sdjwt"
)

var mockVCTMFlat = &VCTM{
	VCT: "urn:eudi:pid:1",
	Claims: []Claim{
		{Path: sdjwt.ClaimPath{sdjwt.Key("given_name")}, SD: SDAlways},
		{Path: sdjwt.ClaimPath{sdjwt.Key("family_name")}, SD: SDNever},
		{Path: sdjwt.ClaimPath{sdjwt.Key("age_over_18")}, SD: SDAllowed},
	},
}

var mockVCTMNested = &VCTM{
	VCT: "urn:eudi:pid:1",
	Claims: []Claim{
		{Path: sdjwt.ClaimPath{sdjwt.Key("address"), sdjwt.Key("street")}, SD: SDAlways},
		{Path: sdjwt.ClaimPath{sdjwt.Key("address"), sdjwt.Key("country")}, SD: SDAlways},
	},
}

func TestVCTM_ToDefinition_Flat(t *testing.T) {
	def, err := mockVCTMFlat.ToDefinition()
	require.NoError(t, err)

	givenName, err := sdjwt.FindElement(def, sdjwt.ClaimPath{sdjwt.Key("given_name")})
	require.NoError(t, err)
	assert.True(t, givenName.IsSelective())

	familyName, err := sdjwt.FindElement(def, sdjwt.ClaimPath{sdjwt.Key("family_name")})
	require.NoError(t, err)
	assert.False(t, familyName.IsSelective())

	ageOver18, err := sdjwt.FindElement(def, sdjwt.ClaimPath{sdjwt.Key("age_over_18")})
	require.NoError(t, err)
	assert.True(t, ageOver18.Value.Leaf().DisclosurePolicyIsOptional)
}

func TestVCTM_ToDefinition_NestedCreatesObjectContainer(t *testing.T) {
	def, err := mockVCTMNested.ToDefinition()
	require.NoError(t, err)

	street, err := sdjwt.FindElement(def, sdjwt.ClaimPath{sdjwt.Key("address"), sdjwt.Key("street")})
	require.NoError(t, err)
	assert.True(t, street.IsSelective())

	addressEl, ok := def.Children["address"]
	require.True(t, ok)
	assert.False(t, addressEl.IsSelective(), "intermediate container itself is never selectively disclosed")
	assert.Equal(t, sdjwt.ShapeObject, addressEl.Value.Shape())
}

func TestVCTM_ToDefinition_EmptyPathRejected(t *testing.T) {
	vctm := &VCTM{Claims: []Claim{{Path: sdjwt.ClaimPath{}, SD: SDAlways}}}
	_, err := vctm.ToDefinition()
	assert.Error(t, err)
}

func TestVCTM_ToDefinition_WildcardIntermediateRejected(t *testing.T) {
	vctm := &VCTM{Claims: []Claim{{
		Path: sdjwt.ClaimPath{sdjwt.Wildcard(), sdjwt.Key("street")},
		SD:   SDAlways,
	}}}
	_, err := vctm.ToDefinition()
	assert.Error(t, err)
}
