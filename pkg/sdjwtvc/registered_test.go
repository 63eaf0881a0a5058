package sdjwtvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eudiwallet/go-sdjwt/pkg/sdjwt"
)

func TestCheckDefinitionRegisteredClaims_RejectsSelectiveIss(t *testing.T) {
	def := sdjwt.NewDefinition()
	def.Set("iss", sdjwt.AlwaysSelectively(sdjwt.Id(sdjwt.ClaimMetadata{})))
	def.Set("given_name", sdjwt.AlwaysSelectively(sdjwt.Id(sdjwt.ClaimMetadata{})))

	err := CheckDefinitionRegisteredClaims(def)
	require.Error(t, err)
	var vcErr *sdjwt.SdJwtVcError
	require.ErrorAs(t, err, &vcErr)
}

func TestCheckDefinitionRegisteredClaims_AllowsPlainRegisteredClaims(t *testing.T) {
	def := sdjwt.NewDefinition()
	def.Set("iss", sdjwt.NeverSelectively(sdjwt.Id(sdjwt.ClaimMetadata{})))
	def.Set("vct", sdjwt.NeverSelectively(sdjwt.Id(sdjwt.ClaimMetadata{})))
	def.Set("given_name", sdjwt.AlwaysSelectively(sdjwt.Id(sdjwt.ClaimMetadata{})))

	assert.NoError(t, CheckDefinitionRegisteredClaims(def))
}

func TestCheckPayloadRegisteredClaims_AcceptsPayloadWithoutRegisteredClaims(t *testing.T) {
	payload := map[string]any{
		"_sd_alg": "sha-256",
		"_sd":     []any{},
	}
	result, err := sdjwt.Recreate(payload, nil, false)
	require.NoError(t, err)

	// A registered claim with no trace at all (never visited) has a nil
	// chain, which must count as "not disclosed" and therefore pass.
	assert.NoError(t, CheckPayloadRegisteredClaims(result))
}

func TestIsRegisteredClaim(t *testing.T) {
	for _, name := range []string{"iss", "vct", "iat", "cnf", "exp", "nbf", "status", "vct#integrity"} {
		assert.True(t, isRegisteredClaim(name), name)
	}
	assert.False(t, isRegisteredClaim("given_name"))
}
