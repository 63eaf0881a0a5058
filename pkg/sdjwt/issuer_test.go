package sdjwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSdJwtMinimumDigests(t *testing.T) {
	// spec.md §8 scenario 4
	floor := 6
	factory, err := NewFactory(FactoryConfig{FallbackMinimumDigests: &floor})
	require.NoError(t, err)

	spec := NewSpec()
	spec.Set("family_name", AlwaysSelectively(Id[any]("Möbius")))
	spec.Set("given_name", AlwaysSelectively(Id[any]("Karin")))
	spec.Set("birthdate", AlwaysSelectively(Id[any]("1963-08-12")))

	payload, disclosures, err := factory.CreateSdJwt(spec)
	require.NoError(t, err)

	sd, ok := payload["_sd"].([]string)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(sd), floor)
	assert.Len(t, disclosures, 3)
	assert.Equal(t, string(DefaultHashAlgorithm), payload["_sd_alg"])
}

func TestCreateSdJwtNoSdAlgWhenNothingDisclosed(t *testing.T) {
	factory, err := NewFactory(FactoryConfig{})
	require.NoError(t, err)

	spec := NewSpec()
	spec.Set("iss", NeverSelectively(Id[any]("https://issuer.example")))

	payload, disclosures, err := factory.CreateSdJwt(spec)
	require.NoError(t, err)
	assert.Empty(t, disclosures)
	_, hasAlg := payload["_sd_alg"]
	assert.False(t, hasAlg)
	_, hasSd := payload["_sd"]
	assert.False(t, hasSd)
}

func TestCreateSdJwtRejectsReservedClaimNameInSpec(t *testing.T) {
	factory, err := NewFactory(FactoryConfig{})
	require.NoError(t, err)

	spec := NewSpec()
	spec.Set("_sd", NeverSelectively(Id[any]("x")))

	_, _, err = factory.CreateSdJwt(spec)
	assert.Error(t, err)
}

func TestCreateSdJwtArrayElementDisclosure(t *testing.T) {
	factory, err := NewFactory(FactoryConfig{})
	require.NoError(t, err)

	arr := NewDisclosableArray[any]()
	arr.Append(NeverSelectively(Id[any]("DE")))
	arr.Append(AlwaysSelectively(Id[any]("FR")))

	spec := NewSpec()
	spec.Set("nationalities", NeverSelectively(Arr(arr)))

	payload, disclosures, err := factory.CreateSdJwt(spec)
	require.NoError(t, err)
	require.Len(t, disclosures, 1)

	nationalities, ok := payload["nationalities"].([]any)
	require.True(t, ok)
	require.Len(t, nationalities, 2)
	assert.Equal(t, "DE", nationalities[0])

	sentinel, ok := nationalities[1].(map[string]any)
	require.True(t, ok)
	digest, err := disclosures[0].Digest(DefaultHashAlgorithm)
	require.NoError(t, err)
	assert.Equal(t, digest, sentinel["..."])
}

func TestCreateSdJwtRecursiveObjectDisclosure(t *testing.T) {
	factory, err := NewFactory(FactoryConfig{})
	require.NoError(t, err)

	inner := NewSpec()
	inner.Set("locality", AlwaysSelectively(Id[any]("Berlin")))

	spec := NewSpec()
	spec.Set("address", AlwaysSelectively(Obj(inner)))

	payload, disclosures, err := factory.CreateSdJwt(spec)
	require.NoError(t, err)
	require.Len(t, disclosures, 2)

	sd, ok := payload["_sd"].([]string)
	require.True(t, ok)
	assert.Len(t, sd, 1)
}

func TestFallbackMinimumDigestsInvariantAcrossRuns(t *testing.T) {
	// spec.md §8 quantified invariant: |_sd| distribution identical across
	// runs for specs with the same shape and floor.
	floor := 5
	counts := map[int]bool{}

	for i := 0; i < 5; i++ {
		factory, err := NewFactory(FactoryConfig{FallbackMinimumDigests: &floor})
		require.NoError(t, err)

		spec := NewSpec()
		spec.Set("a", AlwaysSelectively(Id[any]("1")))
		spec.Set("b", AlwaysSelectively(Id[any]("2")))

		payload, _, err := factory.CreateSdJwt(spec)
		require.NoError(t, err)
		sd := payload["_sd"].([]string)
		counts[len(sd)] = true
	}

	assert.Len(t, counts, 1, "digest-array length must not vary across runs given the same floor and claim count")
	for n := range counts {
		assert.GreaterOrEqual(t, n, floor)
	}
}
