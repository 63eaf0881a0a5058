package jwtbackend

import (
	"crypto/ecdsa"
	"encoding/json"
	"testing"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicKeyFromJWK_RoundTripsECKey(t *testing.T) {
	key := generateECKey(t)
	raw := jwkMapFromPublicKey(t, &key.PublicKey)

	pub, err := PublicKeyFromJWK(raw)
	require.NoError(t, err)

	ecPub, ok := pub.(*ecdsa.PublicKey)
	require.True(t, ok)
	assert.True(t, key.PublicKey.Equal(ecPub))
}

func TestPublicKeyFromJWK_InvalidInput(t *testing.T) {
	_, err := PublicKeyFromJWK(map[string]any{"kty": "not-a-real-kty"})
	assert.Error(t, err)
}

func TestPublicKeyFromX5C_EmptyChainErrors(t *testing.T) {
	_, err := PublicKeyFromX5C(nil)
	assert.Error(t, err)
}

func TestPublicKeyFromJWKKey(t *testing.T) {
	key := generateECKey(t)
	jwkKey, err := jwk.Import(&key.PublicKey)
	require.NoError(t, err)

	pub, err := PublicKeyFromJWKKey(jwkKey)
	require.NoError(t, err)
	ecPub, ok := pub.(*ecdsa.PublicKey)
	require.True(t, ok)
	assert.True(t, key.PublicKey.Equal(ecPub))

	// sanity: jwkMapFromPublicKey used elsewhere produces the same shape.
	data, err := json.Marshal(jwkKey)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kty":"EC"`)
}
