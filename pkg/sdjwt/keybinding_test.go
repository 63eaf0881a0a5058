package sdjwt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSigner struct {
	alg string
	kid string
}

func (s *fakeSigner) Sign(_ context.Context, data []byte) ([]byte, error) {
	return append([]byte("sig:"), data...), nil
}
func (s *fakeSigner) Algorithm() string { return s.alg }
func (s *fakeSigner) KeyID() string     { return s.kid }

type fakeKeyBindingVerifier struct {
	claims map[string]any
	err    error
}

func (v *fakeKeyBindingVerifier) VerifyKeyBinding(_ context.Context, _ string, _ any) (map[string]any, error) {
	return v.claims, v.err
}

func TestSDHashIsDeterministicForSamePresentation(t *testing.T) {
	d1, err := NewObjectPropertyDisclosure("salt1", "a", "1")
	require.NoError(t, err)

	cred := &SdJwt{CompactJWT: "jwt", Disclosures: []*Disclosure{d1}}
	h1, err := SDHash(cred, HashSHA256)
	require.NoError(t, err)
	h2, err := SDHash(cred, HashSHA256)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestCreateKeyBindingJWTProducesThreeSegments(t *testing.T) {
	d1, err := NewObjectPropertyDisclosure("salt1", "a", "1")
	require.NoError(t, err)
	cred := &SdJwt{CompactJWT: "jwt", Disclosures: []*Disclosure{d1}}

	signer := &fakeSigner{alg: "ES256", kid: "key-1"}
	kbJWT, err := CreateKeyBindingJWT(context.Background(), signer, cred, HashSHA256, "nonce-1", "verifier.example", 1700000000)
	require.NoError(t, err)

	segments := 0
	for _, c := range kbJWT {
		if c == '.' {
			segments++
		}
	}
	assert.Equal(t, 2, segments)
}

func TestVerifyKeyBindingJWTParsesClaims(t *testing.T) {
	v := &fakeKeyBindingVerifier{claims: map[string]any{
		"nonce":   "abc",
		"aud":     "verifier.example",
		"iat":     float64(1700000000),
		"sd_hash": "deadbeef",
	}}

	claims, err := VerifyKeyBindingJWT(context.Background(), v, "kb.jwt.sig", "holder-key")
	require.NoError(t, err)
	assert.Equal(t, "abc", claims.Nonce)
	assert.Equal(t, "verifier.example", claims.Aud)
	assert.Equal(t, int64(1700000000), claims.Iat)
	assert.Equal(t, "deadbeef", claims.SdHash)
}

func TestVerifyKeyBindingJWTWrapsUnderlyingError(t *testing.T) {
	v := &fakeKeyBindingVerifier{err: assertAnError{}}
	_, err := VerifyKeyBindingJWT(context.Background(), v, "kb.jwt.sig", "holder-key")
	require.Error(t, err)
	var kbErr *KeyBindingError
	assert.ErrorAs(t, err, &kbErr)
	assert.Equal(t, ReasonInvalidKbJwt, kbErr.Reason)
}

type assertAnError struct{}

func (assertAnError) Error() string { return "signature invalid" }
