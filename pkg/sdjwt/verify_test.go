package sdjwt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	payload map[string]any
	err     error
}

func (v *fakeVerifier) Verify(_ context.Context, _ string) (map[string]any, error) {
	return v.payload, v.err
}

func TestVerifySucceedsWithoutKeyBinding(t *testing.T) {
	spec := NewSpec()
	spec.Set("family_name", AlwaysSelectively(Id[any]("Möbius")))
	payload, disclosures := issueFixture(t, spec)

	cred := &SdJwt{CompactJWT: "header.body.sig", Disclosures: disclosures}
	compact := SerializeCompact(cred)

	verifier := &fakeVerifier{payload: payload}
	result, err := Verify(context.Background(), compact, verifier, nil, VerifyOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Möbius", result.Recreated.Claims["family_name"])
	assert.Nil(t, result.KeyBinding)
}

func TestVerifyMustBePresentRejectsMissingKeyBinding(t *testing.T) {
	spec := NewSpec()
	spec.Set("family_name", AlwaysSelectively(Id[any]("Möbius")))
	payload, disclosures := issueFixture(t, spec)

	cred := &SdJwt{CompactJWT: "header.body.sig", Disclosures: disclosures}
	compact := SerializeCompact(cred)

	verifier := &fakeVerifier{payload: payload}
	_, err := Verify(context.Background(), compact, verifier, nil, VerifyOptions{KeyBindingPolicy: KeyBindingMustBePresent})
	require.Error(t, err)
	var kbErr *KeyBindingError
	require.ErrorAs(t, err, &kbErr)
	assert.Equal(t, ReasonMissingKbJwt, kbErr.Reason)
}

func TestVerifyMustNotBePresentRejectsUnexpectedKeyBinding(t *testing.T) {
	spec := NewSpec()
	spec.Set("family_name", AlwaysSelectively(Id[any]("Möbius")))
	payload, disclosures := issueFixture(t, spec)

	cred := &SdJwt{CompactJWT: "header.body.sig", Disclosures: disclosures, KeyBindingJWT: "kb.jwt.sig"}
	compact := SerializeCompact(cred)

	verifier := &fakeVerifier{payload: payload}
	_, err := Verify(context.Background(), compact, verifier, &fakeKeyBindingVerifier{}, VerifyOptions{KeyBindingPolicy: KeyBindingMustNotBePresent})
	require.Error(t, err)
	var kbErr *KeyBindingError
	require.ErrorAs(t, err, &kbErr)
	assert.Equal(t, ReasonUnexpectedKbJwt, kbErr.Reason)
}

func TestVerifyWithValidKeyBinding(t *testing.T) {
	spec := NewSpec()
	spec.Set("family_name", AlwaysSelectively(Id[any]("Möbius")))
	payload, disclosures := issueFixture(t, spec)
	payload["cnf"] = map[string]any{"jwk": map[string]any{"kty": "EC"}}

	cred := &SdJwt{CompactJWT: "header.body.sig", Disclosures: disclosures}
	expectedHash, err := SDHash(cred, hashAlgOf(payload))
	require.NoError(t, err)

	cred.KeyBindingJWT = "kb.jwt.sig"
	compact := SerializeCompact(cred)

	verifier := &fakeVerifier{payload: payload}
	kbv := &fakeKeyBindingVerifier{claims: map[string]any{
		"nonce":   "nonce-1",
		"aud":     "verifier.example",
		"iat":     float64(1700000000),
		"sd_hash": expectedHash,
	}}

	result, err := Verify(context.Background(), compact, verifier, kbv, VerifyOptions{
		KeyBindingPolicy: KeyBindingMustBePresent,
		ExpectedNonce:    "nonce-1",
		ExpectedAudience: "verifier.example",
	})
	require.NoError(t, err)
	require.NotNil(t, result.KeyBinding)
	assert.Equal(t, "nonce-1", result.KeyBinding.Nonce)
}

func TestVerifyRejectsKeyBindingWithoutCnf(t *testing.T) {
	spec := NewSpec()
	spec.Set("family_name", AlwaysSelectively(Id[any]("Möbius")))
	payload, disclosures := issueFixture(t, spec)

	cred := &SdJwt{CompactJWT: "header.body.sig", Disclosures: disclosures, KeyBindingJWT: "kb.jwt.sig"}
	compact := SerializeCompact(cred)

	verifier := &fakeVerifier{payload: payload}
	_, err := Verify(context.Background(), compact, verifier, &fakeKeyBindingVerifier{}, VerifyOptions{})
	require.Error(t, err)
	var kbErr *KeyBindingError
	require.ErrorAs(t, err, &kbErr)
	assert.Equal(t, ReasonMissingCnf, kbErr.Reason)
}

func TestVerifyRejectsMismatchedSdHash(t *testing.T) {
	spec := NewSpec()
	spec.Set("family_name", AlwaysSelectively(Id[any]("Möbius")))
	payload, disclosures := issueFixture(t, spec)
	payload["cnf"] = map[string]any{"jwk": map[string]any{"kty": "EC"}}

	cred := &SdJwt{CompactJWT: "header.body.sig", Disclosures: disclosures, KeyBindingJWT: "kb.jwt.sig"}
	compact := SerializeCompact(cred)

	verifier := &fakeVerifier{payload: payload}
	kbv := &fakeKeyBindingVerifier{claims: map[string]any{
		"nonce":   "nonce-1",
		"aud":     "verifier.example",
		"iat":     float64(1700000000),
		"sd_hash": "wrong-hash",
	}}

	_, err := Verify(context.Background(), compact, verifier, kbv, VerifyOptions{})
	require.Error(t, err)
	var kbErr *KeyBindingError
	require.ErrorAs(t, err, &kbErr)
	assert.Equal(t, ReasonInvalidKbJwt, kbErr.Reason)
}

func TestVerifyPropagatesInvalidJWTError(t *testing.T) {
	verifier := &fakeVerifier{err: assertAnError{}}
	_, err := Verify(context.Background(), "jwt~", verifier, nil, VerifyOptions{})
	require.Error(t, err)
	var invalidErr *InvalidJWTError
	assert.ErrorAs(t, err, &invalidErr)
}
