package sdjwt

import "context"

// KeyBindingPolicy resolves spec.md §9 open question 3: whether a
// key-binding JWT is required, forbidden, or optional for a given
// verification call. The zero value is KeyBindingOptional. pkg/sdjwtvc's
// VerifyCredential applies whatever policy its caller passes in and adds no
// requirement of its own when `cnf` is present.
type KeyBindingPolicy int

const (
	KeyBindingOptional KeyBindingPolicy = iota
	KeyBindingMustBePresent
	KeyBindingMustNotBePresent
)

// VerifyOptions configures one Verify call.
type VerifyOptions struct {
	KeyBindingPolicy KeyBindingPolicy
	ExpectedNonce    string // checked only if non-empty
	ExpectedAudience string // checked only if non-empty
}

// VerifyResult is the output of a successful Verify call.
type VerifyResult struct {
	Recreated   *RecreateResult
	Disclosures []*Disclosure
	KeyBinding  *KeyBindingClaims // nil if no key-binding JWT was presented
}

// Verify implements spec.md §2's verification pipeline: Parser ->
// SignatureVerifier -> Recreator -> [KeyBindingVerifier]. Definition-based
// validation (§4.8) is a separate, optional stage layered on top by
// pkg/validator; Verify only performs the structural/cryptographic checks
// spec.md §7 calls out as short-circuiting.
func Verify(ctx context.Context, compact string, verifier Verifier, kbv KeyBindingVerifier, opts VerifyOptions) (*VerifyResult, error) {
	parsed, err := ParseCompact(compact)
	if err != nil {
		return nil, err
	}

	disclosures := make([]*Disclosure, 0, len(parsed.Disclosures))
	for _, raw := range parsed.Disclosures {
		d, err := ParseDisclosure(raw)
		if err != nil {
			return nil, err
		}
		disclosures = append(disclosures, d)
	}

	payload, err := verifier.Verify(ctx, parsed.JWT)
	if err != nil {
		return nil, &InvalidJWTError{Cause: err}
	}

	recreated, err := Recreate(payload, disclosures, true)
	if err != nil {
		return nil, err
	}

	switch opts.KeyBindingPolicy {
	case KeyBindingMustBePresent:
		if !parsed.HasKeyBinding {
			return nil, &KeyBindingError{Reason: ReasonMissingKbJwt}
		}
	case KeyBindingMustNotBePresent:
		if parsed.HasKeyBinding {
			return nil, &KeyBindingError{Reason: ReasonUnexpectedKbJwt}
		}
	}

	result := &VerifyResult{Recreated: recreated, Disclosures: disclosures}

	if !parsed.HasKeyBinding {
		return result, nil
	}

	holderKey, err := holderPublicKeyFromCnf(payload)
	if err != nil {
		return nil, err
	}

	kbClaims, err := VerifyKeyBindingJWT(ctx, kbv, parsed.KeyBindingJWT, holderKey)
	if err != nil {
		return nil, err
	}

	expectedHash, err := SDHash(&SdJwt{CompactJWT: parsed.JWT, Disclosures: disclosures}, hashAlgOf(payload))
	if err != nil {
		return nil, err
	}
	if kbClaims.SdHash != expectedHash {
		return nil, &KeyBindingError{Reason: ReasonInvalidKbJwt}
	}
	if opts.ExpectedNonce != "" && kbClaims.Nonce != opts.ExpectedNonce {
		return nil, &KeyBindingError{Reason: ReasonInvalidKbJwt}
	}
	if opts.ExpectedAudience != "" && kbClaims.Aud != opts.ExpectedAudience {
		return nil, &KeyBindingError{Reason: ReasonInvalidKbJwt}
	}

	result.KeyBinding = kbClaims
	return result, nil
}

// holderPublicKeyFromCnf extracts the `cnf.jwk` member spec.md §6 reserves
// for key binding. It is returned as the still-decoded map[string]any form;
// pkg/jwtbackend's KeyBindingVerifier is responsible for turning that JWK
// into a usable public key.
func holderPublicKeyFromCnf(payload map[string]any) (any, error) {
	cnfRaw, ok := payload["cnf"]
	if !ok {
		return nil, &KeyBindingError{Reason: ReasonMissingCnf}
	}
	cnf, ok := cnfRaw.(map[string]any)
	if !ok {
		return nil, &KeyBindingError{Reason: ReasonMissingCnf}
	}
	jwk, ok := cnf["jwk"]
	if !ok {
		return nil, &KeyBindingError{Reason: ReasonMissingCnf}
	}
	return jwk, nil
}
