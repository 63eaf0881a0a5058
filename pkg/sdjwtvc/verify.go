package sdjwtvc

import (
	"context"
	"fmt"

	"github.com/eudiwallet/go-sdjwt/pkg/jwtbackend"
	"github.com/eudiwallet/go-sdjwt/pkg/sdjwt"
)

// VerifyConfig wires pkg/sdjwt's algorithm-agnostic Verify pipeline to the
// SD-JWT-VC profile: issuer key-source resolution (§4.11) plus registered
// non-disclosable claim enforcement (§4.12). Definition-based VCTM
// validation (§4.8/§4.10) is a separate stage layered by pkg/validator on
// top of the result this returns, same as pkg/sdjwt keeps Verify and the
// definition validator decoupled.
type VerifyConfig struct {
	IssuerKeyResolver *IssuerKeyResolver
	Options           sdjwt.VerifyOptions
}

// VerifyResult extends sdjwt.VerifyResult with the trust decision (if any)
// made while resolving the issuer's key.
type VerifyResult struct {
	*sdjwt.VerifyResult
	TrustDecision *IssuerTrustDecision
}

// IssuerTrustDecision re-exports the subset of trust.TrustDecision the VC
// caller needs without requiring it to import pkg/trust itself for the
// common case of just checking Trusted/Reason.
type IssuerTrustDecision struct {
	Trusted bool
	Reason  string
}

// VerifyCredential runs the full SD-JWT-VC verification pipeline over a
// compact presentation: resolve the issuer's key (x5c/did/metadata),
// cryptographically verify per pkg/sdjwt.Verify, then check that every
// registered claim (spec.md §3) was disclosed in the recreated payload
// plain rather than via a disclosure.
func VerifyCredential(ctx context.Context, compact string, config VerifyConfig) (*VerifyResult, error) {
	parsed, err := sdjwt.ParseCompact(compact)
	if err != nil {
		return nil, err
	}

	header, err := DecodeUnverifiedJWTHeader(parsed.JWT)
	if err != nil {
		return nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: err}
	}
	claims, err := DecodeUnverifiedJWTClaims(parsed.JWT)
	if err != nil {
		return nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: err}
	}

	keyMaterial, trustDecision, err := config.IssuerKeyResolver.Resolve(ctx, header, claims)
	if err != nil {
		return nil, err
	}

	verifier, err := verifierFromKeyMaterial(keyMaterial)
	if err != nil {
		return nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: err}
	}

	result, err := sdjwt.Verify(ctx, compact, verifier, jwtbackend.NewKeyBindingVerifier(), config.Options)
	if err != nil {
		return nil, err
	}

	if err := CheckPayloadRegisteredClaims(result.Recreated); err != nil {
		return nil, err
	}

	out := &VerifyResult{VerifyResult: result}
	if trustDecision != nil {
		out.TrustDecision = &IssuerTrustDecision{Trusted: trustDecision.Trusted, Reason: trustDecision.Reason}
	}
	return out, nil
}

func verifierFromKeyMaterial(km *IssuerKeyMaterial) (sdjwt.Verifier, error) {
	switch {
	case km.X5CChain != nil:
		pub, err := jwtbackend.PublicKeyFromX5C(km.X5CChain)
		if err != nil {
			return nil, err
		}
		return jwtbackend.NewVerifier(pub), nil
	case km.JWK != nil:
		pub, err := jwtbackend.PublicKeyFromJWK(km.JWK)
		if err != nil {
			return nil, err
		}
		return jwtbackend.NewVerifier(pub), nil
	default:
		return nil, fmt.Errorf("sdjwtvc: issuer key resolution produced neither a JWK nor an x5c chain")
	}
}
