package sdjwt

import "context"

// Signer is the capability interface the issuance and key-binding paths use
// to produce a JWS signature, keeping the core independent of any concrete
// JWT library (spec.md §9 "Polymorphism over JWT backend"). pkg/jwtbackend
// provides a golang-jwt/jwt/v5-backed implementation.
type Signer interface {
	Sign(ctx context.Context, data []byte) ([]byte, error)
	Algorithm() string
	KeyID() string
}

// Verifier checks an issuer-signed compact JWT's signature and returns its
// claims. It is the verifier-side counterpart of Signer.
type Verifier interface {
	Verify(ctx context.Context, compactJWT string) (map[string]any, error)
}

// KeyBindingVerifier checks a holder's key-binding JWT against a public key
// extracted from the credential's own `cnf.jwk` claim — a different key per
// call, which is why this is a narrower interface than Verifier.
type KeyBindingVerifier interface {
	VerifyKeyBinding(ctx context.Context, compactJWT string, holderPublicKey any) (map[string]any, error)
}
