package jwtbackend

import (
	"context"
	"crypto"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eudiwallet/go-sdjwt/pkg/sdjwt"
)

// Signer implements sdjwt.Signer over a golang-jwt signing method and key,
// adapted from the teacher's pkg/sdjwtvc.Sign/SignWithSigner free functions
// into a reusable value bound once to a key and reused across an issuer's
// credentials.
type Signer struct {
	method jwt.SigningMethod
	key    crypto.PrivateKey
	alg    string
	kid    string
}

// NewSigner builds a Signer for alg (e.g. "ES256", "RS256", "PS256"),
// signing with key and advertising kid in the JWT header.
func NewSigner(alg string, key crypto.PrivateKey, kid string) (*Signer, error) {
	method := jwt.GetSigningMethod(alg)
	if method == nil {
		return nil, fmt.Errorf("jwtbackend: unknown signing algorithm %q", alg)
	}
	return &Signer{method: method, key: key, alg: alg, kid: kid}, nil
}

func (s *Signer) Algorithm() string { return s.alg }
func (s *Signer) KeyID() string     { return s.kid }

// Sign signs data (the JWT signing input: base64url(header) + "." +
// base64url(payload)) and returns the raw signature bytes, per sdjwt.Signer.
func (s *Signer) Sign(ctx context.Context, data []byte) ([]byte, error) {
	sig, err := s.method.Sign(string(data), s.key)
	if err != nil {
		return nil, fmt.Errorf("jwtbackend: signing: %w", err)
	}
	return sig, nil
}

var _ sdjwt.Signer = (*Signer)(nil)
