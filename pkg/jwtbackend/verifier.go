package jwtbackend

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eudiwallet/go-sdjwt/pkg/sdjwt"
)

// Verifier implements sdjwt.Verifier over a golang-jwt parser bound to a
// single fixed public key, adapted from the teacher's
// pkg/sdjwtvc.(*Client).verifyJWTSignature (which performs the same
// algorithm/key-type cross-check before trusting a signature).
type Verifier struct {
	publicKey crypto.PublicKey
}

// NewVerifier builds a Verifier that checks a compact JWT's signature
// against publicKey. publicKey's concrete type (ECDSA/RSA/Ed25519) is used
// to reject a mismatched alg header, same as the teacher does.
func NewVerifier(publicKey crypto.PublicKey) *Verifier {
	return &Verifier{publicKey: publicKey}
}

// Verify implements sdjwt.Verifier: it checks the signature and returns the
// decoded claims, without validating exp/nbf/iat (spec.md §7 leaves
// claim-level time validation to the caller/profile layer, not the core
// signature check).
func (v *Verifier) Verify(ctx context.Context, compactJWT string) (map[string]any, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(compactJWT, claims, func(token *jwt.Token) (any, error) {
		if err := checkAlgMatchesKeyType(token.Method, v.publicKey); err != nil {
			return nil, err
		}
		return v.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwtbackend: signature verification failed: %w", err)
	}
	return map[string]any(claims), nil
}

// KeyBindingVerifier implements sdjwt.KeyBindingVerifier: a holder's key
// binding JWT is checked against whatever public key the caller supplies
// per call (the credential's own `cnf.jwk`, decoded from the payload by
// holderPublicKeyFromCnf as a raw map[string]any JWK).
type KeyBindingVerifier struct{}

// NewKeyBindingVerifier returns a stateless KeyBindingVerifier: unlike
// Verifier, it has no fixed key, since every key-binding JWT it checks
// carries a different holder key.
func NewKeyBindingVerifier() *KeyBindingVerifier { return &KeyBindingVerifier{} }

func (kbv *KeyBindingVerifier) VerifyKeyBinding(ctx context.Context, compactJWT string, holderPublicKey any) (map[string]any, error) {
	jwkMap, ok := holderPublicKey.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("jwtbackend: cnf.jwk must decode to a JSON object, got %T", holderPublicKey)
	}
	pub, err := PublicKeyFromJWK(jwkMap)
	if err != nil {
		return nil, fmt.Errorf("jwtbackend: converting cnf.jwk: %w", err)
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(compactJWT, claims, func(token *jwt.Token) (any, error) {
		if err := checkAlgMatchesKeyType(token.Method, pub); err != nil {
			return nil, err
		}
		return pub, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwtbackend: key binding signature verification failed: %w", err)
	}
	if typ, _ := token.Header["typ"].(string); typ != "kb+jwt" {
		return nil, fmt.Errorf("jwtbackend: key binding jwt has typ %q, expected kb+jwt", typ)
	}
	return map[string]any(claims), nil
}

// checkAlgMatchesKeyType rejects an algorithm-confusion attack: the JWT's
// `alg` header must be a signing method compatible with the public key's
// actual type, not merely whatever the attacker wrote in the header.
func checkAlgMatchesKeyType(method jwt.SigningMethod, publicKey crypto.PublicKey) error {
	switch publicKey.(type) {
	case *ecdsa.PublicKey:
		if _, ok := method.(*jwt.SigningMethodECDSA); !ok {
			return fmt.Errorf("unexpected signing method %s for an ECDSA key", method.Alg())
		}
	case *rsa.PublicKey:
		switch method.(type) {
		case *jwt.SigningMethodRSA, *jwt.SigningMethodRSAPSS:
		default:
			return fmt.Errorf("unexpected signing method %s for an RSA key", method.Alg())
		}
	case ed25519.PublicKey:
		if _, ok := method.(*jwt.SigningMethodEd25519); !ok {
			return fmt.Errorf("unexpected signing method %s for an Ed25519 key", method.Alg())
		}
	default:
		return fmt.Errorf("unsupported public key type %T", publicKey)
	}
	return nil
}

var (
	_ sdjwt.Verifier           = (*Verifier)(nil)
	_ sdjwt.KeyBindingVerifier = (*KeyBindingVerifier)(nil)
)
