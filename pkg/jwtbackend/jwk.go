// Package jwtbackend implements pkg/sdjwt's Signer/Verifier/KeyBindingVerifier
// capability interfaces on top of github.com/golang-jwt/jwt/v5, converting
// JWK key material via github.com/lestrrat-go/jwx/v3 and taking an x5c
// chain's key from its leaf certificate (SPEC_FULL.md §9 "Polymorphism over
// JWT backend").
package jwtbackend

import (
	"crypto"
	"encoding/json"
	"fmt"

	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/eudiwallet/go-sdjwt/pkg/trust"
)

// PublicKeyFromJWK converts a decoded JWK (as produced by json.Unmarshal
// into map[string]any, e.g. a `cnf.jwk` confirmation claim or a resolved
// issuer key) into a crypto.PublicKey. This covers EC, RSA, and OKP keys —
// fixing the teacher's jwkToPublicKey, which only handled the EC case.
func PublicKeyFromJWK(raw map[string]any) (crypto.PublicKey, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("jwtbackend: re-marshaling jwk: %w", err)
	}

	key, err := jwk.ParseKey(data)
	if err != nil {
		return nil, fmt.Errorf("jwtbackend: parsing jwk: %w", err)
	}

	var pub crypto.PublicKey
	if err := jwk.Export(key, &pub); err != nil {
		return nil, fmt.Errorf("jwtbackend: exporting jwk to a public key: %w", err)
	}
	return pub, nil
}

// PublicKeyFromX5C returns the leaf certificate's public key out of an x5c
// chain resolved by pkg/sdjwtvc's IssuerKeyResolver.
func PublicKeyFromX5C(chain trust.X5CCertChain) (crypto.PublicKey, error) {
	leaf := chain.GetLeafCert()
	if leaf == nil {
		return nil, fmt.Errorf("jwtbackend: empty x5c chain")
	}
	return leaf.PublicKey, nil
}

// PublicKeyFromJWKKey converts an already-parsed jwx jwk.Key, as returned
// when a caller parses a JWKS document itself, into a crypto.PublicKey.
func PublicKeyFromJWKKey(key jwk.Key) (crypto.PublicKey, error) {
	var pub crypto.PublicKey
	if err := jwk.Export(key, &pub); err != nil {
		return nil, fmt.Errorf("jwtbackend: exporting jwk to a public key: %w", err)
	}
	return pub, nil
}
