package sdjwt

import (
	"context"
	"encoding/base64"
	"encoding/json"
)

// KeyBindingClaims are the registered claims of a key-binding JWT
// (spec.md §4.6/§6): `typ=kb+jwt`, `nonce`, `aud`, `iat`, `sd_hash`.
type KeyBindingClaims struct {
	Nonce  string `json:"nonce"`
	Aud    string `json:"aud"`
	Iat    int64  `json:"iat"`
	SdHash string `json:"sd_hash"`
}

// SDHash computes `sd_hash` for a presentation: the digest, under alg, of
// the compact presentation string up to and including the final `~` before
// where a key-binding JWT would go (spec.md §4.6). Any KeyBindingJWT on
// cred is ignored: the prefix is serialized from cred's JWT and disclosures
// alone, so it always ends in `~`.
func SDHash(cred *SdJwt, alg HashAlgorithm) (string, error) {
	presentationPrefix := SerializeCompact(&SdJwt{
		CompactJWT:  cred.CompactJWT,
		Disclosures: cred.Disclosures,
	})
	return alg.Digest([]byte(presentationPrefix))
}

// CreateKeyBindingJWT signs a key-binding JWT over cred using signer,
// committing to nonce, aud, and the current sd_hash.
func CreateKeyBindingJWT(ctx context.Context, signer Signer, cred *SdJwt, alg HashAlgorithm, nonce, aud string, iat int64) (string, error) {
	sdHash, err := SDHash(cred, alg)
	if err != nil {
		return "", err
	}

	header := map[string]any{
		"typ": "kb+jwt",
		"alg": signer.Algorithm(),
	}
	if kid := signer.KeyID(); kid != "" {
		header["kid"] = kid
	}

	payload := KeyBindingClaims{Nonce: nonce, Aud: aud, Iat: iat, SdHash: sdHash}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", err
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." +
		base64.RawURLEncoding.EncodeToString(payloadJSON)

	sig, err := signer.Sign(ctx, []byte(signingInput))
	if err != nil {
		return "", err
	}

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// VerifyKeyBindingJWT verifies a key-binding JWT through kbv against the
// holder's public key and returns its claims. Header checks such as `typ`
// are left to kbv (pkg/jwtbackend's KeyBindingVerifier does them). It does
// not check nonce/aud/sd_hash — the caller (verify.go) does so after parsing.
func VerifyKeyBindingJWT(ctx context.Context, kbv KeyBindingVerifier, kbJWT string, holderPublicKey any) (*KeyBindingClaims, error) {
	raw, err := kbv.VerifyKeyBinding(ctx, kbJWT, holderPublicKey)
	if err != nil {
		return nil, &KeyBindingError{Reason: ReasonInvalidKbJwt, Cause: err}
	}

	claims := &KeyBindingClaims{}
	if v, ok := raw["nonce"].(string); ok {
		claims.Nonce = v
	}
	if v, ok := raw["aud"].(string); ok {
		claims.Aud = v
	}
	if v, ok := raw["sd_hash"].(string); ok {
		claims.SdHash = v
	}
	switch v := raw["iat"].(type) {
	case float64:
		claims.Iat = int64(v)
	case int64:
		claims.Iat = v
	}
	return claims, nil
}
