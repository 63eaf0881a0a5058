package sdjwtvc

import (
	"context"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/eudiwallet/go-sdjwt/pkg/sdjwt"
	"github.com/eudiwallet/go-sdjwt/pkg/trust"
)

// JwtVcIssuerMetadataFetcher fetches the `.well-known/jwt-vc-issuer` document
// for an HTTPS issuer identifier (spec.md §4.7 metadata strategy). HTTP
// fetching is a collaborator boundary this library does not implement
// (spec.md §9): callers provide a concrete fetcher (a plain net/http client,
// a cache, a test double).
type JwtVcIssuerMetadataFetcher interface {
	FetchIssuerMetadata(ctx context.Context, iss string) (*JwtVcIssuerMetadata, error)
}

// JwtVcIssuerMetadata is the `.well-known/jwt-vc-issuer` document body.
type JwtVcIssuerMetadata struct {
	Issuer  string         `json:"issuer"`
	JWKS    map[string]any `json:"jwks,omitempty"`
	JWKSURI string         `json:"jwks_uri,omitempty"`
}

// DIDResolver resolves a `did:` URI to its DID document. Another
// collaborator boundary left to the caller (spec.md §9).
type DIDResolver interface {
	ResolveDID(ctx context.Context, did string) (*DIDDocument, error)
}

// DIDDocument is the subset of a W3C DID document this package consults:
// the verification methods a `kid` can select a public JWK from.
type DIDDocument struct {
	ID                  string                  `json:"id"`
	VerificationMethod  []DIDVerificationMethod `json:"verificationMethod,omitempty"`
}

// DIDVerificationMethod is one entry of a DID document's verificationMethod array.
type DIDVerificationMethod struct {
	ID           string         `json:"id"`
	PublicKeyJWK map[string]any `json:"publicKeyJwk,omitempty"`
}

// IssuerKeyMaterial is the result of resolving an issuer's signing key: a
// still-decoded JWK or an x.509 chain, whichever strategy produced it.
// pkg/jwtbackend converts this into a crypto.PublicKey when it builds a
// sdjwt.Verifier bound to the resolved key.
type IssuerKeyMaterial struct {
	JWK      map[string]any
	X5CChain trust.X5CCertChain
}

// IssuerKeyResolver dispatches to one of spec.md §4.11's three issuer
// key-source strategies based on the unverified JWT header and `iss` claim:
// x5c (authoritative over kid when present), did:, or HTTPS metadata.
// MetadataFetcher and DIDResolver may be nil if the caller never expects
// those strategies to be exercised; a nil collaborator needed at resolve
// time is reported as a DetailIssuerKeySourceError.
type IssuerKeyResolver struct {
	TrustEvaluator  trust.TrustEvaluator
	MetadataFetcher JwtVcIssuerMetadataFetcher
	DIDResolver     DIDResolver
}

// Resolve inspects header/claims and returns the issuer's key material plus,
// when the strategy involved a TrustEvaluator, its decision.
func (r *IssuerKeyResolver) Resolve(ctx context.Context, header, claims map[string]any) (*IssuerKeyMaterial, *trust.TrustDecision, error) {
	iss, _ := claims["iss"].(string)
	vct, _ := claims["vct"].(string)

	if x5cRaw, ok := header["x5c"]; ok {
		return r.resolveX5C(ctx, x5cRaw, iss, vct)
	}

	switch {
	case strings.HasPrefix(iss, "did:"):
		return r.resolveDID(ctx, header, iss)
	case strings.HasPrefix(iss, "https://"):
		return r.resolveMetadata(ctx, header, iss, vct)
	default:
		return nil, nil, &sdjwt.SdJwtVcError{
			Detail: sdjwt.DetailIssuerKeySourceError,
			Cause:  fmt.Errorf("sdjwtvc: iss %q selects no known key-source strategy (no x5c header, not did: or https:)", iss),
		}
	}
}

func (r *IssuerKeyResolver) resolveX5C(ctx context.Context, x5cRaw any, iss, vct string) (*IssuerKeyMaterial, *trust.TrustDecision, error) {
	chain, err := parseX5CChain(x5cRaw)
	if err != nil {
		return nil, nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: err}
	}

	leaf := chain.GetLeafCert()
	if leaf == nil {
		return nil, nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: fmt.Errorf("sdjwtvc: empty x5c chain")}
	}
	if iss != "" {
		if err := checkLeafSANMatchesIssuer(leaf, iss); err != nil {
			return nil, nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: err}
		}
	}

	if r.TrustEvaluator == nil {
		return &IssuerKeyMaterial{X5CChain: chain}, nil, nil
	}

	subjectID := iss
	if subjectID == "" {
		subjectID = chain.GetSubjectID()
	}
	decision, err := r.TrustEvaluator.Evaluate(ctx, &trust.EvaluationRequest{
		SubjectID: subjectID,
		KeyType:   trust.KeyTypeX5C,
		Key:       chain,
		Role:      trust.RoleIssuer,
		VCT:       vct,
	})
	if err != nil {
		return nil, nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: err}
	}
	if !decision.Trusted {
		return nil, decision, &sdjwt.SdJwtVcError{
			Detail: sdjwt.DetailIssuerKeySourceError,
			Cause:  fmt.Errorf("sdjwtvc: issuer %q not trusted: %s", subjectID, decision.Reason),
		}
	}

	return &IssuerKeyMaterial{X5CChain: chain}, decision, nil
}

func (r *IssuerKeyResolver) resolveDID(ctx context.Context, header map[string]any, iss string) (*IssuerKeyMaterial, *trust.TrustDecision, error) {
	if r.DIDResolver == nil {
		return nil, nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: fmt.Errorf("sdjwtvc: iss %q requires DID resolution but no DIDResolver was configured", iss)}
	}

	doc, err := r.DIDResolver.ResolveDID(ctx, iss)
	if err != nil {
		return nil, nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: err}
	}

	kid, _ := header["kid"].(string)
	for _, vm := range doc.VerificationMethod {
		if kid == "" || vm.ID == kid || strings.HasSuffix(vm.ID, "#"+strings.TrimPrefix(kid, "#")) {
			return &IssuerKeyMaterial{JWK: vm.PublicKeyJWK}, nil, nil
		}
	}
	return nil, nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: fmt.Errorf("sdjwtvc: did document %q has no verification method matching kid %q", iss, kid)}
}

func (r *IssuerKeyResolver) resolveMetadata(ctx context.Context, header map[string]any, iss, vct string) (*IssuerKeyMaterial, *trust.TrustDecision, error) {
	if r.MetadataFetcher == nil {
		return nil, nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: fmt.Errorf("sdjwtvc: iss %q requires jwt-vc-issuer metadata but no MetadataFetcher was configured", iss)}
	}

	meta, err := r.MetadataFetcher.FetchIssuerMetadata(ctx, iss)
	if err != nil {
		return nil, nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: err}
	}
	if meta.Issuer != iss {
		return nil, nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: fmt.Errorf("sdjwtvc: jwt-vc-issuer metadata's issuer %q does not match iss %q", meta.Issuer, iss)}
	}
	if meta.JWKS != nil && meta.JWKSURI != "" {
		return nil, nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: fmt.Errorf("sdjwtvc: jwt-vc-issuer metadata must not set both jwks and jwks_uri")}
	}
	if meta.JWKS == nil {
		return nil, nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: fmt.Errorf("sdjwtvc: jwt-vc-issuer metadata with jwks_uri requires a fetcher that dereferences it itself")}
	}

	kid, _ := header["kid"].(string)
	jwk, err := selectJWKByKid(meta.JWKS, kid)
	if err != nil {
		return nil, nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: err}
	}

	if r.TrustEvaluator == nil {
		return &IssuerKeyMaterial{JWK: jwk}, nil, nil
	}
	decision, err := r.TrustEvaluator.Evaluate(ctx, &trust.EvaluationRequest{
		SubjectID: iss,
		KeyType:   trust.KeyTypeJWK,
		Key:       jwk,
		Role:      trust.RoleIssuer,
		VCT:       vct,
	})
	if err != nil {
		return nil, nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: err}
	}
	if !decision.Trusted {
		return nil, decision, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailIssuerKeySourceError, Cause: fmt.Errorf("sdjwtvc: issuer %q not trusted: %s", iss, decision.Reason)}
	}
	return &IssuerKeyMaterial{JWK: jwk}, decision, nil
}

// parseX5CChain parses the x5c header's array of base64-encoded DER
// certificates, leaf first.
func parseX5CChain(x5cRaw any) (trust.X5CCertChain, error) {
	x5cArray, ok := x5cRaw.([]any)
	if !ok {
		return nil, fmt.Errorf("sdjwtvc: x5c header must be an array")
	}
	if len(x5cArray) == 0 {
		return nil, fmt.Errorf("sdjwtvc: x5c header is empty")
	}

	chain := make(trust.X5CCertChain, 0, len(x5cArray))
	for i, certRaw := range x5cArray {
		certB64, ok := certRaw.(string)
		if !ok {
			return nil, fmt.Errorf("sdjwtvc: x5c[%d] is not a string", i)
		}
		der, err := base64.StdEncoding.DecodeString(certB64)
		if err != nil {
			return nil, fmt.Errorf("sdjwtvc: x5c[%d] is not valid base64: %w", i, err)
		}
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("sdjwtvc: x5c[%d] is not a valid certificate: %w", i, err)
		}
		chain = append(chain, cert)
	}
	return chain, nil
}

// checkLeafSANMatchesIssuer enforces spec.md §4.7: the leaf certificate's
// SAN must match iss's host in x5c mode.
func checkLeafSANMatchesIssuer(leaf *x509.Certificate, iss string) error {
	u, err := url.Parse(iss)
	if err != nil || u.Host == "" {
		return fmt.Errorf("sdjwtvc: iss %q is not a valid URL to match against the x5c leaf SAN", iss)
	}
	host := u.Hostname()

	for _, dns := range leaf.DNSNames {
		if dns == host {
			return nil
		}
	}
	for _, u2 := range leaf.URIs {
		if u2.Hostname() == host {
			return nil
		}
	}
	return fmt.Errorf("sdjwtvc: x5c leaf certificate SAN does not match iss host %q", host)
}

// selectJWKByKid picks the matching entry out of a JWKS "keys" array. If kid
// is empty and the set has exactly one key, that key is used.
func selectJWKByKid(jwks map[string]any, kid string) (map[string]any, error) {
	keysRaw, ok := jwks["keys"]
	if !ok {
		return nil, fmt.Errorf("sdjwtvc: jwks document has no \"keys\" member")
	}
	keys, ok := keysRaw.([]any)
	if !ok {
		return nil, fmt.Errorf("sdjwtvc: jwks \"keys\" member must be an array")
	}

	if kid == "" {
		if len(keys) == 1 {
			jwk, ok := keys[0].(map[string]any)
			if !ok {
				return nil, fmt.Errorf("sdjwtvc: jwks key entry is not an object")
			}
			return jwk, nil
		}
		return nil, fmt.Errorf("sdjwtvc: header has no kid and jwks has %d keys, cannot disambiguate", len(keys))
	}

	for _, k := range keys {
		jwk, ok := k.(map[string]any)
		if !ok {
			continue
		}
		if jwk["kid"] == kid {
			return jwk, nil
		}
	}
	return nil, fmt.Errorf("sdjwtvc: no jwks entry matches kid %q", kid)
}

// DecodeUnverifiedJWTHeader decodes a compact JWT's protected header without
// verifying its signature, so an IssuerKeyResolver can inspect x5c/kid
// before a Verifier is constructed to check that signature.
func DecodeUnverifiedJWTHeader(compactJWT string) (map[string]any, error) {
	parts := strings.Split(compactJWT, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("sdjwtvc: not a compact JWT (expected 3 dot-separated parts, got %d)", len(parts))
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("sdjwtvc: invalid JWT header encoding: %w", err)
	}
	var header map[string]any
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, fmt.Errorf("sdjwtvc: invalid JWT header JSON: %w", err)
	}
	return header, nil
}

// DecodeUnverifiedJWTClaims decodes a compact JWT's payload without
// verifying its signature.
func DecodeUnverifiedJWTClaims(compactJWT string) (map[string]any, error) {
	parts := strings.Split(compactJWT, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("sdjwtvc: not a compact JWT (expected 3 dot-separated parts, got %d)", len(parts))
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("sdjwtvc: invalid JWT payload encoding: %w", err)
	}
	var claims map[string]any
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, fmt.Errorf("sdjwtvc: invalid JWT payload JSON: %w", err)
	}
	return claims, nil
}
