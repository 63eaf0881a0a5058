// Package trust evaluates whether an SD-JWT-VC issuer's signing key is
// trusted, across the three key-source strategies an issuer's `iss` claim
// can select: an x5c certificate chain, a did: URI, or an
// https://.well-known/jwt-vc-issuer metadata document.
//
// The key distinction is between:
//   - Name-to-key RESOLUTION: given a name (DID, issuer URL), fetch the
//     associated public key.
//   - Name-to-key VALIDATION: given a name and a key that's already present
//     (an x5c chain), verify the binding is trusted.
//
// This package provides the TrustEvaluator interface, implemented here by a
// LocalTrustEvaluator (x509 chain verification against configured anchors)
// and a CompositeEvaluator (try multiple sources in sequence).
package trust

import (
	"context"
	"crypto"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"
)

// TrustDecision represents the result of a trust evaluation.
type TrustDecision struct {
	// Trusted indicates whether the name-to-key binding is authorized.
	Trusted bool

	// Reason provides explanation for the decision.
	Reason string

	// TrustFramework identifies which trust framework was used (e.g., "eudi", "openid_federation").
	TrustFramework string

	// Metadata contains additional trust metadata (e.g., DID document, entity configuration).
	Metadata any
}

// KeyType indicates the format of the public key being validated.
type KeyType string

const (
	// KeyTypeJWK indicates a JWK (JSON Web Key) format key.
	KeyTypeJWK KeyType = "jwk"
	// KeyTypeX5C indicates an X.509 certificate chain.
	KeyTypeX5C KeyType = "x5c"
)

// Role represents the expected role of the key holder.
type Role string

const (
	// RoleIssuer indicates the key should be authorized for credential issuance.
	RoleIssuer Role = "issuer"
	// RoleVerifier indicates the key should be authorized for credential verification.
	RoleVerifier Role = "verifier"
	// RoleAny indicates no specific role constraint.
	RoleAny Role = ""
)

// EvaluationRequest contains the parameters for a trust evaluation.
type EvaluationRequest struct {
	// SubjectID is the identifier of the entity (DID, issuer URL, etc.).
	SubjectID string

	// KeyType indicates the format of the key.
	KeyType KeyType

	// Key is the public key to validate. Can be:
	//   - map[string]any for JWK
	//   - []*x509.Certificate for x5c
	//   - crypto.PublicKey for raw keys
	Key any

	// Role is the expected role (optional).
	Role Role

	// Action is an explicit policy name to use (optional). If set, this
	// takes precedence over Role for GetEffectiveAction.
	Action string

	// VCT is the credential type (SD-JWT-VC `vct` claim), when known. This
	// can influence which trust anchors apply for a given vct namespace.
	VCT string

	// Options contains additional trust evaluation options.
	Options *TrustOptions
}

// TrustOptions contains additional options for trust evaluation.
type TrustOptions struct {
	// IncludeTrustChain requests the full trust chain in the response.
	IncludeTrustChain bool

	// IncludeCertificates requests X.509 certificates in the response.
	IncludeCertificates bool

	// BypassCache requests that cached results be bypassed.
	BypassCache bool
}

// GetEffectiveAction returns the action name to use for policy routing.
// Priority: 1. Explicit Action field, 2. Role alone.
func (r *EvaluationRequest) GetEffectiveAction() string {
	if r.Action != "" {
		return r.Action
	}
	return string(r.Role)
}

// TrustEvaluator evaluates whether a name-to-key binding is trusted.
// Implementations can use local trust lists, composites of several sources, or both.
type TrustEvaluator interface {
	// Evaluate checks if the given key is trusted for the specified subject and role.
	// This is used when the key is already known (an x5c chain).
	Evaluate(ctx context.Context, req *EvaluationRequest) (*TrustDecision, error)

	// SupportsKeyType returns true if this evaluator can handle the given key type.
	SupportsKeyType(kt KeyType) bool
}

// KeyResolver resolves public keys from identifiers.
// This is used when the key needs to be fetched (DID-based credentials).
type KeyResolver interface {
	// ResolveKey retrieves the public key for the given verification method.
	ResolveKey(ctx context.Context, verificationMethod string) (crypto.PublicKey, error)
}

// CombinedTrustService combines evaluation and resolution capabilities.
// This is the full interface for trust management across all credential formats.
type CombinedTrustService interface {
	TrustEvaluator
	KeyResolver
}

// X5CCertChain is a helper type for x5c certificate chains.
type X5CCertChain []*x509.Certificate

// GetLeafCert returns the end-entity certificate (first in chain).
func (c X5CCertChain) GetLeafCert() *x509.Certificate {
	if len(c) == 0 {
		return nil
	}
	return c[0]
}

// GetRootCert returns the root certificate (last in chain).
func (c X5CCertChain) GetRootCert() *x509.Certificate {
	if len(c) == 0 {
		return nil
	}
	return c[len(c)-1]
}

// GetSubjectID extracts a subject identifier from the leaf certificate.
// Returns the Subject CN or the first SAN URI/DNS name.
func (c X5CCertChain) GetSubjectID() string {
	leaf := c.GetLeafCert()
	if leaf == nil {
		return ""
	}

	// Try Subject CN first
	if leaf.Subject.CommonName != "" {
		return leaf.Subject.CommonName
	}

	// Try SAN URIs
	for _, uri := range leaf.URIs {
		return uri.String()
	}

	// Try SAN DNS names
	if len(leaf.DNSNames) > 0 {
		return leaf.DNSNames[0]
	}

	return ""
}

// ToBase64Strings converts the certificate chain to base64-encoded DER strings.
// This is the format expected by JWK x5c arrays.
func (c X5CCertChain) ToBase64Strings() []string {
	result := make([]string, len(c))
	for i, cert := range c {
		result[i] = base64.StdEncoding.EncodeToString(cert.Raw)
	}
	return result
}

// CompositeStrategy picks how CompositeEvaluator combines its member
// evaluators' decisions.
type CompositeStrategy int

const (
	// StrategyFirstSuccess returns the first positive decision, trying
	// every evaluator that supports the request's key type.
	StrategyFirstSuccess CompositeStrategy = iota

	// StrategyAllMustSucceed requires every applicable evaluator to accept
	// the binding; one rejection rejects the whole request.
	StrategyAllMustSucceed

	// StrategyFallback tries evaluators in order and returns the first one
	// that doesn't error, without consulting the rest.
	StrategyFallback
)

// CompositeEvaluator evaluates a binding against several TrustEvaluators at
// once, an issuer may be trusted via an x5c chain against local anchors AND
// a did: entry in an OpenID Federation trust list, and a verifier wants to
// try both without caring which one answers.
type CompositeEvaluator struct {
	evaluators []TrustEvaluator
	strategy   CompositeStrategy
}

// NewCompositeEvaluator builds a CompositeEvaluator combining evaluators
// under strategy.
func NewCompositeEvaluator(strategy CompositeStrategy, evaluators ...TrustEvaluator) *CompositeEvaluator {
	return &CompositeEvaluator{evaluators: evaluators, strategy: strategy}
}

// Evaluate implements TrustEvaluator by dispatching to the configured
// strategy.
func (c *CompositeEvaluator) Evaluate(ctx context.Context, req *EvaluationRequest) (*TrustDecision, error) {
	if len(c.evaluators) == 0 {
		return nil, fmt.Errorf("trust: composite evaluator has no member evaluators")
	}

	switch c.strategy {
	case StrategyFirstSuccess:
		return c.evaluateFirstSuccess(ctx, req)
	case StrategyAllMustSucceed:
		return c.evaluateAllMustSucceed(ctx, req)
	case StrategyFallback:
		return c.evaluateFallback(ctx, req)
	default:
		return nil, fmt.Errorf("trust: unknown composite strategy %d", c.strategy)
	}
}

func (c *CompositeEvaluator) evaluateFirstSuccess(ctx context.Context, req *EvaluationRequest) (*TrustDecision, error) {
	var lastErr error
	var reasons []string

	for _, eval := range c.evaluators {
		if !eval.SupportsKeyType(req.KeyType) {
			continue
		}
		decision, err := eval.Evaluate(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		if decision.Trusted {
			return decision, nil
		}
		if decision.Reason != "" {
			reasons = append(reasons, decision.Reason)
		}
	}

	return &TrustDecision{
		Trusted: false,
		Reason:  fmt.Sprintf("trust: no evaluator accepted the binding: %s", strings.Join(reasons, "; ")),
	}, lastErr
}

func (c *CompositeEvaluator) evaluateAllMustSucceed(ctx context.Context, req *EvaluationRequest) (*TrustDecision, error) {
	var frameworks []string
	applicable := 0

	for _, eval := range c.evaluators {
		if !eval.SupportsKeyType(req.KeyType) {
			continue
		}
		applicable++

		decision, err := eval.Evaluate(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("trust: composite evaluator member failed: %w", err)
		}
		if !decision.Trusted {
			return decision, nil
		}
		if decision.TrustFramework != "" {
			frameworks = append(frameworks, decision.TrustFramework)
		}
	}

	if applicable == 0 {
		return nil, fmt.Errorf("trust: no member evaluator supports key type %q", req.KeyType)
	}

	return &TrustDecision{
		Trusted:        true,
		Reason:         "all applicable trust evaluators accepted the binding",
		TrustFramework: strings.Join(frameworks, "+"),
	}, nil
}

func (c *CompositeEvaluator) evaluateFallback(ctx context.Context, req *EvaluationRequest) (*TrustDecision, error) {
	var lastErr error

	for _, eval := range c.evaluators {
		if !eval.SupportsKeyType(req.KeyType) {
			continue
		}
		decision, err := eval.Evaluate(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		return decision, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("trust: all member evaluators failed, last error: %w", lastErr)
	}
	return nil, fmt.Errorf("trust: no member evaluator supports key type %q", req.KeyType)
}

// SupportsKeyType reports whether any member evaluator supports kt.
func (c *CompositeEvaluator) SupportsKeyType(kt KeyType) bool {
	for _, eval := range c.evaluators {
		if eval.SupportsKeyType(kt) {
			return true
		}
	}
	return false
}

// AddEvaluator appends eval to the composite's member list.
func (c *CompositeEvaluator) AddEvaluator(eval TrustEvaluator) {
	c.evaluators = append(c.evaluators, eval)
}

var _ TrustEvaluator = (*CompositeEvaluator)(nil)
