package sdjwt

import "fmt"

// ParsingError indicates that a compact or JWS-JSON serialization could not
// be split or decoded into its constituent parts.
type ParsingError struct {
	Msg   string
	Cause error
}

func (e *ParsingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sdjwt: parsing error: %s: %v", e.Msg, e.Cause)
	}
	return fmt.Sprintf("sdjwt: parsing error: %s", e.Msg)
}

func (e *ParsingError) Unwrap() error { return e.Cause }

// InvalidJWTError wraps a failure coming from the JWT header, signature, or
// payload JSON itself.
type InvalidJWTError struct {
	Cause error
}

func (e *InvalidJWTError) Error() string {
	return fmt.Sprintf("sdjwt: invalid jwt: %v", e.Cause)
}

func (e *InvalidJWTError) Unwrap() error { return e.Cause }

// InvalidDisclosuresError reports one or more disclosure strings that failed
// to decode or that used a reserved claim name.
type InvalidDisclosuresError struct {
	Disclosures []string
	Cause       error
}

func (e *InvalidDisclosuresError) Error() string {
	return fmt.Sprintf("sdjwt: invalid disclosures %v: %v", e.Disclosures, e.Cause)
}

func (e *InvalidDisclosuresError) Unwrap() error { return e.Cause }

// NonUniqueDisclosuresError reports that the same disclosure, or two
// disclosures hashing to the same digest, appeared more than once in a
// presentation.
type NonUniqueDisclosuresError struct {
	Digest string
}

func (e *NonUniqueDisclosuresError) Error() string {
	return fmt.Sprintf("sdjwt: disclosure digest %q appears more than once", e.Digest)
}

// MissingDigestError reports a disclosure whose digest matches no `_sd`
// entry or array sentinel anywhere in the payload.
type MissingDigestError struct {
	Digest string
}

func (e *MissingDigestError) Error() string {
	return fmt.Sprintf("sdjwt: disclosure digest %q matches no _sd entry", e.Digest)
}

// KeyBindingReason enumerates the ways key-binding verification can fail.
type KeyBindingReason string

const (
	ReasonMissingKbJwt    KeyBindingReason = "MissingKbJwt"
	ReasonUnexpectedKbJwt KeyBindingReason = "UnexpectedKbJwt"
	ReasonInvalidKbJwt    KeyBindingReason = "InvalidKbJwt"
	ReasonMissingCnf      KeyBindingReason = "MissingCnf"
)

// KeyBindingError reports a failure in key-binding JWT verification.
type KeyBindingError struct {
	Reason KeyBindingReason
	Cause  error
}

func (e *KeyBindingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sdjwt: key binding failed (%s): %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("sdjwt: key binding failed (%s)", e.Reason)
}

func (e *KeyBindingError) Unwrap() error { return e.Cause }

// SdJwtVcDetail enumerates the SD-JWT-VC-specific failure categories.
type SdJwtVcDetail string

const (
	DetailIssuerKeySourceError          SdJwtVcDetail = "IssuerKeySourceError"
	DetailTypeMetadataResolutionFailure SdJwtVcDetail = "TypeMetadataResolutionFailure"
	DetailTypeMetadataValidationFailure SdJwtVcDetail = "TypeMetadataValidationFailure"
)

// SdJwtVcError reports a failure specific to the SD-JWT-VC profile: issuer
// key-source resolution or type metadata resolution/validation.
type SdJwtVcError struct {
	Detail SdJwtVcDetail
	Cause  error
	Errors []error
}

func (e *SdJwtVcError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sdjwt: sd-jwt-vc error (%s): %v", e.Detail, e.Cause)
	}
	return fmt.Sprintf("sdjwt: sd-jwt-vc error (%s): %d issue(s)", e.Detail, len(e.Errors))
}

func (e *SdJwtVcError) Unwrap() error { return e.Cause }

// ViolationKind enumerates the definition-validator's closed violation set
// (see pkg/validator, SPEC_FULL.md §4.8).
type ViolationKind string

const (
	ViolationUnknownClaim              ViolationKind = "UnknownClaim"
	ViolationMissingRequiredClaim      ViolationKind = "MissingRequiredClaim"
	ViolationWrongClaimType            ViolationKind = "WrongClaimType"
	ViolationIncorrectlyDisclosedClaim ViolationKind = "IncorrectlyDisclosedClaim"
	ViolationInvalidVct                ViolationKind = "InvalidVct"
	ViolationDisclosureInconsistencies ViolationKind = "DisclosureInconsistencies"
)

// Violation is a single definition-validator finding.
type Violation struct {
	Kind ViolationKind
	Path ClaimPath
	Msg  string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s at %s: %s", v.Kind, v.Path, v.Msg)
}

// DefinitionViolation accumulates every violation found while validating a
// recreated claim set against a definition; validation never short-circuits
// on the first finding (spec.md §7 policy: "validation errors accumulate").
type DefinitionViolation struct {
	Violations []Violation
}

func (e *DefinitionViolation) Error() string {
	return fmt.Sprintf("sdjwt: definition violation: %d issue(s)", len(e.Violations))
}
