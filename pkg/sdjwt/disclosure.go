package sdjwt

import (
	"encoding/base64"
	"encoding/json"
)

// DisclosureKind distinguishes the two disclosure shapes spec.md §3 defines.
type DisclosureKind int

const (
	// KindObjectProperty is `[salt, name, value]`.
	KindObjectProperty DisclosureKind = iota
	// KindArrayElement is `[salt, value]`.
	KindArrayElement
)

// Disclosure is a salted tuple revealing one claim or array element. The
// Raw field, once set, is the exact string that was (or will be) hashed;
// spec.md §9 "JSON canonicalization" requires that disclosures are hashed
// exactly as written, never renormalized, so Raw is authoritative over
// Salt/Name/Value once populated.
type Disclosure struct {
	Kind  DisclosureKind
	Salt  string
	Name  string // only meaningful when Kind == KindObjectProperty
	Value any
	Raw   string // the base64url-no-pad encoded disclosure string
}

// reservedNames MUST NOT appear as an issuer-supplied disclosure name
// (spec.md §3).
var reservedNames = map[string]bool{
	"_sd":     true,
	"...":     true,
	"_sd_alg": true,
}

// IsReservedClaimName reports whether name is one of the reserved claim
// names that must never appear as a disclosure's own name.
func IsReservedClaimName(name string) bool {
	return reservedNames[name]
}

// NewObjectPropertyDisclosure builds and encodes an ObjectProperty disclosure.
func NewObjectPropertyDisclosure(salt, name string, value any) (*Disclosure, error) {
	if IsReservedClaimName(name) {
		return nil, &InvalidDisclosuresError{Cause: &ParsingError{Msg: "reserved claim name used as disclosure name: " + name}}
	}
	raw, err := encodeDisclosure([]any{salt, name, value})
	if err != nil {
		return nil, &InvalidDisclosuresError{Cause: err}
	}
	return &Disclosure{Kind: KindObjectProperty, Salt: salt, Name: name, Value: value, Raw: raw}, nil
}

// NewArrayElementDisclosure builds and encodes an ArrayElement disclosure.
func NewArrayElementDisclosure(salt string, value any) (*Disclosure, error) {
	raw, err := encodeDisclosure([]any{salt, value})
	if err != nil {
		return nil, &InvalidDisclosuresError{Cause: err}
	}
	return &Disclosure{Kind: KindArrayElement, Salt: salt, Value: value, Raw: raw}, nil
}

func encodeDisclosure(tuple []any) (string, error) {
	b, err := json.Marshal(tuple)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ParseDisclosure decodes a base64url-no-pad disclosure string back into its
// salt/name/value. It accepts both the 2-element (array element) and
// 3-element (object property) forms — unlike the teacher's
// pkg/sdjwtvc/verification.go parseDisclosure, which only handles the
// 3-element case; this follows utils.go's ParseSelectiveDisclosure instead.
func ParseDisclosure(raw string) (*Disclosure, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, &InvalidDisclosuresError{Disclosures: []string{raw}, Cause: err}
	}
	var tuple []json.RawMessage
	if err := json.Unmarshal(decoded, &tuple); err != nil {
		return nil, &InvalidDisclosuresError{Disclosures: []string{raw}, Cause: err}
	}

	switch len(tuple) {
	case 2:
		var salt string
		var value any
		if err := json.Unmarshal(tuple[0], &salt); err != nil {
			return nil, &InvalidDisclosuresError{Disclosures: []string{raw}, Cause: err}
		}
		if err := json.Unmarshal(tuple[1], &value); err != nil {
			return nil, &InvalidDisclosuresError{Disclosures: []string{raw}, Cause: err}
		}
		return &Disclosure{Kind: KindArrayElement, Salt: salt, Value: value, Raw: raw}, nil
	case 3:
		var salt, name string
		var value any
		if err := json.Unmarshal(tuple[0], &salt); err != nil {
			return nil, &InvalidDisclosuresError{Disclosures: []string{raw}, Cause: err}
		}
		if err := json.Unmarshal(tuple[1], &name); err != nil {
			return nil, &InvalidDisclosuresError{Disclosures: []string{raw}, Cause: &ParsingError{Msg: "disclosure name must be a string"}}
		}
		if IsReservedClaimName(name) {
			return nil, &InvalidDisclosuresError{Disclosures: []string{raw}, Cause: &ParsingError{Msg: "reserved claim name in disclosure: " + name}}
		}
		if err := json.Unmarshal(tuple[2], &value); err != nil {
			return nil, &InvalidDisclosuresError{Disclosures: []string{raw}, Cause: err}
		}
		return &Disclosure{Kind: KindObjectProperty, Salt: salt, Name: name, Value: value, Raw: raw}, nil
	default:
		return nil, &InvalidDisclosuresError{Disclosures: []string{raw}, Cause: &ParsingError{Msg: "disclosure array must have 2 or 3 elements"}}
	}
}

// Digest returns the DisclosureDigest of d under alg.
func (d *Disclosure) Digest(alg HashAlgorithm) (string, error) {
	return alg.Digest([]byte(d.Raw))
}
