package sdjwtvc

import (
	"fmt"

	"github.com/eudiwallet/go-sdjwt/pkg/sdjwt"
)

// RegisteredClaims are the SD-JWT-VC claims that must always appear plain,
// never selectively disclosed (spec.md §3/§4.7): `iss`, `vct`, `iat`, and
// `cnf` unconditionally, plus `exp`, `nbf`, `status`, and `vct#integrity`
// whenever present.
var RegisteredClaims = []string{"iss", "vct", "iat", "cnf", "exp", "nbf", "status", "vct#integrity"}

func isRegisteredClaim(name string) bool {
	for _, r := range RegisteredClaims {
		if r == name {
			return true
		}
	}
	return false
}

// CheckDefinitionRegisteredClaims rejects a Definition that marks any
// registered claim AlwaysSelectively: spec.md §4.7/§7 treats this as a
// definition-construction error, caught before the definition is ever used
// to issue or validate a credential.
func CheckDefinitionRegisteredClaims(def *sdjwt.Definition) error {
	var violations []error
	for _, key := range def.Keys {
		if !isRegisteredClaim(key) {
			continue
		}
		if def.Children[key].IsSelective() {
			violations = append(violations, fmt.Errorf("registered claim %q must not be marked selectively disclosable", key))
		}
	}
	if len(violations) > 0 {
		return &sdjwt.SdJwtVcError{Detail: sdjwt.DetailTypeMetadataValidationFailure, Errors: violations}
	}
	return nil
}

// CheckPayloadRegisteredClaims verifies that every registered claim present
// in a recreated (fully disclosed) payload was NOT sourced from a
// disclosure, i.e. it was already plain in the signed JWT body. recreate's
// RecreateResult.ChainFor reports the disclosure chain (if any) that
// produced a given path; a non-empty chain for a registered claim means it
// was selectively disclosed, which spec.md §3 forbids regardless of what
// the definition says.
func CheckPayloadRegisteredClaims(result *sdjwt.RecreateResult) error {
	var violations []error
	for _, name := range RegisteredClaims {
		path := sdjwt.ClaimPath{sdjwt.Key(name)}
		if chain := result.ChainFor(path); len(chain) > 0 {
			violations = append(violations, fmt.Errorf("registered claim %q was selectively disclosed", name))
		}
	}
	if len(violations) > 0 {
		return &sdjwt.SdJwtVcError{Detail: sdjwt.DetailTypeMetadataValidationFailure, Errors: violations}
	}
	return nil
}
