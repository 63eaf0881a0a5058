// Package validator implements SPEC_FULL.md §4.8's definition-based
// validator: walking a Definition in parallel with a recreated claim set and
// its disclosure trace, accumulating every violation rather than stopping
// at the first, grounded on the teacher's pkg/sdjwtvc/validation.go
// (ValidateClaims/ValidateClaimPaths) generalized from a flat claims-list
// walk to the recursive Definition tree.
package validator

import (
	"fmt"

	"github.com/eudiwallet/go-sdjwt/pkg/sdjwt"
)

// Validate walks def in parallel with result's recreated claims and trace,
// returning every violation found, or nil if there were none. expectedVct,
// when non-empty, is checked against the recreated `vct` claim (the
// InvalidVct check); pass "" for plain (non-VC) SD-JWT definitions.
func Validate(def *sdjwt.Definition, result *sdjwt.RecreateResult, expectedVct string) *sdjwt.DefinitionViolation {
	w := &walker{result: result}
	w.walkObject(def, result.Claims, sdjwt.ClaimPath{}, nil)

	if expectedVct != "" {
		if vct, _ := result.Claims["vct"].(string); vct != expectedVct {
			w.add(sdjwt.ViolationInvalidVct, sdjwt.ClaimPath{sdjwt.Key("vct")},
				fmt.Sprintf("vct %q does not match expected %q", vct, expectedVct))
		}
	}

	if len(w.violations) == 0 {
		return nil
	}
	return &sdjwt.DefinitionViolation{Violations: w.violations}
}

type walker struct {
	result     *sdjwt.RecreateResult
	violations []sdjwt.Violation
}

func (w *walker) add(kind sdjwt.ViolationKind, path sdjwt.ClaimPath, msg string) {
	w.violations = append(w.violations, sdjwt.Violation{Kind: kind, Path: path, Msg: msg})
}

// walkObject checks def's keys against payload (UnknownClaim/
// MissingRequiredClaim) and recurses into matching object/array containers.
// containerChain is the disclosure chain already established for the
// container itself (nil at the root, which is never itself disclosed).
func (w *walker) walkObject(def *sdjwt.Definition, payload map[string]any, path sdjwt.ClaimPath, containerChain []*sdjwt.Disclosure) {
	for _, key := range def.Keys {
		el := def.Children[key]
		childPath := path.Append(sdjwt.Key(key))

		value, exists := payload[key]
		if !exists {
			if isRequired(el) {
				w.add(sdjwt.ViolationMissingRequiredClaim, childPath, "required claim is missing")
			}
			continue
		}

		if w.walkValue(el.Value, value, childPath) {
			w.checkDisclosureConsistency(el, childPath, containerChain)
		}
	}

	for key := range payload {
		if _, ok := def.Children[key]; !ok {
			w.add(sdjwt.ViolationUnknownClaim, path.Append(sdjwt.Key(key)), "claim not present in definition")
		}
	}
}

// walkValue recurses into object/array containers and reports whether value
// matched val's expected shape. When it didn't (WrongClaimType), the caller
// skips the disclosure-consistency check for this path: a value of the wrong
// type carries no coherent chain to reason about (spec.md §7's worked
// accumulation example flags WrongClaimType alone for such a claim, never
// also IncorrectlyDisclosedClaim).
func (w *walker) walkValue(val sdjwt.DisclosableValue[sdjwt.ClaimMetadata], value any, path sdjwt.ClaimPath) bool {
	childChain := w.result.ChainFor(path)

	switch val.Shape() {
	case sdjwt.ShapeObject:
		obj, ok := value.(map[string]any)
		if !ok {
			w.add(sdjwt.ViolationWrongClaimType, path, fmt.Sprintf("expected an object, got %T", value))
			return false
		}
		w.walkObject(val.Object(), obj, path, childChain)
		return true
	case sdjwt.ShapeArray:
		arr, ok := value.([]any)
		if !ok {
			w.add(sdjwt.ViolationWrongClaimType, path, fmt.Sprintf("expected an array, got %T", value))
			return false
		}
		w.walkArray(val.Array(), arr, path, childChain)
		return true
	default:
		// ShapeID: a leaf, no further structural check (spec.md §4.8 only
		// defines WrongClaimType for the object/array-vs-scalar mismatch).
		return true
	}
}

// walkArray treats arrays as homogeneous (spec.md §4.8): every element is
// checked against the array's single element definition.
func (w *walker) walkArray(def *sdjwt.DisclosableArray[sdjwt.ClaimMetadata], values []any, path sdjwt.ClaimPath, containerChain []*sdjwt.Disclosure) {
	if len(def.Elements) == 0 {
		return
	}
	elDef := def.Elements[0]

	for i, value := range values {
		elemPath := path.Append(sdjwt.Index(i))
		if w.walkValue(elDef.Value, value, elemPath) {
			w.checkDisclosureConsistency(elDef, elemPath, containerChain)
		}
	}
}

// checkDisclosureConsistency implements spec.md §4.8 check 4: the
// disclosure chain at path must be exactly one longer than its container's
// chain when el is tagged AlwaysSelectively, and exactly the same length
// when tagged NeverSelectively — unless the element's metadata marks the
// policy as "allowed" (SD-JWT-VC's three-valued `claims[].sd`), in which
// case either form satisfies the definition.
func (w *walker) checkDisclosureConsistency(el sdjwt.DisclosableElement[sdjwt.ClaimMetadata], path sdjwt.ClaimPath, containerChain []*sdjwt.Disclosure) {
	if el.Value.Shape() == sdjwt.ShapeID && el.Value.Leaf().DisclosurePolicyIsOptional {
		return
	}

	chain := w.result.ChainFor(path)
	grewByOne := len(chain) == len(containerChain)+1
	unchanged := len(chain) == len(containerChain)

	switch {
	case el.IsSelective() && !grewByOne:
		w.add(sdjwt.ViolationIncorrectlyDisclosedClaim, path, "definition requires this claim to be selectively disclosed, but it was found plain")
	case !el.IsSelective() && !unchanged:
		w.add(sdjwt.ViolationIncorrectlyDisclosedClaim, path, "definition requires this claim to be plain, but it was selectively disclosed")
	}
}

func isRequired(el sdjwt.DisclosableElement[sdjwt.ClaimMetadata]) bool {
	if el.Value.Shape() == sdjwt.ShapeID {
		return el.Value.Leaf().Required
	}
	return false
}
