package sdjwt

import "fmt"

// ClaimMetadata is the default metadata leaf (`A`) for the definition
// surface: enough to drive validation and the display hints SD-JWT-VC type
// metadata carries (SPEC_FULL.md §4.10), without depending on the VC
// package so that pkg/sdjwt stays usable for plain SD-JWT definitions too.
type ClaimMetadata struct {
	Label       string
	Description string
	Required    bool

	// DisclosurePolicyIsOptional is true when the source metadata allows a
	// claim to appear either plain or selectively disclosed (SD-JWT-VC's
	// `claims[].sd == "allowed"`, a third state the binary Tag field can't
	// represent). When set, the definition validator's
	// IncorrectlyDisclosedClaim check is skipped for this element: either
	// disclosure form satisfies the definition.
	DisclosurePolicyIsOptional bool
}

// Definition is the validator-facing surface: a DisclosableObject whose
// leaves are metadata rather than concrete values (spec.md §4.1 "Definition
// surface").
type Definition = DisclosableObject[ClaimMetadata]

// NewDefinition returns an empty Definition container.
func NewDefinition() *Definition { return NewDisclosableObject[ClaimMetadata]() }

// FindElement resolves path against root, returning the element that path
// selects. Named keys traverse object containers; a wildcard traverses
// array containers via their single homogeneous element definition (arrays
// in a definition are assumed homogeneous, per spec.md §4.1/§4.8); a
// concrete numeric index is invalid in a definition since there is no
// per-index schema to select.
func FindElement[A any](root *DisclosableObject[A], path ClaimPath) (*DisclosableElement[A], error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("sdjwt: empty claim path")
	}

	var curObj *DisclosableObject[A] = root
	var curArr *DisclosableArray[A]

	for i, step := range path {
		var el DisclosableElement[A]

		switch {
		case curObj != nil:
			if step.Wildcard || step.Index != nil {
				return nil, fmt.Errorf("sdjwt: expected a named key at %s, got %s", path[:i], step)
			}
			found, ok := curObj.Children[step.Key]
			if !ok {
				return nil, fmt.Errorf("sdjwt: no such claim at %s", path[:i+1])
			}
			el = found
		case curArr != nil:
			if !step.Wildcard {
				return nil, fmt.Errorf("sdjwt: concrete array indices are invalid in a definition (homogeneous arrays assumed) at %s", path[:i+1])
			}
			if len(curArr.Elements) == 0 {
				return nil, fmt.Errorf("sdjwt: array definition at %s has no element schema", path[:i])
			}
			el = curArr.Elements[0]
		default:
			return nil, fmt.Errorf("sdjwt: path continues past a leaf at %s", path[:i])
		}

		if i == len(path)-1 {
			return &el, nil
		}

		switch el.Value.Shape() {
		case ShapeObject:
			curObj, curArr = el.Value.Object(), nil
		case ShapeArray:
			curObj, curArr = nil, el.Value.Array()
		default:
			return nil, fmt.Errorf("sdjwt: path continues past a leaf at %s", path[:i+1])
		}
	}

	return nil, fmt.Errorf("sdjwt: unreachable claim path %s", path)
}
