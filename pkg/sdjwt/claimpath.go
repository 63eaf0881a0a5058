package sdjwt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ClaimPathElement is a single step in a ClaimPath: a named object key, a
// numeric array index, or a wildcard matching every element of an array.
// Exactly one of Key/Index is set, or neither is set and Wildcard is true.
type ClaimPathElement struct {
	Key      string
	Index    *int
	Wildcard bool
}

// Key builds a named-key path element.
func Key(name string) ClaimPathElement { return ClaimPathElement{Key: name} }

// Index builds a numeric-index path element.
func Index(i int) ClaimPathElement { return ClaimPathElement{Index: &i} }

// Wildcard builds a path element matching every array element.
func Wildcard() ClaimPathElement { return ClaimPathElement{Wildcard: true} }

func (e ClaimPathElement) String() string {
	switch {
	case e.Wildcard:
		return "*"
	case e.Index != nil:
		return strconv.Itoa(*e.Index)
	default:
		return e.Key
	}
}

// IsKey reports whether e selects a named object property.
func (e ClaimPathElement) IsKey() bool { return !e.Wildcard && e.Index == nil }

// MarshalJSON renders the element per the SD-JWT-VC ClaimPath grammar:
// a string for a named key, a number for an index, null for the wildcard.
func (e ClaimPathElement) MarshalJSON() ([]byte, error) {
	switch {
	case e.Wildcard:
		return []byte("null"), nil
	case e.Index != nil:
		return json.Marshal(*e.Index)
	default:
		return json.Marshal(e.Key)
	}
}

// UnmarshalJSON parses a single ClaimPath element.
func (e *ClaimPathElement) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*e = ClaimPathElement{Wildcard: true}
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*e = ClaimPathElement{Key: asString}
		return nil
	}
	var asInt int
	if err := json.Unmarshal(data, &asInt); err == nil {
		*e = ClaimPathElement{Index: &asInt}
		return nil
	}
	return fmt.Errorf("sdjwt: claim path element must be a string, a number, or null: %s", trimmed)
}

// ClaimPath is an ordered sequence of ClaimPathElement selecting a position
// in a claim tree; it serializes to and parses from a JSON array.
type ClaimPath []ClaimPathElement

// ParseClaimPath parses a JSON array such as `["address", null, "street"]`.
func ParseClaimPath(data []byte) (ClaimPath, error) {
	var path ClaimPath
	if err := json.Unmarshal(data, &path); err != nil {
		return nil, &ParsingError{Msg: "invalid claim path", Cause: err}
	}
	return path, nil
}

// MarshalJSON renders the path as a JSON array.
func (p ClaimPath) MarshalJSON() ([]byte, error) {
	elems := []ClaimPathElement(p)
	if elems == nil {
		elems = []ClaimPathElement{}
	}
	return json.Marshal(elems)
}

func (p ClaimPath) String() string {
	parts := make([]string, len(p))
	for i, e := range p {
		parts[i] = e.String()
	}
	return "$." + strings.Join(parts, ".")
}

// Append returns a new ClaimPath with elem appended; the receiver is never
// mutated, matching the immutability spec.md §5 requires of core types.
func (p ClaimPath) Append(elem ClaimPathElement) ClaimPath {
	out := make(ClaimPath, len(p)+1)
	copy(out, p)
	out[len(p)] = elem
	return out
}

// Equal reports whether two claim paths select the same element.
func (p ClaimPath) Equal(other ClaimPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		a, b := p[i], other[i]
		if a.Wildcard != b.Wildcard || a.Key != b.Key {
			return false
		}
		switch {
		case a.Index == nil && b.Index == nil:
			continue
		case a.Index == nil || b.Index == nil:
			return false
		case *a.Index != *b.Index:
			return false
		}
	}
	return true
}

// ParseSingleClaimJsonPath parses the restricted grammar SPEC_FULL.md §4.9
// allows for SingleClaimJsonPath: `$.name(.name|[index])*`. No wildcards,
// slices, filters, or recursive descent are accepted.
func ParseSingleClaimJsonPath(s string) (ClaimPath, error) {
	if !strings.HasPrefix(s, "$") {
		return nil, &ParsingError{Msg: "json path must start with '$'"}
	}
	rest := s[1:]
	var path ClaimPath
	for len(rest) > 0 {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			end := strings.IndexAny(rest, ".[")
			var name string
			if end < 0 {
				name, rest = rest, ""
			} else {
				name, rest = rest[:end], rest[end:]
			}
			if name == "" || !isValidJSONPathName(name) {
				return nil, &ParsingError{Msg: fmt.Sprintf("invalid name segment %q in json path %q", name, s)}
			}
			path = append(path, Key(name))
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, &ParsingError{Msg: fmt.Sprintf("unterminated index segment in json path %q", s)}
			}
			idxStr := rest[1:end]
			idx, err := strconv.Atoi(idxStr)
			if err != nil || idx < 0 {
				return nil, &ParsingError{Msg: fmt.Sprintf("invalid index segment %q in json path %q", idxStr, s)}
			}
			path = append(path, Index(idx))
			rest = rest[end+1:]
		default:
			return nil, &ParsingError{Msg: fmt.Sprintf("unexpected character %q in json path %q", string(rest[0]), s)}
		}
	}
	return path, nil
}

func isValidJSONPathName(name string) bool {
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// JSONPathString renders path back into the SingleClaimJsonPath grammar.
func (p ClaimPath) JSONPathString() string {
	var sb strings.Builder
	sb.WriteByte('$')
	for _, e := range p {
		if e.Index != nil {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(*e.Index))
			sb.WriteByte(']')
			continue
		}
		sb.WriteByte('.')
		sb.WriteString(e.Key)
	}
	return sb.String()
}
