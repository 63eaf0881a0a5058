package sdjwt

import (
	"strconv"
	"strings"
)

// JsonPointer is a parsed RFC 6901 JSON Pointer: a sequence of reference
// tokens, each already unescaped (`~0`→`~`, `~1`→`/`). The root pointer is
// represented by an empty Tokens slice (spec.md §4.9).
type JsonPointer struct {
	Tokens []string
}

// ParseJsonPointer parses s. The empty string is the root pointer; any
// other valid pointer must start with '/'.
func ParseJsonPointer(s string) (*JsonPointer, error) {
	if s == "" {
		return &JsonPointer{}, nil
	}
	if !strings.HasPrefix(s, "/") {
		return nil, &ParsingError{Msg: "json pointer must be empty or start with '/'"}
	}

	raw := strings.Split(s[1:], "/")
	tokens := make([]string, len(raw))
	for i, t := range raw {
		tokens[i] = unescapePointerToken(t)
	}
	return &JsonPointer{Tokens: tokens}, nil
}

func unescapePointerToken(t string) string {
	if !strings.Contains(t, "~") {
		return t
	}
	var b strings.Builder
	for i := 0; i < len(t); i++ {
		if t[i] == '~' && i+1 < len(t) {
			switch t[i+1] {
			case '0':
				b.WriteByte('~')
				i++
				continue
			case '1':
				b.WriteByte('/')
				i++
				continue
			}
		}
		b.WriteByte(t[i])
	}
	return b.String()
}

func escapePointerToken(t string) string {
	t = strings.ReplaceAll(t, "~", "~0")
	t = strings.ReplaceAll(t, "/", "~1")
	return t
}

// String renders p back to its RFC 6901 string form.
func (p *JsonPointer) String() string {
	if len(p.Tokens) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range p.Tokens {
		b.WriteByte('/')
		b.WriteString(escapePointerToken(t))
	}
	return b.String()
}

// Resolve walks doc following p's tokens, returning the referenced value.
// Object tokens index map[string]any keys; array tokens must be a base-10
// integer (no leading zero except "0") and index into []any.
func (p *JsonPointer) Resolve(doc any) (any, error) {
	cur := doc
	for i, tok := range p.Tokens {
		switch v := cur.(type) {
		case map[string]any:
			child, ok := v[tok]
			if !ok {
				return nil, &ParsingError{Msg: "json pointer: no such member: " + tok}
			}
			cur = child
		case []any:
			idx, err := arrayIndexToken(tok)
			if err != nil {
				return nil, err
			}
			if idx < 0 || idx >= len(v) {
				return nil, &ParsingError{Msg: "json pointer: array index out of range"}
			}
			cur = v[idx]
		default:
			return nil, &ParsingError{Msg: "json pointer: cannot index into non-container at token " + strconv.Itoa(i)}
		}
	}
	return cur, nil
}

func arrayIndexToken(tok string) (int, error) {
	if tok == "" {
		return 0, &ParsingError{Msg: "json pointer: empty array index"}
	}
	if tok == "0" {
		return 0, nil
	}
	if tok[0] == '0' {
		return 0, &ParsingError{Msg: "json pointer: array index must not have a leading zero: " + tok}
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, &ParsingError{Msg: "json pointer: invalid array index: " + tok, Cause: err}
	}
	return n, nil
}
