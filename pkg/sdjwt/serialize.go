package sdjwt

import (
	"encoding/json"
	"strings"
)

// ParsedCompact is the result of splitting a compact-form serialization
// into its JWT, disclosures, and optional key-binding JWT (spec.md §4.6).
type ParsedCompact struct {
	JWT           string
	Disclosures   []string
	KeyBindingJWT string
	HasKeyBinding bool
}

// ParseCompact splits `jwt~d1~d2~…~dn~[kb]` per spec.md §4.6. Whether the
// trailing segment is a key-binding JWT is determined purely by whether the
// string ends in `~`: ending in `~` means no KB; otherwise the final
// segment is the KB-JWT. Whether a present (or absent) KB-JWT is actually
// *expected* is a policy question answered by the verifier pipeline's
// KeyBindingPolicy (see verify.go), not by parsing itself — parsing only
// ever reports structural errors.
func ParseCompact(s string) (*ParsedCompact, error) {
	segments := strings.Split(s, "~")
	if len(segments) < 2 {
		return nil, &ParsingError{Msg: "compact serialization missing '~' separator"}
	}
	if segments[0] == "" {
		return nil, &ParsingError{Msg: "compact serialization missing jwt"}
	}

	last := segments[len(segments)-1]
	middle := segments[1 : len(segments)-1]

	for _, d := range middle {
		if d == "" {
			return nil, &ParsingError{Msg: "compact serialization has an empty disclosure segment"}
		}
	}

	parsed := &ParsedCompact{JWT: segments[0], Disclosures: middle}
	if last != "" {
		parsed.KeyBindingJWT = last
		parsed.HasKeyBinding = true
	}
	return parsed, nil
}

// SerializeCompact renders cred back into the compact form.
func SerializeCompact(cred *SdJwt) string {
	parts := make([]string, 0, len(cred.Disclosures)+1)
	parts = append(parts, cred.CompactJWT)
	for _, d := range cred.Disclosures {
		parts = append(parts, d.Raw)
	}
	s := strings.Join(parts, "~") + "~"
	if cred.KeyBindingJWT != "" {
		s += cred.KeyBindingJWT
	}
	return s
}

// JWSUnprotectedHeader carries the disclosures and optional key-binding JWT
// in JWS-JSON form's unprotected header (spec.md §4.6/§6).
type JWSUnprotectedHeader struct {
	Disclosures []string `json:"disclosures,omitempty"`
	KBJwt       string   `json:"kb_jwt,omitempty"`
}

// jwsJSONSignature is one entry of the General JWS-JSON serialization's
// `signatures` array.
type jwsJSONSignature struct {
	Protected string                `json:"protected"`
	Signature string                `json:"signature"`
	Header    *JWSUnprotectedHeader `json:"header,omitempty"`
}

// jwsJSONEnvelope covers both the Flattened and General shapes; exactly one
// of Signature or Signatures is populated on any given instance.
type jwsJSONEnvelope struct {
	Payload    string                `json:"payload"`
	Protected  string                `json:"protected,omitempty"`
	Signature  string                `json:"signature,omitempty"`
	Header     *JWSUnprotectedHeader `json:"header,omitempty"`
	Signatures []jwsJSONSignature    `json:"signatures,omitempty"`
}

// ParseJWSJSON accepts either the Flattened or General JWS-JSON form and
// returns the reassembled compact JWT plus the disclosures/kb_jwt carried
// in the unprotected header. The General form must contain exactly one
// signature (spec.md §4.6).
func ParseJWSJSON(data []byte) (compactJWT string, disclosures []string, kbJWT string, err error) {
	var env jwsJSONEnvelope
	if jsonErr := json.Unmarshal(data, &env); jsonErr != nil {
		return "", nil, "", &ParsingError{Msg: "invalid JWS-JSON", Cause: jsonErr}
	}

	switch {
	case len(env.Signatures) > 0:
		if len(env.Signatures) != 1 {
			return "", nil, "", &ParsingError{Msg: "general JWS-JSON serialization must contain exactly one signature"}
		}
		sig := env.Signatures[0]
		compactJWT = sig.Protected + "." + env.Payload + "." + sig.Signature
		if sig.Header != nil {
			disclosures = sig.Header.Disclosures
			kbJWT = sig.Header.KBJwt
		}
	case env.Signature != "":
		compactJWT = env.Protected + "." + env.Payload + "." + env.Signature
		if env.Header != nil {
			disclosures = env.Header.Disclosures
			kbJWT = env.Header.KBJwt
		}
	default:
		return "", nil, "", &ParsingError{Msg: "JWS-JSON missing signature(s)"}
	}

	return compactJWT, disclosures, kbJWT, nil
}

// SerializeJWSJSONFlattened renders the Flattened JWS-JSON form.
func SerializeJWSJSONFlattened(protected, payload, signature string, disclosures []string, kbJWT string) ([]byte, error) {
	env := jwsJSONEnvelope{
		Payload:   payload,
		Protected: protected,
		Signature: signature,
	}
	if len(disclosures) > 0 || kbJWT != "" {
		env.Header = &JWSUnprotectedHeader{Disclosures: disclosures, KBJwt: kbJWT}
	}
	return json.Marshal(env)
}

// SerializeJWSJSONGeneral renders the General JWS-JSON form with a single
// signature entry.
func SerializeJWSJSONGeneral(protected, payload, signature string, disclosures []string, kbJWT string) ([]byte, error) {
	sig := jwsJSONSignature{Protected: protected, Signature: signature}
	if len(disclosures) > 0 || kbJWT != "" {
		sig.Header = &JWSUnprotectedHeader{Disclosures: disclosures, KBJwt: kbJWT}
	}
	env := jwsJSONEnvelope{
		Payload:    payload,
		Signatures: []jwsJSONSignature{sig},
	}
	return json.Marshal(env)
}
