package sdjwt

// SdJwt is the `(jwtPayload, disclosures, keyBindingJwt)` triple of
// spec.md §3. CompactJWT/Payload both describe the same signed JWT: the
// former is what actually gets transmitted, the latter is its decoded
// claims, kept alongside so the selector and recreator don't need a signer
// or verifier to operate on an already-issued credential.
type SdJwt struct {
	CompactJWT    string
	Payload       map[string]any
	Disclosures   []*Disclosure
	KeyBindingJWT string // compact, optional
}

// ChainsMatching returns every disclosure chain whose path matches pattern;
// pattern elements tagged Wildcard match any concrete index at that
// position (spec.md §4.5's path-set semantics operate over ClaimPaths that
// may themselves contain wildcards, matching "all elements").
func (r *RecreateResult) ChainsMatching(pattern ClaimPath) [][]*Disclosure {
	var chains [][]*Disclosure
	for _, t := range r.Trace {
		if pathMatches(pattern, t.Path) {
			chains = append(chains, t.Chain)
		}
	}
	return chains
}

func pathMatches(pattern, candidate ClaimPath) bool {
	if len(pattern) != len(candidate) {
		return false
	}
	for i, p := range pattern {
		c := candidate[i]
		switch {
		case p.Wildcard:
			if c.Index == nil {
				return false
			}
		case p.Index != nil:
			if c.Index == nil || *p.Index != *c.Index {
				return false
			}
		default:
			if c.Key != p.Key {
				return false
			}
		}
	}
	return true
}

// Present implements the presentation selector of spec.md §4.5: given an
// issued credential and the set of claim paths the holder wishes to reveal,
// it returns a new SdJwt carrying the same signed JWT but only the
// disclosures required to reveal those paths (and their plain ancestors,
// which need no disclosure at all).
func Present(cred *SdJwt, paths []ClaimPath) (*SdJwt, error) {
	result, err := Recreate(cred.Payload, cred.Disclosures, false)
	if err != nil {
		return nil, err
	}

	needed := map[string]bool{}
	for _, p := range paths {
		for _, chain := range result.ChainsMatching(p) {
			for _, d := range chain {
				digest, err := d.Digest(hashAlgOf(cred.Payload))
				if err != nil {
					return nil, err
				}
				needed[digest] = true
			}
		}
	}

	var selected []*Disclosure
	for _, d := range cred.Disclosures {
		digest, err := d.Digest(hashAlgOf(cred.Payload))
		if err != nil {
			return nil, err
		}
		if needed[digest] {
			selected = append(selected, d)
		}
	}

	return &SdJwt{
		CompactJWT:  cred.CompactJWT,
		Payload:     cred.Payload,
		Disclosures: selected,
	}, nil
}

func hashAlgOf(payload map[string]any) HashAlgorithm {
	if raw, ok := payload["_sd_alg"]; ok {
		if s, ok := raw.(string); ok && HashAlgorithm(s).Valid() {
			return HashAlgorithm(s)
		}
	}
	return DefaultHashAlgorithm
}
