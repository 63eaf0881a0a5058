package sdjwt

import "fmt"

// ClaimTrace records the chain of disclosures required to reveal one claim
// path; a child's chain is its parent's chain plus its own disclosure, if
// the child is itself selectively disclosed (spec.md §4.4).
type ClaimTrace struct {
	Path  ClaimPath
	Chain []*Disclosure
}

// RecreateResult is the output of Recreate: the fully spliced claim set
// plus the per-path disclosure trace a Visitor accumulated along the way.
type RecreateResult struct {
	Claims         map[string]any
	Trace          []ClaimTrace
	traceByPath    map[string][]*Disclosure
	droppedIndices map[string][]int
}

// ChainFor returns the disclosure chain required to reach path, or nil if
// path was never visited (no such claim).
func (r *RecreateResult) ChainFor(path ClaimPath) []*Disclosure {
	return r.traceByPath[path.String()]
}

// DroppedIndices returns the original array indices, at arrayPath, whose
// sentinel digest did not resolve and were therefore dropped from the
// recreated view (spec.md §4.4 step 3, §9 open question 1).
func (r *RecreateResult) DroppedIndices(arrayPath ClaimPath) []int {
	return r.droppedIndices[arrayPath.String()]
}

// recreator carries the mutable state of one Recreate call.
type recreator struct {
	digests map[string]*Disclosure
	used    map[string]bool
	alg     HashAlgorithm
	depth   int
	trace   []ClaimTrace
	traceBy map[string][]*Disclosure
	dropped map[string][]int
}

const maxRecursionDepth = 128 // spec.md §9 "Deep recursion" heuristic limit

// Recreate implements spec.md §4.4: given a JWT payload and the set of
// disclosures that may apply to it, it splices every resolvable disclosure
// back into the payload and records the path -> disclosure-chain trace.
// Strict mode (the verifier's mode) rejects duplicate digests and any
// supplied disclosure that resolves nothing.
func Recreate(payload map[string]any, disclosures []*Disclosure, strict bool) (*RecreateResult, error) {
	alg := DefaultHashAlgorithm
	if rawAlg, ok := payload["_sd_alg"]; ok {
		s, ok := rawAlg.(string)
		if !ok {
			return nil, &ParsingError{Msg: "_sd_alg must be a string"}
		}
		alg = HashAlgorithm(s)
		if !alg.Valid() {
			return nil, &ParsingError{Msg: fmt.Sprintf("unsupported _sd_alg %q", s)}
		}
	}

	r := &recreator{
		digests: map[string]*Disclosure{},
		used:    map[string]bool{},
		alg:     alg,
		traceBy: map[string][]*Disclosure{},
		dropped: map[string][]int{},
	}

	for _, d := range disclosures {
		digest, err := d.Digest(alg)
		if err != nil {
			return nil, &InvalidDisclosuresError{Disclosures: []string{d.Raw}, Cause: err}
		}
		if _, exists := r.digests[digest]; exists && strict {
			return nil, &NonUniqueDisclosuresError{Digest: digest}
		}
		r.digests[digest] = d
	}

	root := ClaimPath{}
	claims, err := r.recreateObject(payload, root, nil)
	if err != nil {
		return nil, err
	}

	if strict {
		for digest, d := range r.digests {
			if !r.used[digest] {
				return nil, &MissingDigestError{Digest: digest}
			}
			_ = d
		}
	}

	return &RecreateResult{
		Claims:         claims,
		Trace:          r.trace,
		traceByPath:    r.traceBy,
		droppedIndices: r.dropped,
	}, nil
}

func (r *recreator) recordTrace(path ClaimPath, chain []*Disclosure) {
	r.trace = append(r.trace, ClaimTrace{Path: path, Chain: chain})
	r.traceBy[path.String()] = chain
}

func (r *recreator) recreateObject(obj map[string]any, path ClaimPath, chain []*Disclosure) (map[string]any, error) {
	if r.depth++; r.depth > maxRecursionDepth {
		return nil, &ParsingError{Msg: "maximum recursion depth exceeded"}
	}
	defer func() { r.depth-- }()

	result := map[string]any{}

	for key, val := range obj {
		switch key {
		case "_sd_alg":
			continue
		case "_sd":
			var digestsRaw []any
			switch d := val.(type) {
			case []any:
				digestsRaw = d
			case []string:
				digestsRaw = make([]any, len(d))
				for i, s := range d {
					digestsRaw[i] = s
				}
			default:
				return nil, &ParsingError{Msg: "_sd must be an array"}
			}
			for _, dr := range digestsRaw {
				digestStr, ok := dr.(string)
				if !ok {
					return nil, &ParsingError{Msg: "_sd entries must be strings"}
				}
				disc, ok := r.digests[digestStr]
				if !ok {
					continue // unresolved: disclosure was withheld
				}
				if disc.Kind != KindObjectProperty {
					return nil, &ParsingError{Msg: "array-element disclosure referenced from an object _sd array"}
				}
				r.used[digestStr] = true
				childChain := appendChain(chain, disc)
				childPath := path.Append(Key(disc.Name))
				resolved, err := r.recreateValue(disc.Value, childPath, childChain)
				if err != nil {
					return nil, err
				}
				result[disc.Name] = resolved
				r.recordTrace(childPath, childChain)
			}
		default:
			childPath := path.Append(Key(key))
			resolved, err := r.recreateValue(val, childPath, chain)
			if err != nil {
				return nil, err
			}
			result[key] = resolved
			r.recordTrace(childPath, chain)
		}
	}

	return result, nil
}

func (r *recreator) recreateValue(val any, path ClaimPath, chain []*Disclosure) (any, error) {
	switch v := val.(type) {
	case map[string]any:
		return r.recreateObject(v, path, chain)
	case []any:
		return r.recreateArray(v, path, chain)
	default:
		return val, nil
	}
}

func (r *recreator) recreateArray(arr []any, path ClaimPath, chain []*Disclosure) ([]any, error) {
	if r.depth++; r.depth > maxRecursionDepth {
		return nil, &ParsingError{Msg: "maximum recursion depth exceeded"}
	}
	defer func() { r.depth-- }()

	result := make([]any, 0, len(arr))
	idx := 0

	for origIdx, elem := range arr {
		if m, ok := elem.(map[string]any); ok && len(m) == 1 {
			if digestRaw, ok := m["..."]; ok {
				digestStr, ok := digestRaw.(string)
				if !ok {
					return nil, &ParsingError{Msg: "array sentinel digest must be a string"}
				}
				disc, ok := r.digests[digestStr]
				if !ok {
					r.dropped[path.String()] = append(r.dropped[path.String()], origIdx)
					continue
				}
				if disc.Kind != KindArrayElement {
					return nil, &ParsingError{Msg: "object-property disclosure referenced from an array sentinel"}
				}
				r.used[digestStr] = true
				childChain := appendChain(chain, disc)
				childPath := path.Append(Index(idx))
				resolved, err := r.recreateValue(disc.Value, childPath, childChain)
				if err != nil {
					return nil, err
				}
				result = append(result, resolved)
				r.recordTrace(childPath, childChain)
				idx++
				continue
			}
		}

		childPath := path.Append(Index(idx))
		resolved, err := r.recreateValue(elem, childPath, chain)
		if err != nil {
			return nil, err
		}
		result = append(result, resolved)
		r.recordTrace(childPath, chain)
		idx++
	}

	return result, nil
}

func appendChain(chain []*Disclosure, d *Disclosure) []*Disclosure {
	out := make([]*Disclosure, len(chain)+1)
	copy(out, chain)
	out[len(chain)] = d
	return out
}
