package sdjwtvc

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/eudiwallet/go-sdjwt/pkg/sdjwt"
)

// TypeMetadataResolver fetches the VCTM document for a `vct` identifier.
// HTTP fetching itself is out of scope for this library (spec.md §9): a
// caller supplies a concrete resolver (e.g. one that does the well-known
// `vct` lookup, or reads from a local store).
type TypeMetadataResolver interface {
	Resolve(ctx context.Context, vct string) (*VCTM, error)
}

const maxExtendsChainDepth = 32

// resolveChain fetches vct and follows its Extends pointers, returning the
// chain ordered from the root ancestor to vct itself. A vct reachable from
// its own extends chain is rejected as a cycle.
func resolveChain(ctx context.Context, resolver TypeMetadataResolver, vct string) ([]*VCTM, error) {
	visited := map[string]bool{}
	var forward []*VCTM // leaf-to-root order while walking

	current := vct
	for {
		if visited[current] {
			return nil, &sdjwt.SdJwtVcError{
				Detail: sdjwt.DetailTypeMetadataResolutionFailure,
				Cause:  fmt.Errorf("sdjwtvc: extends cycle detected at vct %q", current),
			}
		}
		if len(forward) >= maxExtendsChainDepth {
			return nil, &sdjwt.SdJwtVcError{
				Detail: sdjwt.DetailTypeMetadataResolutionFailure,
				Cause:  fmt.Errorf("sdjwtvc: extends chain exceeds %d entries", maxExtendsChainDepth),
			}
		}
		visited[current] = true

		vctm, err := resolver.Resolve(ctx, current)
		if err != nil {
			return nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailTypeMetadataResolutionFailure, Cause: err}
		}
		forward = append(forward, vctm)

		if vctm.Extends == "" {
			break
		}
		current = vctm.Extends
	}

	root := make([]*VCTM, len(forward))
	for i, v := range forward {
		root[len(forward)-1-i] = v
	}
	return root, nil
}

// mergeClaims walks chain root-to-leaf, validating spec.md §4.7's narrowing
// rule (a child must not relax a parent's mandatory-ness or disclosure
// policy; "allowed" may be narrowed to "always"/"never") and returns the
// effective merged claims list in first-seen order.
func mergeClaims(chain []*VCTM) ([]Claim, error) {
	merged := map[string]Claim{}
	var order []string
	var violations []error

	for _, vctm := range chain {
		for _, claim := range vctm.Claims {
			key := claim.Path.String()
			prior, exists := merged[key]
			if !exists {
				merged[key] = claim
				order = append(order, key)
				continue
			}

			if prior.SD != SDAllowed && claim.SD != prior.SD {
				violations = append(violations, fmt.Errorf("claim %s relaxes disclosure policy %s -> %s", key, prior.SD, claim.SD))
				continue
			}
			if claimRequired(prior) && !claimRequired(claim) {
				violations = append(violations, fmt.Errorf("claim %s relaxes mandatory -> optional", key))
				continue
			}

			merged[key] = claim
		}
	}

	if len(violations) > 0 {
		return nil, &sdjwt.SdJwtVcError{Detail: sdjwt.DetailTypeMetadataValidationFailure, Errors: violations}
	}

	out := make([]Claim, len(order))
	for i, k := range order {
		out[i] = merged[k]
	}
	return out, nil
}

// claimRequired treats "always" and "never" as mandatory-presence
// declarations (the claim path must always or must never appear) and
// "allowed" as optional, matching how mandatory-ness is implied by a VCTM
// claim's disclosure policy rather than a separate field.
func claimRequired(c Claim) bool { return c.SD != SDAllowed }

// ResolveEffective fetches vct's full extends chain and returns a VCTM
// identical to the leaf document except that Claims is replaced with the
// chain-merged, narrowing-checked effective claims list.
func ResolveEffective(ctx context.Context, resolver TypeMetadataResolver, vct string) (*VCTM, error) {
	chain, err := resolveChain(ctx, resolver, vct)
	if err != nil {
		return nil, err
	}

	claims, err := mergeClaims(chain)
	if err != nil {
		return nil, err
	}

	leaf := *chain[len(chain)-1]
	leaf.Claims = claims
	return &leaf, nil
}

// TypeMetadataCache caches ResolveEffective results keyed by vct, adapted
// from pkg/trust/cache.go's ttlcache.v3 wrapper.
type TypeMetadataCache struct {
	resolver TypeMetadataResolver
	cache    *ttlcache.Cache[string, *VCTM]
}

// TypeMetadataCacheConfig configures a TypeMetadataCache.
type TypeMetadataCacheConfig struct {
	TTL         time.Duration // default 10 minutes
	MaxCapacity uint64        // 0 means unlimited
}

// NewTypeMetadataCache wraps resolver with a TTL cache over ResolveEffective.
func NewTypeMetadataCache(resolver TypeMetadataResolver, config TypeMetadataCacheConfig) *TypeMetadataCache {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	opts := []ttlcache.Option[string, *VCTM]{ttlcache.WithTTL[string, *VCTM](ttl)}
	if config.MaxCapacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, *VCTM](config.MaxCapacity))
	}

	c := &TypeMetadataCache{resolver: resolver, cache: ttlcache.New(opts...)}
	go c.cache.Start()
	return c
}

// Resolve implements TypeMetadataResolver, serving ResolveEffective results
// out of the cache when present.
func (c *TypeMetadataCache) Resolve(ctx context.Context, vct string) (*VCTM, error) {
	if item := c.cache.Get(vct); item != nil {
		return item.Value(), nil
	}

	vctm, err := ResolveEffective(ctx, c.resolver, vct)
	if err != nil {
		return nil, err
	}

	c.cache.Set(vct, vctm, ttlcache.DefaultTTL)
	return vctm, nil
}

// Stop stops the cache's automatic expiration goroutine.
func (c *TypeMetadataCache) Stop() { c.cache.Stop() }

var _ TypeMetadataResolver = (*TypeMetadataCache)(nil)
