package sdjwt

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"sort"
)

// SaltProvider produces the high-entropy salt used in each disclosure.
// Production implementations must be cryptographically random; test doubles
// may be deterministic (spec.md §3).
type SaltProvider interface {
	Salt() (string, error)
}

// DecoyGenerator produces a random digest-shaped string, indistinguishable
// from a real digest, used to pad `_sd` arrays and array sentinels to a
// minimum count (spec.md §4.2).
type DecoyGenerator interface {
	Decoy(alg HashAlgorithm) (string, error)
}

// CSPRNGSaltProvider is the default SaltProvider: 128 bits of entropy,
// base64url-no-pad encoded (22 characters), matching the reference
// disclosures spec.md §3 describes.
type CSPRNGSaltProvider struct{}

func (CSPRNGSaltProvider) Salt() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("sdjwt: generating salt: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// digestByteLen returns the raw digest length in bytes for alg, used by
// RandomDecoyGenerator so decoys are byte-for-byte indistinguishable from a
// real digest of the same algorithm.
func digestByteLen(alg HashAlgorithm) int {
	switch alg {
	case HashSHA256, HashSHA3256:
		return 32
	case HashSHA384, HashSHA3384:
		return 48
	case HashSHA512, HashSHA3512:
		return 64
	default:
		return 32
	}
}

// RandomDecoyGenerator is the default DecoyGenerator: uniformly random bytes
// of the same length as a real digest under alg.
type RandomDecoyGenerator struct{}

func (RandomDecoyGenerator) Decoy(alg HashAlgorithm) (string, error) {
	b := make([]byte, digestByteLen(alg))
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("sdjwt: generating decoy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// FactoryConfig configures a Factory (spec.md §4.2, §9 "Config objects").
type FactoryConfig struct {
	// HashAlgorithm defaults to sha-256.
	HashAlgorithm HashAlgorithm
	// SaltProvider defaults to CSPRNGSaltProvider.
	SaltProvider SaltProvider
	// DecoyGen defaults to RandomDecoyGenerator.
	DecoyGen DecoyGenerator
	// FallbackMinimumDigests floors every container's `_sd` length when the
	// container itself does not set MinDigests. Nil means no floor.
	FallbackMinimumDigests *int
}

func (c FactoryConfig) withDefaults() FactoryConfig {
	if c.HashAlgorithm == "" {
		c.HashAlgorithm = DefaultHashAlgorithm
	}
	if c.SaltProvider == nil {
		c.SaltProvider = CSPRNGSaltProvider{}
	}
	if c.DecoyGen == nil {
		c.DecoyGen = RandomDecoyGenerator{}
	}
	return c
}

// Factory is the SdJwtFactory of spec.md §4.2: it turns a Spec into a JWT
// payload plus the list of disclosures that payload's digests refer to.
type Factory struct {
	cfg FactoryConfig
}

// NewFactory builds a Factory, filling unset configuration with the
// documented defaults.
func NewFactory(cfg FactoryConfig) (*Factory, error) {
	cfg = cfg.withDefaults()
	if !cfg.HashAlgorithm.Valid() {
		return nil, fmt.Errorf("sdjwt: unsupported hash algorithm %q", cfg.HashAlgorithm)
	}
	return &Factory{cfg: cfg}, nil
}

// CreateSdJwt implements `createSdJwt(spec) → (payload, disclosures)`.
func (f *Factory) CreateSdJwt(spec *Spec) (map[string]any, []*Disclosure, error) {
	var disclosures []*Disclosure
	payload, err := f.processObject(spec, &disclosures)
	if err != nil {
		return nil, nil, err
	}
	if len(disclosures) > 0 {
		payload["_sd_alg"] = string(f.cfg.HashAlgorithm)
	}
	return payload, disclosures, nil
}

func (f *Factory) minDigests(containerMin *int) int {
	if containerMin != nil {
		return *containerMin
	}
	if f.cfg.FallbackMinimumDigests != nil {
		return *f.cfg.FallbackMinimumDigests
	}
	return 0
}

func (f *Factory) processObject(o *DisclosableObject[any], disclosures *[]*Disclosure) (map[string]any, error) {
	result := map[string]any{}
	var sdDigests []string

	for _, k := range o.Keys {
		if IsReservedClaimName(k) {
			return nil, fmt.Errorf("sdjwt: reserved claim name %q used in spec", k)
		}
		el := o.Children[k]

		if el.Tag == TagNever {
			v, err := f.resolvePlainValue(el.Value, disclosures)
			if err != nil {
				return nil, err
			}
			result[k] = v
			continue
		}

		digest, disc, err := f.makeObjectDisclosure(k, el.Value, disclosures)
		if err != nil {
			return nil, err
		}
		*disclosures = append(*disclosures, disc)
		sdDigests = append(sdDigests, digest)
	}

	sdDigests, err := f.padAndSortDigests(sdDigests, o.MinDigests)
	if err != nil {
		return nil, err
	}
	if len(sdDigests) > 0 {
		result["_sd"] = sdDigests
	}
	return result, nil
}

func (f *Factory) resolvePlainValue(v DisclosableValue[any], disclosures *[]*Disclosure) (any, error) {
	switch v.Shape() {
	case ShapeID:
		return v.Leaf(), nil
	case ShapeObject:
		return f.processObject(v.Object(), disclosures)
	case ShapeArray:
		return f.processArray(v.Array(), disclosures)
	default:
		return nil, fmt.Errorf("sdjwt: unknown disclosable shape")
	}
}

func (f *Factory) makeObjectDisclosure(name string, v DisclosableValue[any], disclosures *[]*Disclosure) (digest string, disc *Disclosure, err error) {
	salt, err := f.cfg.SaltProvider.Salt()
	if err != nil {
		return "", nil, err
	}
	var value any
	switch v.Shape() {
	case ShapeID:
		value = v.Leaf()
	case ShapeObject:
		value, err = f.processObject(v.Object(), disclosures)
	case ShapeArray:
		value, err = f.processArray(v.Array(), disclosures)
	default:
		err = fmt.Errorf("sdjwt: unknown disclosable shape")
	}
	if err != nil {
		return "", nil, err
	}
	disc, err = NewObjectPropertyDisclosure(salt, name, value)
	if err != nil {
		return "", nil, err
	}
	digest, err = disc.Digest(f.cfg.HashAlgorithm)
	if err != nil {
		return "", nil, err
	}
	return digest, disc, nil
}

func (f *Factory) processArray(a *DisclosableArray[any], disclosures *[]*Disclosure) ([]any, error) {
	result := make([]any, 0, len(a.Elements))
	realCount := 0

	for _, el := range a.Elements {
		if el.Tag == TagNever {
			v, err := f.resolvePlainValue(el.Value, disclosures)
			if err != nil {
				return nil, err
			}
			result = append(result, v)
			continue
		}

		salt, err := f.cfg.SaltProvider.Salt()
		if err != nil {
			return nil, err
		}
		var value any
		switch el.Value.Shape() {
		case ShapeID:
			value = el.Value.Leaf()
		case ShapeObject:
			value, err = f.processObject(el.Value.Object(), disclosures)
		case ShapeArray:
			value, err = f.processArray(el.Value.Array(), disclosures)
		default:
			err = fmt.Errorf("sdjwt: unknown disclosable shape")
		}
		if err != nil {
			return nil, err
		}

		disc, err := NewArrayElementDisclosure(salt, value)
		if err != nil {
			return nil, err
		}
		*disclosures = append(*disclosures, disc)

		digest, err := disc.Digest(f.cfg.HashAlgorithm)
		if err != nil {
			return nil, err
		}
		result = append(result, map[string]any{"...": digest})
		realCount++
	}

	floor := f.minDigests(a.MinDigests)
	for i := 0; i < floor-realCount; i++ {
		decoyDigest, err := f.cfg.DecoyGen.Decoy(f.cfg.HashAlgorithm)
		if err != nil {
			return nil, err
		}
		pos, err := randIntN(len(result) + 1)
		if err != nil {
			return nil, err
		}
		result = insertAt(result, pos, map[string]any{"...": decoyDigest})
	}

	return result, nil
}

func (f *Factory) padAndSortDigests(real []string, containerMin *int) ([]string, error) {
	floor := f.minDigests(containerMin)
	digests := append([]string{}, real...)
	for len(digests) < floor {
		decoy, err := f.cfg.DecoyGen.Decoy(f.cfg.HashAlgorithm)
		if err != nil {
			return nil, err
		}
		digests = append(digests, decoy)
	}
	sort.Strings(digests)
	return digests, nil
}

func insertAt(s []any, pos int, v any) []any {
	s = append(s, nil)
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}

func randIntN(n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
