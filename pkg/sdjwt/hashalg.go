package sdjwt

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// HashAlgorithm names one of the six digest algorithms SD-JWT allows in the
// `_sd_alg` claim (spec.md §3, §6). Unlike the teacher's
// pkg/sdjwtvc/keybinding.go getHashFromAlgorithm, sha3-384 is included.
type HashAlgorithm string

const (
	HashSHA256  HashAlgorithm = "sha-256"
	HashSHA384  HashAlgorithm = "sha-384"
	HashSHA512  HashAlgorithm = "sha-512"
	HashSHA3256 HashAlgorithm = "sha3-256"
	HashSHA3384 HashAlgorithm = "sha3-384"
	HashSHA3512 HashAlgorithm = "sha3-512"

	// DefaultHashAlgorithm is the factory's default per spec.md §9.
	DefaultHashAlgorithm = HashSHA256
)

// Sum returns the raw digest bytes of data under alg.
func (alg HashAlgorithm) Sum(data []byte) ([]byte, error) {
	switch alg {
	case HashSHA256:
		sum := sha256.Sum256(data)
		return sum[:], nil
	case HashSHA384:
		sum := sha512.Sum384(data)
		return sum[:], nil
	case HashSHA512:
		sum := sha512.Sum512(data)
		return sum[:], nil
	case HashSHA3256:
		sum := sha3.Sum256(data)
		return sum[:], nil
	case HashSHA3384:
		sum := sha3.Sum384(data)
		return sum[:], nil
	case HashSHA3512:
		sum := sha3.Sum512(data)
		return sum[:], nil
	default:
		return nil, fmt.Errorf("sdjwt: unsupported hash algorithm %q", alg)
	}
}

// Digest returns base64url-no-pad(alg(data)), the DisclosureDigest form
// defined in spec.md §3.
func (alg HashAlgorithm) Digest(data []byte) (string, error) {
	sum, err := alg.Sum(data)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(sum), nil
}

// Valid reports whether alg is one of the six supported algorithms.
func (alg HashAlgorithm) Valid() bool {
	switch alg {
	case HashSHA256, HashSHA384, HashSHA512, HashSHA3256, HashSHA3384, HashSHA3512:
		return true
	default:
		return false
	}
}
