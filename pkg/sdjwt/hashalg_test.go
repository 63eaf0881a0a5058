package sdjwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAlgorithmDigest(t *testing.T) {
	// spec.md §8 scenario 1
	disclosure := "WyJfMjZiYzRMVC1hYzZxMktJNmNCVzVlcyIsImZhbWlseV9uYW1lIiwiTcO2Yml1cyJd"
	want := "uutlBuYeMDyjLLTpf6Jxi7yNkEF35jdyWMn9U7b_RYY"

	got, err := HashSHA256.Digest([]byte(disclosure))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestHashAlgorithmValid(t *testing.T) {
	tts := []struct {
		name string
		alg  HashAlgorithm
		want bool
	}{
		{name: "sha-256", alg: HashSHA256, want: true},
		{name: "sha-384", alg: HashSHA384, want: true},
		{name: "sha-512", alg: HashSHA512, want: true},
		{name: "sha3-256", alg: HashSHA3256, want: true},
		{name: "sha3-384", alg: HashSHA3384, want: true},
		{name: "sha3-512", alg: HashSHA3512, want: true},
		{name: "unknown", alg: HashAlgorithm("md5"), want: false},
	}

	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.alg.Valid())
		})
	}
}

func TestHashAlgorithmAllDistinct(t *testing.T) {
	algs := []HashAlgorithm{HashSHA256, HashSHA384, HashSHA512, HashSHA3256, HashSHA3384, HashSHA3512}
	digests := map[string]bool{}
	for _, alg := range algs {
		d, err := alg.Digest([]byte("same input"))
		require.NoError(t, err)
		assert.False(t, digests[d], "algorithm %s collided with a previous one", alg)
		digests[d] = true
	}
}
