package sdjwt

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentIntegrity(t *testing.T) {
	resource := []byte("hello world")
	sum := sha256.Sum256(resource)
	value := "sha256-" + base64.StdEncoding.EncodeToString(sum[:])

	doc, err := ParseDocumentIntegrity(value)
	require.NoError(t, err)
	require.Len(t, doc.Metadata, 1)
	assert.Equal(t, IntegritySHA256, doc.Metadata[0].Algorithm)
	assert.True(t, doc.Verify(resource))
	assert.False(t, doc.Verify([]byte("tampered")))
}

func TestParseDocumentIntegrityWithOptions(t *testing.T) {
	resource := []byte("payload")
	sum := sha256.Sum256(resource)
	value := "sha256-" + base64.StdEncoding.EncodeToString(sum[:]) + "?ct=application/json"

	doc, err := ParseDocumentIntegrity(value)
	require.NoError(t, err)
	assert.Equal(t, "ct=application/json", doc.Metadata[0].Options)
	assert.True(t, doc.Verify(resource))
}

func TestParseDocumentIntegrityRejectsUnknownAlgorithm(t *testing.T) {
	_, err := ParseDocumentIntegrity("md5-deadbeef")
	assert.Error(t, err)
}

func TestDocumentIntegrityStrongestAlgorithmWins(t *testing.T) {
	resource := []byte("data")
	weakWrong := base64.StdEncoding.EncodeToString([]byte("not the real digest bytes at all"))
	strongSum := sha512.Sum512(resource)

	value := "sha256-" + weakWrong + " sha512-" + base64.StdEncoding.EncodeToString(strongSum[:])
	doc, err := ParseDocumentIntegrity(value)
	require.NoError(t, err)

	// only the sha512 candidate is checked since it's the strongest present,
	// so a bogus sha256 entry alongside a correct sha512 one still verifies.
	assert.True(t, doc.Verify(resource))
}

func TestDocumentIntegrityStringRoundTrip(t *testing.T) {
	sum := sha256.Sum256([]byte("x"))
	value := "sha256-" + base64.StdEncoding.EncodeToString(sum[:])

	doc, err := ParseDocumentIntegrity(value)
	require.NoError(t, err)
	assert.Equal(t, value, doc.String())
}

func TestParseDnsUri(t *testing.T) {
	tts := []struct {
		name          string
		in            string
		wantAuthority string
		wantName      string
		wantQuery     string
		wantErr       bool
	}{
		{name: "no authority", in: "dns:example.com", wantName: "example.com"},
		{name: "with authority", in: "dns://resolver.example/example.com", wantAuthority: "resolver.example", wantName: "example.com"},
		{name: "with query", in: "dns:example.com?type=TXT", wantName: "example.com", wantQuery: "type=TXT"},
		{name: "percent encoded name", in: "dns:ex%61mple.com", wantName: "example.com"},
		{name: "missing prefix", in: "example.com", wantErr: true},
	}

	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDnsUri(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAuthority, got.Authority)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantQuery, got.Query)
		})
	}
}
