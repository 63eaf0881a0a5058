package sdjwtconfig

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mockConfig = []byte(`
log:
  production: true
hash:
  algorithm: sha-384
  minimum_digests_per_object: 2
type_metadata:
  cache_ttl_seconds: 900
  max_extends_depth: 8
issuer_key:
  fetch_timeout_seconds: 3
key_binding:
  required: true
  allowed_clock_skew_seconds: 60
schema_conformance:
  enabled: true
`)

func writeConfig(t *testing.T, dir string, body []byte) string {
	t.Helper()
	path := filepath.Join(dir, "sdjwt.yaml")
	require.NoError(t, os.WriteFile(path, body, 0o600))
	return path
}

func TestLoad_ParsesAndAppliesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), mockConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Log.Production)
	assert.Equal(t, "sha-384", cfg.Hash.Algorithm)
	assert.Equal(t, 2, cfg.Hash.MinimumDigestsPerObject)
	assert.Equal(t, 900, cfg.TypeMetadata.CacheTTLSeconds)
	assert.Equal(t, 8, cfg.TypeMetadata.MaxExtendsDepth)
	assert.Equal(t, 3, cfg.IssuerKey.FetchTimeoutSeconds)
	assert.True(t, cfg.KeyBinding.Required)
	assert.Equal(t, 60, cfg.KeyBinding.AllowedClockSkewSeconds)
	assert.True(t, cfg.SchemaConformance.Enabled)
	// defaulted fields the fixture doesn't set
	assert.True(t, cfg.Hash.DecoyDigestsEnabled)
	assert.Equal(t, 5, cfg.SchemaConformance.FetchTimeoutSeconds)
}

func TestLoad_RejectsUnknownHashAlgorithm(t *testing.T) {
	body := []byte("hash:\n  algorithm: md5\n")
	path := writeConfig(t, t.TempDir(), body)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsDirectoryPath(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestNew_ReadsPathFromEnvironmentVariable(t *testing.T) {
	path := writeConfig(t, t.TempDir(), mockConfig)
	t.Setenv("SDJWT_CONFIG_YAML", path)

	cfg, err := New(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sha-384", cfg.Hash.Algorithm)
}

func TestNew_MissingEnvironmentVariableErrors(t *testing.T) {
	t.Setenv("SDJWT_CONFIG_YAML", "")
	_, err := New(context.Background())
	assert.Error(t, err)
}

func TestCheck_ReportsFieldByYAMLName(t *testing.T) {
	cfg := &Cfg{Hash: Hash{Algorithm: "not-an-algorithm"}}
	err := Check(cfg)
	require.Error(t, err)
	assert.Contains(t, fmt.Sprint(err), "algorithm")
}
