// Package sdjwtconfig loads this module's ambient configuration: the
// hash/decoy policy a Spec factory defaults to, the type-metadata cache's
// TTL and extends-chain depth limit, issuer-key-resolution timeouts, and
// key-binding/schema-conformance enforcement toggles — grounded on the
// teacher's pkg/configuration/config.go (envconfig points at a YAML file,
// creasty/defaults seeds zero values, go-playground/validator checks the
// result).
package sdjwtconfig

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/go-playground/validator/v10"

	"github.com/eudiwallet/go-sdjwt/pkg/logger"
)

// Cfg is this module's root configuration document.
type Cfg struct {
	Log               Log               `yaml:"log"`
	Hash              Hash              `yaml:"hash"`
	TypeMetadata      TypeMetadata      `yaml:"type_metadata"`
	IssuerKey         IssuerKey         `yaml:"issuer_key"`
	KeyBinding        KeyBinding        `yaml:"key_binding"`
	SchemaConformance SchemaConformance `yaml:"schema_conformance"`
}

// Log configures pkg/logger.New.
type Log struct {
	Production bool   `yaml:"production" default:"false"`
	Path       string `yaml:"path"`
}

// Hash configures the default digest algorithm and decoy-digest policy a
// Spec factory applies when an issuer doesn't override them per-container
// (spec.md §9's "defaults" open question).
type Hash struct {
	Algorithm               string `yaml:"algorithm" default:"sha-256" validate:"omitempty,oneof=sha-256 sha-384 sha-512 sha3-256 sha3-384 sha3-512"`
	MinimumDigestsPerObject int    `yaml:"minimum_digests_per_object" default:"0" validate:"gte=0"`
	DecoyDigestsEnabled     bool   `yaml:"decoy_digests_enabled" default:"true"`
}

// TypeMetadata configures TypeMetadataCache and the extends-chain resolver.
type TypeMetadata struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" default:"3600" validate:"gt=0"`
	MaxExtendsDepth int `yaml:"max_extends_depth" default:"32" validate:"gt=0,lte=32"`
}

// IssuerKey configures IssuerKeyResolver's network-facing strategies.
type IssuerKey struct {
	FetchTimeoutSeconds int    `yaml:"fetch_timeout_seconds" default:"5" validate:"gt=0"`
	TrustedRootsPEMPath string `yaml:"trusted_roots_pem_path" validate:"omitempty"`
}

// KeyBinding configures the verifier's key-binding enforcement policy.
type KeyBinding struct {
	Required                bool `yaml:"required" default:"true"`
	AllowedClockSkewSeconds int  `yaml:"allowed_clock_skew_seconds" default:"30" validate:"gte=0"`
}

// SchemaConformance configures pkg/validator's optional JSON-Schema check.
type SchemaConformance struct {
	Enabled             bool `yaml:"enabled" default:"false"`
	FetchTimeoutSeconds int  `yaml:"fetch_timeout_seconds" default:"5" validate:"gt=0"`
}

type envVars struct {
	ConfigYAML string `envconfig:"SDJWT_CONFIG_YAML" required:"true"`
}

// New reads the YAML file named by the SDJWT_CONFIG_YAML environment
// variable, seeds it with struct-tag defaults, and validates the result.
func New(ctx context.Context) (*Cfg, error) {
	log := logger.NewSimple("sdjwtconfig")
	log.Info("reading SDJWT_CONFIG_YAML")

	env := envVars{}
	if err := envconfig.Process("", &env); err != nil {
		return nil, err
	}

	return Load(env.ConfigYAML)
}

// Load reads and validates the YAML configuration document at path,
// independent of the environment-variable lookup New performs.
func Load(path string) (*Cfg, error) {
	cfg := &Cfg{}
	if err := defaults.Set(cfg); err != nil {
		return nil, err
	}

	configFile, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fileInfo.IsDir() {
		return nil, errors.New("sdjwtconfig: config path is a directory")
	}

	if err := yaml.Unmarshal(configFile, cfg); err != nil {
		return nil, err
	}

	if err := Check(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Check runs struct-tag validation over s, tagging field names from their
// yaml tag so validation errors reference the config file's own vocabulary
// rather than Go field names.
func Check(s any) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate.Struct(s)
}
