package validator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonschema"

	"github.com/eudiwallet/go-sdjwt/pkg/sdjwt"
)

func marshalSchema(schema map[string]any) ([]byte, error) {
	return json.Marshal(schema)
}

// SchemaFetcher retrieves the raw bytes of a remote JSON Schema document.
// HTTP fetching is a collaborator boundary this library does not implement
// (spec.md §9): callers provide a concrete fetcher (a plain net/http client,
// a cache, a test double), the way pkg/sdjwtvc's JwtVcIssuerMetadataFetcher
// does for the `.well-known/jwt-vc-issuer` document.
type SchemaFetcher interface {
	FetchSchema(ctx context.Context, uri string) ([]byte, error)
}

// SchemaConformance checks a recreated claim set against the JSON Schema
// carried inline (VCTM `schema`) or by reference (`schema_uri`, optionally
// pinned by `schema_uri#integrity`) in SD-JWT-VC type metadata (spec.md
// §4.10's "optional schema conformance" extension), grounded on the
// teacher's pkg/helpers/validate.go ValidateDocumentData.
//
// Exactly one of inlineSchema/schemaURI should be set, mirroring the
// mutual exclusivity VCTM itself documents for these two fields; if both are
// empty, SchemaConformance is a no-op (schema conformance is optional).
func SchemaConformance(ctx context.Context, claims map[string]any, inlineSchema map[string]any, schemaURI, schemaURIIntegrity string, fetcher SchemaFetcher) error {
	compiler := jsonschema.NewCompiler()

	schema, err := resolveSchema(ctx, compiler, inlineSchema, schemaURI, schemaURIIntegrity, fetcher)
	if err != nil {
		return err
	}
	if schema == nil {
		return nil
	}

	result := schema.Validate(claims)
	if !result.IsValid() {
		return &sdjwt.SdJwtVcError{
			Detail: sdjwt.DetailTypeMetadataValidationFailure,
			Cause:  fmt.Errorf("schema conformance failed"),
		}
	}
	return nil
}

func resolveSchema(ctx context.Context, compiler *jsonschema.Compiler, inlineSchema map[string]any, schemaURI, schemaURIIntegrity string, fetcher SchemaFetcher) (*jsonschema.Schema, error) {
	switch {
	case len(inlineSchema) > 0:
		raw, err := marshalSchema(inlineSchema)
		if err != nil {
			return nil, err
		}
		return compiler.Compile(raw)

	case schemaURI != "":
		if fetcher == nil {
			return nil, fmt.Errorf("sdjwt: schema_uri %q set but no SchemaFetcher was provided", schemaURI)
		}
		raw, err := fetcher.FetchSchema(ctx, schemaURI)
		if err != nil {
			return nil, fmt.Errorf("sdjwt: fetching schema_uri %q: %w", schemaURI, err)
		}
		if schemaURIIntegrity != "" {
			integrity, err := sdjwt.ParseDocumentIntegrity(schemaURIIntegrity)
			if err != nil {
				return nil, fmt.Errorf("sdjwt: parsing schema_uri#integrity: %w", err)
			}
			if !integrity.Verify(raw) {
				return nil, fmt.Errorf("sdjwt: schema_uri %q failed its schema_uri#integrity check", schemaURI)
			}
		}
		return compiler.Compile(raw)

	default:
		return nil, nil
	}
}
