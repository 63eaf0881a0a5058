// Package sdjwtvc implements the SD-JWT-VC profile on top of pkg/sdjwt:
// type metadata (VCTM), issuer key-source resolution, registered-claims
// enforcement, and the VC-flavored verifier pipeline (SPEC_FULL.md §4.10-4.12).
package sdjwtvc

import (
	"fmt"

	"github.com/eudiwallet/go-sdjwt/pkg/sdjwt"
)

// ClaimDisclosurePolicy is SD-JWT-VC type metadata's three-valued
// `claims[].sd` field (spec.md §6), a strictly wider set than the core
// Disclosable schema's two-valued Tag.
type ClaimDisclosurePolicy string

const (
	SDAlways  ClaimDisclosurePolicy = "always"
	SDAllowed ClaimDisclosurePolicy = "allowed"
	SDNever   ClaimDisclosurePolicy = "never"
)

// VCTM is SD-JWT-VC Type Metadata: the display/rendering and claim schema
// document fetched by `vct` (spec.md §4.7/§6).
type VCTM struct {
	VCT         string        `json:"vct"`
	Name        string        `json:"name,omitempty"`
	Description string        `json:"description,omitempty"`
	Comment     string        `json:"$comment,omitempty"`
	Display     []VCTMDisplay `json:"display,omitempty"`
	Claims      []Claim       `json:"claims,omitempty"`

	Schema             map[string]any `json:"schema,omitempty"`
	SchemaURI          string         `json:"schema_uri,omitempty"`
	SchemaURIIntegrity string         `json:"schema_uri#integrity,omitempty"`

	Extends          string `json:"extends,omitempty"`
	ExtendsIntegrity string `json:"extends#integrity,omitempty"`
}

// VCTMDisplay carries language-tagged display metadata for one locale.
type VCTMDisplay struct {
	Lang        string    `json:"lang"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Rendering   Rendering `json:"rendering,omitempty"`
}

// Rendering groups the simple and SVG-template rendering hints for a locale.
type Rendering struct {
	Simple       SimpleRendering `json:"simple,omitempty"`
	SVGTemplates []SVGTemplates  `json:"svg_templates,omitempty"`
}

// SimpleRendering is a logo-plus-colors rendering hint.
type SimpleRendering struct {
	Logo            Logo   `json:"logo,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	TextColor       string `json:"text_color,omitempty"`
}

// Logo locates and describes a display logo.
type Logo struct {
	URI          string `json:"uri"`
	URIIntegrity string `json:"uri#integrity,omitempty"`
	AltText      string `json:"alt_text,omitempty"`
}

// SVGTemplates names an SVG rendering template and the conditions it applies under.
type SVGTemplates struct {
	URI          string                `json:"uri"`
	URIIntegrity string                `json:"uri#integrity,omitempty"`
	Properties   SVGTemplateProperties `json:"properties,omitempty"`
}

// SVGTemplateProperties narrows when an SVG template applies.
type SVGTemplateProperties struct {
	Orientation string `json:"orientation,omitempty"`
	ColorScheme string `json:"color_scheme,omitempty"`
	Contrast    string `json:"contrast,omitempty"`
}

// Claim describes one claim path's disclosure policy and display metadata.
// Path uses pkg/sdjwt's ClaimPath (rather than the teacher's []*string) so it
// composes directly with FindElement, Recreate's trace, and the selector.
type Claim struct {
	Path    sdjwt.ClaimPath `json:"path"`
	Display []ClaimDisplay  `json:"display,omitempty"`
	SD      ClaimDisclosurePolicy `json:"sd,omitempty"`
	SVGID   string          `json:"svg_id,omitempty"`
}

// ClaimDisplay is one locale's label/description for a Claim.
type ClaimDisplay struct {
	Lang        string `json:"lang"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// ToDefinition builds a pkg/sdjwt Definition tree out of the VCTM's flat
// claims list, inserting each Claim at its Path. Parent containers along the
// way are created as NeverSelectively objects with no metadata of their own;
// intermediate path segments must be named keys, and only leaf claims carry
// ClaimMetadata.
func (v *VCTM) ToDefinition() (*sdjwt.Definition, error) {
	root := sdjwt.NewDefinition()
	for _, c := range v.Claims {
		if len(c.Path) == 0 {
			return nil, fmt.Errorf("sdjwtvc: claim has an empty path")
		}
		if err := insertClaim(root, c); err != nil {
			return nil, fmt.Errorf("sdjwtvc: claim %s: %w", c.Path, err)
		}
	}
	return root, nil
}

// insertClaim walks/creates containers down to c.Path's parent, then sets
// the leaf element according to c.SD.
func insertClaim(root *sdjwt.Definition, c Claim) error {
	cur := root
	for i, step := range c.Path[:len(c.Path)-1] {
		if step.Wildcard || !step.IsKey() {
			return fmt.Errorf("only named keys are supported for intermediate path segments, got %s at %s", step, c.Path[:i+1])
		}
		existing, ok := cur.Children[step.Key]
		if !ok {
			child := sdjwt.NewDefinition()
			cur.Set(step.Key, sdjwt.NeverSelectively(sdjwt.Obj(child)))
			cur = child
			continue
		}
		if existing.Value.Shape() != sdjwt.ShapeObject {
			return fmt.Errorf("path segment %s already has a non-object definition", c.Path[:i+1])
		}
		cur = existing.Value.Object()
	}

	last := c.Path[len(c.Path)-1]
	if !last.IsKey() {
		return fmt.Errorf("leaf path segment must be a named key, got %s", last)
	}

	leaf := claimMetadata(c)
	var el sdjwt.DisclosableElement[sdjwt.ClaimMetadata]
	if c.SD == SDNever {
		el = sdjwt.NeverSelectively(sdjwt.Id(leaf))
	} else {
		el = sdjwt.AlwaysSelectively(sdjwt.Id(leaf))
	}
	cur.Set(last.Key, el)
	return nil
}

func claimMetadata(c Claim) sdjwt.ClaimMetadata {
	m := sdjwt.ClaimMetadata{DisclosurePolicyIsOptional: c.SD == SDAllowed}
	if len(c.Display) > 0 {
		m.Label = c.Display[0].Label
		m.Description = c.Display[0].Description
	}
	return m
}
