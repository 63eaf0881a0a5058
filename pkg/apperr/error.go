// Package apperr renders this module's typed errors (pkg/sdjwt's
// ParsingError/InvalidJWTError/KeyBindingError/SdJwtVcError/
// DefinitionViolation, pkg/validator's schema failures, and
// go-playground/validator struct-tag failures from pkg/sdjwtconfig) into a
// single RFC 7807-shaped envelope, grounded on the teacher's
// pkg/helpers/error.go NewErrorFromError dispatch (the mongo/jsonschema
// document-store branches dropped: this module has no datastore).
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/moogar0880/problems"

	"github.com/eudiwallet/go-sdjwt/pkg/sdjwt"
)

// Error is the library's uniform error envelope: a machine-readable Title
// plus structured Details.
type Error struct {
	Title string `json:"title"`
	Err   any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %+v", e.Title, e.Err)
	}
	return e.Title
}

// New builds a titled Error with no structured details.
func New(title string) *Error { return &Error{Title: title} }

// NewDetails builds a titled Error carrying structured details.
func NewDetails(title string, details any) *Error { return &Error{Title: title, Err: details} }

// FromError classifies err into a titled Error, recognizing this module's
// own typed errors plus the ecosystem error shapes its dependencies raise.
// Anything unrecognized becomes a plain "internal_error" with err's message
// as its detail, mirroring the teacher's NewErrorFromError fallback.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*Error); ok {
		return appErr
	}

	var parsingErr *sdjwt.ParsingError
	if errors.As(err, &parsingErr) {
		return &Error{Title: "parsing_error", Err: parsingErr.Error()}
	}

	var invalidJWTErr *sdjwt.InvalidJWTError
	if errors.As(err, &invalidJWTErr) {
		return &Error{Title: "invalid_jwt", Err: invalidJWTErr.Error()}
	}

	var invalidDisclosuresErr *sdjwt.InvalidDisclosuresError
	if errors.As(err, &invalidDisclosuresErr) {
		return &Error{Title: "invalid_disclosures", Err: invalidDisclosuresErr.Disclosures}
	}

	var kbErr *sdjwt.KeyBindingError
	if errors.As(err, &kbErr) {
		return &Error{Title: "key_binding_failed", Err: string(kbErr.Reason)}
	}

	var vcErr *sdjwt.SdJwtVcError
	if errors.As(err, &vcErr) {
		details := make([]string, len(vcErr.Errors))
		for i, e := range vcErr.Errors {
			details[i] = e.Error()
		}
		return &Error{Title: string(vcErr.Detail), Err: details}
	}

	var defViolation *sdjwt.DefinitionViolation
	if errors.As(err, &defViolation) {
		return &Error{Title: "definition_violation", Err: formatDefinitionViolation(defViolation)}
	}

	var jsonTypeErr *json.UnmarshalTypeError
	if errors.As(err, &jsonTypeErr) {
		return &Error{Title: "json_type_error", Err: formatJSONUnmarshalTypeError(jsonTypeErr)}
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return &Error{Title: "config_validation_error", Err: formatValidationErrors(validationErrs)}
	}

	return &Error{Title: "internal_error", Err: err.Error()}
}

func formatDefinitionViolation(v *sdjwt.DefinitionViolation) []map[string]any {
	out := make([]map[string]any, len(v.Violations))
	for i, violation := range v.Violations {
		out[i] = map[string]any{
			"kind":    string(violation.Kind),
			"path":    violation.Path.String(),
			"message": violation.Msg,
		}
	}
	return out
}

func formatValidationErrors(err validator.ValidationErrors) []map[string]any {
	out := make([]map[string]any, 0, len(err))
	for _, e := range err {
		out = append(out, map[string]any{
			"field":      e.Field(),
			"namespace":  e.Namespace(),
			"validation": e.Tag(),
			"param":      e.Param(),
		})
	}
	return out
}

func formatJSONUnmarshalTypeError(err *json.UnmarshalTypeError) map[string]any {
	return map[string]any{
		"field":    err.Field,
		"expected": err.Type.Kind().String(),
		"actual":   err.Value,
	}
}

// Problem renders err as an RFC 7807 problem document at the given HTTP
// status, for any command-line or service surface that speaks HTTP
// problem+json back to a caller.
func Problem(status int, err error) *problems.Problem {
	classified := FromError(err)
	problem := problems.NewStatusProblem(status)
	problem.Title = classified.Title
	problem.Detail = classified.Error()
	return problem
}
