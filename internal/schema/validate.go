package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	docschema "github.com/invopop/jsonschema"

	"github.com/usestring/labelscan/pkg/types"
)

// ErrInvalid is returned by ValidationResult.Err for values that do not
// match the schema.
var ErrInvalid = errors.New("result does not match schema")

// ValidationResult contains the result of validating a single value.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Err returns nil for a valid result and an error wrapping ErrInvalid
// listing every violation otherwise.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(r.Errors, "; "))
}

// Validator validates JSON data against a schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewOkValidator compiles OkSchema.
func NewOkValidator() (*Validator, error) {
	return NewValidator(OkSchema())
}

// NewValidator compiles a schema document into a validator.
func NewValidator(doc *docschema.Schema) (*Validator, error) {
	// Convert to JSON and back to get a clean map[string]any
	schemaJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}

	var schemaValue any
	if err := json.Unmarshal(schemaJSON, &schemaValue); err != nil {
		return nil, fmt.Errorf("unmarshaling schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()

	// Add the schema as a resource (doc must be valid json value, not io.Reader)
	if err := compiler.AddResource("ok.json", schemaValue); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}

	compiled, err := compiler.Compile("ok.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}

	return &Validator{schema: compiled}, nil
}

// Validate validates raw JSON against the schema.
func (v *Validator) Validate(data []byte) *ValidationResult {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []string{fmt.Sprintf("invalid JSON: %s", err.Error())},
		}
	}
	return v.ValidateValue(value)
}

// ValidateOk validates a decoded result in the form it would be exported.
func (v *Validator) ValidateOk(ok *types.Ok) *ValidationResult {
	if ok == nil {
		return &ValidationResult{Valid: false, Errors: []string{"no result"}}
	}
	value, err := types.ToAny(ok)
	if err != nil {
		return &ValidationResult{Valid: false, Errors: []string{err.Error()}}
	}
	return v.ValidateValue(value)
}

// ValidateValue validates an already-parsed value against the schema.
func (v *Validator) ValidateValue(value any) *ValidationResult {
	err := v.schema.Validate(value)
	if err == nil {
		return &ValidationResult{Valid: true}
	}

	return &ValidationResult{
		Valid:  false,
		Errors: extractValidationErrors(err),
	}
}

// extractValidationErrors extracts human-readable error messages from a validation error.
func extractValidationErrors(err error) []string {
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		return extractDetailedErrors(validationErr)
	}
	return []string{err.Error()}
}

// printer is a default English printer for localized error messages.
var printer = message.NewPrinter(language.English)

// extractDetailedErrors flattens a ValidationError into sorted, deduplicated
// "path: message" lines.
func extractDetailedErrors(err *jsonschema.ValidationError) []string {
	errorsByPath := make(map[string][]string)
	collectErrors(err, errorsByPath)

	seen := make(map[string]bool)
	var result []string
	for path, msgs := range errorsByPath {
		for _, msg := range msgs {
			line := msg
			if path != "" {
				line = path + ": " + msg
			}
			if !seen[line] {
				seen[line] = true
				result = append(result, line)
			}
		}
	}
	sort.Strings(result)
	return result
}

// collectErrors recursively collects leaf errors (those without causes).
func collectErrors(err *jsonschema.ValidationError, errorsByPath map[string][]string) {
	instancePath := ""
	if len(err.InstanceLocation) > 0 {
		instancePath = "/" + strings.Join(err.InstanceLocation, "/")
	}

	if err.ErrorKind != nil && len(err.Causes) == 0 {
		errMsg := err.ErrorKind.LocalizedString(printer)
		// $ref and anyOf wrappers only point at other errors
		if !strings.HasPrefix(errMsg, "$ref ") && !strings.HasPrefix(errMsg, "doesn't validate with") {
			errorsByPath[instancePath] = append(errorsByPath[instancePath], errMsg)
		}
	}

	for _, cause := range err.Causes {
		collectErrors(cause, errorsByPath)
	}
}
