package validator

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemasFS embed.FS

// ValidationError represents a single validation error.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationResult holds the result of schema validation.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Validator validates generated question sets against the embedded
// QuestionSet schema before they enter the evaluation pipeline.
type Validator struct {
	questionSetSchema *jsonschema.Schema
}

// New creates a Validator with the embedded schemas compiled.
func New() (*Validator, error) {
	schemaData, err := schemasFS.ReadFile("schemas/QuestionSet.schema.json")
	if err != nil {
		return nil, fmt.Errorf("read question set schema: %w", err)
	}

	var schemaDoc interface{}
	if err := json.Unmarshal(schemaData, &schemaDoc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("questionset.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	schema, err := c.Compile("questionset.json")
	if err != nil {
		return nil, fmt.Errorf("compile question set schema: %w", err)
	}

	return &Validator{questionSetSchema: schema}, nil
}

// ValidateQuestionSet validates a raw question set document against the
// QuestionSet schema.
func (v *Validator) ValidateQuestionSet(setJSON []byte) ValidationResult {
	var doc interface{}
	if err := json.Unmarshal(setJSON, &doc); err != nil {
		return ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Path:    "/",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			}},
		}
	}

	err := v.questionSetSchema.Validate(doc)
	if err == nil {
		return ValidationResult{Valid: true}
	}

	var errors []ValidationError
	if ve, ok := err.(*jsonschema.ValidationError); ok {
		errors = extractErrors(ve)
	} else {
		errors = []ValidationError{{
			Path:    "/",
			Message: err.Error(),
		}}
	}

	return ValidationResult{Valid: false, Errors: errors}
}

func extractErrors(ve *jsonschema.ValidationError) []ValidationError {
	var errors []ValidationError

	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			errors = append(errors, extractErrors(cause)...)
		}
	} else {
		path := "/" + strings.Join(ve.InstanceLocation, "/")
		errors = append(errors, ValidationError{
			Path:    path,
			Message: ve.Error(),
		})
	}

	return errors
}
