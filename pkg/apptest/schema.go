package apptest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Violation is one schema failure at a location in the instance.
type Violation struct {
	// Field is the instance location in dot notation; empty for the root.
	Field   string
	Message string
}

// SchemaError lists every violation found while validating a document.
type SchemaError struct {
	Violations []Violation
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		if v.Field == "" {
			parts[i] = v.Message
		} else {
			parts[i] = v.Field + ": " + v.Message
		}
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// ValidateAgainstSchema validates data against a JSON Schema document
// (draft 2020-12 unless the schema says otherwise). data may be a Go
// value, or JSON text as []byte or json.RawMessage. Violations are
// returned as *SchemaError.
func ValidateAgainstSchema(schemaJSON string, data any) error {
	schema, err := compileSchema(schemaJSON)
	if err != nil {
		return err
	}

	instance, err := toInstance(data)
	if err != nil {
		return err
	}

	if err := schema.Validate(instance); err != nil {
		validationErr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return fmt.Errorf("schema validation: %w", err)
		}
		result := &SchemaError{}
		collectViolations(validationErr, result)
		return result
	}
	return nil
}

func compileSchema(schemaJSON string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource("schema.json", strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return schema, nil
}

// toInstance converts data into the decoded-JSON shape the validator
// expects.
func toInstance(data any) (any, error) {
	var raw []byte
	switch v := data.(type) {
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode instance: %w", err)
		}
		raw = encoded
	}

	var instance any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&instance); err != nil {
		return nil, fmt.Errorf("failed to decode instance: %w", err)
	}
	return instance, nil
}

func collectViolations(err *jsonschema.ValidationError, result *SchemaError) {
	if len(err.Causes) == 0 {
		result.Violations = append(result.Violations, Violation{
			Field:   fieldFromPointer(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectViolations(cause, result)
	}
}

// fieldFromPointer converts a JSON Pointer to dot notation.
func fieldFromPointer(ptr string) string {
	if ptr == "" || ptr == "/" {
		return ""
	}
	return strings.ReplaceAll(strings.TrimPrefix(ptr, "/"), "/", ".")
}
