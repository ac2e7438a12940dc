package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/*.schema.yaml
var schemaFS embed.FS

// Validator handles JSON schema validation
type Validator struct {
	requestSchema *jsonschema.Schema
	planSchema    *jsonschema.Schema
}

// NewValidator compiles the embedded request and plan schemas
func NewValidator() (*Validator, error) {
	v := &Validator{}

	requestSchema, err := loadSchema("request")
	if err != nil {
		return nil, fmt.Errorf("failed to load request schema: %w", err)
	}
	v.requestSchema = requestSchema

	planSchema, err := loadSchema("plan")
	if err != nil {
		return nil, fmt.Errorf("failed to load plan schema: %w", err)
	}
	v.planSchema = planSchema

	return v, nil
}

// ValidateRequest validates a decoded request document against the schema
func (v *Validator) ValidateRequest(doc interface{}) error {
	if v.requestSchema == nil {
		return fmt.Errorf("request schema not loaded")
	}
	return validate(v.requestSchema, doc)
}

// ValidatePlan validates a decoded plan document
func (v *Validator) ValidatePlan(doc interface{}) error {
	if v.planSchema == nil {
		return fmt.Errorf("plan schema not loaded")
	}
	return validate(v.planSchema, doc)
}

// validate converts YAML-decoded values into JSON values before validation
func validate(s *jsonschema.Schema, doc interface{}) error {
	value, err := ToJSONValue(doc)
	if err != nil {
		return err
	}
	return s.Validate(value)
}

// ToJSONValue round-trips a decoded document through JSON so numbers and maps
// have the types the schema compiler expects.
func ToJSONValue(doc interface{}) (interface{}, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return value, nil
}

// loadSchema compiles an embedded schema file (YAML)
func loadSchema(name string) (*jsonschema.Schema, error) {
	data, err := schemaFS.ReadFile(fmt.Sprintf("schemas/%s.schema.yaml", name))
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var schemaData interface{}
	if err := yaml.Unmarshal(data, &schemaData); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}

	jsonData, err := json.Marshal(schemaData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	schemaURI := fmt.Sprintf("pressplan://%s/schema.json", name)
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	compiler.LoadURL = func(url string) (io.ReadCloser, error) {
		if url == schemaURI {
			return io.NopCloser(strings.NewReader(string(jsonData))), nil
		}
		return nil, fmt.Errorf("external schema reference not supported: %s", url)
	}

	schema, err := compiler.Compile(schemaURI)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return schema, nil
}
