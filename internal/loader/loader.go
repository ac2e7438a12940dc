package loader

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sourceplane/pressplan/internal/model"
	"github.com/sourceplane/pressplan/internal/schema"
)

// Loader reads request and plan documents. JSON input is accepted as YAML.
type Loader struct {
	validator *schema.Validator
}

// New creates a loader; a nil validator skips schema checks
func New(validator *schema.Validator) *Loader {
	return &Loader{validator: validator}
}

// LoadRequest loads and parses a request file; "-" reads stdin
func (l *Loader) LoadRequest(path string) (*model.ProductionRequest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}
	return l.ParseRequest(data)
}

// ParseRequest validates a request document and decodes it with defaults applied
func (l *Loader) ParseRequest(data []byte) (*model.ProductionRequest, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse request YAML: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("request document is empty")
	}

	if l.validator != nil {
		if err := l.validator.ValidateRequest(doc); err != nil {
			return nil, fmt.Errorf("request failed schema validation: %w", err)
		}
	}

	applyMachineDefaults(doc)

	var req model.ProductionRequest
	if err := decode(doc, &req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	return &req, nil
}

// LoadPlan loads and parses a plan file; "-" reads stdin
func (l *Loader) LoadPlan(path string) (*model.Plan, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return l.ParsePlan(data)
}

// ParsePlan validates and decodes a plan document
func (l *Loader) ParsePlan(data []byte) (*model.Plan, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse plan YAML: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("plan document is empty")
	}

	if l.validator != nil {
		if err := l.validator.ValidatePlan(doc); err != nil {
			return nil, fmt.Errorf("plan failed schema validation: %w", err)
		}
	}

	var plan model.Plan
	if err := decode(doc, &plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	return &plan, nil
}

// applyMachineDefaults treats a machine without an "available" key as available
func applyMachineDefaults(doc map[string]interface{}) {
	machines, ok := doc["machines"].([]interface{})
	if !ok {
		return
	}
	for _, item := range machines {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if _, set := m["available"]; !set {
			m["available"] = true
		}
	}
}

func decode(doc interface{}, out interface{}) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

func readFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
