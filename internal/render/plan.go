package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sourceplane/pressplan/internal/model"
)

// Format is an output encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// FormatForPath picks the format from a file extension, defaulting to JSON
func FormatForPath(path string) Format {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Renderer encodes plans, reports and verification results
type Renderer struct{}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderJSON renders a document as indented JSON
func (r *Renderer) RenderJSON(doc interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RenderYAML renders a document as YAML
func (r *Renderer) RenderYAML(doc interface{}) ([]byte, error) {
	return yaml.Marshal(doc)
}

// Render encodes a document in the given format
func (r *Renderer) Render(doc interface{}, format Format) ([]byte, error) {
	if format == FormatYAML {
		return r.RenderYAML(doc)
	}
	return r.RenderJSON(doc)
}

// Write encodes a document to w
func (r *Renderer) Write(w io.Writer, doc interface{}, format Format) error {
	data, err := r.Render(doc, format)
	if err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteFile writes a document to path (JSON or YAML based on extension)
func (r *Renderer) WriteFile(doc interface{}, path string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := r.Render(doc, FormatForPath(path))
	if err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// DebugDump outputs debug information about the plan
func (r *Renderer) DebugDump(plan *model.Plan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Plan: %s", plan.Metadata.Name)
	if plan.Metadata.ID != "" {
		fmt.Fprintf(&sb, " (%s)", plan.Metadata.ID)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Shift: %d min, break [%d,%d)\n", plan.Spec.ShiftDurationMinutes, plan.Spec.BreakStart, plan.Spec.BreakEnd)
	if plan.Spec.ReplannedAt != nil {
		fmt.Fprintf(&sb, "Replanned at: %d (parent %s)\n", *plan.Spec.ReplannedAt, plan.Metadata.ParentID)
	}
	if plan.Spec.LockedUntil != nil {
		fmt.Fprintf(&sb, "Locked until: %d (%d tasks)\n", *plan.Spec.LockedUntil, plan.Spec.LockedTasks)
	}
	fmt.Fprintf(&sb, "Tasks: %d\n\n", len(plan.Tasks))

	for _, t := range plan.Tasks {
		fmt.Fprintf(&sb, "Task: %s / %s\n", t.PartName, t.OperationName)
		fmt.Fprintf(&sb, "  Kind: %s\n", t.Kind)
		fmt.Fprintf(&sb, "  Machine: %s\n", t.MachineName)
		fmt.Fprintf(&sb, "  Window: [%d,%d)\n", t.StartTime, t.EndTime)
		if t.Kind == model.KindProduction {
			fmt.Fprintf(&sb, "  Quantity: %d\n", t.Quantity)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
