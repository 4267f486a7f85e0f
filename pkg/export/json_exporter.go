package export

import (
	"encoding/json"
	"fmt"
)

// JSONExporter renders a snapshot value as indented JSON, the
// human-readable structured text format of the original export.
type JSONExporter struct{}

// NewJSONExporter builds a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Render marshals the payload with indentation and a trailing newline.
func (e *JSONExporter) Render(payload interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	return append(data, '\n'), nil
}
