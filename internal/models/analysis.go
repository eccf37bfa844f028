package models

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// LexicalResult is the outcome of the lexical stage.
type LexicalResult struct {
	Valid     bool     `json:"valid" yaml:"valid"`
	Tokens    []string `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Header    string   `json:"header,omitempty" yaml:"header,omitempty"`
	Payload   string   `json:"payload,omitempty" yaml:"payload,omitempty"`
	Signature string   `json:"signature,omitempty" yaml:"signature,omitempty"`
	Error     string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// DecodeResult holds the decoded header and payload as JSON text, not yet parsed.
// On the wire it is the two-element array [header, payload].
type DecodeResult struct {
	HeaderJSON  string `yaml:"header_json"`
	PayloadJSON string `yaml:"payload_json"`
}

// MarshalJSON encodes the result as a two-element array.
func (d DecodeResult) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{d.HeaderJSON, d.PayloadJSON})
}

// UnmarshalJSON decodes the two-element array form.
func (d *DecodeResult) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("decode result: expected 2 elements, got %d", len(pair))
	}
	d.HeaderJSON = pair[0]
	d.PayloadJSON = pair[1]
	return nil
}

// SyntaxResult is the outcome of the syntax stage.
type SyntaxResult struct {
	Valid   bool           `json:"valid" yaml:"valid"`
	Errors  []string       `json:"errors" yaml:"errors"`
	Header  map[string]any `json:"header" yaml:"header"`
	Payload map[string]any `json:"payload" yaml:"payload"`
}

// SemanticResult is the outcome of the semantic stage.
type SemanticResult struct {
	Valid     bool           `json:"valid" yaml:"valid"`
	Header    map[string]any `json:"header,omitempty" yaml:"header,omitempty"`
	Payload   map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`
	Error     string         `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind string         `json:"error_type,omitempty" yaml:"error_kind,omitempty"`
}

// VerifyResult is the outcome of a signature verification. Valid=false is a
// normal verdict, not an error.
type VerifyResult struct {
	Valid     bool           `json:"valid" yaml:"valid"`
	Algorithm string         `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
	Header    map[string]any `json:"header,omitempty" yaml:"header,omitempty"`
	Payload   map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`
	Error     string         `json:"error,omitempty" yaml:"error,omitempty"`

	// Raw is the full response body as returned by the service.
	Raw map[string]any `json:"-" yaml:"-"`
}

// Health is the liveness report of the analysis service.
type Health struct {
	Status  string `json:"status" yaml:"status"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Healthy reports whether the service declared itself healthy.
func (h Health) Healthy() bool {
	return h.Status == "healthy"
}

// PrettyJSON renders v as indented JSON, falling back to fmt on failure.
func PrettyJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
