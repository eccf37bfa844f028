// Package models defines the core data types shared by the jwtlens client.
package models

import (
	"strings"
	"time"
)

// Validity is the tri-state validity flag carried by a token record.
type Validity int

const (
	ValidityUnknown Validity = iota
	ValidityValid
	ValidityInvalid
)

// ValidityFromPtr maps an optional boolean to a Validity.
func ValidityFromPtr(valid *bool) Validity {
	switch {
	case valid == nil:
		return ValidityUnknown
	case *valid:
		return ValidityValid
	default:
		return ValidityInvalid
	}
}

func (v Validity) String() string {
	switch v {
	case ValidityValid:
		return "valid"
	case ValidityInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// MarshalText renders the validity as its string form.
func (v Validity) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses "valid", "invalid" or anything else as unknown.
func (v *Validity) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "valid", "true":
		*v = ValidityValid
	case "invalid", "false":
		*v = ValidityInvalid
	default:
		*v = ValidityUnknown
	}
	return nil
}

// TokenRecord is the client-side view of a candidate token and its known metadata.
// Records are never mutated after creation; updates replace them wholesale.
type TokenRecord struct {
	// ID identifies the record. Server records keep the server id, custom
	// records get a client-generated UUID.
	ID string `json:"id" yaml:"id"`

	// Token is the raw compact-serialized token.
	Token string `json:"token" yaml:"token"`

	// Name is a human-friendly label.
	Name string `json:"name" yaml:"name"`

	// CreatedAt is when the record was created (zero when unknown).
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Valid is the source's validity verdict, unknown for custom tokens.
	Valid Validity `json:"valid" yaml:"valid"`

	// Secret is the signing secret, only set when the source disclosed it.
	Secret string `json:"secret,omitempty" yaml:"secret,omitempty"`

	// ErrorKind describes why the source considers the token invalid.
	ErrorKind string `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
}

// HasSecret reports whether a usable secret was disclosed.
func (r TokenRecord) HasSecret() bool {
	secret := strings.TrimSpace(r.Secret)
	return secret != "" && secret != "unknown"
}

// Preview returns the first n characters of the token followed by an ellipsis.
func (r TokenRecord) Preview(n int) string {
	token := r.Token
	if token == "" {
		return "(no token)"
	}
	runes := []rune(token)
	if n <= 0 || len(runes) <= n {
		return token
	}
	return string(runes[:n]) + "..."
}

// View identifies one of the three top-level views.
type View string

const (
	ViewAnalysis View = "analysis"
	ViewVerify   View = "verify"
	ViewCreate   View = "create"
)

// Views lists the closed set of views in display order.
func Views() []View {
	return []View{ViewAnalysis, ViewVerify, ViewCreate}
}

// ParseView maps an identifier to a View. Unknown identifiers are rejected.
func ParseView(id string) (View, bool) {
	switch View(strings.ToLower(strings.TrimSpace(id))) {
	case ViewAnalysis:
		return ViewAnalysis, true
	case ViewVerify:
		return ViewVerify, true
	case ViewCreate:
		return ViewCreate, true
	default:
		return "", false
	}
}

// Title returns the label shown on the navigator tab.
func (v View) Title() string {
	switch v {
	case ViewAnalysis:
		return "Analysis"
	case ViewVerify:
		return "Verify"
	case ViewCreate:
		return "Create"
	default:
		return string(v)
	}
}

// ValidateCompact checks that raw looks like a compact token: exactly three
// non-empty dot-separated segments. It does not decode anything.
func ValidateCompact(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrEmptyToken
	}
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return ErrMalformedToken
	}
	for _, part := range parts {
		if part == "" {
			return ErrMalformedToken
		}
	}
	return nil
}
