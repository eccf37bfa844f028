package models

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Input validation errors. They are detected locally, before any gateway call.
var (
	ErrEmptyToken     = errors.New("please enter a token")
	ErrMalformedToken = errors.New("token must have three non-empty parts separated by dots")
	ErrEmptySecret    = errors.New("please enter a secret key")
	ErrInvalidJSON    = errors.New("invalid JSON")
	ErrNotJSONObject  = errors.New("must be a JSON object")
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (v ValidationError) Error() string {
	if v.Field == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationErrors aggregates multiple validation failures.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Add records a validation error for a field.
func (v *ValidationErrors) Add(field string, err error) {
	if err == nil {
		return
	}

	var nested *ValidationErrors
	if errors.As(err, &nested) {
		for _, sub := range nested.Errors {
			v.Errors = append(v.Errors, ValidationError{
				Field:   joinField(field, sub.Field),
				Message: sub.Message,
				Cause:   sub.Cause,
			})
		}
		return
	}

	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: err.Error(),
		Cause:   err,
	})
}

// Err returns nil if there are no errors, otherwise returns the validation error.
func (v *ValidationErrors) Err() error {
	if v == nil || len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Error implements error.
func (v *ValidationErrors) Error() string {
	if v == nil || len(v.Errors) == 0 {
		return "validation failed"
	}
	if len(v.Errors) == 1 {
		return v.Errors[0].Error()
	}

	var builder strings.Builder
	for i, err := range v.Errors {
		if i > 0 {
			builder.WriteString("; ")
		}
		builder.WriteString(err.Error())
	}

	return builder.String()
}

// Is allows errors.Is to match nested validation errors.
func (v *ValidationErrors) Is(target error) bool {
	if v == nil {
		return false
	}
	for _, err := range v.Errors {
		if err.Cause != nil && errors.Is(err.Cause, target) {
			return true
		}
	}
	return false
}

func joinField(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	default:
		return prefix + "." + field
	}
}

// ParseJSONObject parses text as a JSON object.
func ParseJSONObject(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidJSON)
	}
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, ErrNotJSONObject
	}
	return obj, nil
}

// SigningInput is a validated create request.
type SigningInput struct {
	Header  map[string]any
	Payload map[string]any
	Secret  string
}

// ValidateSigningInput parses the header and payload JSON and applies the
// default secret when none is given.
func ValidateSigningInput(headerText, payloadText, secret, defaultSecret string) (SigningInput, error) {
	validation := &ValidationErrors{}

	header, err := ParseJSONObject(headerText)
	validation.Add("header", err)
	payload, err := ParseJSONObject(payloadText)
	validation.Add("payload", err)

	if err := validation.Err(); err != nil {
		return SigningInput{}, err
	}

	secret = strings.TrimSpace(secret)
	if secret == "" {
		secret = defaultSecret
	}
	return SigningInput{Header: header, Payload: payload, Secret: secret}, nil
}
