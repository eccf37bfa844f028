// Package gateway talks to the remote token-analysis service.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/tOgg1/jwtlens/internal/models"
)

// Gateway is the set of remote operations the client depends on. Every call
// may fail with a transport or service error; a verdict of "invalid" is a
// normal result, never an error.
type Gateway interface {
	ListTokens(ctx context.Context) ([]models.TokenRecord, error)
	Lexical(ctx context.Context, token string) (models.LexicalResult, error)
	Decode(ctx context.Context, lexical models.LexicalResult) (models.DecodeResult, error)
	Syntax(ctx context.Context, decoded models.DecodeResult) (models.SyntaxResult, error)
	Semantic(ctx context.Context, syntax models.SyntaxResult) (models.SemanticResult, error)
	Verify(ctx context.Context, token, secret string) (models.VerifyResult, error)
	Create(ctx context.Context, header, payload map[string]any, secret string) (string, error)
	Health(ctx context.Context) (models.Health, error)
}

// ErrUnreachable marks failures to connect to the service at all.
var ErrUnreachable = errors.New("could not reach the analysis service")

// Error describes a failed gateway operation.
type Error struct {
	// Op is the operation that failed, e.g. "lexical analysis".
	Op string
	// Status is the HTTP status code, 0 when no response was received.
	Status int
	// Message is the service-provided (or synthesized) reason.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "request failed"
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the human-readable reason of err without the operation
// prefix when err is a gateway error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var gwErr *Error
	if errors.As(err, &gwErr) {
		if gwErr.Message != "" {
			return gwErr.Message
		}
		if gwErr.Err != nil {
			return gwErr.Err.Error()
		}
	}
	return err.Error()
}

// IsUnreachable reports whether err is a connection failure.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}
