package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tOgg1/jwtlens/internal/logging"
	"github.com/tOgg1/jwtlens/internal/models"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 4 << 20
	userAgent        = "jwtlens"
)

// Config controls the HTTP gateway.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
}

func normalizeConfig(cfg Config) Config {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg
}

// HTTPClient implements Gateway against the JSON analysis API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Gateway = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the service at cfg.BaseURL.
func NewHTTPClient(cfg Config) *HTTPClient {
	cfg = normalizeConfig(cfg)
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPClient{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
	}
}

// BaseURL returns the normalized service root.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// envelope is the common response shape: {success, result|jwts|jwt, error}.
type envelope struct {
	Success   *bool           `json:"success"`
	Error     string          `json:"error"`
	ErrorType string          `json:"error_type"`
	Result    json.RawMessage `json:"result"`
	JWTs      json.RawMessage `json:"jwts"`
	JWT       string          `json:"jwt"`
	Valid     *bool           `json:"valid"`
}

func (e envelope) succeeded() bool {
	return e.Success != nil && *e.Success
}

type response struct {
	status int
	body   []byte
	env    envelope
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (c *HTTPClient) ListTokens(ctx context.Context) ([]models.TokenRecord, error) {
	const op = "list tokens"
	resp, err := c.call(ctx, op, http.MethodGet, "/jwts", nil)
	if err != nil {
		return nil, err
	}
	if err := requireSuccess(op, resp, "could not fetch the token list"); err != nil {
		return nil, err
	}
	if len(resp.env.JWTs) == 0 || string(resp.env.JWTs) == "null" {
		return []models.TokenRecord{}, nil
	}

	var wire []wireToken
	if err := json.Unmarshal(resp.env.JWTs, &wire); err != nil {
		return nil, &Error{Op: op, Status: resp.status, Message: "malformed token list", Err: err}
	}
	records := make([]models.TokenRecord, 0, len(wire))
	for i, item := range wire {
		records = append(records, item.record(i))
	}
	return records, nil
}

func (c *HTTPClient) Lexical(ctx context.Context, token string) (models.LexicalResult, error) {
	const op = "lexical analysis"
	var out models.LexicalResult
	resp, err := c.call(ctx, op, http.MethodGet, "/analyze/lexical/"+url.PathEscape(token), nil)
	if err != nil {
		return out, err
	}
	if err := requireSuccess(op, resp, "lexical analysis failed"); err != nil {
		return out, err
	}
	if err := decodeResult(op, resp, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (c *HTTPClient) Decode(ctx context.Context, lexical models.LexicalResult) (models.DecodeResult, error) {
	const op = "decode"
	var out models.DecodeResult
	resp, err := c.call(ctx, op, http.MethodPost, "/analyze/decoder", lexical)
	if err != nil {
		return out, err
	}
	if err := requireSuccess(op, resp, "decoding failed"); err != nil {
		return out, err
	}
	if err := decodeResult(op, resp, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (c *HTTPClient) Syntax(ctx context.Context, decoded models.DecodeResult) (models.SyntaxResult, error) {
	const op = "syntax analysis"
	var out models.SyntaxResult
	body := struct {
		Result models.DecodeResult `json:"result"`
	}{Result: decoded}
	resp, err := c.call(ctx, op, http.MethodPost, "/analyze/syntax", body)
	if err != nil {
		return out, err
	}
	if err := requireSuccess(op, resp, "syntax analysis failed"); err != nil {
		return out, err
	}
	if err := decodeResult(op, resp, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Semantic reports a service-side rejection (success=false on a 2xx
// response) as an invalid verdict rather than an error.
func (c *HTTPClient) Semantic(ctx context.Context, syntax models.SyntaxResult) (models.SemanticResult, error) {
	const op = "semantic analysis"
	var out models.SemanticResult
	body := struct {
		Header  map[string]any `json:"header"`
		Payload map[string]any `json:"payload"`
	}{Header: syntax.Header, Payload: syntax.Payload}
	resp, err := c.call(ctx, op, http.MethodPost, "/analyze/semantic", body)
	if err != nil {
		return out, err
	}
	if !resp.ok() {
		return out, statusError(op, resp)
	}
	if !resp.env.succeeded() {
		out.Valid = false
		out.Error = firstNonEmpty(resp.env.Error, "semantic analysis failed")
		out.ErrorKind = firstNonEmpty(resp.env.ErrorType, "SemanticError")
		return out, nil
	}
	if err := decodeResult(op, resp, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Verify treats a non-2xx response carrying success=true and valid=false as
// a normal "invalid signature" verdict.
func (c *HTTPClient) Verify(ctx context.Context, token, secret string) (models.VerifyResult, error) {
	const op = "verification"
	var out models.VerifyResult
	body := struct {
		JWT    string `json:"jwt"`
		Secret string `json:"secret"`
	}{JWT: token, Secret: secret}
	resp, err := c.call(ctx, op, http.MethodPost, "/analyze/crypto-verification", body)
	if err != nil {
		return out, err
	}

	explicitlyInvalid := resp.env.Valid != nil && !*resp.env.Valid
	if !resp.ok() && (!resp.env.succeeded() || !explicitlyInvalid) {
		return out, statusError(op, resp)
	}
	if !resp.env.succeeded() {
		return out, &Error{Op: op, Status: resp.status, Message: firstNonEmpty(resp.env.Error, "verification failed")}
	}

	if err := json.Unmarshal(resp.body, &out); err != nil {
		return out, &Error{Op: op, Status: resp.status, Message: "malformed response", Err: err}
	}
	raw := map[string]any{}
	if err := json.Unmarshal(resp.body, &raw); err == nil {
		out.Raw = raw
	}
	return out, nil
}

func (c *HTTPClient) Create(ctx context.Context, header, payload map[string]any, secret string) (string, error) {
	const op = "create"
	body := struct {
		Header  map[string]any `json:"header"`
		Payload map[string]any `json:"payload"`
		Secret  string         `json:"secret"`
	}{Header: header, Payload: payload, Secret: secret}
	resp, err := c.call(ctx, op, http.MethodPost, "/analyze/encoder", body)
	if err != nil {
		return "", err
	}
	if err := requireSuccess(op, resp, "could not create the token"); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.env.JWT) == "" {
		return "", &Error{Op: op, Status: resp.status, Message: firstNonEmpty(resp.env.Error, "could not create the token")}
	}
	return resp.env.JWT, nil
}

func (c *HTTPClient) Health(ctx context.Context) (models.Health, error) {
	const op = "health"
	var out models.Health
	resp, err := c.call(ctx, op, http.MethodGet, "/health", nil)
	if err != nil {
		return out, err
	}
	if !resp.ok() {
		return out, statusError(op, resp)
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return out, &Error{Op: op, Status: resp.status, Message: "malformed response", Err: err}
	}
	return out, nil
}

func (c *HTTPClient) call(ctx context.Context, op, method, path string, in any) (response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return response{}, &Error{Op: op, Message: "could not encode request", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return response{}, &Error{Op: op, Message: "could not build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := logging.FromContext(ctx).With().Str("component", "gateway").Logger()
	started := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return response{}, &Error{Op: op, Message: "request cancelled", Err: ctxErr}
		}
		logger.Debug().Err(err).Str("op", op).Msg("service unreachable")
		return response{}, &Error{Op: op, Message: ErrUnreachable.Error(), Err: fmt.Errorf("%w: %v", ErrUnreachable, err)}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return response{}, &Error{Op: op, Status: httpResp.StatusCode, Message: "could not read response", Err: err}
	}

	logger.Debug().
		Str("op", op).
		Str("method", method).
		Str("path", logging.Redact(path)).
		Int("status", httpResp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("gateway call")

	resp := response{status: httpResp.StatusCode, body: body}
	if err := json.Unmarshal(body, &resp.env); err != nil {
		if !resp.ok() {
			return resp, statusError(op, resp)
		}
		return resp, &Error{Op: op, Status: resp.status, Message: "malformed response", Err: err}
	}
	return resp, nil
}

func requireSuccess(op string, resp response, fallback string) error {
	if !resp.ok() {
		return statusError(op, resp)
	}
	if !resp.env.succeeded() {
		return &Error{Op: op, Status: resp.status, Message: firstNonEmpty(resp.env.Error, fallback)}
	}
	return nil
}

func statusError(op string, resp response) error {
	msg := resp.env.Error
	if msg == "" {
		msg = fmt.Sprintf("Error %d: %s", resp.status, http.StatusText(resp.status))
	}
	return &Error{Op: op, Status: resp.status, Message: msg}
}

func decodeResult(op string, resp response, out any) error {
	if len(resp.env.Result) == 0 || string(resp.env.Result) == "null" {
		return &Error{Op: op, Status: resp.status, Message: "response has no result"}
	}
	if err := json.Unmarshal(resp.env.Result, out); err != nil {
		return &Error{Op: op, Status: resp.status, Message: "malformed result", Err: err}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
