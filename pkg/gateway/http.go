package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-logr/logr"

	"github.com/goliatone/go-loginform/pkg/form"
)

// Encoding selects how fields are serialised in the request body.
type Encoding string

const (
	// EncodingJSON posts an application/json object of field values.
	EncodingJSON Encoding = "json"
	// EncodingForm posts application/x-www-form-urlencoded values.
	EncodingForm Encoding = "form"
)

const maxErrorBody = 64 << 10

// HTTPOption configures an HTTP gateway.
type HTTPOption func(*HTTP)

// WithClient overrides the HTTP client (http.DefaultClient otherwise).
func WithClient(client *http.Client) HTTPOption {
	return func(g *HTTP) {
		if client != nil {
			g.client = client
		}
	}
}

// WithEncoding selects the request body encoding.
func WithEncoding(encoding Encoding) HTTPOption {
	return func(g *HTTP) {
		if encoding != "" {
			g.encoding = encoding
		}
	}
}

// WithHeader adds a static request header, for example a CSRF token.
func WithHeader(name, value string) HTTPOption {
	return func(g *HTTP) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		g.header.Set(name, value)
	}
}

// WithLogger routes request logs to log.
func WithLogger(log logr.Logger) HTTPOption {
	return func(g *HTTP) {
		g.log = log
	}
}

// HTTP posts submitted fields to an endpoint. Any 2xx response resolves the
// submission; other statuses reject it with the "message" (or "error")
// string from a JSON body, falling back to the status text.
type HTTP struct {
	endpoint string
	client   *http.Client
	encoding Encoding
	header   http.Header
	log      logr.Logger
}

var _ form.Gateway = (*HTTP)(nil)

// NewHTTP validates endpoint and returns a gateway posting to it.
func NewHTTP(endpoint string, options ...HTTPOption) (*HTTP, error) {
	parsed, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return nil, fmt.Errorf("gateway: parse endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("gateway: endpoint %q must be an http(s) URL", endpoint)
	}

	g := &HTTP{
		endpoint: parsed.String(),
		client:   http.DefaultClient,
		encoding: EncodingJSON,
		header:   make(http.Header),
		log:      logr.Discard(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(g)
	}
	return g, nil
}

// Perform posts fields and maps the response onto a submission outcome.
func (g *HTTP) Perform(ctx context.Context, fields map[string]string) error {
	body, contentType, err := g.encode(fields)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, body)
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	for name, values := range g.header {
		req.Header[name] = append([]string(nil), values...)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: post %s: %w", g.endpoint, err)
	}
	defer resp.Body.Close()

	g.log.V(1).Info("gateway response", "endpoint", g.endpoint, "status", resp.StatusCode)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return form.Fail(failureReason(resp))
}

func (g *HTTP) encode(fields map[string]string) (io.Reader, string, error) {
	switch g.encoding {
	case EncodingForm:
		values := make(url.Values, len(fields))
		for name, value := range fields {
			values.Set(name, value)
		}
		return strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", nil
	case EncodingJSON:
		payload, err := json.Marshal(fields)
		if err != nil {
			return nil, "", fmt.Errorf("gateway: encode fields: %w", err)
		}
		return bytes.NewReader(payload), "application/json", nil
	default:
		return nil, "", fmt.Errorf("gateway: unsupported encoding %q", g.encoding)
	}
}

type errorPayload struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func failureReason(resp *http.Response) string {
	fallback := http.StatusText(resp.StatusCode)
	if fallback == "" {
		fallback = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return fallback
	}

	var payload errorPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fallback
	}
	for _, candidate := range []string{payload.Message, payload.Error} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
