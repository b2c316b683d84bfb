// Package validator checks markup against the W3C Nu HTML Checker, either
// the public service or a self-hosted `vnu --http` instance.
package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/papapumpkin/pagecheck/internal/diagnostic"
)

// DefaultURL is the public Nu HTML Checker endpoint.
const DefaultURL = "https://validator.w3.org/nu/"

const userAgent = "pagecheck (+https://github.com/papapumpkin/pagecheck)"

// maxResponseBytes bounds how much of a checker response is decoded.
const maxResponseBytes = 8 << 20

// NuClient posts documents to a Nu HTML Checker and decodes its JSON output.
type NuClient struct {
	URL        string
	HTTPClient *http.Client
}

// NewNuClient returns a client for endpoint with the given request timeout.
// An empty endpoint selects DefaultURL.
func NewNuClient(endpoint string, timeout time.Duration) *NuClient {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	return &NuClient{
		URL:        endpoint,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// nuMessage is one entry of the checker's "messages" array.
type nuMessage struct {
	Type      string `json:"type"`
	SubType   string `json:"subType,omitempty"`
	Message   string `json:"message"`
	FirstLine int    `json:"firstLine,omitempty"`
	LastLine  int    `json:"lastLine,omitempty"`
}

type nuResponse struct {
	Messages []nuMessage `json:"messages"`
}

// Validate reads the file at path and returns every message the checker
// reported, including informational ones.
func (c *NuClient) Validate(ctx context.Context, path string) ([]diagnostic.Diagnostic, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return c.ValidateBytes(ctx, body)
}

// ValidateBytes validates an in-memory document.
func (c *NuClient) ValidateBytes(ctx context.Context, doc []byte) ([]diagnostic.Diagnostic, error) {
	endpoint, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("validator url %q: %w", c.URL, err)
	}
	q := endpoint.Query()
	q.Set("out", "json")
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("building validator request: %w", err)
	}
	req.Header.Set("Content-Type", "text/html; charset=utf-8")
	req.Header.Set("User-Agent", userAgent)

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling validator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("validator returned %s: %s", resp.Status, snippet)
	}

	var decoded nuResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding validator response: %w", err)
	}

	diags := make([]diagnostic.Diagnostic, 0, len(decoded.Messages))
	for _, m := range decoded.Messages {
		diags = append(diags, toDiagnostic(m))
	}
	return diags, nil
}

// toDiagnostic maps a checker message. The checker omits firstLine when a
// message spans a single line, and omits both lines for document-level
// messages.
func toDiagnostic(m nuMessage) diagnostic.Diagnostic {
	line := m.FirstLine
	if line == 0 {
		line = m.LastLine
	}
	typ := m.Type
	if m.SubType != "" {
		typ = m.SubType
	}
	return diagnostic.Diagnostic{
		Message:  m.Message,
		Line:     line,
		LastLine: m.LastLine,
		Type:     typ,
	}
}
