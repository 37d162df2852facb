package esign

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrEnvelopeFailed is returned when the e-signature API fails
	ErrEnvelopeFailed = errors.New("e-signature request failed")
)

// Recipient is a signer forwarded to the e-signature provider
type Recipient struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      string `json:"role"`
}

// Envelope is the provider-side signing session for a document
type Envelope struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Provider is the interface to an external e-signature service
type Provider interface {
	CreateEnvelope(ctx context.Context, name, content string, recipients []Recipient) (*Envelope, error)
	SendEnvelope(ctx context.Context, envelopeID, subject, message string) error
	GetEnvelopeStatus(ctx context.Context, envelopeID string) (*Envelope, error)
}

// PandaDocClient implements Provider against the PandaDoc public API
type PandaDocClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewPandaDocClient creates a PandaDoc API client
func NewPandaDocClient(apiKey, baseURL string) *PandaDocClient {
	if baseURL == "" {
		baseURL = "https://api.pandadoc.com"
	}
	return &PandaDocClient{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/") + "/public/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateEnvelope uploads document content and its recipients
func (c *PandaDocClient) CreateEnvelope(ctx context.Context, name, content string, recipients []Recipient) (*Envelope, error) {
	payload := map[string]interface{}{
		"name":         name,
		"recipients":   recipients,
		"content_html": toHTML(content),
	}

	var envelope Envelope
	if err := c.do(ctx, http.MethodPost, "/documents", payload, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// SendEnvelope asks the provider to email the signing request
func (c *PandaDocClient) SendEnvelope(ctx context.Context, envelopeID, subject, message string) error {
	if message == "" {
		message = "Por favor, firme este documento."
	}
	if subject == "" {
		subject = "Documento para firma"
	}
	payload := map[string]interface{}{
		"message": message,
		"subject": subject,
		"silent":  false,
	}
	return c.do(ctx, http.MethodPost, "/documents/"+envelopeID+"/send", payload, nil)
}

// GetEnvelopeStatus fetches the provider-side signing status
func (c *PandaDocClient) GetEnvelopeStatus(ctx context.Context, envelopeID string) (*Envelope, error) {
	var envelope Envelope
	if err := c.do(ctx, http.MethodGet, "/documents/"+envelopeID, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

func (c *PandaDocClient) do(ctx context.Context, method, path string, payload, dest interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "API-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEnvelopeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: status %d", ErrEnvelopeFailed, resp.StatusCode)
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// toHTML wraps plain document text in a minimal HTML shell the provider
// can render. Content that is already HTML passes through unchanged.
func toHTML(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "<!DOCTYPE html>") || strings.HasPrefix(trimmed, "<html>") {
		return content
	}

	escaped := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	).Replace(content)
	paragraphs := strings.ReplaceAll(escaped, "\n", "<br>")

	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Documento</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; margin: 40px; }
    p { margin-bottom: 10px; }
  </style>
</head>
<body>
  ` + paragraphs + `
</body>
</html>`
}
