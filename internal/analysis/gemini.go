// Package analysis asks Gemini for a short structured reading of a letter.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-3-flash-preview"

	promptPrefix = "Analyze this letter text and extract key information in Indonesian: "
)

// Result is the structured analysis of a letter.
type Result struct {
	Summary  string `json:"summary"`
	Category string `json:"category"`
	Priority string `json:"priority"`
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewClient returns a client. An empty apiKey disables analysis.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Analyze returns nil without calling the API when disabled or text is blank.
func (c *Client) Analyze(ctx context.Context, text string) (*Result, error) {
	if !c.Enabled() || strings.TrimSpace(text) == "" {
		return nil, nil
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": promptPrefix + text}}},
		},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"responseSchema": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"summary":  map[string]string{"type": "STRING"},
					"category": map[string]string{"type": "STRING"},
					"priority": map[string]string{"type": "STRING"},
				},
				"required": []string{"summary", "category", "priority"},
			},
		},
	}
	payload, _ := json.Marshal(body)

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini call: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini status %d: %s", resp.StatusCode, data)
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty candidates")
	}

	var res Result
	if err := json.Unmarshal([]byte(out.Candidates[0].Content.Parts[0].Text), &res); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &res, nil
}
