package genai

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

// Generator is the generation collaborator. One call, no retries: a failed
// generation surfaces immediately to the caller.
type Generator interface {
	GenerateText(ctx context.Context, system, user string) (string, error)
}

// ErrGeneration wraps any transport or provider failure from the
// collaborator.
var ErrGeneration = errors.New("generation failed")

// Disabled returns a Generator whose calls fail with ErrGeneration. The
// gateway falls back to it in offline mode when no API key is configured, so
// the rest of the surface still serves.
func Disabled() Generator { return disabledGenerator{} }

type disabledGenerator struct{}

func (disabledGenerator) GenerateText(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("%w: no generation endpoint configured", ErrGeneration)
}

// Config holds the OpenAI-compatible endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client talks to an OpenAI-compatible Responses API endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("genai: api key required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type responsesRequest struct {
	Model string `json:"model"`
	Input []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"input"`
	Temperature float64 `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func (c *Client) GenerateText(ctx context.Context, system, user string) (string, error) {
	req := responsesRequest{
		Model: c.cfg.Model,
		Input: []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.2,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/responses", &buf)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	raw, readErr := io.ReadAll(httpResp.Body)
	_ = httpResp.Body.Close()
	if readErr != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, readErr)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: http %d: %s", ErrGeneration, httpResp.StatusCode, string(raw))
	}

	var resp responsesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrGeneration, err)
	}
	if resp.Refusal != "" {
		return "", fmt.Errorf("%w: model refused: %s", ErrGeneration, resp.Refusal)
	}
	text := extractOutputText(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty output", ErrGeneration)
	}
	return text, nil
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" || item.Role != "assistant" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" {
				out.WriteString(c.Text)
			}
		}
	}
	return out.String()
}
