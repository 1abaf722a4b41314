package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aetherinc/aether-waitlist/config"
	"golang.org/x/time/rate"
)

// Chat provider names
const (
	ChatProviderDisabled = "disabled"
	ChatProviderGemini   = "gemini"
)

var (
	ErrChatProviderDisabled = errors.New("chat provider is disabled")
	ErrChatEmptyReply       = errors.New("chat provider returned no text")
)

// UpstreamError is a non-2xx answer from the model API
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", e.StatusCode, e.Body)
}

// ChatMessage is one turn handed to the model. Role is "user" or "model".
type ChatMessage struct {
	Role    string
	Content string
}

// ChatCompletion is the model's reply
type ChatCompletion struct {
	Reply    string
	Provider string
	Model    string
}

// ChatProvider generates assistant replies
type ChatProvider interface {
	Name() string
	Generate(ctx context.Context, systemPrompt string, history []ChatMessage, message string) (*ChatCompletion, error)
}

// DisabledChatProvider is used when no API key is configured
type DisabledChatProvider struct{}

func NewDisabledChatProvider() ChatProvider {
	return &DisabledChatProvider{}
}

// NewChatProviderFromConfig returns the Gemini client when a key is configured
func NewChatProviderFromConfig(cfg config.AIConfig) ChatProvider {
	if !cfg.Enabled() {
		return NewDisabledChatProvider()
	}
	return NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Timeout, cfg.RequestsPerMinute)
}

func (p *DisabledChatProvider) Name() string { return ChatProviderDisabled }

func (p *DisabledChatProvider) Generate(context.Context, string, []ChatMessage, string) (*ChatCompletion, error) {
	return nil, ErrChatProviderDisabled
}

// GeminiClient calls the generateContent REST endpoint, throttled by a token bucket
type GeminiClient struct {
	BaseURL     string
	APIKey      string
	Model       string
	HTTPClient  *http.Client
	Temperature float64
	MaxTokens   int
	limiter     *rate.Limiter
}

// NewGeminiClient builds a client; requestsPerMinute <= 0 disables throttling
func NewGeminiClient(baseURL, apiKey, model string, timeout time.Duration, requestsPerMinute int) *GeminiClient {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute)
	}
	return &GeminiClient{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		APIKey:      apiKey,
		Model:       model,
		HTTPClient:  &http.Client{Timeout: timeout},
		Temperature: 0.7,
		MaxTokens:   1024,
		limiter:     limiter,
	}
}

func (c *GeminiClient) Name() string { return ChatProviderGemini }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *GeminiClient) Generate(ctx context.Context, systemPrompt string, history []ChatMessage, message string) (*ChatCompletion, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	contents := make([]geminiContent, 0, len(history)+1)
	for _, m := range history {
		role := "user"
		if m.Role == "model" || m.Role == "assistant" {
			role = "model"
		}
		// the conversation must open with a user turn
		if role == "model" && len(contents) == 0 {
			continue
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: message}}})

	body := geminiRequest{
		Contents:         contents,
		GenerationConfig: geminiGenerationConfig{Temperature: c.Temperature, MaxOutputTokens: c.MaxTokens},
	}
	if systemPrompt != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.BaseURL, url.PathEscape(c.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: truncateBody(raw, 512)}
	}

	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	if out.Error != nil {
		return nil, &UpstreamError{StatusCode: out.Error.Code, Body: out.Error.Message}
	}

	var reply strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			reply.WriteString(p.Text)
		}
	}
	if strings.TrimSpace(reply.String()) == "" {
		return nil, ErrChatEmptyReply
	}

	return &ChatCompletion{Reply: reply.String(), Provider: ChatProviderGemini, Model: c.Model}, nil
}

func truncateBody(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n]
	}
	return s
}
