package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"issuescout/internal/apperr"
)

const openAIService = "OpenAI"

type OpenAIOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// OpenAIClient calls an OpenAI-compatible Chat Completions API.
type OpenAIClient struct {
	http        *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float32
}

func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	return &OpenAIClient{
		http:        httpClient,
		apiKey:      strings.TrimSpace(opts.APIKey),
		model:       model,
		baseURL:     baseURL,
		temperature: opts.Temperature,
	}
}

func (o *OpenAIClient) Name() string { return "OpenAI:" + o.model }

func (o *OpenAIClient) Ready() error {
	if o.apiKey == "" {
		return &apperr.ConfigurationError{Setting: "OPENAI_API_KEY"}
	}
	return nil
}

type chatReq struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatErrResp struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
	Message string `json:"message"`
}

// Complete sends prompt as a single user message.
func (o *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := o.Ready(); err != nil {
		return "", err
	}
	b, err := json.Marshal(chatReq{
		Model:       o.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: o.temperature,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.http.Do(req)
	if err != nil {
		return "", &apperr.UpstreamError{Service: openAIService, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		msg, code := parseErrorBody(body)
		up := &apperr.UpstreamError{
			Service: openAIService,
			Status:  resp.StatusCode,
			Message: firstNonEmpty(msg, "Unknown error"),
			Err:     fmt.Errorf("openai: unexpected status %s", resp.Status),
		}
		return "", ClassifyError(up, code)
	}
	var out chatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

func parseErrorBody(body []byte) (message, code string) {
	var e chatErrResp
	if err := json.Unmarshal(body, &e); err != nil {
		return "", ""
	}
	if c, ok := e.Error.Code.(string); ok {
		code = c
	}
	return firstNonEmpty(e.Error.Message, e.Message), code
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
