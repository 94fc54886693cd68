package llmclient

import (
	"context"
	"errors"
	"strings"
	"sync"

	genai "google.golang.org/genai"

	"issuescout/internal/apperr"
)

const geminiService = "Gemini"

type GeminiOptions struct {
	APIKey      string
	Model       string
	Temperature float32
	// BaseURL overrides the Gemini API endpoint.
	BaseURL string
}

// GeminiClient is a thin wrapper around the official genai client. The
// underlying client is created on first use so a missing key surfaces at
// request time rather than at startup.
type GeminiClient struct {
	opts GeminiOptions

	mu  sync.Mutex
	cli *genai.Client
}

func NewGeminiClient(opts GeminiOptions) *GeminiClient {
	opts.APIKey = strings.TrimSpace(opts.APIKey)
	if strings.TrimSpace(opts.Model) == "" {
		opts.Model = "gemini-2.5-flash"
	}
	return &GeminiClient{opts: opts}
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.opts.Model }

func (g *GeminiClient) Ready() error {
	if g.opts.APIKey == "" {
		return &apperr.ConfigurationError{Setting: "GEMINI_API_KEY"}
	}
	return nil
}

func (g *GeminiClient) client(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cli != nil {
		return g.cli, nil
	}
	if err := g.Ready(); err != nil {
		return nil, err
	}
	cfg := &genai.ClientConfig{APIKey: g.opts.APIKey, Backend: genai.BackendGeminiAPI}
	if g.opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.opts.BaseURL}
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	g.cli = cli
	return cli, nil
}

func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	cli, err := g.client(ctx)
	if err != nil {
		return "", err
	}
	temp := g.opts.Temperature
	resp, err := cli.Models.GenerateContent(ctx, g.opts.Model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{Temperature: &temp},
	)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return ClassifyError(&apperr.UpstreamError{Service: geminiService, Status: apiErr.Code, Message: apiErr.Message, Err: err}, "")
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return ClassifyError(&apperr.UpstreamError{Service: geminiService, Status: apiErrPtr.Code, Message: apiErrPtr.Message, Err: err}, "")
	}
	return &apperr.UpstreamError{Service: geminiService, Message: "request failed", Err: err}
}
