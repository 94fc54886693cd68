package app

import (
	"context"
	"fmt"
	"log/slog"

	"issuescout/internal/gateway/config"
	"issuescout/internal/gateway/handler"
	"issuescout/internal/gateway/server"
	"issuescout/internal/hosting"
	llmclient "issuescout/internal/llmClient"
	"issuescout/internal/logging"
	"issuescout/internal/ratelimit"
	"issuescout/internal/summary"
)

// Services are the request-independent collaborators shared by the HTTP
// gateway and the CLI.
type Services struct {
	GitHub    *hosting.Client
	Completer llmclient.Completer
	Summaries *summary.Service
}

func NewServices(cfg *config.Config, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	gh, err := hosting.NewClient(hosting.Options{
		Token:              cfg.GitHub.Token,
		BaseURL:            cfg.GitHub.BaseURL,
		RPS:                cfg.GitHub.RPS,
		Timeout:            cfg.UpstreamTimeout,
		CommentConcurrency: cfg.CommentConcurrency,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init github client: %w", err)
	}

	completer, err := llmclient.New(llmclient.Config{
		Provider:      cfg.LLM.Provider,
		OpenAIKey:     cfg.LLM.OpenAIKey,
		OpenAIBaseURL: cfg.LLM.OpenAIBaseURL,
		OpenAIModel:   cfg.LLM.OpenAIModel,
		GeminiKey:     cfg.LLM.GeminiKey,
		GeminiModel:   cfg.LLM.GeminiModel,
		Temperature:   cfg.LLM.Temperature,
		Timeout:       cfg.LLM.Timeout,
		RPS:           cfg.LLM.RPS,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init completion client: %w", err)
	}

	deps := summary.Deps{
		Issues:    gh,
		Comments:  gh,
		Snippets:  gh,
		Completer: completer,
		Budget: summary.Budget{
			MaxIssues:       cfg.Budget.MaxIssues,
			MaxIssueBody:    cfg.Budget.MaxIssueBody,
			MaxCommentBody:  cfg.Budget.MaxCommentBody,
			MaxSnippetChars: cfg.Budget.MaxSnippetChars,
		},
		Timeout: cfg.RequestTimeout,
		Logger:  logger,
	}
	if cfg.IssuesViaProxy {
		proxy, err := hosting.NewProxyLister(cfg.IssuesProxyURL, nil, cfg.UpstreamTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to init issues proxy: %w", err)
		}
		logger.Info("issues listed through proxy", "url", proxy.BaseURL)
		deps.Issues = proxy
	}

	return &Services{GitHub: gh, Completer: completer, Summaries: summary.New(deps)}, nil
}

type App struct {
	server      *server.Server
	limits      *rateLimitStore
	stopSweeper context.CancelFunc
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	svc, err := NewServices(cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.IsLocal() {
		logger.Warn("APP_ENV=local: development defaults active", "web_origin", cfg.WebOrigin)
	}
	limits, err := initRateLimitStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	h := handler.New(svc.GitHub, svc.GitHub, svc.Summaries, logger)
	mux := server.NewMux(h, server.Routes{
		WebOrigin:      cfg.WebOrigin,
		SummaryLimiter: ratelimit.NewLimiter("summary", limits.store, cfg.RateLimit.SummaryLimit, cfg.RateLimit.SummaryWindow),
		SearchLimiter:  ratelimit.NewLimiter("search", limits.store, cfg.RateLimit.SearchLimit, cfg.RateLimit.SearchWindow),
		Logger:         logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	if limits.sweeper != nil {
		go ratelimit.RunSweeper(ctx, limits.sweeper, cfg.RateLimit.SweepInterval, logger)
	}

	return &App{
		server:      server.New(cfg.Port, mux, logger),
		limits:      limits,
		stopSweeper: cancel,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.stopSweeper()
	err := a.server.Shutdown(ctx)
	if cerr := a.limits.close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
