package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string `env:"PORT" envDefault:":8081"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Env is "production" unless APP_ENV says otherwise; "local" enables
	// development defaults.
	Env string `env:"APP_ENV" envDefault:"production"`

	// WebOrigin is the optional exact origin accepted in addition to same-host requests.
	WebOrigin string `env:"WEB_ORIGIN"`

	GitHub    GitHubConfig
	LLM       LLMConfig
	RateLimit RateLimitConfig
	Budget    BudgetConfig

	UpstreamTimeout    time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"120s"`
	CommentConcurrency int           `env:"COMMENT_CONCURRENCY" envDefault:"10"`
	IssuesViaProxy     bool          `env:"ISSUES_VIA_PROXY" envDefault:"false"`

	// IssuesProxyURL is the gateway whose /issues endpoint serves proxied
	// listings. Defaults to this process on the loopback interface.
	IssuesProxyURL string `env:"ISSUES_PROXY_URL"`
}

type GitHubConfig struct {
	Token   string  `env:"GITHUB_TOKEN"`
	BaseURL string  `env:"GITHUB_API_URL"`
	RPS     float64 `env:"GITHUB_RPS" envDefault:"0"`
}

type LLMConfig struct {
	Provider      string        `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIModel   string        `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	GeminiKey     string        `env:"GEMINI_API_KEY"`
	GeminiModel   string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	Temperature   float32       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	Timeout       time.Duration `env:"LLM_TIMEOUT" envDefault:"90s"`
	RPS           float64       `env:"LLM_RPS" envDefault:"0"`
}

type RateLimitConfig struct {
	SummaryLimit  int           `env:"SUMMARY_RATE_LIMIT" envDefault:"60"`
	SummaryWindow time.Duration `env:"SUMMARY_RATE_WINDOW" envDefault:"1h"`
	SearchLimit   int           `env:"SEARCH_RATE_LIMIT" envDefault:"30"`
	SearchWindow  time.Duration `env:"SEARCH_RATE_WINDOW" envDefault:"1m"`
	MaxKeys       int           `env:"RATELIMIT_MAX_KEYS" envDefault:"10000"`
	PostgresDSN   string        `env:"RATELIMIT_PG_DSN"`
	SweepInterval time.Duration `env:"RATELIMIT_SWEEP_INTERVAL" envDefault:"5m"`
}

type BudgetConfig struct {
	MaxIssues       int `env:"MAX_ISSUES" envDefault:"30"`
	MaxIssueBody    int `env:"MAX_ISSUE_BODY" envDefault:"400"`
	MaxCommentBody  int `env:"MAX_COMMENT_BODY" envDefault:"200"`
	MaxSnippetChars int `env:"MAX_SNIPPET_CHARS" envDefault:"4000"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return parse(env.Options{})
}

// LoadFrom parses configuration from the given variables only. Used by tests
// and by callers that assemble the environment themselves.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.Port = normalizePort(cfg.Port)
	cfg.Env = firstNonEmpty(strings.TrimSpace(cfg.Env), "production")
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if cfg.IsLocal() {
		applyLocalDefaults(cfg)
	}
	if cfg.IssuesViaProxy && strings.TrimSpace(cfg.IssuesProxyURL) == "" {
		cfg.IssuesProxyURL = loopbackURL(cfg.Port)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q (want openai or gemini)", c.LLM.Provider)
	}
	if c.RateLimit.SummaryLimit <= 0 || c.RateLimit.SearchLimit <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.RateLimit.SummaryWindow <= 0 || c.RateLimit.SearchWindow <= 0 {
		return fmt.Errorf("rate limit windows must be positive")
	}
	if c.CommentConcurrency <= 0 {
		return fmt.Errorf("COMMENT_CONCURRENCY must be positive")
	}
	return nil
}

func normalizePort(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":8081"
	}
	if strings.HasPrefix(port, ":") || strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// loopbackURL addresses the listen address addr from inside the process.
func loopbackURL(addr string) string {
	host, port, ok := strings.Cut(addr, ":")
	if !ok {
		return "http://127.0.0.1:" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "[::]" {
		host = "127.0.0.1"
	}
	return "http://" + host + ":" + port
}

// IsLocal reports whether development defaults are active.
func (c *Config) IsLocal() bool {
	return strings.EqualFold(c.Env, "local")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
