package config

import "strings"

// applyLocalDefaults relaxes settings for APP_ENV=local.
func applyLocalDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.WebOrigin) == "" {
		cfg.WebOrigin = "http://localhost:3000"
	}
}
