package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// validLogLevels enumerates accepted log levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for structural problems. All problems
// are reported at once.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}

	if cfg.Storage.BaseURL == "" {
		errs = append(errs, errors.New("storage.base_url is required"))
	} else if u, err := url.Parse(cfg.Storage.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("storage.base_url %q is not a valid URL", cfg.Storage.BaseURL))
	}
	if cfg.Storage.Bucket == "" {
		errs = append(errs, errors.New("storage.bucket is required"))
	}
	if cfg.Storage.APIKey == "" {
		errs = append(errs, errors.New("storage.api_key is required"))
	}

	if cfg.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}

	if cfg.Janitor.PendingGrace != "" {
		if _, err := time.ParseDuration(cfg.Janitor.PendingGrace); err != nil {
			errs = append(errs, fmt.Errorf("janitor.pending_grace %q is not a duration", cfg.Janitor.PendingGrace))
		}
	}
	if cfg.Janitor.MessageRetention != "" {
		if _, err := time.ParseDuration(cfg.Janitor.MessageRetention); err != nil {
			errs = append(errs, fmt.Errorf("janitor.message_retention %q is not a duration", cfg.Janitor.MessageRetention))
		}
	}

	if cfg.Log.Level != "" && !validLogLevels[cfg.Log.Level] {
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
