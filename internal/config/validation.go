package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// check records field: message when bad is true.
func (e *ValidationErrors) check(bad bool, field, message string) {
	if bad {
		*e = append(*e, ValidationError{Field: field, Message: message})
	}
}

var (
	validTLS     = map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	validEngines = map[string]bool{"flat": true, "depth": true, "": true}
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	validFormats = map[string]bool{"json": true, "text": true, "": true}
)

// Validate checks the configuration for required fields and valid values.
// Database sections are only checked when some job needs them.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.NeedsSource() {
		validateDatabase(&errs, "source", &c.Source)
	}
	if c.NeedsDestination() {
		validateDatabase(&errs, "destination", &c.Destination)
	}

	errs.check(len(c.Jobs) == 0, "jobs", "at least one job must be defined")
	for name, job := range c.Jobs {
		c.validateJob(&errs, name, &job)
	}

	validateMining(&errs, "mining", c.Mining, false)

	errs.check(c.Loading.BatchSize <= 0, "loading.batch_size", "batch_size must be positive")
	errs.check(c.Loading.SleepSeconds < 0, "loading.sleep_seconds", "sleep_seconds cannot be negative")

	errs.check(!validLevels[c.Logging.Level], "logging.level", "level must be 'debug', 'info', 'warn', or 'error'")
	errs.check(!validFormats[c.Logging.Format], "logging.format", "format must be 'json' or 'text'")

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// NeedsSource reports whether any job reads from the MySQL source.
func (c *Config) NeedsSource() bool {
	for _, job := range c.Jobs {
		if job.Input.WithDefaults().Kind == InputMySQL {
			return true
		}
	}
	return false
}

// NeedsDestination reports whether any job persists its results.
func (c *Config) NeedsDestination() bool {
	for _, job := range c.Jobs {
		if job.Store {
			return true
		}
	}
	return false
}

func validateDatabase(errs *ValidationErrors, prefix string, db *DatabaseConfig) {
	errs.check(db.Host == "", prefix+".host", "host is required")
	errs.check(db.Port <= 0 || db.Port > 65535, prefix+".port", "port must be between 1 and 65535")
	errs.check(db.User == "", prefix+".user", "user is required")
	errs.check(db.Database == "", prefix+".database", "database name is required")
	errs.check(!validTLS[db.TLS], prefix+".tls", "tls must be 'disable', 'preferred', or 'required'")
	errs.check(db.MaxConnections < 0, prefix+".max_connections", "max_connections cannot be negative")
	errs.check(db.MaxIdleConnections < 0, prefix+".max_idle_connections", "max_idle_connections cannot be negative")
}

func (c *Config) validateJob(errs *ValidationErrors, name string, job *JobConfig) {
	prefix := "jobs." + name

	errs.check(!validEngines[job.Engine], prefix+".engine", "engine must be 'flat' or 'depth'")

	input := job.Input.WithDefaults()
	switch input.Kind {
	case InputMySQL:
		errs.check(input.Table == "", prefix+".input.table", "table is required for mysql input")
	case InputCSV:
		errs.check(input.Path == "", prefix+".input.path", "path is required for csv input")
	default:
		errs.check(true, prefix+".input.kind", "kind must be 'mysql' or 'csv'")
	}

	if job.Loading != nil {
		errs.check(job.Loading.BatchSize < 0, prefix+".loading.batch_size", "batch_size cannot be negative")
		errs.check(job.Loading.SleepSeconds < 0, prefix+".loading.sleep_seconds", "sleep_seconds cannot be negative")
	}

	validateMining(errs, prefix+".mining", job.GetJobMining(c.Mining), job.EngineName() == "depth")
}

// validateMining checks one effective set of thresholds. max_depth only
// matters to the depth engine.
func validateMining(errs *ValidationErrors, prefix string, m MiningConfig, depth bool) {
	errs.check(m.MinSupport <= 0, prefix+".min_support", "min_support must be positive")
	errs.check(m.MinPeriod <= 0, prefix+".min_period", "min_period must be positive")
	errs.check(m.MinGapCount != nil && *m.MinGapCount < 0, prefix+".min_gap_count", "min_gap_count cannot be negative")
	errs.check(depth && m.MaxDepth < 1, prefix+".max_depth", "max_depth must be at least 1 for the depth engine")
	errs.check(m.MaxNodes < 0, prefix+".max_nodes", "max_nodes cannot be negative")
	errs.check(m.Workers < 0, prefix+".workers", "workers cannot be negative")
}
