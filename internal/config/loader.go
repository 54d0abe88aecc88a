package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	substituteEnvVars(cfg)
	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) {
	for _, db := range []*DatabaseConfig{&cfg.Source, &cfg.Destination} {
		db.Host = expandEnvVar(db.Host)
		db.User = expandEnvVar(db.User)
		db.Password = expandEnvVar(db.Password)
		db.Database = expandEnvVar(db.Database)
	}

	// Map values are copies; write the expanded job back.
	for name, job := range cfg.Jobs {
		job.Input.Path = expandEnvVar(job.Input.Path)
		job.Input.Table = expandEnvVar(job.Input.Table)
		cfg.Jobs[name] = job
	}

	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
// Unknown variables are left untouched.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

// GetJob retrieves a specific job configuration by name.
func (c *Config) GetJob(name string) (*JobConfig, error) {
	job, exists := c.Jobs[name]
	if !exists {
		return nil, fmt.Errorf("job %q not found in configuration", name)
	}
	return &job, nil
}

// ListJobs returns all job names defined in the configuration.
func (c *Config) ListJobs() []string {
	jobs := make([]string, 0, len(c.Jobs))
	for name := range c.Jobs {
		jobs = append(jobs, name)
	}
	return jobs
}

// ApplyOverrides applies CLI flag overrides to the global configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat string, minSupport, minPeriod, maxDepth, workers, batchSize int) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if minSupport > 0 {
		c.Mining.MinSupport = minSupport
	}
	if minPeriod > 0 {
		c.Mining.MinPeriod = minPeriod
	}
	if maxDepth > 0 {
		c.Mining.MaxDepth = maxDepth
	}
	if workers > 0 {
		c.Mining.Workers = workers
	}
	if batchSize > 0 {
		c.Loading.BatchSize = batchSize
	}
}

// ApplyJobOverrides returns the job's effective mining config with CLI flag
// values applied on top, so flags win over both global and job settings.
func (c *Config) ApplyJobOverrides(jobName string, minSupport, minPeriod, maxDepth, workers int) MiningConfig {
	mining := c.GetJobMining(jobName)

	if minSupport > 0 {
		mining.MinSupport = minSupport
	}
	if minPeriod > 0 {
		mining.MinPeriod = minPeriod
	}
	if maxDepth > 0 {
		mining.MaxDepth = maxDepth
	}
	if workers > 0 {
		mining.Workers = workers
	}

	return mining
}
