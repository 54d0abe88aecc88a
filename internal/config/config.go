// Package config provides configuration structures and loading for lppminer.
package config

// Config represents the complete application configuration.
type Config struct {
	Source      DatabaseConfig       `yaml:"source" mapstructure:"source"`
	Destination DatabaseConfig       `yaml:"destination" mapstructure:"destination"`
	Mining      MiningConfig         `yaml:"mining" mapstructure:"mining"`
	Loading     LoadingConfig        `yaml:"loading" mapstructure:"loading"`
	Jobs        map[string]JobConfig `yaml:"jobs" mapstructure:"jobs"`
	Logging     LoggingConfig        `yaml:"logging" mapstructure:"logging"`
}

// DatabaseConfig represents a MySQL database connection configuration.
type DatabaseConfig struct {
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// MiningConfig holds the pattern-mining thresholds.
type MiningConfig struct {
	MinSupport  int   `yaml:"min_support" mapstructure:"min_support"`     // distinct days for an item to be frequent
	MinGapCount *int  `yaml:"min_gap_count" mapstructure:"min_gap_count"` // qualifying gaps for depth acceptance; unset follows min_support
	MinPeriod   int   `yaml:"min_period" mapstructure:"min_period"`
	MaxDepth    int   `yaml:"max_depth" mapstructure:"max_depth"`
	MaxNodes    int64 `yaml:"max_nodes" mapstructure:"max_nodes"` // 0 = unlimited
	Workers     int   `yaml:"workers" mapstructure:"workers"`
}

// LoadingConfig controls how observations are paged out of the source table.
type LoadingConfig struct {
	BatchSize    int     `yaml:"batch_size" mapstructure:"batch_size"`
	SleepSeconds float64 `yaml:"sleep_seconds" mapstructure:"sleep_seconds"`
}

// InputConfig describes where a job reads its transactions from.
type InputConfig struct {
	Kind       string `yaml:"kind" mapstructure:"kind"` // mysql or csv
	Path       string `yaml:"path" mapstructure:"path"` // csv only
	Table      string `yaml:"table" mapstructure:"table"`
	IDColumn   string `yaml:"id_column" mapstructure:"id_column"`
	ItemColumn string `yaml:"item_column" mapstructure:"item_column"`
	DateColumn string `yaml:"date_column" mapstructure:"date_column"`
	Where      string `yaml:"where" mapstructure:"where"`
}

// JobConfig represents a mining job configuration.
type JobConfig struct {
	Engine  string         `yaml:"engine" mapstructure:"engine"` // flat or depth
	Input   InputConfig    `yaml:"input" mapstructure:"input"`
	Store   bool           `yaml:"store" mapstructure:"store"`
	Mining  *MiningConfig  `yaml:"mining,omitempty" mapstructure:"mining"`
	Loading *LoadingConfig `yaml:"loading,omitempty" mapstructure:"loading"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stderr (default), stdout, or file path
}

// Input kinds.
const (
	InputMySQL = "mysql"
	InputCSV   = "csv"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Source: DatabaseConfig{
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
		},
		Destination: DatabaseConfig{
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
		},
		Mining: MiningConfig{
			MinSupport: 5,
			MinPeriod:  7,
			MaxDepth:   3,
			Workers:    1,
		},
		Loading: LoadingConfig{
			BatchSize:    1000,
			SleepSeconds: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}

// WithDefaults fills in column names left empty. MySQL inputs default to
// snake_case columns, CSV inputs to the retail export header.
func (in InputConfig) WithDefaults() InputConfig {
	if in.Kind == "" {
		in.Kind = InputMySQL
	}
	if in.Kind == InputCSV {
		if in.ItemColumn == "" {
			in.ItemColumn = "StockCode"
		}
		if in.DateColumn == "" {
			in.DateColumn = "InvoiceDate"
		}
		return in
	}
	if in.IDColumn == "" {
		in.IDColumn = "id"
	}
	if in.ItemColumn == "" {
		in.ItemColumn = "stock_code"
	}
	if in.DateColumn == "" {
		in.DateColumn = "invoice_date"
	}
	return in
}

// GetJobMining returns the mining config for a job by name, falling back to global if not set.
func (c *Config) GetJobMining(jobName string) MiningConfig {
	job, err := c.GetJob(jobName)
	if err != nil {
		return c.Mining
	}
	return job.GetJobMining(c.Mining)
}

// GetJobLoading returns the loading config for a job by name, falling back to global if not set.
func (c *Config) GetJobLoading(jobName string) LoadingConfig {
	job, err := c.GetJob(jobName)
	if err != nil {
		return c.Loading
	}
	return job.GetJobLoading(c.Loading)
}

// GetJobMining merges job-specific thresholds over the global ones.
func (jc *JobConfig) GetJobMining(global MiningConfig) MiningConfig {
	if jc.Mining == nil {
		return global
	}

	result := global
	if jc.Mining.MinSupport > 0 {
		result.MinSupport = jc.Mining.MinSupport
	}
	if jc.Mining.MinGapCount != nil {
		result.MinGapCount = jc.Mining.MinGapCount
	}
	if jc.Mining.MinPeriod > 0 {
		result.MinPeriod = jc.Mining.MinPeriod
	}
	if jc.Mining.MaxDepth > 0 {
		result.MaxDepth = jc.Mining.MaxDepth
	}
	if jc.Mining.MaxNodes > 0 {
		result.MaxNodes = jc.Mining.MaxNodes
	}
	if jc.Mining.Workers > 0 {
		result.Workers = jc.Mining.Workers
	}
	return result
}

// GetJobLoading merges job-specific loading settings over the global ones.
func (jc *JobConfig) GetJobLoading(global LoadingConfig) LoadingConfig {
	if jc.Loading == nil {
		return global
	}

	result := global
	if jc.Loading.BatchSize > 0 {
		result.BatchSize = jc.Loading.BatchSize
	}
	if jc.Loading.SleepSeconds > 0 {
		result.SleepSeconds = jc.Loading.SleepSeconds
	}
	return result
}

// EngineName returns the job's engine, defaulting to flat.
func (jc *JobConfig) EngineName() string {
	if jc.Engine == "" {
		return "flat"
	}
	return jc.Engine
}
