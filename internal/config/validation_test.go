package config

import (
	"strings"
	"testing"
)

func validTestConfig() *Config {
	cfg := DefaultConfig()
	cfg.Source = DatabaseConfig{
		Host:     "localhost",
		Port:     3306,
		User:     "root",
		Password: "pass",
		Database: "retail",
	}
	cfg.Destination = DatabaseConfig{
		Host:     "localhost",
		Port:     3307,
		User:     "root",
		Password: "pass",
		Database: "patterns",
	}
	cfg.Jobs = map[string]JobConfig{
		"test_job": {
			Engine: "depth",
			Store:  true,
			Input:  InputConfig{Kind: InputMySQL, Table: "invoice_lines"},
		},
	}
	return cfg
}

func TestValidConfig(t *testing.T) {
	if err := validTestConfig().Validate(); err != nil {
		t.Errorf("expected no validation errors, got: %v", err)
	}
}

func TestCSVOnlyConfigSkipsDatabases(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Jobs = map[string]JobConfig{
		"csv_job": {Input: InputConfig{Kind: InputCSV, Path: "retail.csv"}},
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected csv-only config without databases to validate, got: %v", err)
	}
	if cfg.NeedsSource() {
		t.Error("csv-only config should not need the source database")
	}
	if cfg.NeedsDestination() {
		t.Error("job without store should not need the destination database")
	}
}

func TestMissingSourceHost(t *testing.T) {
	cfg := validTestConfig()
	cfg.Source.Host = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for missing source host")
	}
	if !strings.Contains(err.Error(), "source.host") {
		t.Errorf("expected error about source.host, got: %v", err)
	}
}

func TestInvalidPort(t *testing.T) {
	cfg := validTestConfig()
	cfg.Destination.Port = 70000

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for invalid port")
	}
	if !strings.Contains(err.Error(), "destination.port") {
		t.Errorf("expected error about destination.port, got: %v", err)
	}
}

func TestInvalidTLS(t *testing.T) {
	cfg := validTestConfig()
	cfg.Source.TLS = "sometimes"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "source.tls") {
		t.Errorf("expected error about source.tls, got: %v", err)
	}
}

func TestNoJobs(t *testing.T) {
	cfg := validTestConfig()
	cfg.Jobs = map[string]JobConfig{}

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "at least one job") {
		t.Errorf("expected error about missing jobs, got: %v", err)
	}
}

func TestJobInputValidation(t *testing.T) {
	tests := []struct {
		name  string
		input InputConfig
		field string
	}{
		{"mysql without table", InputConfig{Kind: InputMySQL}, "jobs.bad.input.table"},
		{"csv without path", InputConfig{Kind: InputCSV}, "jobs.bad.input.path"},
		{"unknown kind", InputConfig{Kind: "parquet"}, "jobs.bad.input.kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			cfg.Jobs = map[string]JobConfig{"bad": {Input: tt.input}}

			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error about %s, got: %v", tt.field, err)
			}
		})
	}
}

func TestInvalidEngine(t *testing.T) {
	cfg := validTestConfig()
	job := cfg.Jobs["test_job"]
	job.Engine = "breadth"
	cfg.Jobs["test_job"] = job

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "jobs.test_job.engine") {
		t.Errorf("expected error about engine, got: %v", err)
	}
}

func TestMiningThresholdValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *MiningConfig)
		field  string
	}{
		{"zero min_support", func(m *MiningConfig) { m.MinSupport = 0 }, "mining.min_support"},
		{"negative min_period", func(m *MiningConfig) { m.MinPeriod = -1 }, "mining.min_period"},
		{"zero min_period", func(m *MiningConfig) { m.MinPeriod = 0 }, "mining.min_period"},
		{"negative gap count", func(m *MiningConfig) { m.MinGapCount = intPtr(-2) }, "mining.min_gap_count"},
		{"negative workers", func(m *MiningConfig) { m.Workers = -1 }, "mining.workers"},
		{"negative max_nodes", func(m *MiningConfig) { m.MaxNodes = -1 }, "mining.max_nodes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(&cfg.Mining)

			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error about %s, got: %v", tt.field, err)
			}
		})
	}
}

func TestMaxDepthOnlyCheckedForDepthEngine(t *testing.T) {
	cfg := validTestConfig()
	cfg.Mining.MaxDepth = 0

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "jobs.test_job.mining.max_depth") {
		t.Errorf("expected max_depth error for depth job, got: %v", err)
	}

	job := cfg.Jobs["test_job"]
	job.Engine = "flat"
	cfg.Jobs["test_job"] = job
	if err := cfg.Validate(); err != nil {
		t.Errorf("flat engine should ignore max_depth, got: %v", err)
	}
}

func TestInvalidBatchSize(t *testing.T) {
	cfg := validTestConfig()
	cfg.Loading.BatchSize = 0

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "loading.batch_size") {
		t.Errorf("expected error about batch_size, got: %v", err)
	}
}

func TestInvalidLogging(t *testing.T) {
	cfg := validTestConfig()
	cfg.Logging.Level = "verbose"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected logging validation errors")
	}
	if !strings.Contains(err.Error(), "logging.level") || !strings.Contains(err.Error(), "logging.format") {
		t.Errorf("expected both logging errors, got: %v", err)
	}
}

func TestMultipleErrors(t *testing.T) {
	cfg := validTestConfig()
	cfg.Source.Host = ""
	cfg.Destination.User = ""
	cfg.Mining.MinSupport = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}

	validationErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	// min_support is reported both globally and for the job
	if len(validationErrs) < 4 {
		t.Errorf("expected at least 4 errors, got %d: %v", len(validationErrs), validationErrs)
	}
}

func TestJobLoadingValidation(t *testing.T) {
	cfg := validTestConfig()
	job := cfg.Jobs["test_job"]
	job.Loading = &LoadingConfig{BatchSize: -5, SleepSeconds: -1}
	cfg.Jobs["test_job"] = job

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected job loading errors")
	}
	for _, field := range []string{"jobs.test_job.loading.batch_size", "jobs.test_job.loading.sleep_seconds"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected error about %s, got: %v", field, err)
		}
	}

	// Zero batch size falls back to the global setting.
	job.Loading = &LoadingConfig{SleepSeconds: 0.5}
	cfg.Jobs["test_job"] = job
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected partial job loading to validate, got: %v", err)
	}
}
