package config

import (
	"testing"
)

func intPtr(n int) *int { return &n }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Source.Port != 3306 {
		t.Errorf("expected source port 3306, got %d", cfg.Source.Port)
	}
	if cfg.Source.TLS != "preferred" {
		t.Errorf("expected source TLS 'preferred', got %s", cfg.Source.TLS)
	}
	if cfg.Destination.Port != 3306 {
		t.Errorf("expected destination port 3306, got %d", cfg.Destination.Port)
	}

	// Mining defaults
	if cfg.Mining.MinSupport != 5 {
		t.Errorf("expected min_support 5, got %d", cfg.Mining.MinSupport)
	}
	if cfg.Mining.MinPeriod != 7 {
		t.Errorf("expected min_period 7, got %d", cfg.Mining.MinPeriod)
	}
	if cfg.Mining.MaxDepth != 3 {
		t.Errorf("expected max_depth 3, got %d", cfg.Mining.MaxDepth)
	}
	if cfg.Mining.MinGapCount != nil {
		t.Errorf("expected min_gap_count unset so it follows min_support, got %d", *cfg.Mining.MinGapCount)
	}
	if cfg.Mining.Workers != 1 {
		t.Errorf("expected workers 1, got %d", cfg.Mining.Workers)
	}

	if cfg.Loading.BatchSize != 1000 {
		t.Errorf("expected batch_size 1000, got %d", cfg.Loading.BatchSize)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected logging format 'json', got %s", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("expected logging output 'stderr', got %s", cfg.Logging.Output)
	}
}

func TestInputWithDefaults(t *testing.T) {
	tests := []struct {
		name     string
		input    InputConfig
		expected InputConfig
	}{
		{
			name:  "empty input defaults to mysql columns",
			input: InputConfig{Table: "transactions"},
			expected: InputConfig{
				Kind:       InputMySQL,
				Table:      "transactions",
				IDColumn:   "id",
				ItemColumn: "stock_code",
				DateColumn: "invoice_date",
			},
		},
		{
			name:  "csv input uses export header",
			input: InputConfig{Kind: InputCSV, Path: "data.csv"},
			expected: InputConfig{
				Kind:       InputCSV,
				Path:       "data.csv",
				ItemColumn: "StockCode",
				DateColumn: "InvoiceDate",
			},
		},
		{
			name:  "explicit columns are kept",
			input: InputConfig{Kind: InputMySQL, Table: "t", IDColumn: "tx_id", ItemColumn: "sku", DateColumn: "sold_at"},
			expected: InputConfig{
				Kind:       InputMySQL,
				Table:      "t",
				IDColumn:   "tx_id",
				ItemColumn: "sku",
				DateColumn: "sold_at",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.input.WithDefaults()
			if got != tt.expected {
				t.Errorf("WithDefaults() = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}

func TestGetJobMining(t *testing.T) {
	global := MiningConfig{MinSupport: 5, MinPeriod: 7, MaxDepth: 3, Workers: 1}

	// No override
	job := JobConfig{}
	if got := job.GetJobMining(global); got != global {
		t.Errorf("expected global mining config, got %+v", got)
	}

	// Partial override
	job = JobConfig{Mining: &MiningConfig{MinPeriod: 30, MinGapCount: intPtr(2)}}
	got := job.GetJobMining(global)
	if got.MinPeriod != 30 {
		t.Errorf("expected min_period 30, got %d", got.MinPeriod)
	}
	if got.MinGapCount == nil || *got.MinGapCount != 2 {
		t.Errorf("expected min_gap_count 2, got %v", got.MinGapCount)
	}

	// An explicit zero is kept, not treated as unset
	job = JobConfig{Mining: &MiningConfig{MinGapCount: intPtr(0)}}
	got = job.GetJobMining(MiningConfig{MinSupport: 5, MinGapCount: intPtr(3)})
	if got.MinGapCount == nil || *got.MinGapCount != 0 {
		t.Errorf("expected explicit min_gap_count 0, got %v", got.MinGapCount)
	}
	if got.MinSupport != 5 {
		t.Errorf("expected min_support to fall back to 5, got %d", got.MinSupport)
	}
	if got.MaxDepth != 3 {
		t.Errorf("expected max_depth to fall back to 3, got %d", got.MaxDepth)
	}
}

func TestGetJobLoading(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Jobs = map[string]JobConfig{
		"custom":  {Loading: &LoadingConfig{BatchSize: 250, SleepSeconds: 0.5}},
		"default": {},
	}

	custom := cfg.GetJobLoading("custom")
	if custom.BatchSize != 250 || custom.SleepSeconds != 0.5 {
		t.Errorf("expected job-specific loading, got %+v", custom)
	}

	def := cfg.GetJobLoading("default")
	if def.BatchSize != 1000 {
		t.Errorf("expected global batch size 1000, got %d", def.BatchSize)
	}

	missing := cfg.GetJobLoading("missing")
	if missing != cfg.Loading {
		t.Errorf("expected global loading for unknown job, got %+v", missing)
	}
}

func TestEngineName(t *testing.T) {
	job := JobConfig{}
	if job.EngineName() != "flat" {
		t.Errorf("expected default engine 'flat', got %s", job.EngineName())
	}
	job.Engine = "depth"
	if job.EngineName() != "depth" {
		t.Errorf("expected engine 'depth', got %s", job.EngineName())
	}
}
