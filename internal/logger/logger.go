// Package logger provides structured logging for lppminer using zap.
//
// Logs go to stderr unless configured otherwise: stdout carries mining
// results, and `--output json` must stay machine readable.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dbsmedya/lppminer/internal/config"
)

// Logger wraps zap.SugaredLogger with mining context methods.
type Logger struct {
	*zap.SugaredLogger
	base *zap.Logger
}

// New creates a Logger from configuration. It fails only when a log file
// cannot be opened.
func New(cfg *config.LoggingConfig) (*Logger, error) {
	sink, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(buildEncoder(cfg.Format), sink, parseLevel(cfg.Level))
	return fromBase(zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))), nil
}

// NewDefault returns an info-level text logger on stderr. Components fall
// back to it when constructed without a logger.
func NewDefault() *Logger {
	log, _ := New(&config.LoggingConfig{Level: "info", Format: "text", Output: "stderr"})
	return log
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return fromBase(zap.NewNop())
}

// NewWithCore returns a Logger writing to core. Tests pass an observer core.
func NewWithCore(core zapcore.Core) *Logger {
	return fromBase(zap.New(core))
}

func fromBase(base *zap.Logger) *Logger {
	return &Logger{SugaredLogger: base.Sugar(), base: base}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func buildEncoder(format string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if format == "json" {
		return zapcore.NewJSONEncoder(encoderConfig)
	}

	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

// openSink resolves the output setting. A file path is appended to and
// mirrored on stderr.
func openSink(output string) (zapcore.WriteSyncer, error) {
	switch output {
	case "stderr", "":
		return zapcore.Lock(os.Stderr), nil
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	}

	file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return zapcore.NewMultiWriteSyncer(
		zapcore.AddSync(file),
		zapcore.Lock(os.Stderr),
	), nil
}

func (l *Logger) with(args ...interface{}) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(args...),
		base:          l.base,
	}
}

// WithJob returns a Logger with mining job context.
func (l *Logger) WithJob(jobName string) *Logger {
	return l.with("job", jobName)
}

// WithRun returns a Logger with the persisted run identifier.
func (l *Logger) WithRun(runID string) *Logger {
	return l.with("run_id", runID)
}

// WithEngine returns a Logger with the pattern-growth engine name.
func (l *Logger) WithEngine(engine string) *Logger {
	return l.with("engine", engine)
}

// WithSeed returns a Logger for one depth-first search seed.
func (l *Logger) WithSeed(item string) *Logger {
	return l.with("seed", item)
}

// WithPage returns a Logger with observation page context.
func (l *Logger) WithPage(pageNum int) *Logger {
	return l.with("page", pageNum)
}

// WithFields returns a Logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return l.with(args...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}
