// Package observability provides shared zap loggers for the fffit CLI.
//
// The CLI logger writes human-oriented structured logs to stderr so that
// stdout stays reserved for command output (status tables, JSONL event
// streams, document dumps).
package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the process-wide logger for CLI commands.
//
// It defaults to a no-op logger so that library code paths exercised from
// tests do not need to initialize logging first.
var CLILogger = zap.NewNop()

// InitCLILogger configures CLILogger with the given level.
//
// When json is true, output is newline-delimited JSON; otherwise a console
// encoder is used. Unknown level strings fall back to info.
func InitCLILogger(level string, json bool) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if !json {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than failing the command.
		CLILogger = zap.NewNop()
		return
	}
	CLILogger = logger
}

// Sync flushes any buffered log entries. Intended for deferred use in main.
func Sync() {
	_ = CLILogger.Sync()
}
