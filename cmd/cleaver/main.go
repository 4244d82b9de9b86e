// Command cleaver selects and reorders delimited fields from text
// streams: a faster, reorder-capable, regex-aware take on cut.
package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cleaver/internal/app"
	"cleaver/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	opts, err := cli.Parse(argv)
	if err != nil {
		if cli.IsHelp(err) {
			return 0
		}
		if !cli.Reported(err) {
			newLogger(false).Error("invalid invocation", zap.Error(err))
		}
		return 2
	}

	logger := newLogger(opts.Verbose)
	defer logger.Sync()

	if err := app.Run(opts, logger); err != nil {
		if app.IsBrokenPipe(err) {
			return 0
		}
		logger.Error("run failed", zap.Error(err))
		return 1
	}
	return 0
}

// newLogger builds a console logger on stderr; error level unless
// verbose. The per-line loop never logs, so this stays off the hot
// path.
func newLogger(verbose bool) *zap.Logger {
	level := zapcore.ErrorLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
