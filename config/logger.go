// Package config builds the zap logger the demo CLI and engine facade pass
// down into every constructor, and nothing else: the core has no persisted
// configuration file of its own (see DESIGN.md for what was dropped from the
// teacher's config package and why). Grounded on the teacher's
// config.LoggingConfig.Prepare (config/logger.go), trimmed of the
// report-zip and panic-capture plumbing that engine/book rendering has no
// use for.
package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerConfig selects a destination's verbosity: "none", "normal" or
// "debug".
type LoggerConfig struct {
	Level       string
	Destination string // "" means stderr only
}

// NewLogger builds a *zap.Logger from conf. A zero-value LoggerConfig
// produces a logger at "normal" level writing to stderr.
func NewLogger(conf LoggerConfig) (*zap.Logger, error) {
	level := conf.Level
	if level == "" {
		level = "normal"
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(os.Stderr) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	consoleEncoder := zapcore.NewConsoleEncoder(ec)

	var zapLevel zapcore.Level
	switch level {
	case "none":
		return zap.NewNop(), nil
	case "debug":
		zapLevel = zapcore.DebugLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	consoleCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), zapLevel)
	cores := []zapcore.Core{consoleCore}

	if conf.Destination != "" {
		f, err := os.OpenFile(conf.Destination, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		fileEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.Lock(f), zapLevel))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Named("reflow"), nil
}
