package main

import (
	"fmt"
	"os"
	"os/user"
	"runtime"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sakti/agemon/internal/config"
)

// initLogger creates a zap logger based on the configuration.
// It outputs to the console (human-readable) and optionally a JSON log file.
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(file),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// logStartup prints who is running the agent and on what, then the
// effective remote-write settings. The password is never logged.
func logStartup(logger *zap.Logger, cfg *config.Config) {
	logger.Info("Starting agemon",
		zap.String("version", version),
		zap.String("user", realName()),
		zap.String("platform", runtime.GOOS),
		zap.String("arch", runtime.GOARCH))

	rw := cfg.RemoteWrite
	switch {
	case rw.HasBasicAuth():
		logger.Info("Basic auth enabled", zap.String("username", rw.Username))
	case rw.Username != "" || rw.Password != "":
		logger.Warn("Basic auth needs both username and password, sending without credentials")
	}
}

// realName returns the invoking user's full name, falling back to the
// login name and then "unknown".
func realName() string {
	u, err := user.Current()
	if err != nil {
		return "unknown"
	}
	if u.Name != "" {
		return u.Name
	}
	if u.Username != "" {
		return u.Username
	}
	return "unknown"
}
