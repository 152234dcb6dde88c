package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"roster/internal/config"
)

const logLevelEnvKey = "ROSTER_LOG_LEVEL"

type levelSource string

const (
	sourceFlag    levelSource = "flag"
	sourceEnv     levelSource = "env"
	sourceConfig  levelSource = "config"
	sourceDefault levelSource = "default"
)

// configureLoggerForCLI installs the default logger. A bad --log-level is an
// error; a bad env or config value falls back to the default level and
// returns a warning for stderr.
func configureLoggerForCLI(flagLevel, configLevel string) (string, error) {
	envLevel := os.Getenv(logLevelEnvKey)
	raw, source := selectedLogLevel(flagLevel, envLevel, configLevel)

	level, err := parseLogLevel(raw)
	if err == nil {
		slog.SetDefault(newLogger(level))
		return "", nil
	}

	if source == sourceFlag {
		return "", fmt.Errorf("invalid --log-level %q", flagLevel)
	}
	slog.SetDefault(newLogger(slog.LevelInfo))

	switch source {
	case sourceEnv:
		return fmt.Sprintf("warning: invalid %s=%q; defaulting to %s", logLevelEnvKey, envLevel, config.DefaultLogLevel), nil
	case sourceConfig:
		return fmt.Sprintf("warning: invalid log_level=%q; defaulting to %s", configLevel, config.DefaultLogLevel), nil
	}
	return "", nil
}

func selectedLogLevel(flagLevel, envLevel, configLevel string) (string, levelSource) {
	switch {
	case strings.TrimSpace(flagLevel) != "":
		return flagLevel, sourceFlag
	case strings.TrimSpace(envLevel) != "":
		return envLevel, sourceEnv
	case strings.TrimSpace(configLevel) != "":
		return configLevel, sourceConfig
	}
	return "", sourceDefault
}

func parseLogLevel(raw string) (slog.Level, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "":
		return slog.LevelInfo, nil
	case "warning":
		value = "warn"
	}

	if numeric, err := strconv.Atoi(value); err == nil {
		return slog.Level(numeric), nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).With("app", "roster")
}
