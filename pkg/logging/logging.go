package logging

import (
	"io"
	"log/slog"
	"os"
)

// Name is the name of the application that the logger is for.
type Name string

const (
	// KeyError is the log key used for errors.
	KeyError = "err"

	// KeyDal is the log key used for the data access layer name.
	KeyDal = "dal"

	// KeyGuild is the log key used for guild IDs.
	KeyGuild = "guild"

	// KeyChannel is the log key used for channel IDs.
	KeyChannel = "channel"

	// KeyUser is the log key used for user IDs.
	KeyUser = "user"

	// KeyAppName is the log key used for the application name.
	KeyAppName = "app"
)

// Config is the configuration for a logger.
type Config struct {
	name  Name
	w     io.Writer
	level slog.Level
}

// NewConfig creates a logging configuration with the default output and level.
func NewConfig(name Name) *Config {
	return &Config{
		name:  name,
		w:     os.Stdout,
		level: slog.LevelDebug,
	}
}

// CommonLogger creates the logger used across the application. The logger is
// also installed as the slog default so that packages without an injected
// logger still log in the same format.
func CommonLogger(c *Config) (*slog.Logger, error) {
	h := slog.NewJSONHandler(c.w, &slog.HandlerOptions{
		Level: c.level,
	})

	l := slog.New(h).With(slog.String(KeyAppName, string(c.name)))
	slog.SetDefault(l)
	return l, nil
}
