package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
)

// Settings are the process-level knobs read from the environment.
type Settings struct {
	DBPath   string `env:"TOWERSIM_DB" envDefault:"~/.towersim/runs.db"`
	LogLevel string `env:"TOWERSIM_LOG_LEVEL" envDefault:"info"`
	TickRate int    `env:"TOWERSIM_TICK_RATE"`
	HTTPAddr string `env:"TOWERSIM_HTTP_ADDR" envDefault:":8080"`
	SSHAddr  string `env:"TOWERSIM_SSH_ADDR" envDefault:":2222"`
}

// LoadSettings reads Settings from the process environment.
func LoadSettings() (Settings, error) {
	return parseSettings(env.Options{})
}

func parseSettings(opts env.Options) (Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return s, fmt.Errorf("parse env: %w", err)
	}
	if s.TickRate < 0 {
		return s, fmt.Errorf("parse env: TOWERSIM_TICK_RATE %d is negative", s.TickRate)
	}
	return s, nil
}

// Level returns the parsed log level, info when unrecognised.
func (s Settings) Level() log.Level {
	lvl, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(p string) (string, error) {
	if p == "" || p[0] != '~' {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand home directory: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}
