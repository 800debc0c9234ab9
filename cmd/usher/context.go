package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"usher/internal/config"
	"usher/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce  sync.Once
	loggerValue *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger returns a quiet logger for one-shot commands. Services still log
// through it, but only warnings and errors reach the terminal, on stderr so
// command output stays clean.
func (c *commandContext) logger() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.New(logging.Options{
			Level:  "warn",
			Format: "console",
			Paths:  []string{"stderr"},
		})
		if err != nil {
			logger = logging.NewNop()
		}
		c.loggerValue = logger
	})
	return c.loggerValue
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
