package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ivlev/math2video/internal/config"
	"github.com/ivlev/math2video/internal/logging"
	"github.com/ivlev/math2video/internal/system"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevel string

	ctx := newCommandContext(&configFlag, &logLevel)

	rootCmd := &cobra.Command{
		Use:           "math2video",
		Short:         "Render math concept prompts into short animations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file (.yaml or .toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(newRenderCommand(ctx))
	rootCmd.AddCommand(newBatchCommand(ctx))
	rootCmd.AddCommand(newInstructionsCommand(ctx))
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newKeywordsCommand())
	rootCmd.AddCommand(newProbeCommand(ctx))

	return rootCmd
}

type commandContext struct {
	configFlag *string
	logLevel   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	logCloser  io.Closer
	loggerErr  error
}

func newCommandContext(configFlag, logLevel *string) *commandContext {
	return &commandContext{configFlag: configFlag, logLevel: logLevel}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg := config.Default()
		if path := strings.TrimSpace(*c.configFlag); path != "" {
			loaded, err := config.Load(path)
			if err != nil {
				c.configErr = err
				return
			}
			cfg = loaded
		}
		if lvl := strings.TrimSpace(*c.logLevel); lvl != "" {
			cfg.Log.Level = lvl
		}
		cfg.BuildVersion = buildVersion
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.logCloser, c.loggerErr = logging.NewFromConfig(cfg.Log)
		if c.loggerErr == nil {
			system.InitResourceLimits(c.logger)
		}
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
	}
}

// signalContext cancels the command on Ctrl-C; renders stop at the next
// tick boundary.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
