package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cdtdelta/stresstrip/internal/config"
	"github.com/cdtdelta/stresstrip/internal/logging"
)

var version = "dev"

// cli carries the settings every subcommand shares.
type cli struct {
	cfgPath  string
	logLevel string
	debug    bool

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:     "stresstrip",
		Short:   "Correlate wearable stress data with a flight itinerary",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&c.cfgPath, "config", "", "Config file (default ~/.config/stresstrip/config.toml)")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Override the configured log level")
	rootCmd.PersistentFlags().BoolVar(&c.debug, "debug", false, "Human-readable debug logging")

	rootCmd.AddCommand(analyzeCmd(c))
	rootCmd.AddCommand(exploreCmd(c))
	rootCmd.AddCommand(exportCmd(c))
	rootCmd.AddCommand(inspectCmd(c))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (c *cli) setup() error {
	var err error
	if c.cfgPath == "" {
		c.cfg, err = config.Load()
	} else {
		home, _ := os.UserHomeDir()
		c.cfg, err = config.LoadFile(c.cfgPath, home)
	}
	if err != nil {
		return err
	}

	level := c.cfg.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	if c.debug {
		level = "debug"
	}
	c.logger, err = logging.New(level, c.debug)
	return err
}
