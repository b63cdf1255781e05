package main

import (
	"fmt"
	"os"
	"time"

	"ampersand-agent/internal/bootstrap"
	"ampersand-agent/internal/config"
	"ampersand-agent/internal/pkg/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	timeout time.Duration

	heading = color.New(color.FgCyan, color.Bold)
	faint   = color.New(color.Faint)
	failure = color.New(color.FgRed)
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "ampersand",
	Short:         "Operator console for the Ampersand agent",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to the console as well as the log file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		failure.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) logger.ILogger {
	if verbose {
		return logger.NewZapLogger(cfg.App.LogFilePath, false)
	}
	return logger.NewIsolatedLogger(cfg.App.LogFilePath)
}

func newContainer() (*bootstrap.Container, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return bootstrap.NewContainer(cfg, newLogger(cfg))
}
