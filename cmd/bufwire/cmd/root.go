// Package cmd provides the CLI commands for bufwire.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bufwire/bufwire/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "bufwire",
	Short: "bufwire - buffered HTTP byte transport",
	Long: `bufwire is a buffered request/response byte transport over HTTP.

Writes accumulate in an outbound buffer; each flush posts the buffer as one
HTTP request and makes the response body readable, which lets an RPC
serialization layer treat the network as a plain byte stream.

Quick start:
  1. Run a local echo peer:   bufwire echo
  2. Send a payload through:  echo -n hello | bufwire send --host 127.0.0.1:8471

Configuration:
  Config is loaded from bufwire.yaml in the current directory,
  $HOME/.bufwire/, or /etc/bufwire/.

  Environment variables can override config values with the BUFWIRE_ prefix.
  Example: BUFWIRE_TARGET_HOST=rpc.example.com:9090`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./bufwire.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}

// newLogger builds the process logger from the configured level.
func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

// parseLogLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
