package main

import (
	"github.com/spf13/cobra"
)

var (
	// configFlag is the CLI --config flag value
	configFlag string
	// logLevelFlag overrides the configured log level
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "flatserv",
	Short: "flatserv - a single-shot HTTP/1.1 server",
	Long: `flatserv accepts TCP connections, parses a constrained subset of
HTTP/1.1 off the wire and answers with greeting text, request echoes and
flat-file reads/writes under a configured root. Every connection is one
request, one response, then close.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"Path to a YAML config file (default: built-in configuration)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error (default: from config)")
}
