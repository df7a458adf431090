package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kfcemployee/flatserv/internal/config"
	"github.com/kfcemployee/flatserv/server"
)

var (
	listenFlag string
	portFlag   int
)

var serveCmd = &cobra.Command{
	Use:   "serve [files-root]",
	Short: "Run the server until externally terminated",
	Long: `Run the server. The optional positional argument is the root
directory for the /files/ routes; without it those routes answer 404.
There is no shutdown command, terminate the process to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenFlag, "listen", "", "Host to bind (overrides config)")
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Port to bind (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}

	// precedence: CLI flag > config file > default
	if len(args) == 1 {
		cfg.Files.Root = args[0]
	}
	if listenFlag != "" {
		cfg.Listen.Host = listenFlag
	}
	if portFlag != 0 {
		cfg.Listen.Port = portFlag
	}

	level := cfg.Log.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.LevelFromString(level),
	}))

	s, err := server.New(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.Run()
}
