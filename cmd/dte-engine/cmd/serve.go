package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server over the workflow engine.

The API provides endpoints for:
  - POST /api/v1/validate                 - Validate a document
  - POST /api/v1/documents/process        - Run the full workflow
  - POST /api/v1/documents/batch          - Sequential batch ingestion
  - GET  /api/v1/documents/:code/history  - Archived outcomes
  - GET  /api/v1/ledger/:period           - Monthly ledger snapshot
  - GET  /health                          - Health check

Examples:
  dte-engine serve
  dte-engine serve --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (env: LISTEN_ADDR)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if serverAddr != "" {
		cfg.ListenAddr = serverAddr
	}

	logger := newLogger()
	defer logger.Sync()

	engine, st, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}

	srv := server.NewServer(&server.Config{
		Address:      cfg.ListenAddr,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug || cfg.Debug,
	}, engine, st, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s (environment %s)\n", cfg.ListenAddr, cfg.Environment)
	return srv.Run()
}
