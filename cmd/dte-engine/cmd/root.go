package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/config"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/gateway"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/store"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/validation"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/workflow"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	signerURL    string
	authorityURL string
	environment  string
	dbPath       string
	credential   string
)

var rootCmd = &cobra.Command{
	Use:   "dte-engine",
	Short: "Validate, sign and transmit electronic tax documents",
	Long: `dte-engine processes electronic tax documents (DTE) under the
national e-invoicing mandate: schema and business-rule validation,
signing via the external signer, transmission to the tax authority with
contingency fallback, and maintenance of the monthly tax ledger.

Examples:
  # Validate a document file
  dte-engine validate factura.json

  # Run the full emission workflow
  dte-engine process factura.json --credential <signing-key>

  # Ingest a batch of received documents
  dte-engine batch compras/*.json --direction reception

  # Start the HTTP API
  dte-engine serve --address :8080`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table or json")
	rootCmd.PersistentFlags().StringVar(&signerURL, "signer-url", "", "Signing service base URL (env: SIGNER_URL)")
	rootCmd.PersistentFlags().StringVar(&authorityURL, "authority-url", "", "Tax authority base URL (env: AUTHORITY_URL)")
	rootCmd.PersistentFlags().StringVar(&environment, "environment", "", "Target environment: test or production (env: DTE_ENVIRONMENT)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Ledger database path (env: DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&credential, "credential", "", "Signing credential for emission flows")
}

// loadConfig merges flags over the environment configuration.
func loadConfig() config.Config {
	cfg := config.Load()
	if signerURL != "" {
		cfg.SignerURL = signerURL
	}
	if authorityURL != "" {
		cfg.AuthorityURL = authorityURL
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if environment == "production" {
		cfg.Environment = model.EnvironmentProduction
	} else if environment == "test" {
		cfg.Environment = model.EnvironmentTest
	}
	return cfg
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// buildEngine wires the gateways, store and workflow engine from config.
func buildEngine(cfg config.Config, logger *zap.Logger) (*workflow.Engine, *store.Store, error) {
	st, err := store.Open(cfg.DatabasePath, store.WithStoreLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open ledger store: %w", err)
	}

	signer := gateway.NewHTTPSigner(cfg.SignerURL,
		gateway.WithSignerTimeout(cfg.SignerTimeout),
		gateway.WithSignerLogger(logger))

	tokens := gateway.NewTokenCache(
		gateway.NewPasswordTokenSource(cfg.AuthorityURL, cfg.AuthorityUser, cfg.AuthorityPassword, nil),
		gateway.DefaultTokenMargin)
	transmitter := gateway.NewHTTPTransmitter(cfg.AuthorityURL, tokens,
		gateway.WithTransmitterTimeout(cfg.TransmitTimeout),
		gateway.WithTransmitterLogger(logger))

	engine := workflow.NewEngine(validation.NewPipeline(), signer, transmitter,
		workflow.WithLedgerStore(st),
		workflow.WithHistorySink(st),
		workflow.WithLogger(logger))

	return engine, st, nil
}

// readDocument loads one document from a JSON file.
func readDocument(path string) (model.Document, error) {
	var doc model.Document
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
