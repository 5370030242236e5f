package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/workflow"
)

var (
	batchDirection string
)

var batchCmd = &cobra.Command{
	Use:   "batch [files...]",
	Short: "Ingest a batch of documents sequentially",
	Long: `Run the workflow over several document files, one after another.
Failures are recorded per document and the batch continues; there is no
rollback, so a batch can end with a mix of completed and failed documents.

Examples:
  dte-engine batch ventas/*.json --credential <signing-key>
  dte-engine batch compras/*.json --direction reception`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchDirection, "direction", "emission", "Flow direction: emission or reception")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := newLogger()
	defer logger.Sync()

	engine, _, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}

	direction := model.DirectionEmission
	if batchDirection == "reception" {
		direction = model.DirectionReception
	}

	subs := make([]workflow.Submission, 0, len(args))
	for _, file := range args {
		doc, err := readDocument(file)
		if err != nil {
			return err
		}
		subs = append(subs, workflow.Submission{
			Document:    doc,
			Direction:   direction,
			Environment: cfg.Environment,
			Credential:  credential,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := engine.IngestBatch(ctx, subs)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return printJSON(result)
	}

	fmt.Printf("batch finished: %d succeeded, %d failed\n", result.Succeeded, result.Failed)
	for _, e := range result.Errors {
		fmt.Printf("  ✗ %s (%s): %s\n", args[e.Index], e.GenerationCode, e.Message)
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d documents failed", result.Failed)
	}
	return nil
}
