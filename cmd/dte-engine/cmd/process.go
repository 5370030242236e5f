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
	flowDirection string
)

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Run the full workflow for one document",
	Long: `Drive a single document through validation, signing, transmission
and the ledger update. Communication failures are retried and escalate to
contingency issuance for eligible document types.

Examples:
  dte-engine process factura.json --credential <signing-key>
  dte-engine process compra.json --direction reception`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&flowDirection, "direction", "emission", "Flow direction: emission or reception")
}

func runProcess(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}

	cfg := loadConfig()
	logger := newLogger()
	defer logger.Sync()

	engine, _, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	direction := model.DirectionEmission
	if flowDirection == "reception" {
		direction = model.DirectionReception
	}

	printVerbose("processing %s (%s)\n", args[0], direction)

	out, err := engine.Run(ctx, workflow.Submission{
		Document:    doc,
		Direction:   direction,
		Environment: cfg.Environment,
		Credential:  credential,
	})
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		if err := printJSON(out); err != nil {
			return err
		}
	} else {
		printOutcome(out)
	}

	if out.Status != workflow.StatusCompleted {
		return fmt.Errorf("workflow ended in %s", out.Status)
	}
	return nil
}

func printOutcome(out *workflow.Outcome) {
	code := out.Document.Identification.GenerationCode
	switch {
	case out.Status == workflow.StatusCompleted && out.Deferred:
		fmt.Printf("✓ %s: COMPLETED (deferred, pending remote confirmation)\n", code)
	case out.Status == workflow.StatusCompleted:
		fmt.Printf("✓ %s: COMPLETED (seal %s)\n", code, out.ReceiptSeal)
	default:
		fmt.Printf("✗ %s: %s\n", code, out.Status)
		if out.FailureMsg != "" {
			fmt.Printf("  - %s\n", out.FailureMsg)
		}
	}
	for _, v := range out.Violations {
		fmt.Printf("  - %s\n", v.String())
	}
	for _, w := range out.Warnings {
		fmt.Printf("  ⚠ %s\n", w)
	}
	if out.Ledger != nil {
		fmt.Printf("  ledger %s: output tax %s, input tax %s\n",
			out.Ledger.Period, out.Ledger.OutputTax.StringFixed(2), out.Ledger.InputTax.StringFixed(2))
	}
}
