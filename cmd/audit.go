package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teachpoint/quizgen/internal/audit"
	"github.com/teachpoint/quizgen/internal/llm"
	"github.com/teachpoint/quizgen/internal/logger"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Review generated answer keys with a second model pass",
	Long: `Read a batch-run output CSV, ask the configured model to verify each
question's answer key, and write the rows back with verdict columns
appended (correct answer, confidence level, verification status,
explanation, key principle).`,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().String("input", "", "Batch output CSV to review (required)")
	auditCmd.Flags().String("output", "", "Output CSV with verdicts appended (required)")
	_ = auditCmd.MarkFlagRequired("input")
	_ = auditCmd.MarkFlagRequired("output")
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	log, err := logger.New(os.Getenv("QUIZGEN_LOG_MODE"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")

	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	provider, err := llm.NewProviderFromEnv(ctx, nil)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	auditor := audit.New(provider, audit.DefaultConfig(), log)
	summary, err := auditor.ReviewCSV(ctx, in, out)
	if err != nil {
		return err
	}

	fmt.Printf("Reviewed %d of %d rows (%d failed). Results written to %s\n",
		summary.Reviewed, summary.Rows, summary.Failed, outputPath)
	for status, count := range summary.ByStatus {
		fmt.Printf("  %s: %d\n", status, count)
	}
	return nil
}
