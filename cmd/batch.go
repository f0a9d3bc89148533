package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teachpoint/quizgen/internal/batch"
	"github.com/teachpoint/quizgen/internal/llm"
	"github.com/teachpoint/quizgen/internal/logger"
	"github.com/teachpoint/quizgen/internal/quizgen"
	"github.com/teachpoint/quizgen/internal/store"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate questions for every teaching point in a CSV file",
	Long: `Read generation requests from a CSV file (one request per row) and
write one output row per generated question. Failing rows are recorded
with their error and the run continues.

Input columns: teaching_point, secondary_teaching_point, context,
question_type, distractor_count, correct_answer_count, language,
cognitive_level.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("input", "", "Input CSV of generation requests (required)")
	batchCmd.Flags().String("output", "", "Output CSV of generated questions (required)")
	batchCmd.Flags().String("prompt-format", "json", "Prompt target format: json or labeled")
	batchCmd.Flags().Bool("no-db", false, "Disable event persistence")
	_ = batchCmd.MarkFlagRequired("input")
	_ = batchCmd.MarkFlagRequired("output")
}

func runBatch(cmd *cobra.Command, args []string) error {
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

	var events store.EventRepo
	if noDB, _ := cmd.Flags().GetBool("no-db"); !noDB {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()
		events = s.EventRepo()
	}

	provider, err := llm.NewProviderFromEnv(ctx, events)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	cfg := quizgen.DefaultConfig()
	if f, _ := cmd.Flags().GetString("prompt-format"); f == string(quizgen.FormatLabeled) {
		cfg.PromptFormat = quizgen.FormatLabeled
	}

	service := quizgen.NewService(provider, cfg, log, events)
	runner := batch.New(service, log)

	summary, err := runner.Run(ctx, in, out)
	if err != nil {
		return err
	}

	fmt.Printf("Processed %d rows: %d succeeded, %d failed, %d questions written to %s\n",
		summary.Rows, summary.Succeeded, summary.Failed, summary.Questions, outputPath)
	return nil
}
