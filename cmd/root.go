package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/teachpoint/quizgen/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizgen",
	Short: "Teaching-point quiz question generation service",
	Long: `Quizgen turns teaching points into structured quiz questions
(multiple-choice, multi-select, true/false, true/false with justification)
by prompting a language model and parsing its reply into typed records.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(func() {
		// Best-effort: a missing .env file is fine.
		_ = godotenv.Load()
	})

	rootCmd.PersistentFlags().String("db", "", "Path to SQLite event database (overrides QUIZGEN_DB env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then QUIZGEN_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
