package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/teachpoint/quizgen/internal/llm"
	"github.com/teachpoint/quizgen/internal/logger"
	"github.com/teachpoint/quizgen/internal/quizgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate questions for a teaching point (one-shot, no server)",
	Long: `Generate and print one question set without starting the HTTP API.

Useful for evaluating prompt quality against a model endpoint.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("teaching-point", "", "Teaching point to generate questions for (required)")
	generateCmd.Flags().String("type", "SINGLE_CHOICE", "Question type: SINGLE_CHOICE, MULTI_SELECT, BOOLEAN, BOOLEAN_WITH_JUSTIFICATION")
	generateCmd.Flags().Int("distractors", 3, "Distractor count (SINGLE_CHOICE / MULTI_SELECT)")
	generateCmd.Flags().Int("correct", 2, "Correct answer count (MULTI_SELECT)")
	generateCmd.Flags().String("language", "en", "Generation language: en or ar")
	generateCmd.Flags().String("level", "UNDERSTAND", "Cognitive level")
	generateCmd.Flags().String("context", "", "Additional context for the prompt")
	generateCmd.Flags().String("prompt-format", "json", "Prompt target format: json or labeled")
	generateCmd.Flags().Bool("json", false, "Print the raw JSON result instead of styled output")
	_ = generateCmd.MarkFlagRequired("teaching-point")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	req := quizgen.Request{}
	req.TeachingPoint, _ = cmd.Flags().GetString("teaching-point")
	req.Context, _ = cmd.Flags().GetString("context")

	typeVal, _ := cmd.Flags().GetString("type")
	req.QuestionType = quizgen.QuestionType(strings.ToUpper(typeVal))

	langVal, _ := cmd.Flags().GetString("language")
	req.Language = quizgen.Language(strings.ToLower(langVal))

	levelVal, _ := cmd.Flags().GetString("level")
	req.CognitiveLevel = quizgen.CognitiveLevel(strings.ToUpper(levelVal))

	if req.QuestionType == quizgen.SingleChoice || req.QuestionType == quizgen.MultiSelect {
		n, _ := cmd.Flags().GetInt("distractors")
		req.DistractorCount = &n
	}
	if req.QuestionType == quizgen.MultiSelect {
		n, _ := cmd.Flags().GetInt("correct")
		req.CorrectAnswerCount = &n
	}

	// No event repo: one-shot CLI use skips persistence.
	provider, err := llm.NewProviderFromEnv(ctx, nil)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	cfg := quizgen.DefaultConfig()
	if f, _ := cmd.Flags().GetString("prompt-format"); f == string(quizgen.FormatLabeled) {
		cfg.PromptFormat = quizgen.FormatLabeled
	}

	service := quizgen.NewService(provider, cfg, logger.Nop(), nil)
	result, err := service.Generate(ctx, req)
	if err != nil {
		return err
	}

	if raw, _ := cmd.Flags().GetBool("json"); raw {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(renderResult(result))
	return nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(72)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196"))

	metaStyle = lipgloss.NewStyle().
			Faint(true)
)

// renderResult pretty-prints a question set for the terminal.
func renderResult(result *quizgen.Result) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s — %s (%s)",
		result.QuestionType, result.TeachingPoint, result.Language)))
	b.WriteString("\n\n")

	for _, q := range result.Questions {
		var card strings.Builder
		text := fmt.Sprintf("Q%d: %s", q.Ordinal, q.Text)
		if q.Confidence == 0 {
			text = placeholderStyle.Render(text)
		}
		card.WriteString(text)
		card.WriteString("\n")

		answers := make(map[string]bool, len(q.AnswerKeys))
		for _, k := range q.AnswerKeys {
			answers[k] = true
		}
		for _, opt := range q.Options {
			line := fmt.Sprintf("  %s) %s", opt.Key, opt.Value)
			if answers[opt.Key] {
				line = answerStyle.Render(line + "  ✓")
			}
			card.WriteString(line)
			card.WriteString("\n")
		}

		if q.Justification != "" {
			card.WriteString(metaStyle.Render("Justification: " + q.Justification))
			card.WriteString("\n")
		}
		card.WriteString(metaStyle.Render(fmt.Sprintf("confidence %.2f", q.Confidence)))

		b.WriteString(cardStyle.Render(card.String()))
		b.WriteString("\n")
	}

	b.WriteString(metaStyle.Render(fmt.Sprintf("strategy=%s  mean_confidence=%.2f  elapsed=%.2fs",
		result.Metadata.StrategyUsed,
		result.Metadata.AverageConfidence,
		result.Metadata.GenerationTimeSeconds)))

	return b.String()
}
