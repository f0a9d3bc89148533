// Package audit verifies generated answer keys against a second model
// acting as a subject-matter reviewer.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/teachpoint/quizgen/internal/llm"
	"github.com/teachpoint/quizgen/internal/logger"
	"github.com/teachpoint/quizgen/internal/quizgen"
)

// Verification statuses a verdict can carry.
const (
	StatusCorrect     = "CORRECT"
	StatusIncorrect   = "INCORRECT"
	StatusNeedsReview = "NEEDS_REVIEW"
)

// Verdict is the reviewer's judgment on one question.
type Verdict struct {
	CorrectAnswer      string `json:"correct_answer"`
	ConfidenceLevel    string `json:"confidence_level"` // HIGH / MEDIUM / LOW
	VerificationStatus string `json:"verification_status"`
	Explanation        string `json:"explanation"`
	KeyPrinciple       string `json:"key_principle"`
}

// verdictSchema constrains structured-output providers to the verdict
// shape.
var verdictSchema = &llm.Schema{
	Name:        "answer_verdict",
	Description: "Review verdict for one quiz question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"correct_answer": map[string]any{
				"type":        "string",
				"description": "The correct answer keys, e.g. B or A,C",
			},
			"confidence_level": map[string]any{
				"type": "string",
				"enum": []any{"HIGH", "MEDIUM", "LOW"},
			},
			"verification_status": map[string]any{
				"type": "string",
				"enum": []any{StatusCorrect, StatusIncorrect, StatusNeedsReview},
			},
			"explanation": map[string]any{
				"type": "string",
			},
			"key_principle": map[string]any{
				"type": "string",
			},
		},
		"required":             []any{"correct_answer", "confidence_level", "verification_status", "explanation", "key_principle"},
		"additionalProperties": false,
	},
}

const reviewerSystemPrompt = `You are a highly experienced instructor and subject-matter expert reviewing assessment questions.

When analyzing a question, consider:
1. Established principles and standard practice in the subject area
2. Whether exactly the given answer keys are defensible
3. Whether any distractor is also arguably correct
4. Clarity and lack of ambiguity in the question wording

Provide accurate, principle-based verdicts.`

var verdictJSONRe = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
var bareJSONRe = regexp.MustCompile(`(?s)(\{.*\})`)

// Config tunes the auditor's inference calls.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the reviewer defaults: a short, cold reply.
func DefaultConfig() Config {
	return Config{MaxTokens: 500, Temperature: 0.1}
}

// Auditor reviews questions one at a time.
type Auditor struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
}

// New builds an Auditor.
func New(provider llm.Provider, cfg Config, log *logger.Logger) *Auditor {
	if log == nil {
		log = logger.Nop()
	}
	return &Auditor{provider: provider, config: cfg, log: log}
}

// Review asks the model to verify one question's answer key. Inference
// failures are returned as errors; an unparseable reply degrades to a
// NEEDS_REVIEW verdict so batch runs can continue.
func (a *Auditor) Review(ctx context.Context, teachingPoint string, q quizgen.Question) (*Verdict, error) {
	ctx = llm.WithPurpose(ctx, "answer-audit")

	resp, err := a.provider.Generate(ctx, llm.Request{
		System: reviewerSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildReviewPrompt(teachingPoint, q)},
		},
		Schema:      verdictSchema,
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("review call failed: %w", err)
	}

	verdict, ok := parseVerdict(resp.Text())
	if !ok {
		a.log.Warn("unparseable reviewer reply, marking for review")
		return &Verdict{
			CorrectAnswer:      strings.Join(q.AnswerKeys, ","),
			ConfidenceLevel:    "LOW",
			VerificationStatus: StatusNeedsReview,
			Explanation:        "reviewer reply could not be parsed",
			KeyPrinciple:       "Unknown",
		}, nil
	}
	return verdict, nil
}

// buildReviewPrompt renders the per-question analysis prompt.
func buildReviewPrompt(teachingPoint string, q quizgen.Question) string {
	var b strings.Builder

	b.WriteString("Analyze this assessment question and provide the correct answer.\n\n")
	fmt.Fprintf(&b, "Teaching Point: %s\n\n", teachingPoint)
	fmt.Fprintf(&b, "Question: %s\n\n", q.Text)

	b.WriteString("Options:\n")
	for _, opt := range q.Options {
		fmt.Fprintf(&b, "%s) %s\n", opt.Key, opt.Value)
	}
	fmt.Fprintf(&b, "\nGiven Answer: %s\n\n", strings.Join(q.AnswerKeys, ","))

	b.WriteString(`Respond in this JSON format:
{
    "correct_answer": "The correct answer (A, B, or A,C for multiple)",
    "confidence_level": "HIGH/MEDIUM/LOW",
    "verification_status": "CORRECT/INCORRECT/NEEDS_REVIEW",
    "explanation": "Brief explanation of why this is the correct answer",
    "key_principle": "The main principle or concept this question tests"
}`)

	return b.String()
}

// parseVerdict extracts the verdict JSON from the model reply, fenced
// or bare.
func parseVerdict(raw string) (*Verdict, bool) {
	jsonStr := ""
	if m := verdictJSONRe.FindStringSubmatch(raw); m != nil {
		jsonStr = m[1]
	} else if m := bareJSONRe.FindStringSubmatch(raw); m != nil {
		jsonStr = m[1]
	} else {
		return nil, false
	}

	var v Verdict
	if err := json.Unmarshal([]byte(jsonStr), &v); err != nil {
		return nil, false
	}
	if v.CorrectAnswer == "" || v.VerificationStatus == "" {
		return nil, false
	}
	return &v, true
}
