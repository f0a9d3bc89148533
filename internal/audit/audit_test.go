package audit

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/teachpoint/quizgen/internal/llm"
	"github.com/teachpoint/quizgen/internal/quizgen"
)

func sampleQuestion() quizgen.Question {
	return quizgen.Question{
		Ordinal: 1,
		Text:    "Which factor most limits low-altitude coverage?",
		Options: []quizgen.Option{
			{Key: "A", Value: "Transmitter power"},
			{Key: "B", Value: "Terrain masking"},
			{Key: "C", Value: "Antenna polarization"},
			{Key: "D", Value: "Operator fatigue"},
		},
		AnswerKeys: []string{"B"},
		Confidence: 0.9,
	}
}

func verdictJSON(status string) string {
	body, _ := json.Marshal(Verdict{
		CorrectAnswer:      "B",
		ConfidenceLevel:    "HIGH",
		VerificationStatus: status,
		Explanation:        "Terrain blocks line of sight at low altitude.",
		KeyPrinciple:       "Radar horizon",
	})
	return string(body)
}

func TestReview_CorrectVerdict(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage("```json\n" + verdictJSON(StatusCorrect) + "\n```"),
	})
	auditor := New(provider, DefaultConfig(), nil)

	verdict, err := auditor.Review(context.Background(), "tp", sampleQuestion())
	if err != nil {
		t.Fatal(err)
	}
	if verdict.VerificationStatus != StatusCorrect || verdict.CorrectAnswer != "B" {
		t.Errorf("unexpected verdict: %+v", verdict)
	}

	// The reviewer prompt carries the question and its given answer.
	prompt := provider.Calls[0].Messages[0].Content
	if !strings.Contains(prompt, "Which factor most limits") {
		t.Error("prompt must embed the question text")
	}
	if !strings.Contains(prompt, "Given Answer: B") {
		t.Error("prompt must state the given answer")
	}
	if provider.Calls[0].Schema == nil {
		t.Error("review requests carry the verdict schema")
	}
}

func TestReview_UnparseableReplyDegrades(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`the model rambled with no JSON at all`),
	})
	auditor := New(provider, DefaultConfig(), nil)

	verdict, err := auditor.Review(context.Background(), "tp", sampleQuestion())
	if err != nil {
		t.Fatalf("unparseable reply must not error: %v", err)
	}
	if verdict.VerificationStatus != StatusNeedsReview {
		t.Errorf("expected NEEDS_REVIEW, got %s", verdict.VerificationStatus)
	}
	if verdict.CorrectAnswer != "B" {
		t.Errorf("degraded verdict keeps the given answer, got %q", verdict.CorrectAnswer)
	}
}

func TestReview_InferenceErrorPropagates(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{
		Err: &llm.Error{Kind: llm.KindUnreachable},
	})
	auditor := New(provider, DefaultConfig(), nil)

	if _, err := auditor.Review(context.Background(), "tp", sampleQuestion()); err == nil {
		t.Fatal("expected inference error to propagate")
	}
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantOK bool
	}{
		{"fenced", "Here you go:\n```json\n" + verdictJSON(StatusCorrect) + "\n```", true},
		{"bare", "Sure. " + verdictJSON(StatusIncorrect) + " Done.", true},
		{"no JSON", "nothing structured here", false},
		{"invalid JSON", "```json\n{broken\n```", false},
		{"missing fields", `{"explanation": "only this"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := parseVerdict(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("parseVerdict ok=%v, want %v", ok, tt.wantOK)
			}
			if ok && v.CorrectAnswer != "B" {
				t.Errorf("unexpected verdict: %+v", v)
			}
		})
	}
}

func TestParseFormattedOptions(t *testing.T) {
	options := parseFormattedOptions("A) first | B) second (with parens) | C) third")
	if len(options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(options))
	}
	if options[1].Key != "B" || options[1].Value != "second (with parens)" {
		t.Errorf("unexpected option: %+v", options[1])
	}

	if got := parseFormattedOptions("no separators here"); len(got) != 0 {
		t.Errorf("expected no options from unformatted text, got %v", got)
	}
}

func TestReviewCSV(t *testing.T) {
	input := strings.Join([]string{
		"teaching_point,question_text,options_formatted,correct_answers",
		`tp one,Q one?,A) x | B) y,B`,
		`tp two,,,"       "`, // batch error row: no question
		`tp three,Q three?,A) x | B) y,A`,
	}, "\n")

	provider := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(verdictJSON(StatusCorrect))},
		llm.MockResponse{Content: json.RawMessage(verdictJSON(StatusIncorrect))},
	)
	auditor := New(provider, DefaultConfig(), nil)

	var out strings.Builder
	summary, err := auditor.ReviewCSV(context.Background(), strings.NewReader(input), &out)
	if err != nil {
		t.Fatal(err)
	}

	if summary.Rows != 3 || summary.Reviewed != 2 || summary.Failed != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.ByStatus[StatusCorrect] != 1 || summary.ByStatus[StatusIncorrect] != 1 {
		t.Errorf("unexpected status counts: %v", summary.ByStatus)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "review_verification_status") {
		t.Error("output header must carry the verdict columns")
	}
	if !strings.Contains(lines[2], StatusNeedsReview) {
		t.Errorf("unreviewable row must be marked NEEDS_REVIEW: %s", lines[2])
	}
}

func TestReviewCSV_MissingColumn(t *testing.T) {
	auditor := New(llm.NewMockProvider(), DefaultConfig(), nil)

	var out strings.Builder
	_, err := auditor.ReviewCSV(context.Background(),
		strings.NewReader("teaching_point,question_text\n"), &out)
	if err == nil {
		t.Fatal("expected error for missing required column")
	}
}
