package batch

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/teachpoint/quizgen/internal/llm"
	"github.com/teachpoint/quizgen/internal/quizgen"
)

func batchJSONResponse() llm.MockResponse {
	questions := make([]map[string]any, 3)
	for i := range questions {
		questions[i] = map[string]any{
			"question_number": i + 1,
			"question":        "Generated question?",
			"options": []map[string]string{
				{"key": "A", "value": "first"},
				{"key": "B", "value": "second"},
				{"key": "C", "value": "third"},
				{"key": "D", "value": "fourth"},
			},
			"answer":           []string{"B"},
			"confidence_score": 0.85,
		}
	}
	content, _ := json.Marshal(map[string]any{"questions": questions})
	return llm.MockResponse{Content: content}
}

func newTestRunner(responses ...llm.MockResponse) *Runner {
	provider := llm.NewMockProvider(responses...)
	service := quizgen.NewService(provider, quizgen.DefaultConfig(), nil, nil)
	return New(service, nil)
}

func TestRun_WritesOneRowPerQuestion(t *testing.T) {
	input := strings.Join([]string{
		strings.Join(inputHeader, ","),
		"Radar coverage depends on elevation,,,SINGLE_CHOICE,3,,en,",
	}, "\n")

	runner := newTestRunner(batchJSONResponse())

	var out strings.Builder
	summary, err := runner.Run(context.Background(), strings.NewReader(input), &out)
	if err != nil {
		t.Fatal(err)
	}

	if summary.Rows != 1 || summary.Succeeded != 1 || summary.Questions != 3 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	records, err := csv.NewReader(strings.NewReader(out.String())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 { // header + 3 questions
		t.Fatalf("expected 4 output records, got %d", len(records))
	}
	row := records[1]
	if row[1] != "Radar coverage depends on elevation" || row[2] != "SINGLE_CHOICE" {
		t.Errorf("unexpected row: %v", row)
	}
	if row[6] != "A) first | B) second | C) third | D) fourth" {
		t.Errorf("unexpected options rendering: %q", row[6])
	}
	if row[7] != "B" || row[9] != "0.85" || row[10] != "multiple_choice" {
		t.Errorf("unexpected answer/confidence/strategy: %v", row)
	}
}

func TestRun_ContinuesPastFailingRows(t *testing.T) {
	input := strings.Join([]string{
		strings.Join(inputHeader, ","),
		",,,SINGLE_CHOICE,3,,en,",        // empty teaching point
		"valid tp,,,UNKNOWN_TYPE,3,,en,", // validation failure
		"valid tp,,,SINGLE_CHOICE,3,,en,",
	}, "\n")

	runner := newTestRunner(batchJSONResponse())

	var out strings.Builder
	summary, err := runner.Run(context.Background(), strings.NewReader(input), &out)
	if err != nil {
		t.Fatal(err)
	}

	if summary.Rows != 3 || summary.Succeeded != 1 || summary.Failed != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	records, err := csv.NewReader(strings.NewReader(out.String())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	// Header + 2 error rows + 3 question rows.
	if len(records) != 6 {
		t.Fatalf("expected 6 output records, got %d", len(records))
	}
	errCol := len(outputHeader) - 1
	if records[1][errCol] == "" || records[2][errCol] == "" {
		t.Error("failing rows must carry their error message")
	}
	if records[3][errCol] != "" {
		t.Errorf("successful row must have an empty error column: %v", records[3])
	}
}

func TestRun_RejectsWrongHeader(t *testing.T) {
	runner := newTestRunner()

	var out strings.Builder
	_, err := runner.Run(context.Background(),
		strings.NewReader("wrong,header,entirely,a,b,c,d,e\n"), &out)
	if err == nil {
		t.Fatal("expected header mismatch error")
	}
}

func TestParseRow(t *testing.T) {
	req, err := parseRow([]string{
		"tp", "tp-ar", "some context", "MULTI_SELECT", "4", "2", "ar", "ANALYZE",
	})
	if err != nil {
		t.Fatal(err)
	}
	if req.TeachingPoint != "tp" || req.SecondaryTeachingPoint != "tp-ar" {
		t.Errorf("unexpected teaching points: %+v", req)
	}
	if req.DistractorCount == nil || *req.DistractorCount != 4 {
		t.Errorf("unexpected distractor count: %v", req.DistractorCount)
	}
	if req.CorrectAnswerCount == nil || *req.CorrectAnswerCount != 2 {
		t.Errorf("unexpected correct answer count: %v", req.CorrectAnswerCount)
	}
	if req.Language != quizgen.LanguageArabic || req.CognitiveLevel != quizgen.LevelAnalyze {
		t.Errorf("unexpected language/level: %+v", req)
	}

	if _, err := parseRow([]string{"tp", "", "", "BOOLEAN", "not-a-number", "", "", ""}); err == nil {
		t.Error("expected error for non-numeric distractor_count")
	}
}
