// Package batch drives question generation from a CSV of teaching
// points, one generation request per row.
package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/teachpoint/quizgen/internal/logger"
	"github.com/teachpoint/quizgen/internal/quizgen"
)

// inputHeader is the expected column layout of the request CSV.
var inputHeader = []string{
	"teaching_point",
	"secondary_teaching_point",
	"context",
	"question_type",
	"distractor_count",
	"correct_answer_count",
	"language",
	"cognitive_level",
}

// outputHeader is the column layout of the result CSV, one row per
// generated question.
var outputHeader = []string{
	"row",
	"teaching_point",
	"question_type",
	"language",
	"question_number",
	"question_text",
	"options_formatted",
	"correct_answers",
	"model_answer",
	"confidence_score",
	"strategy_used",
	"error",
}

// Summary aggregates one batch run.
type Summary struct {
	Rows      int
	Succeeded int
	Failed    int
	Questions int
}

// Runner executes generation requests read from CSV.
type Runner struct {
	service *quizgen.Service
	log     *logger.Logger
}

// New builds a Runner.
func New(service *quizgen.Service, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{service: service, log: log}
}

// Run reads requests from in, generates questions for each, and writes
// one output row per question to out. A failing row is recorded with
// its error and the run continues.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) (*Summary, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = len(inputHeader)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	writer := csv.NewWriter(out)
	defer writer.Flush()
	if err := writer.Write(outputHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	summary := &Summary{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", summary.Rows+1, err)
		}
		summary.Rows++

		req, err := parseRow(record)
		if err != nil {
			summary.Failed++
			r.log.Warn("skipping malformed row", "row", summary.Rows, "error", err)
			writeErrorRow(writer, summary.Rows, record, err)
			continue
		}

		result, err := r.service.Generate(ctx, req)
		if err != nil {
			summary.Failed++
			r.log.Warn("generation failed", "row", summary.Rows, "error", err)
			writeErrorRow(writer, summary.Rows, record, err)
			continue
		}

		summary.Succeeded++
		summary.Questions += len(result.Questions)
		for _, q := range result.Questions {
			row := []string{
				strconv.Itoa(summary.Rows),
				result.TeachingPoint,
				string(result.QuestionType),
				string(result.Language),
				strconv.Itoa(q.Ordinal),
				q.Text,
				formatOptions(q.Options),
				strings.Join(q.AnswerKeys, ","),
				q.Justification,
				strconv.FormatFloat(q.Confidence, 'f', 2, 64),
				result.Metadata.StrategyUsed,
				"",
			}
			if err := writer.Write(row); err != nil {
				return nil, fmt.Errorf("write row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush output: %w", err)
	}

	r.log.Info("batch run complete",
		"rows", summary.Rows,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"questions", summary.Questions,
	)
	return summary, nil
}

func checkHeader(header []string) error {
	if len(header) != len(inputHeader) {
		return fmt.Errorf("expected %d columns, got %d", len(inputHeader), len(header))
	}
	for i, want := range inputHeader {
		if strings.TrimSpace(header[i]) != want {
			return fmt.Errorf("column %d: expected %q, got %q", i+1, want, header[i])
		}
	}
	return nil
}

// parseRow converts one CSV record into a generation request.
func parseRow(record []string) (quizgen.Request, error) {
	req := quizgen.Request{
		TeachingPoint:          strings.TrimSpace(record[0]),
		SecondaryTeachingPoint: strings.TrimSpace(record[1]),
		Context:                strings.TrimSpace(record[2]),
		QuestionType:           quizgen.QuestionType(strings.TrimSpace(record[3])),
		Language:               quizgen.Language(strings.TrimSpace(record[6])),
		CognitiveLevel:         quizgen.CognitiveLevel(strings.TrimSpace(record[7])),
	}

	if req.TeachingPoint == "" {
		return quizgen.Request{}, fmt.Errorf("teaching_point is empty")
	}

	if v := strings.TrimSpace(record[4]); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return quizgen.Request{}, fmt.Errorf("distractor_count: %w", err)
		}
		req.DistractorCount = &n
	}
	if v := strings.TrimSpace(record[5]); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return quizgen.Request{}, fmt.Errorf("correct_answer_count: %w", err)
		}
		req.CorrectAnswerCount = &n
	}

	return req, nil
}

// formatOptions renders options as "A) first | B) second".
func formatOptions(options []quizgen.Option) string {
	parts := make([]string, len(options))
	for i, opt := range options {
		parts[i] = fmt.Sprintf("%s) %s", opt.Key, opt.Value)
	}
	return strings.Join(parts, " | ")
}

func writeErrorRow(w *csv.Writer, row int, record []string, rowErr error) {
	teachingPoint, questionType, language := "", "", ""
	if len(record) > 0 {
		teachingPoint = record[0]
	}
	if len(record) > 3 {
		questionType = record[3]
	}
	if len(record) > 6 {
		language = record[6]
	}
	_ = w.Write([]string{
		strconv.Itoa(row),
		teachingPoint,
		questionType,
		language,
		"", "", "", "", "", "", "",
		rowErr.Error(),
	})
}
