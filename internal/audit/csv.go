package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/teachpoint/quizgen/internal/quizgen"
)

// CSV column names the reviewer needs from a batch-run output file.
const (
	colTeachingPoint = "teaching_point"
	colQuestionText  = "question_text"
	colOptions       = "options_formatted"
	colAnswers       = "correct_answers"
)

// verdict columns appended to every reviewed row.
var verdictColumns = []string{
	"review_correct_answer",
	"review_confidence_level",
	"review_verification_status",
	"review_explanation",
	"review_key_principle",
}

// CSVSummary aggregates one review run.
type CSVSummary struct {
	Rows     int
	Reviewed int
	Failed   int
	ByStatus map[string]int
}

// ReviewCSV reads question rows from in, reviews each, and writes the
// rows back to out with verdict columns appended. Rows that cannot be
// reviewed are marked NEEDS_REVIEW and the run continues.
func (a *Auditor) ReviewCSV(ctx context.Context, in io.Reader, out io.Writer) (*CSVSummary, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	writer := csv.NewWriter(out)
	defer writer.Flush()
	if err := writer.Write(append(header, verdictColumns...)); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	summary := &CSVSummary{ByStatus: make(map[string]int)}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", summary.Rows+1, err)
		}
		summary.Rows++

		question, ok := questionFromRow(record, idx)
		if !ok {
			// A batch error row or a row with no parseable options.
			summary.Failed++
			writeVerdictRow(writer, record, &Verdict{
				ConfidenceLevel:    "LOW",
				VerificationStatus: StatusNeedsReview,
				Explanation:        "row has no reviewable question",
				KeyPrinciple:       "Unknown",
			})
			continue
		}

		verdict, err := a.Review(ctx, record[idx[colTeachingPoint]], question)
		if err != nil {
			summary.Failed++
			a.log.Warn("review failed", "row", summary.Rows, "error", err)
			writeVerdictRow(writer, record, &Verdict{
				CorrectAnswer:      strings.Join(question.AnswerKeys, ","),
				ConfidenceLevel:    "LOW",
				VerificationStatus: StatusNeedsReview,
				Explanation:        "review call failed: " + err.Error(),
				KeyPrinciple:       "Unknown",
			})
			continue
		}

		summary.Reviewed++
		summary.ByStatus[verdict.VerificationStatus]++
		writeVerdictRow(writer, record, verdict)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush output: %w", err)
	}

	a.log.Info("review run complete",
		"rows", summary.Rows,
		"reviewed", summary.Reviewed,
		"failed", summary.Failed,
	)
	return summary, nil
}

// columnIndex locates the required columns in the header.
func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int)
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colTeachingPoint, colQuestionText, colOptions, colAnswers} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("input CSV is missing column %q", required)
		}
	}
	return idx, nil
}

// questionFromRow rebuilds a question from its CSV row.
func questionFromRow(record []string, idx map[string]int) (quizgen.Question, bool) {
	get := func(col string) string {
		i := idx[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	text := get(colQuestionText)
	options := parseFormattedOptions(get(colOptions))
	if text == "" || len(options) == 0 {
		return quizgen.Question{}, false
	}

	var answers []string
	for _, k := range strings.Split(get(colAnswers), ",") {
		if k = strings.TrimSpace(k); k != "" {
			answers = append(answers, k)
		}
	}
	if len(answers) == 0 {
		return quizgen.Question{}, false
	}

	return quizgen.Question{
		Text:       text,
		Options:    options,
		AnswerKeys: answers,
	}, true
}

// parseFormattedOptions reverses the "A) first | B) second" rendering.
func parseFormattedOptions(formatted string) []quizgen.Option {
	var options []quizgen.Option
	for _, part := range strings.Split(formatted, "|") {
		part = strings.TrimSpace(part)
		key, value, found := strings.Cut(part, ")")
		if !found || len(key) != 1 {
			continue
		}
		options = append(options, quizgen.Option{
			Key:   key,
			Value: strings.TrimSpace(value),
		})
	}
	return options
}

func writeVerdictRow(w *csv.Writer, record []string, v *Verdict) {
	_ = w.Write(append(record,
		v.CorrectAnswer,
		v.ConfidenceLevel,
		v.VerificationStatus,
		v.Explanation,
		v.KeyPrinciple,
	))
}
