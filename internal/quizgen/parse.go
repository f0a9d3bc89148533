package quizgen

import (
	"encoding/json"
	"regexp"
	"strings"
)

// defaultConfidence is assumed when the model omits a confidence score
// for an otherwise well-formed question.
const defaultConfidence = 0.8

var (
	fencedJSONRe   = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	questionLineRe = regexp.MustCompile(`^Question\s+\d+\s*:`)
	optionLineRe   = regexp.MustCompile(`^([A-F])\)\s*(.*)$`)
)

// Parse extracts questions from raw model output. Two strategies are
// attempted in fixed priority order: fenced JSON first, then the
// labeled-line layout. Parsing never fails; callers pad anything short
// of QuestionCount with placeholders. Returned questions are already
// normalized for the requested type.
func Parse(raw string, req Request) []Question {
	if qs := parseFencedJSON(raw, req); len(qs) > 0 {
		return qs
	}
	return parseLabeled(raw, req)
}

// parsedQuestion is the wire shape inside the JSON questions array.
// Confidence is a pointer so an absent score can be defaulted.
type parsedQuestion struct {
	Question    string   `json:"question"`
	Options     []Option `json:"options"`
	Answer      []string `json:"answer"`
	ModelAnswer string   `json:"model_answer"`
	Confidence  *float64 `json:"confidence_score"`
}

// parseFencedJSON extracts a fenced JSON object (or a bare JSON body)
// carrying a questions array.
func parseFencedJSON(raw string, req Request) []Question {
	jsonStr := strings.TrimSpace(raw)
	if m := fencedJSONRe.FindStringSubmatch(raw); m != nil {
		jsonStr = m[1]
	}

	var payload struct {
		Questions []parsedQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil
	}

	var questions []Question
	for _, pq := range payload.Questions {
		confidence := defaultConfidence
		if pq.Confidence != nil {
			confidence = *pq.Confidence
		}
		q := Question{
			Text:          pq.Question,
			Options:       pq.Options,
			AnswerKeys:    pq.Answer,
			Justification: pq.ModelAnswer,
			Confidence:    confidence,
		}
		if nq, ok := normalize(q, req); ok {
			nq.Ordinal = len(questions) + 1
			questions = append(questions, nq)
		}
	}
	return questions
}

// parseLabeled splits the text into blocks starting at each
// "Question <n>:" line and parses one question per block.
func parseLabeled(raw string, req Request) []Question {
	var blocks [][]string
	var current []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if questionLineRe.MatchString(line) {
			if len(current) > 0 {
				blocks = append(blocks, current)
			}
			current = []string{line}
		} else if len(current) > 0 && line != "" {
			current = append(current, line)
		}
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}

	var questions []Question
	for _, block := range blocks {
		q, ok := parseBlock(block, req)
		if !ok {
			continue
		}
		if nq, ok := normalize(q, req); ok {
			nq.Ordinal = len(questions) + 1
			questions = append(questions, nq)
		}
	}
	return questions
}

// parseBlock parses a single labeled question block.
func parseBlock(lines []string, req Request) (Question, bool) {
	var q Question

	for _, line := range lines {
		switch {
		case questionLineRe.MatchString(line):
			_, text, _ := strings.Cut(line, ":")
			q.Text = strings.TrimSpace(text)

		case strings.HasPrefix(line, "Model Answer:"):
			if req.QuestionType == BooleanWithJustification {
				q.Justification = strings.TrimSpace(strings.TrimPrefix(line, "Model Answer:"))
			}

		case strings.HasPrefix(line, "Answer:"):
			rest := strings.TrimPrefix(line, "Answer:")
			for _, key := range strings.Split(rest, ",") {
				if key = strings.TrimSpace(key); key != "" {
					q.AnswerKeys = append(q.AnswerKeys, key)
				}
			}

		default:
			if m := optionLineRe.FindStringSubmatch(line); m != nil {
				q.Options = append(q.Options, Option{Key: m[1], Value: strings.TrimSpace(m[2])})
			}
		}
	}

	if q.Text == "" {
		return Question{}, false
	}
	// A block with no parseable answer defaults to the first option.
	if len(q.AnswerKeys) == 0 {
		q.AnswerKeys = []string{"A"}
	}
	q.Confidence = defaultConfidence
	return q, true
}

// booleanOptions is the fixed option set for true/false variants.
func booleanOptions() []Option {
	return []Option{
		{Key: "A", Value: "True"},
		{Key: "B", Value: "False"},
	}
}

// normalize enforces the per-type invariants on a parsed question. A
// question that cannot be repaired is rejected and later replaced by a
// placeholder.
func normalize(q Question, req Request) (Question, bool) {
	// Boolean semantics are fixed regardless of what the model produced.
	if req.QuestionType.IsBoolean() {
		q.Options = booleanOptions()
	}
	if len(q.Options) == 0 {
		return Question{}, false
	}

	// Every answer key must name an existing option.
	keys := make(map[string]bool, len(q.Options))
	for _, opt := range q.Options {
		keys[opt.Key] = true
	}
	var valid []string
	for _, k := range q.AnswerKeys {
		if keys[k] {
			valid = append(valid, k)
		}
	}
	if len(valid) == 0 {
		return Question{}, false
	}
	q.AnswerKeys = valid

	switch req.QuestionType {
	case SingleChoice, Boolean, BooleanWithJustification:
		q.AnswerKeys = q.AnswerKeys[:1]
	case MultiSelect:
		// A multi-select question with the wrong number of correct
		// answers is unusable for grading.
		if req.CorrectAnswerCount != nil && len(q.AnswerKeys) != *req.CorrectAnswerCount {
			return Question{}, false
		}
	}

	if q.Confidence < 0 {
		q.Confidence = 0
	}
	if q.Confidence > 1 {
		q.Confidence = 1
	}

	return q, true
}
