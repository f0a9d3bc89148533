package quizgen

import "fmt"

var optionKeys = []string{"A", "B", "C", "D", "E", "F"}

// Placeholder builds the synthetic question substituted when model
// output cannot be parsed. Confidence is 0 so callers can tell real
// questions from stand-ins.
func Placeholder(ordinal int, req Request) Question {
	total := req.TotalOptions()
	if total > len(optionKeys) {
		total = len(optionKeys)
	}

	var options []Option
	if req.QuestionType.IsBoolean() {
		options = booleanOptions()
	} else {
		options = make([]Option, total)
		for i := 0; i < total; i++ {
			options[i] = Option{Key: optionKeys[i], Value: "Option " + optionKeys[i]}
		}
	}

	return Question{
		Ordinal:    ordinal,
		Text:       fmt.Sprintf("Question %d - parsing error occurred", ordinal),
		Options:    options,
		AnswerKeys: []string{"A"},
		Confidence: 0.0,
	}
}

// PadAndTruncate fixes a parsed question list to exactly QuestionCount
// entries, filling gaps with placeholders and renumbering ordinals.
// It returns the fixed list and how many placeholders it added.
func PadAndTruncate(questions []Question, req Request) ([]Question, int) {
	if len(questions) > QuestionCount {
		questions = questions[:QuestionCount]
	}

	placeholders := 0
	for len(questions) < QuestionCount {
		questions = append(questions, Placeholder(len(questions)+1, req))
		placeholders++
	}

	for i := range questions {
		questions[i].Ordinal = i + 1
	}
	return questions, placeholders
}
