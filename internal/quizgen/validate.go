package quizgen

import "fmt"

// ValidationCode identifies which validation rule a request failed.
type ValidationCode string

const (
	CodeUnknownType            ValidationCode = "UNKNOWN_TYPE"
	CodeMissingDistractorCount ValidationCode = "MISSING_DISTRACTOR_COUNT"
	CodeMissingCorrectCount    ValidationCode = "MISSING_CORRECT_COUNT"
	CodeOutOfRange             ValidationCode = "OUT_OF_RANGE"
)

// ValidationError is a caller error: the request shape is wrong for the
// requested question type. Never retried.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const (
	minDistractors = 2
	maxDistractors = 6
	minCorrect     = 1
	maxCorrect     = 4
)

// Validate enforces per-question-type parameter requirements. Rules are
// checked in a fixed order and the first failure wins. Pure function.
func Validate(req Request) error {
	if !req.QuestionType.Known() {
		return &ValidationError{
			Code:    CodeUnknownType,
			Message: fmt.Sprintf("unsupported question type %q", req.QuestionType),
		}
	}

	needsDistractors := req.QuestionType == SingleChoice || req.QuestionType == MultiSelect
	if needsDistractors && req.DistractorCount == nil {
		return &ValidationError{
			Code:    CodeMissingDistractorCount,
			Message: fmt.Sprintf("distractor_count is required for %s", req.QuestionType),
		}
	}

	if req.QuestionType == MultiSelect && req.CorrectAnswerCount == nil {
		return &ValidationError{
			Code:    CodeMissingCorrectCount,
			Message: "correct_answer_count is required for MULTI_SELECT",
		}
	}

	if needsDistractors {
		if n := *req.DistractorCount; n < minDistractors || n > maxDistractors {
			return &ValidationError{
				Code:    CodeOutOfRange,
				Message: fmt.Sprintf("distractor_count %d out of range [%d, %d]", n, minDistractors, maxDistractors),
			}
		}
	}
	if req.QuestionType == MultiSelect {
		if n := *req.CorrectAnswerCount; n < minCorrect || n > maxCorrect {
			return &ValidationError{
				Code:    CodeOutOfRange,
				Message: fmt.Sprintf("correct_answer_count %d out of range [%d, %d]", n, minCorrect, maxCorrect),
			}
		}
	}

	return nil
}
