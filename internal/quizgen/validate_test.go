package quizgen

import (
	"errors"
	"testing"
)

func intp(n int) *int { return &n }

func TestValidate_UnknownType(t *testing.T) {
	err := Validate(Request{TeachingPoint: "tp", QuestionType: "ESSAY"})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Code != CodeUnknownType {
		t.Errorf("expected %s, got %s", CodeUnknownType, verr.Code)
	}
}

func TestValidate_MissingDistractorCount(t *testing.T) {
	for _, qt := range []QuestionType{SingleChoice, MultiSelect} {
		err := Validate(Request{TeachingPoint: "tp", QuestionType: qt})

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected ValidationError, got %v", qt, err)
		}
		if verr.Code != CodeMissingDistractorCount {
			t.Errorf("%s: expected %s, got %s", qt, CodeMissingDistractorCount, verr.Code)
		}
	}
}

func TestValidate_MissingCorrectCount(t *testing.T) {
	err := Validate(Request{
		TeachingPoint:   "tp",
		QuestionType:    MultiSelect,
		DistractorCount: intp(3),
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Code != CodeMissingCorrectCount {
		t.Errorf("expected %s, got %s", CodeMissingCorrectCount, verr.Code)
	}
}

func TestValidate_DistractorCountBeforeCorrectCount(t *testing.T) {
	// Both counts missing: distractor rule fires first.
	err := Validate(Request{TeachingPoint: "tp", QuestionType: MultiSelect})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Code != CodeMissingDistractorCount {
		t.Errorf("expected %s first, got %s", CodeMissingDistractorCount, verr.Code)
	}
}

func TestValidate_OutOfRange(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"distractors too low", Request{QuestionType: SingleChoice, DistractorCount: intp(1)}},
		{"distractors too high", Request{QuestionType: SingleChoice, DistractorCount: intp(7)}},
		{"correct too low", Request{QuestionType: MultiSelect, DistractorCount: intp(3), CorrectAnswerCount: intp(0)}},
		{"correct too high", Request{QuestionType: MultiSelect, DistractorCount: intp(3), CorrectAnswerCount: intp(5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.TeachingPoint = "tp"
			err := Validate(tt.req)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Code != CodeOutOfRange {
				t.Errorf("expected %s, got %s", CodeOutOfRange, verr.Code)
			}
		})
	}
}

func TestValidate_AcceptsValidRequests(t *testing.T) {
	tests := []Request{
		{QuestionType: SingleChoice, DistractorCount: intp(3)},
		{QuestionType: MultiSelect, DistractorCount: intp(3), CorrectAnswerCount: intp(2)},
		{QuestionType: Boolean},
		{QuestionType: BooleanWithJustification},
	}

	for _, req := range tests {
		req.TeachingPoint = "tp"
		if err := Validate(req); err != nil {
			t.Errorf("%s: unexpected error: %v", req.QuestionType, err)
		}
	}
}

func TestTotalOptions(t *testing.T) {
	single := Request{QuestionType: SingleChoice, DistractorCount: intp(3)}
	if got := single.TotalOptions(); got != 4 {
		t.Errorf("SINGLE_CHOICE with 3 distractors: expected 4 options, got %d", got)
	}

	multi := Request{QuestionType: MultiSelect, DistractorCount: intp(3), CorrectAnswerCount: intp(2)}
	if got := multi.TotalOptions(); got != 5 {
		t.Errorf("MULTI_SELECT 3+2: expected 5 options, got %d", got)
	}

	boolean := Request{QuestionType: Boolean}
	if got := boolean.TotalOptions(); got != 2 {
		t.Errorf("BOOLEAN: expected 2 options, got %d", got)
	}
}
