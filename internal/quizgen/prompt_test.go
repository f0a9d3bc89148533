package quizgen

import (
	"strings"
	"testing"
)

func singleChoiceRequest() Request {
	req := Request{
		TeachingPoint:   "Radar coverage depends on antenna elevation",
		QuestionType:    SingleChoice,
		DistractorCount: intp(3),
	}
	req.Normalize()
	return req
}

func TestBuildPrompt_Idempotent(t *testing.T) {
	req := singleChoiceRequest()

	for _, format := range []PromptFormat{FormatLabeled, FormatJSON} {
		a := BuildPrompt(req, format)
		b := BuildPrompt(req, format)
		if a != b {
			t.Errorf("%s: prompt is not deterministic", format)
		}
	}
}

func TestBuildPrompt_StatesExactlyThree(t *testing.T) {
	reqs := []Request{
		singleChoiceRequest(),
		{TeachingPoint: "tp", QuestionType: MultiSelect, DistractorCount: intp(3), CorrectAnswerCount: intp(2)},
		{TeachingPoint: "tp", QuestionType: Boolean},
		{TeachingPoint: "tp", QuestionType: BooleanWithJustification},
	}

	for _, req := range reqs {
		req.Normalize()
		for _, format := range []PromptFormat{FormatLabeled, FormatJSON} {
			prompt := BuildPrompt(req, format)
			if !strings.Contains(prompt, "exactly 3") {
				t.Errorf("%s/%s: prompt does not state the exactly-3 constraint", req.QuestionType, format)
			}
		}
	}
}

func TestBuildPrompt_OptionCounts(t *testing.T) {
	req := singleChoiceRequest()
	prompt := BuildPrompt(req, FormatLabeled)
	if !strings.Contains(prompt, "exactly 4 options") {
		t.Error("expected 4 options for 3 distractors + 1 correct")
	}

	multi := Request{TeachingPoint: "tp", QuestionType: MultiSelect, DistractorCount: intp(4), CorrectAnswerCount: intp(2)}
	multi.Normalize()
	prompt = BuildPrompt(multi, FormatLabeled)
	if !strings.Contains(prompt, "exactly 6 options") {
		t.Error("expected 6 options for 4 distractors + 2 correct")
	}
	if !strings.Contains(prompt, "exactly 2 correct answers") {
		t.Error("expected the correct-answer count to be stated")
	}
}

func TestBuildPrompt_LanguageSelection(t *testing.T) {
	req := Request{
		TeachingPoint:          "english teaching point",
		SecondaryTeachingPoint: "arabic teaching point",
		QuestionType:           Boolean,
		Language:               LanguageArabic,
	}
	req.Normalize()

	prompt := BuildPrompt(req, FormatJSON)
	if !strings.Contains(prompt, "arabic teaching point") {
		t.Error("Arabic request should use the secondary teaching point")
	}
	if strings.Contains(prompt, "english teaching point") {
		t.Error("Arabic request should not embed the English teaching point")
	}
	if !strings.Contains(prompt, "Arabic") {
		t.Error("prompt should name the target language")
	}
}

func TestBuildPrompt_ArabicFallsBackWithoutSecondary(t *testing.T) {
	req := Request{
		TeachingPoint: "only teaching point",
		QuestionType:  Boolean,
		Language:      LanguageArabic,
	}
	req.Normalize()

	prompt := BuildPrompt(req, FormatJSON)
	if !strings.Contains(prompt, "only teaching point") {
		t.Error("missing secondary teaching point should fall back to the primary")
	}
}

func TestBuildPrompt_JustificationInstruction(t *testing.T) {
	req := Request{TeachingPoint: "tp", QuestionType: BooleanWithJustification}
	req.Normalize()

	prompt := BuildPrompt(req, FormatLabeled)
	if !strings.Contains(prompt, "Model Answer:") {
		t.Error("justification variant must ask for a Model Answer line")
	}

	plain := Request{TeachingPoint: "tp", QuestionType: Boolean}
	plain.Normalize()
	prompt = BuildPrompt(plain, FormatLabeled)
	if strings.Contains(prompt, "Model Answer:") {
		t.Error("plain boolean must not ask for a Model Answer line")
	}
}
