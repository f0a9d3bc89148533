package quizgen

// Strategy bundles the prompt builder and parser for one question type.
// The dispatch table replaces per-type generator classes: every type
// shares the two-stage parser, so a strategy differs only in its name
// and prompt rendering.
type Strategy struct {
	Name  string
	Build func(Request, PromptFormat) string
	Parse func(string, Request) []Question
}

var strategies = map[QuestionType]Strategy{
	SingleChoice: {
		Name:  "multiple_choice",
		Build: BuildPrompt,
		Parse: Parse,
	},
	MultiSelect: {
		Name:  "multi_select",
		Build: BuildPrompt,
		Parse: Parse,
	},
	Boolean: {
		Name:  "true_false",
		Build: BuildPrompt,
		Parse: Parse,
	},
	BooleanWithJustification: {
		Name:  "true_false_justification",
		Build: BuildPrompt,
		Parse: Parse,
	},
}

// StrategyFor returns the strategy for a question type.
func StrategyFor(t QuestionType) (Strategy, bool) {
	s, ok := strategies[t]
	return s, ok
}
