package quizgen

import (
	"fmt"
	"strings"
)

// PromptFormat selects which target format the instruction asks the
// model to produce.
type PromptFormat string

const (
	// FormatLabeled asks for the line-labeled "Question N:/A)/Answer:"
	// layout.
	FormatLabeled PromptFormat = "labeled"
	// FormatJSON asks for a fenced JSON block with a questions array.
	FormatJSON PromptFormat = "json"
)

const defaultContext = "General instructional material"

// BuildPrompt renders the instruction text for a request. Deterministic
// function of its input: identical requests yield byte-identical text.
func BuildPrompt(req Request, format PromptFormat) string {
	if format == FormatJSON {
		return buildJSONPrompt(req)
	}
	return buildLabeledPrompt(req)
}

// buildLabeledPrompt renders the line-labeled instruction.
func buildLabeledPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("You are an expert instructor generating assessment questions.\n")
	b.WriteString("You will be given a teaching point linked to a specific learning objective. ")
	b.WriteString("Understand its semantic meaning, apply the requested cognitive level, ")
	b.WriteString("and generate assessment questions following the format below.\n\n")

	b.WriteString("IMPORTANT: Generate exactly 3 questions, no more, no less.\n\n")

	b.WriteString("Parameters:\n")
	fmt.Fprintf(&b, "- Teaching Point: %s\n", req.SelectedTeachingPoint())
	fmt.Fprintf(&b, "- Question Type: %s\n", req.QuestionType)
	fmt.Fprintf(&b, "- Language: %s\n", req.Language.Name())
	fmt.Fprintf(&b, "- Cognitive Level: %s\n\n", req.CognitiveLevel)

	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- %s\n", optionRequirement(req))
	fmt.Fprintf(&b, "- Focus on the %s cognitive level\n", req.CognitiveLevel)
	b.WriteString("- Each question must be directly related to the teaching point\n")
	b.WriteString("- Make each question unique and test different aspects\n")
	if req.Context != "" {
		fmt.Fprintf(&b, "- Context: %s\n", req.Context)
	}
	b.WriteString("\n")

	b.WriteString(labeledFormatInstructions(req.QuestionType))

	fmt.Fprintf(&b, "\nGenerate exactly 3 questions in %s following the specified format.", req.Language.Name())

	return b.String()
}

// optionRequirement states how many options a question carries and how
// many of them are correct.
func optionRequirement(req Request) string {
	switch req.QuestionType {
	case SingleChoice:
		return fmt.Sprintf("Generate exactly %d options (A, B, C, ...) with exactly 1 correct answer", req.TotalOptions())
	case MultiSelect:
		return fmt.Sprintf("Generate exactly %d options (A, B, C, ...) with exactly %d correct answers", req.TotalOptions(), *req.CorrectAnswerCount)
	default:
		return "Generate exactly 2 options: A) True, B) False"
	}
}

// labeledFormatInstructions returns the per-type target format block.
func labeledFormatInstructions(t QuestionType) string {
	switch t {
	case SingleChoice:
		return `Format each question as:
Question [Number]: [Question text]
A) [Option A]
B) [Option B]
C) [Option C]
[Add more options as needed]
Answer: [single letter]
`
	case MultiSelect:
		return `Format each question as:
Question [Number]: [Question text]
A) [Option A]
B) [Option B]
C) [Option C]
D) [Option D]
[Add more options as needed]
Answer: [A, C] (multiple letters separated by commas)
`
	case BooleanWithJustification:
		return `Format each question as:
Question [Number]: [Question text]
A) True
B) False
Answer: [A or B]
Model Answer: [Detailed justification explaining why the answer is correct]
`
	default: // Boolean
		return `Format each question as:
Question [Number]: [Question text]
A) True
B) False
Answer: [A or B]
`
	}
}

// buildJSONPrompt renders the fenced-JSON instruction.
func buildJSONPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert instructor %s.\n\n", jsonPersona(req.QuestionType))
	fmt.Fprintf(&b, "TASK: Generate exactly 3 %s.\n\n", jsonTaskLabel(req.QuestionType))

	fmt.Fprintf(&b, "TEACHING POINT: %s\n", req.SelectedTeachingPoint())
	ctx := req.Context
	if ctx == "" {
		ctx = defaultContext
	}
	fmt.Fprintf(&b, "CONTEXT: %s\n", ctx)
	fmt.Fprintf(&b, "LANGUAGE: %s\n", req.Language.Name())
	fmt.Fprintf(&b, "COGNITIVE LEVEL: %s\n\n", req.CognitiveLevel)

	b.WriteString("REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- %s\n", optionRequirement(req))
	fmt.Fprintf(&b, "- Questions must test %s level thinking\n", req.CognitiveLevel)
	b.WriteString("- Avoid obvious answers or patterns\n")
	b.WriteString("- Make distractors plausible but clearly incorrect\n\n")

	b.WriteString("FORMAT (JSON):\n")
	b.WriteString(jsonFormatExample(req.QuestionType))

	b.WriteString("\nGenerate exactly 3 questions following this format.")

	return b.String()
}

func jsonPersona(t QuestionType) string {
	switch t {
	case MultiSelect:
		return "specializing in complex assessment design"
	case Boolean:
		return "creating precise true/false assessments"
	case BooleanWithJustification:
		return "creating advanced true/false assessments with justifications"
	default:
		return "creating multiple-choice assessments"
	}
}

func jsonTaskLabel(t QuestionType) string {
	switch t {
	case MultiSelect:
		return "multi-select questions requiring analytical thinking"
	case Boolean:
		return "true/false questions testing critical understanding"
	case BooleanWithJustification:
		return "true/false questions with detailed explanations"
	default:
		return "multiple-choice questions"
	}
}

// jsonFormatExample returns the fenced example the model must imitate.
func jsonFormatExample(t QuestionType) string {
	switch t {
	case MultiSelect:
		return "```json\n" + `{
  "questions": [
    {
      "question_number": 1,
      "question": "Which factors apply? (Select all that apply)",
      "options": [
        {"key": "A", "value": "First factor"},
        {"key": "B", "value": "Second factor"},
        {"key": "C", "value": "Third factor"},
        {"key": "D", "value": "Fourth factor"}
      ],
      "answer": ["A", "C"],
      "confidence_score": 0.90
    }
  ]
}` + "\n```\n"
	case Boolean:
		return "```json\n" + `{
  "questions": [
    {
      "question_number": 1,
      "question": "A definitive statement that is clearly true or false.",
      "options": [
        {"key": "A", "value": "True"},
        {"key": "B", "value": "False"}
      ],
      "answer": ["B"],
      "confidence_score": 0.95
    }
  ]
}` + "\n```\n"
	case BooleanWithJustification:
		return "```json\n" + `{
  "questions": [
    {
      "question_number": 1,
      "question": "A complex statement requiring deep understanding.",
      "options": [
        {"key": "A", "value": "True"},
        {"key": "B", "value": "False"}
      ],
      "answer": ["B"],
      "model_answer": "False. A comprehensive justification explaining the reasoning.",
      "confidence_score": 0.95
    }
  ]
}` + "\n```\n"
	default: // SingleChoice
		return "```json\n" + `{
  "questions": [
    {
      "question_number": 1,
      "question": "Question text here",
      "options": [
        {"key": "A", "value": "First option"},
        {"key": "B", "value": "Second option"},
        {"key": "C", "value": "Third option"}
      ],
      "answer": ["A"],
      "confidence_score": 0.95
    }
  ]
}` + "\n```\n"
	}
}
