package quizgen

// QuestionType identifies the shape of question to generate.
type QuestionType string

const (
	SingleChoice             QuestionType = "SINGLE_CHOICE"
	MultiSelect              QuestionType = "MULTI_SELECT"
	Boolean                  QuestionType = "BOOLEAN"
	BooleanWithJustification QuestionType = "BOOLEAN_WITH_JUSTIFICATION"
)

// QuestionTypes lists all supported types in display order.
var QuestionTypes = []QuestionType{
	SingleChoice,
	MultiSelect,
	Boolean,
	BooleanWithJustification,
}

// Known reports whether t is a supported question type.
func (t QuestionType) Known() bool {
	switch t {
	case SingleChoice, MultiSelect, Boolean, BooleanWithJustification:
		return true
	}
	return false
}

// IsBoolean reports whether t is a true/false variant. Boolean variants
// always carry exactly the two options A) True / B) False.
func (t QuestionType) IsBoolean() bool {
	return t == Boolean || t == BooleanWithJustification
}

// Language selects the generation language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

// Name returns the human-readable language name for prompts.
func (l Language) Name() string {
	if l == LanguageArabic {
		return "Arabic"
	}
	return "English"
}

// CognitiveLevel classifies the thinking skill a question should test,
// following Bloom's taxonomy.
type CognitiveLevel string

const (
	LevelRemember   CognitiveLevel = "REMEMBER"
	LevelUnderstand CognitiveLevel = "UNDERSTAND"
	LevelApply      CognitiveLevel = "APPLY"
	LevelAnalyze    CognitiveLevel = "ANALYZE"
	LevelEvaluate   CognitiveLevel = "EVALUATE"
	LevelCreate     CognitiveLevel = "CREATE"
)

// QuestionCount is the fixed number of questions every generation
// produces. Parsed output is padded or truncated to meet it.
const QuestionCount = 3

// Request describes one question-generation call.
type Request struct {
	TeachingPoint          string       `json:"teaching_point" binding:"required"`
	SecondaryTeachingPoint string       `json:"secondary_teaching_point,omitempty"`
	Context                string       `json:"context,omitempty"`
	QuestionType           QuestionType `json:"question_type" binding:"required"`

	// DistractorCount is required for SINGLE_CHOICE and MULTI_SELECT,
	// ignored for boolean types. Range 2-6.
	DistractorCount *int `json:"distractor_count,omitempty"`

	// CorrectAnswerCount is required only for MULTI_SELECT. Range 1-4.
	CorrectAnswerCount *int `json:"correct_answer_count,omitempty"`

	Language       Language       `json:"language,omitempty"`
	CognitiveLevel CognitiveLevel `json:"cognitive_level,omitempty"`
}

// Normalize fills in the defaulted fields.
func (r *Request) Normalize() {
	if r.Language == "" {
		r.Language = LanguageEnglish
	}
	if r.CognitiveLevel == "" {
		r.CognitiveLevel = LevelUnderstand
	}
}

// SelectedTeachingPoint returns the teaching point for the requested
// language. Arabic uses the secondary variant when present.
func (r Request) SelectedTeachingPoint() string {
	if r.Language == LanguageArabic && r.SecondaryTeachingPoint != "" {
		return r.SecondaryTeachingPoint
	}
	return r.TeachingPoint
}

// TotalOptions computes how many options each question carries.
func (r Request) TotalOptions() int {
	switch r.QuestionType {
	case SingleChoice:
		if r.DistractorCount != nil {
			return *r.DistractorCount + 1
		}
	case MultiSelect:
		if r.DistractorCount != nil && r.CorrectAnswerCount != nil {
			return *r.DistractorCount + *r.CorrectAnswerCount
		}
	}
	return 2
}

// Option is a single answer choice. Keys are letters A-F, unique and
// ordered within a question.
type Option struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Question is one generated quiz question.
type Question struct {
	Ordinal       int      `json:"question_number"`
	Text          string   `json:"question"`
	Options       []Option `json:"options"`
	AnswerKeys    []string `json:"answer"`
	Justification string   `json:"model_answer,omitempty"`
	Confidence    float64  `json:"confidence_score"`
}

// Metadata summarizes one generation run.
type Metadata struct {
	GenerationTimeSeconds float64 `json:"generation_time_seconds"`
	StrategyUsed          string  `json:"strategy_used"`
	AverageConfidence     float64 `json:"average_confidence"`
}

// Result is the full response for one generation request. Questions
// always has length QuestionCount.
type Result struct {
	Questions      []Question     `json:"questions"`
	TeachingPoint  string         `json:"teaching_point"`
	QuestionType   QuestionType   `json:"question_type"`
	Language       Language       `json:"language"`
	CognitiveLevel CognitiveLevel `json:"cognitive_level"`
	Metadata       Metadata       `json:"generation_metadata"`
}
