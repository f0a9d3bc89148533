package quizgen

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/teachpoint/quizgen/internal/llm"
	"github.com/teachpoint/quizgen/internal/logger"
	"github.com/teachpoint/quizgen/internal/store"
)

type contextKey string

const requestIDKey contextKey = "generation_request_id"

// WithRequestID attaches a request identifier for event logging.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom extracts the request identifier, or "" if unset.
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Service routes generation requests through validation, prompt
// building, one inference call, and parsing. Stateless per request;
// safe for concurrent use.
type Service struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
	events   store.EventRepo
}

// NewService builds a Service. A nil logger discards log output; a nil
// event repo disables generation-event persistence.
func NewService(provider llm.Provider, cfg Config, log *logger.Logger, events store.EventRepo) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{provider: provider, config: cfg, log: log, events: events}
}

// Generate produces exactly QuestionCount questions for a request.
// Validation and inference failures are hard errors; parse failures
// degrade to placeholder questions and still return success.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	req.Normalize()

	if err := Validate(req); err != nil {
		return nil, err
	}

	strategy, ok := StrategyFor(req.QuestionType)
	if !ok {
		// Unreachable after Validate; kept as a guard.
		return nil, &ValidationError{Code: CodeUnknownType, Message: string(req.QuestionType)}
	}

	s.log.Info("generating questions",
		"question_type", req.QuestionType,
		"language", req.Language,
		"cognitive_level", req.CognitiveLevel,
		"strategy", strategy.Name,
	)

	instruction := strategy.Build(req, s.config.PromptFormat)

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, "question-gen"), llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: instruction}},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		s.recordEvent(ctx, req, strategy.Name, nil, 0, time.Since(start), err)
		return nil, fmt.Errorf("inference call failed: %w", err)
	}

	questions := strategy.Parse(resp.Text(), req)
	questions, placeholders := PadAndTruncate(questions, req)
	if placeholders > 0 {
		s.log.Warn("padded parse output with placeholders",
			"parsed", QuestionCount-placeholders,
			"placeholders", placeholders,
		)
	}

	elapsed := time.Since(start)
	result := &Result{
		Questions:      questions,
		TeachingPoint:  req.SelectedTeachingPoint(),
		QuestionType:   req.QuestionType,
		Language:       req.Language,
		CognitiveLevel: req.CognitiveLevel,
		Metadata: Metadata{
			GenerationTimeSeconds: math.Round(elapsed.Seconds()*100) / 100,
			StrategyUsed:          strategy.Name,
			AverageConfidence:     meanConfidence(questions),
		},
	}

	s.recordEvent(ctx, req, strategy.Name, result, placeholders, elapsed, nil)
	s.log.Info("generation complete",
		"questions", len(questions),
		"placeholders", placeholders,
		"elapsed", elapsed,
	)

	return result, nil
}

// meanConfidence averages confidence over the final question list.
func meanConfidence(questions []Question) float64 {
	if len(questions) == 0 {
		return 0
	}
	var sum float64
	for _, q := range questions {
		sum += q.Confidence
	}
	return sum / float64(len(questions))
}

// recordEvent persists one generation run. Failures to log never fail
// the request.
func (s *Service) recordEvent(ctx context.Context, req Request, strategy string, result *Result, placeholders int, elapsed time.Duration, genErr error) {
	if s.events == nil {
		return
	}

	data := store.GenerationEventData{
		RequestID:    RequestIDFrom(ctx),
		QuestionType: string(req.QuestionType),
		Language:     string(req.Language),
		StrategyUsed: strategy,
		DurationMs:   elapsed.Milliseconds(),
		Success:      genErr == nil,
	}
	if result != nil {
		data.QuestionCount = len(result.Questions)
		data.PlaceholderCount = placeholders
		data.AverageConfidence = result.Metadata.AverageConfidence
	}
	if genErr != nil {
		data.ErrorMessage = genErr.Error()
	}

	if err := s.events.AppendGeneration(ctx, data); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log generation event: %v\n", err)
	}
}
