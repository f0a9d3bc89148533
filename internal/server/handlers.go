package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/teachpoint/quizgen/internal/llm"
	"github.com/teachpoint/quizgen/internal/quizgen"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Question Generation API v" + Version,
		"status":  "operational",
		"features": []string{
			"Multiple Choice",
			"Multi-Select",
			"True/False",
			"True/False with Justification",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	status := "healthy"
	connected := true

	if pinger, ok := llm.PingerFrom(s.provider); ok {
		if err := pinger.Ping(c.Request.Context()); err != nil {
			status = "degraded"
			connected = false
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         status,
		"llm_connection": connected,
		"model":          s.provider.ModelID(),
		"version":        Version,
	})
}

func (s *Server) handleQuestionTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"question_types": gin.H{
			string(quizgen.SingleChoice): gin.H{
				"description":      "Single correct answer with multiple distractors",
				"required_params":  []string{"distractor_count"},
				"cognitive_levels": []string{"REMEMBER", "UNDERSTAND", "APPLY"},
			},
			string(quizgen.MultiSelect): gin.H{
				"description":      "Multiple correct answers from options",
				"required_params":  []string{"distractor_count", "correct_answer_count"},
				"cognitive_levels": []string{"APPLY", "ANALYZE", "EVALUATE"},
			},
			string(quizgen.Boolean): gin.H{
				"description":      "Simple true/false statement",
				"required_params":  []string{},
				"cognitive_levels": []string{"REMEMBER", "UNDERSTAND"},
			},
			string(quizgen.BooleanWithJustification): gin.H{
				"description":      "True/false with detailed explanation",
				"required_params":  []string{},
				"cognitive_levels": []string{"UNDERSTAND", "ANALYZE", "EVALUATE"},
			},
		},
		"languages":        []string{"en", "ar"},
		"cognitive_levels": []string{"REMEMBER", "UNDERSTAND", "APPLY", "ANALYZE", "EVALUATE", "CREATE"},
	})
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req quizgen.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.TeachingPoint) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "teaching_point must not be empty"})
		return
	}

	requestID := c.GetString("request_id")
	ctx := quizgen.WithRequestID(c.Request.Context(), requestID)

	result, err := s.service.Generate(ctx, req)
	if err != nil {
		var verr *quizgen.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": verr.Message,
				"code":  string(verr.Code),
			})
			return
		}
		s.log.Error("generation failed", "error", err, "request_id", requestID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "question generation failed: " + err.Error()})
		return
	}

	// Event broadcast is best-effort and never fails the request.
	if s.publisher != nil {
		if err := s.publisher.PublishQuestionSetGenerated(requestID, result); err != nil {
			s.log.Warn("publish generation event", "error", err, "request_id", requestID)
		}
	}

	c.JSON(http.StatusOK, result)
}
