package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/teachpoint/quizgen/internal/event"
	"github.com/teachpoint/quizgen/internal/llm"
	"github.com/teachpoint/quizgen/internal/logger"
	"github.com/teachpoint/quizgen/internal/quizgen"
)

// Version is the service version reported by the info endpoints.
const Version = "2.0.0"

// Config holds the HTTP server settings.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8088,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server serves the question-generation HTTP API.
type Server struct {
	config    Config
	service   *quizgen.Service
	provider  llm.Provider
	publisher *event.Publisher
	log       *logger.Logger
	engine    *gin.Engine
}

// New builds a Server with its routes and middleware wired up. The
// publisher may be nil when event broadcasting is not configured.
func New(cfg Config, service *quizgen.Service, provider llm.Provider, publisher *event.Publisher, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		config:    cfg,
		service:   service,
		provider:  provider,
		publisher: publisher,
		log:       log,
		engine:    engine,
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}

	engine.Use(cors.New(corsConfig))
	engine.Use(requestID())
	engine.Use(requestLogging(log))

	engine.GET("/", s.handleRoot)
	engine.GET("/health", s.handleHealth)
	engine.GET("/question-types", s.handleQuestionTypes)
	engine.POST("/generate-questions", s.handleGenerate)

	return s
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
