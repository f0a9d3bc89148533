package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teachpoint/quizgen/internal/event"
	"github.com/teachpoint/quizgen/internal/llm"
	"github.com/teachpoint/quizgen/internal/logger"
	"github.com/teachpoint/quizgen/internal/quizgen"
	"github.com/teachpoint/quizgen/internal/server"
	"github.com/teachpoint/quizgen/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the question-generation HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("host", "0.0.0.0", "Listen address")
	serveCmd.Flags().Int("port", 8088, "Listen port")
	serveCmd.Flags().String("prompt-format", "json", "Prompt target format: json or labeled")
	serveCmd.Flags().Bool("no-db", false, "Disable event persistence")
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := logger.New(os.Getenv("QUIZGEN_LOG_MODE"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Event store. Optional: the service runs fine without persistence.
	var events store.EventRepo
	if noDB, _ := cmd.Flags().GetBool("no-db"); !noDB {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()
		events = s.EventRepo()
		log.Info("event store ready", "path", dbPath)
	}

	provider, err := llm.NewProviderFromEnv(ctx, events)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	genCfg := quizgen.DefaultConfig()
	if f, _ := cmd.Flags().GetString("prompt-format"); f == string(quizgen.FormatLabeled) {
		genCfg.PromptFormat = quizgen.FormatLabeled
	}
	service := quizgen.NewService(provider, genCfg, log, events)

	publisher, err := event.NewPublisher(os.Getenv("QUIZGEN_BROKER_URI"), log)
	if err != nil {
		return fmt.Errorf("event publisher: %w", err)
	}
	defer publisher.Close()

	srvCfg := server.DefaultConfig()
	srvCfg.Host, _ = cmd.Flags().GetString("host")
	srvCfg.Port, _ = cmd.Flags().GetInt("port")

	srv := server.New(srvCfg, service, provider, publisher, log)
	return srv.Run(ctx)
}
