package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alexanderramin/elicit/internal/cli"
	"github.com/alexanderramin/elicit/internal/intelligence"
	"github.com/alexanderramin/elicit/internal/kv"
	"github.com/alexanderramin/elicit/internal/linktoken"
	"github.com/alexanderramin/elicit/internal/llm"
	"github.com/alexanderramin/elicit/internal/repository"
	"github.com/alexanderramin/elicit/internal/service"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig(os.LookupEnv)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	secret, err := linkSecret(cfg)
	if err != nil {
		return err
	}
	links, err := linktoken.NewSigner(secret)
	if err != nil {
		return err
	}

	collaborator := newCollaborator(logger)

	// Wire repositories
	studyRepo := repository.NewKVStudyRepo(store)
	interviewRepo := repository.NewKVInterviewRepo(store)
	synthesisRepo := repository.NewKVSynthesisRepo(store)

	observer := service.NewLogUseCaseObserver(logger)

	app := &cli.App{
		Studies:    service.NewStudyService(studyRepo, links, observer),
		Interviews: service.NewInterviewService(studyRepo, interviewRepo, store, links, collaborator, logger, observer),
		Synthesis:  service.NewSynthesisService(studyRepo, interviewRepo, synthesisRepo, collaborator, logger, observer),
		LinkTTL:    cfg.LinkTTL,
	}

	// Interviews fall back to line mode when stdin is not a terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

func openStore(ctx context.Context, cfg config) (kv.Store, error) {
	switch cfg.Store {
	case storeRedis:
		s, err := kv.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("opening redis store: %w", err)
		}
		return s, nil
	default:
		s, err := kv.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		return s, nil
	}
}

// newCollaborator returns the LLM-backed collaborator when enabled, or the
// disabled one whose every call degrades to the deterministic fallbacks.
func newCollaborator(logger *zap.Logger) intelligence.InterviewCollaborator {
	llmCfg := llm.LoadConfig()
	if !llmCfg.Enabled {
		return intelligence.DisabledCollaborator{}
	}

	var observer llm.Observer = llm.NoopObserver{}
	if llmCfg.LogCalls {
		observer = llm.NewLogObserver(logger)
	}
	return intelligence.NewLLMCollaborator(llm.NewOllamaClient(llmCfg, observer), observer)
}
