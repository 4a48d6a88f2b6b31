package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/config"
	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/database/bunstore"
	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/domain/repository"
	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/infrastructure/vision"
)

func main() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout, defaultDeps()))
}

// target is one configured collaborator plus its cleanup.
type target struct {
	name   string
	tester repository.ConnectionTester
	close  func() error
}

// deps are the constructors the commands use; tests substitute fakes.
type deps struct {
	buildTargets func(ctx context.Context, cfg *config.Config) ([]target, error)
	openHistory  func(ctx context.Context, dsn string) (repository.HistoryRepository, error)
}

func defaultDeps() deps {
	return deps{
		buildTargets: buildTargets,
		openHistory: func(ctx context.Context, dsn string) (repository.HistoryRepository, error) {
			return bunstore.OpenSQLite(ctx, dsn)
		},
	}
}

// Run executes the command line and returns the process exit code. Exposed for testing.
func Run(ctx context.Context, args []string, stdout io.Writer, d deps) int {
	a := &app{stdout: stdout, deps: d}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stdout, "❌ Test failed with error: %v\n", err)
		return 1
	}
	return a.exitCode
}

func buildTargets(ctx context.Context, cfg *config.Config) ([]target, error) {
	var targets []target

	if cfg.NeedsGemini() {
		log.Printf("[Config] 🔑 Gemini key %s, model %s", config.RedactKey(cfg.APIKey()), cfg.GeminiModel)
		svc, err := vision.NewGeminiVisionService(ctx, vision.GeminiOptions{
			APIKey: cfg.APIKey(),
			Model:  cfg.GeminiModel,
			Prompt: cfg.GeminiPrompt,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialise gemini: %w", err)
		}
		targets = append(targets, target{name: config.TargetGemini, tester: svc, close: svc.Close})
	}

	if cfg.NeedsMedSigLIP() {
		client := vision.NewMedSigLIPClient(cfg.MedSigLIPURL, vision.NewHTTPClient(cfg.RequestTimeout(), cfg.Debug()))
		targets = append(targets, target{name: config.TargetMedSigLIP, tester: client})
	}

	return targets, nil
}
