package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/kinin-app/interviewer/internal/archive"
	"github.com/kinin-app/interviewer/internal/brain"
	"github.com/kinin-app/interviewer/internal/config"
	"github.com/kinin-app/interviewer/internal/httpapi"
	"github.com/kinin-app/interviewer/internal/interview"
	"github.com/kinin-app/interviewer/internal/observability"
	"github.com/kinin-app/interviewer/internal/state"
	"github.com/kinin-app/interviewer/internal/turns"
)

type BuildResult struct {
	Config       config.Config
	API          *httpapi.Server
	Orchestrator *interview.Orchestrator
	Metrics      *observability.Metrics

	// Cleanup should be called on shutdown to release external resources.
	Cleanup func() error
}

// Build constructs all collaborators and wires them together. Stores and
// the model backend are plain injected dependencies; nothing here is a
// package-level singleton.
func Build(ctx context.Context, cfg config.Config) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	stateStore, err := state.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("state store init failed: %w", err)
	}

	turnStore, err := turns.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		_ = stateStore.Close()
		return nil, fmt.Errorf("turn store init failed: %w", err)
	}

	archiveWriter, err := archive.NewWriter(cfg.ArchiveDir)
	if err != nil {
		_ = turnStore.Close()
		_ = stateStore.Close()
		return nil, fmt.Errorf("archive writer init failed: %w", err)
	}

	generator, err := brain.NewGenerator(brain.Config{
		Mode:        cfg.ModelAdapterMode,
		HTTPURL:     cfg.ModelHTTPURL,
		ModelID:     cfg.ModelID,
		MaxTokens:   cfg.ModelMaxTokens,
		Temperature: cfg.ModelTemperature,
		TopP:        cfg.ModelTopP,
		Timeout:     cfg.ModelTimeout,
	})
	if err != nil {
		_ = archiveWriter.Close()
		_ = turnStore.Close()
		_ = stateStore.Close()
		return nil, fmt.Errorf("model generator init failed: %w", err)
	}

	orchestrator := interview.NewOrchestrator(
		stateStore,
		turnStore,
		archiveWriter,
		generator,
		metrics,
		cfg.RecentTurnLimit,
	)

	api := httpapi.New(cfg, orchestrator, metrics)

	cleanup := func() error {
		var errs []string
		if err := archiveWriter.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if err := turnStore.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if err := stateStore.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if len(errs) > 0 {
			return fmt.Errorf("%s", strings.Join(errs, "; "))
		}
		return nil
	}

	return &BuildResult{
		Config:       cfg,
		API:          api,
		Orchestrator: orchestrator,
		Metrics:      metrics,
		Cleanup:      cleanup,
	}, nil
}
