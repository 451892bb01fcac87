package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/resume-screener/internal/config"
	"github.com/kirillkom/resume-screener/internal/core/domain"
	"github.com/kirillkom/resume-screener/internal/core/normalize"
	"github.com/kirillkom/resume-screener/internal/core/ports"
	"github.com/kirillkom/resume-screener/internal/core/usecase"
	"github.com/kirillkom/resume-screener/internal/infrastructure/artifacts"
	"github.com/kirillkom/resume-screener/internal/infrastructure/extractor"
	"github.com/kirillkom/resume-screener/internal/infrastructure/language"
	"github.com/kirillkom/resume-screener/internal/infrastructure/model"
	"github.com/kirillkom/resume-screener/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/resume-screener/internal/infrastructure/resilience"
	"github.com/kirillkom/resume-screener/internal/infrastructure/storage/localfs"
	s3source "github.com/kirillkom/resume-screener/internal/infrastructure/storage/s3"
)

// Options are per-binary collaborators that do not come from the environment.
type Options struct {
	Observer ports.ScreeningObserver
	Logger   *slog.Logger
	// DisableHistory skips Postgres even when POSTGRES_DSN is set.
	DisableHistory bool
}

type App struct {
	Config config.Config

	Artifacts *model.Artifacts
	Screener  *usecase.ScreenResumeUseCase
	// History is nil when prediction history is disabled.
	History  ports.PredictionReader
	Executor *resilience.Executor

	closeFn func()
}

// ResilienceConfig maps the environment onto the retry and breaker policy.
func ResilienceConfig(cfg config.Config) resilience.Config {
	out := resilience.DefaultConfig()
	if cfg.ResilienceMaxAttempts > 0 {
		out.RetryMaxAttempts = cfg.ResilienceMaxAttempts
	}
	out.BreakerEnabled = cfg.ResilienceBreakerEnabled
	return out
}

// New loads the artifacts and wires the screening pipeline. Any artifact error is returned
// as is so the caller can exit before serving.
func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	executor := resilience.NewExecutor(ResilienceConfig(cfg), logger)

	source, err := newArtifactSource(ctx, cfg, executor)
	if err != nil {
		return nil, fmt.Errorf("init artifact source: %w", err)
	}
	loader := artifacts.Loader{
		Source:      source,
		ManifestKey: cfg.ArtifactManifest,
		WithReducer: cfg.ReducerEnabled,
	}
	set, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("artifacts_loaded",
		"source", fmt.Sprint(source),
		"vocabulary", set.Vectorizer.Dimension(),
		"categories", len(set.Labels.Classes()),
		"reducer", set.Reducer != nil,
	)

	screenOpts := usecase.ScreenOptions{
		Observer: opts.Observer,
		Logger:   logger,
	}
	if set.Reducer != nil {
		screenOpts.Reducer = set.Reducer
	}
	if cfg.LanguageDetectionEnabled {
		detector, err := language.New(cfg.LanguageDetectionLanguages)
		if err != nil {
			return nil, fmt.Errorf("init language detector: %w", err)
		}
		screenOpts.Language = detector
	}

	app := &App{
		Config:    cfg,
		Artifacts: set,
		Executor:  executor,
	}

	var db *sql.DB
	if cfg.PostgresDSN != "" && !opts.DisableHistory {
		db, err = postgres.OpenDB(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewPredictionRepository(db, executor)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		screenOpts.History = repo
		app.History = repo
	}

	app.Screener = usecase.NewScreenResumeUseCase(
		extractor.New(),
		normalize.New(),
		set.Vectorizer,
		set.Classifier,
		set.Labels,
		screenOpts,
	)
	app.closeFn = func() {
		if db != nil {
			_ = db.Close()
		}
	}
	return app, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func newArtifactSource(ctx context.Context, cfg config.Config, executor *resilience.Executor) (ports.ArtifactSource, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.ArtifactSource)) {
	case "", "local":
		return localfs.New(cfg.ArtifactDir)
	case "s3":
		return s3source.New(ctx, s3source.Options{
			Bucket:    cfg.ArtifactS3Bucket,
			Prefix:    cfg.ArtifactS3Prefix,
			Region:    cfg.ArtifactS3Region,
			Endpoint:  cfg.ArtifactS3Endpoint,
			AccessKey: cfg.ArtifactS3AccessKey,
			SecretKey: cfg.ArtifactS3SecretKey,
		}, executor)
	default:
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"artifact source",
			fmt.Errorf("unknown ARTIFACT_SOURCE %q, want local or s3", cfg.ArtifactSource),
		)
	}
}
