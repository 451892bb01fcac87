package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/resume-screener/internal/core/domain"
	"github.com/kirillkom/resume-screener/internal/core/ports"
)

// ScreenOptions carries the optional collaborators of the pipeline. Nil fields are skipped.
type ScreenOptions struct {
	Reducer  ports.Reducer
	Language ports.LanguageDetector
	History  ports.PredictionRepository
	Observer ports.ScreeningObserver
	Logger   *slog.Logger
}

type ScreenResumeUseCase struct {
	extractor  ports.TextExtractor
	normalizer ports.TextNormalizer
	vectorizer ports.Vectorizer
	classifier ports.Classifier
	labels     ports.LabelResolver

	reducer  ports.Reducer
	language ports.LanguageDetector
	history  ports.PredictionRepository
	observer ports.ScreeningObserver
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewScreenResumeUseCase(
	extractor ports.TextExtractor,
	normalizer ports.TextNormalizer,
	vectorizer ports.Vectorizer,
	classifier ports.Classifier,
	labels ports.LabelResolver,
	opts ScreenOptions,
) *ScreenResumeUseCase {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ScreenResumeUseCase{
		extractor:  extractor,
		normalizer: normalizer,
		vectorizer: vectorizer,
		classifier: classifier,
		labels:     labels,
		reducer:    opts.Reducer,
		language:   opts.Language,
		history:    opts.History,
		observer:   opts.Observer,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Screen runs one document through extract, normalize, vectorize, classify and resolve.
// Reduction, language detection and history are best effort.
func (uc *ScreenResumeUseCase) Screen(ctx context.Context, filename string, payload []byte) (*domain.Screening, error) {
	started := uc.now()
	doc := domain.NewDocument(filename, payload)

	result, err := uc.run(ctx, doc)
	elapsed := uc.now().Sub(started)
	if err != nil {
		uc.observe(doc.Format, "", elapsed, err)
		uc.logFailure(ctx, doc, err)
		return nil, err
	}

	result.ID = uc.newID()
	result.CreatedAt = started.UTC()
	result.Duration = elapsed

	uc.record(ctx, result)
	uc.observe(doc.Format, result.Category, elapsed, nil)
	uc.logger.InfoContext(ctx, "screening_completed",
		"screening_id", result.ID,
		"filename", result.Filename,
		"format", string(result.Format),
		"category", result.Category,
		"duration_ms", float64(elapsed.Microseconds())/1000.0,
	)
	return result, nil
}

// Categories lists the names the label encoder resolves, in id order.
func (uc *ScreenResumeUseCase) Categories() []string {
	return uc.labels.Classes()
}

func (uc *ScreenResumeUseCase) run(ctx context.Context, doc domain.Document) (*domain.Screening, error) {
	raw, err := uc.extractText(ctx, doc)
	if err != nil {
		return nil, err
	}

	normalized := uc.normalizer.Normalize(raw)
	dense := uc.vectorizer.Vectorize(normalized).Dense()

	categoryID, err := uc.classify(dense)
	if err != nil {
		return nil, err
	}

	category, err := uc.resolve(categoryID)
	if err != nil {
		return nil, err
	}

	return &domain.Screening{
		Filename:       doc.Filename,
		Format:         doc.Format,
		CategoryID:     categoryID,
		Category:       category,
		Point:          uc.reduce(ctx, dense),
		Language:       uc.detectLanguage(raw),
		RawText:        raw,
		NormalizedText: normalized,
	}, nil
}

func (uc *ScreenResumeUseCase) extractText(ctx context.Context, doc domain.Document) (string, error) {
	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(
			domain.ErrExtractionFailure,
			"extract text",
			fmt.Errorf("no text found in %q", doc.Filename),
		)
	}
	return text, nil
}

func (uc *ScreenResumeUseCase) classify(dense []float64) (int, error) {
	id, err := uc.classifier.Classify(dense)
	if err != nil {
		return 0, fmt.Errorf("classify resume: %w", err)
	}
	return id, nil
}

func (uc *ScreenResumeUseCase) resolve(id int) (string, error) {
	name, err := uc.labels.Resolve(id)
	if err != nil {
		return "", fmt.Errorf("resolve category %d: %w", id, err)
	}
	return name, nil
}

func (uc *ScreenResumeUseCase) reduce(ctx context.Context, dense []float64) *domain.Point3D {
	if uc.reducer == nil {
		return nil
	}
	point, err := uc.reducer.Reduce(dense)
	if err != nil {
		uc.logger.WarnContext(ctx, "screening_reduce_failed", "error", err)
		return nil
	}
	return &point
}

func (uc *ScreenResumeUseCase) detectLanguage(raw string) string {
	if uc.language == nil {
		return ""
	}
	return uc.language.Detect(raw)
}

func (uc *ScreenResumeUseCase) record(ctx context.Context, result *domain.Screening) {
	if uc.history == nil {
		return
	}
	if err := uc.history.Save(ctx, result.Record()); err != nil {
		uc.logger.WarnContext(ctx, "screening_history_save_failed",
			"screening_id", result.ID,
			"error", err,
		)
	}
}

func (uc *ScreenResumeUseCase) observe(format domain.Format, category string, elapsed time.Duration, err error) {
	if uc.observer == nil {
		return
	}
	uc.observer.ObserveScreening(format, category, elapsed, err)
}

func (uc *ScreenResumeUseCase) logFailure(ctx context.Context, doc domain.Document, err error) {
	attrs := []any{
		"filename", doc.Filename,
		"format", string(doc.Format),
		"error", err,
	}
	if errors.Is(err, domain.ErrArtifactInconsistent) {
		uc.logger.ErrorContext(ctx, "screening_failed", attrs...)
		return
	}
	uc.logger.InfoContext(ctx, "screening_rejected", attrs...)
}
