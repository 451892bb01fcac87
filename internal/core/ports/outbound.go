package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/resume-screener/internal/core/domain"
)

// TextExtractor extracts plain text from an uploaded document.
type TextExtractor interface {
	Extract(ctx context.Context, doc domain.Document) (string, error)
}

// TextNormalizer applies the clean-up rule sequence the vectorizer was fitted against.
type TextNormalizer interface {
	Normalize(text string) string
}

// Vectorizer maps normalized text to a sparse feature vector.
type Vectorizer interface {
	Dimension() int
	Vectorize(text string) domain.SparseVector
}

// Classifier maps a dense feature vector to a category id.
type Classifier interface {
	Classify(dense []float64) (int, error)
}

// LabelResolver maps category ids to names.
type LabelResolver interface {
	Resolve(id int) (string, error)
	Classes() []string
}

// Reducer projects a dense feature vector to 3 dimensions.
type Reducer interface {
	Reduce(dense []float64) (domain.Point3D, error)
}

// LanguageDetector reports an ISO 639-1 code, or "" when undecided.
type LanguageDetector interface {
	Detect(text string) string
}

// PredictionRepository persists prediction summaries.
type PredictionRepository interface {
	Save(ctx context.Context, record domain.PredictionRecord) error
	GetByID(ctx context.Context, id string) (*domain.PredictionRecord, error)
	ListRecent(ctx context.Context, limit int) ([]domain.PredictionRecord, error)
}

// ArtifactSource opens pre-fitted artifacts by key.
type ArtifactSource interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ScreeningObserver receives pipeline outcomes for metrics.
type ScreeningObserver interface {
	ObserveScreening(format domain.Format, category string, duration time.Duration, err error)
}
