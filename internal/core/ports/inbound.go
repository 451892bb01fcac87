package ports

import (
	"context"

	"github.com/kirillkom/resume-screener/internal/core/domain"
)

// ResumeScreener is the inbound contract for one extract→classify pipeline run.
type ResumeScreener interface {
	Screen(ctx context.Context, filename string, payload []byte) (*domain.Screening, error)
}

// CategoryCatalog lists the category names the loaded label encoder can resolve.
type CategoryCatalog interface {
	Categories() []string
}

// PredictionReader is the inbound read model for prediction history.
type PredictionReader interface {
	GetByID(ctx context.Context, id string) (*domain.PredictionRecord, error)
	ListRecent(ctx context.Context, limit int) ([]domain.PredictionRecord, error)
}
