package domain

import "time"

type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Screening is the outcome of one pipeline run.
type Screening struct {
	ID             string        `json:"id"`
	Filename       string        `json:"filename"`
	Format         Format        `json:"format"`
	CategoryID     int           `json:"category_id"`
	Category       string        `json:"category"`
	Point          *Point3D      `json:"point,omitempty"`
	Language       string        `json:"language,omitempty"`
	RawText        string        `json:"raw_text,omitempty"`
	NormalizedText string        `json:"normalized_text,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	Duration       time.Duration `json:"duration_ns"`
}

// WithoutText returns a copy stripped of the extracted and normalized text.
func (s Screening) WithoutText() Screening {
	s.RawText = ""
	s.NormalizedText = ""
	return s
}

// PredictionRecord is the persisted summary of a screening. It never carries document text.
type PredictionRecord struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Format     Format    `json:"format"`
	CategoryID int       `json:"category_id"`
	Category   string    `json:"category"`
	Language   string    `json:"language,omitempty"`
	DurationMS float64   `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s Screening) Record() PredictionRecord {
	return PredictionRecord{
		ID:         s.ID,
		Filename:   s.Filename,
		Format:     s.Format,
		CategoryID: s.CategoryID,
		Category:   s.Category,
		Language:   s.Language,
		DurationMS: float64(s.Duration.Microseconds()) / 1000.0,
		CreatedAt:  s.CreatedAt,
	}
}
