// Package model holds the pre-fitted artifacts the screening pipeline runs on. Every type is
// immutable after construction and safe for concurrent use.
package model

import (
	"fmt"

	"github.com/kirillkom/resume-screener/internal/core/domain"
)

// Artifacts is the process-wide, read-only model set.
type Artifacts struct {
	Vectorizer *TFIDFVectorizer
	Classifier *LinearClassifier
	Labels     *LabelEncoder
	// Reducer is nil when the visualization path is disabled.
	Reducer *Projection
}

// Validate checks that the artifacts were fitted together: matching feature widths and a
// label for every class the classifier can emit.
func (a *Artifacts) Validate() error {
	if a.Vectorizer == nil || a.Classifier == nil || a.Labels == nil {
		return domain.WrapError(domain.ErrMissingArtifact, "validate artifacts", fmt.Errorf("incomplete artifact set"))
	}

	dim := a.Vectorizer.Dimension()
	if a.Classifier.Width() != dim {
		return domain.WrapError(
			domain.ErrArtifactInconsistent,
			"validate artifacts",
			fmt.Errorf("classifier expects %d features, vectorizer produces %d", a.Classifier.Width(), dim),
		)
	}
	for _, id := range a.Classifier.Classes() {
		if _, err := a.Labels.Resolve(id); err != nil {
			return domain.WrapError(
				domain.ErrArtifactInconsistent,
				"validate artifacts",
				fmt.Errorf("classifier class %d has no label", id),
			)
		}
	}
	if a.Reducer != nil && a.Reducer.Width() != dim {
		return domain.WrapError(
			domain.ErrArtifactInconsistent,
			"validate artifacts",
			fmt.Errorf("reducer expects %d features, vectorizer produces %d", a.Reducer.Width(), dim),
		)
	}
	return nil
}
