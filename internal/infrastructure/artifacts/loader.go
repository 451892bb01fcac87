// Package artifacts loads and cross-checks the pre-fitted model set at startup.
package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/kirillkom/resume-screener/internal/core/domain"
	"github.com/kirillkom/resume-screener/internal/core/ports"
	"github.com/kirillkom/resume-screener/internal/infrastructure/model"
)

// Loader reads the model set from Source. ManifestKey is optional; without it the default file
// names are used and no checksums are verified.
type Loader struct {
	Source      ports.ArtifactSource
	ManifestKey string
	WithReducer bool
}

// Load returns a validated artifact set. A missing or unreadable artifact fails with
// domain.ErrMissingArtifact naming its role; undecodable content fails with
// domain.ErrInvalidArtifact.
func (l *Loader) Load(ctx context.Context) (*model.Artifacts, error) {
	if l.Source == nil {
		return nil, domain.WrapError(domain.ErrMissingArtifact, "load artifacts", fmt.Errorf("no artifact source configured"))
	}

	manifest, err := l.manifest(ctx)
	if err != nil {
		return nil, err
	}

	set := &model.Artifacts{}

	body, err := l.read(ctx, manifest, RoleVectorizer)
	if err != nil {
		return nil, err
	}
	if set.Vectorizer, err = model.DecodeTFIDF(bytes.NewReader(body)); err != nil {
		return nil, invalid(RoleVectorizer, err)
	}

	if body, err = l.read(ctx, manifest, RoleClassifier); err != nil {
		return nil, err
	}
	if set.Classifier, err = model.DecodeLinearClassifier(bytes.NewReader(body)); err != nil {
		return nil, invalid(RoleClassifier, err)
	}

	if body, err = l.read(ctx, manifest, RoleLabels); err != nil {
		return nil, err
	}
	if set.Labels, err = model.DecodeLabelEncoder(bytes.NewReader(body)); err != nil {
		return nil, invalid(RoleLabels, err)
	}

	if l.WithReducer {
		if body, err = l.read(ctx, manifest, RoleReducer); err != nil {
			return nil, err
		}
		if set.Reducer, err = model.DecodeProjection(bytes.NewReader(body)); err != nil {
			return nil, invalid(RoleReducer, err)
		}
	}

	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("load artifacts: %w", err)
	}
	return set, nil
}

func (l *Loader) manifest(ctx context.Context) (*Manifest, error) {
	if l.ManifestKey == "" {
		return nil, nil
	}
	rc, err := l.Source.Open(ctx, l.ManifestKey)
	if err != nil {
		return nil, missing("manifest", l.ManifestKey, err)
	}
	defer rc.Close()

	m, err := ParseManifest(rc)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidArtifact, "load manifest", err)
	}
	return m, nil
}

func (l *Loader) read(ctx context.Context, manifest *Manifest, role Role) ([]byte, error) {
	entry := manifest.Entry(role)
	rc, err := l.Source.Open(ctx, entry.File)
	if err != nil {
		return nil, missing(string(role), entry.File, err)
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, missing(string(role), entry.File, err)
	}
	if err := verifyChecksum(body, entry.SHA256); err != nil {
		return nil, invalid(role, fmt.Errorf("%s: %w", entry.File, err))
	}
	return body, nil
}

func missing(role, key string, err error) error {
	if domain.IsKind(err, domain.ErrMissingArtifact) {
		return fmt.Errorf("load %s artifact %q: %w", role, key, err)
	}
	return domain.WrapError(domain.ErrMissingArtifact, fmt.Sprintf("load %s artifact %q", role, key), err)
}

func invalid(role Role, err error) error {
	return domain.WrapError(domain.ErrInvalidArtifact, fmt.Sprintf("decode %s artifact", role), err)
}
