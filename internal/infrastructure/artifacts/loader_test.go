package artifacts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/resume-screener/internal/core/domain"
)

const (
	tfidfJSON   = `{"vocabulary":{"python":0,"sql":1,"accounting":2},"idf":[1.5,1.2,2.0],"ngram_range":[1,1],"norm":"l2"}`
	clfJSON     = `{"kind":"linear","classes":[0,1,2],"coef":[[2,0,0],[0,2,0],[0,0,2]],"intercept":[0,0,0]}`
	encoderJSON = `{"classes":["Data Science","Database","Accountant"]}`
	reducerJSON = `{"components":[[1,0,0],[0,1,0],[0,0,1]],"mean":[0.1,0.1,0.1]}`
)

type mapSource map[string]string

func (m mapSource) Open(_ context.Context, key string) (io.ReadCloser, error) {
	body, ok := m[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrMissingArtifact, "open", fmt.Errorf("%s not found", key))
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func fullSource() mapSource {
	return mapSource{
		"tfidf.json":   tfidfJSON,
		"clf.json":     clfJSON,
		"encoder.json": encoderJSON,
		"reducer.json": reducerJSON,
	}
}

func sum(body string) string {
	s := sha256.Sum256([]byte(body))
	return hex.EncodeToString(s[:])
}

func TestLoadDefaultFiles(t *testing.T) {
	loader := Loader{Source: fullSource(), WithReducer: true}
	set, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if set.Vectorizer.Dimension() != 3 || set.Classifier.Width() != 3 {
		t.Fatalf("unexpected dimensions")
	}
	if set.Reducer == nil {
		t.Fatalf("expected reducer")
	}
	if got := set.Labels.Classes(); len(got) != 3 || got[2] != "Accountant" {
		t.Fatalf("unexpected labels %v", got)
	}
}

func TestLoadSkipsReducerWhenDisabled(t *testing.T) {
	src := fullSource()
	delete(src, "reducer.json")

	set, err := (&Loader{Source: src}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if set.Reducer != nil {
		t.Fatalf("reducer must not be loaded when disabled")
	}
}

func TestLoadMissingArtifactNamesRole(t *testing.T) {
	cases := map[string]string{
		"tfidf.json":   "vectorizer",
		"clf.json":     "classifier",
		"encoder.json": "labels",
		"reducer.json": "reducer",
	}
	for file, role := range cases {
		src := fullSource()
		delete(src, file)

		_, err := (&Loader{Source: src, WithReducer: true}).Load(context.Background())
		if !domain.IsKind(err, domain.ErrMissingArtifact) {
			t.Fatalf("%s: expected ErrMissingArtifact, got %v", file, err)
		}
		if !strings.Contains(err.Error(), role) || !strings.Contains(err.Error(), file) {
			t.Fatalf("%s: error %q does not name role %q", file, err, role)
		}
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	src := fullSource()
	src["clf.json"] = `{"kind":"linear","classes":[0,1,2],"coef":`

	_, err := (&Loader{Source: src}).Load(context.Background())
	if !domain.IsKind(err, domain.ErrInvalidArtifact) {
		t.Fatalf("expected ErrInvalidArtifact, got %v", err)
	}
	if !strings.Contains(err.Error(), "classifier") {
		t.Fatalf("error %q does not name the classifier", err)
	}
}

func TestLoadWidthMismatchIsInconsistent(t *testing.T) {
	src := fullSource()
	src["clf.json"] = `{"classes":[0,1],"coef":[[1,0]],"intercept":[0]}`

	_, err := (&Loader{Source: src}).Load(context.Background())
	if !domain.IsKind(err, domain.ErrArtifactInconsistent) {
		t.Fatalf("expected ErrArtifactInconsistent, got %v", err)
	}
}

func TestLoadUnlabeledClassIsInconsistent(t *testing.T) {
	src := fullSource()
	src["encoder.json"] = `{"classes":["Data Science","Database"]}`

	_, err := (&Loader{Source: src}).Load(context.Background())
	if !domain.IsKind(err, domain.ErrArtifactInconsistent) {
		t.Fatalf("expected ErrArtifactInconsistent, got %v", err)
	}
}

func TestLoadWithManifest(t *testing.T) {
	src := mapSource{
		"v2/vocab.json": tfidfJSON,
		"v2/model.json": clfJSON,
		"encoder.json":  encoderJSON,
		"manifest.yaml": fmt.Sprintf(`version: "2024-06"
artifacts:
  vectorizer:
    file: v2/vocab.json
    sha256: %s
  classifier:
    file: v2/model.json
`, sum(tfidfJSON)),
	}

	set, err := (&Loader{Source: src, ManifestKey: "manifest.yaml"}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if set.Vectorizer == nil || set.Classifier == nil || set.Labels == nil {
		t.Fatalf("incomplete artifact set")
	}
}

func TestLoadChecksumMismatch(t *testing.T) {
	src := fullSource()
	src["manifest.yaml"] = fmt.Sprintf("artifacts:\n  labels:\n    sha256: %s\n", sum("something else"))

	_, err := (&Loader{Source: src, ManifestKey: "manifest.yaml"}).Load(context.Background())
	if !domain.IsKind(err, domain.ErrInvalidArtifact) {
		t.Fatalf("expected ErrInvalidArtifact, got %v", err)
	}
	if !strings.Contains(err.Error(), "sha256 mismatch") {
		t.Fatalf("unexpected error %q", err)
	}
}

func TestLoadMissingManifest(t *testing.T) {
	_, err := (&Loader{Source: fullSource(), ManifestKey: "manifest.yaml"}).Load(context.Background())
	if !domain.IsKind(err, domain.ErrMissingArtifact) || !strings.Contains(err.Error(), "manifest") {
		t.Fatalf("expected missing manifest error, got %v", err)
	}
}

func TestLoadWithoutSource(t *testing.T) {
	if _, err := (&Loader{}).Load(context.Background()); !domain.IsKind(err, domain.ErrMissingArtifact) {
		t.Fatalf("expected ErrMissingArtifact, got %v", err)
	}
}

func TestParseManifestRejectsUnknownRole(t *testing.T) {
	if _, err := ParseManifest(strings.NewReader("artifacts:\n  embedder:\n    file: x.json\n")); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestParseManifestRejectsShortChecksum(t *testing.T) {
	if _, err := ParseManifest(strings.NewReader("artifacts:\n  labels:\n    sha256: abc\n")); err == nil {
		t.Fatalf("expected error for malformed checksum")
	}
}

func TestManifestEntryDefaults(t *testing.T) {
	var m *Manifest
	if got := m.Entry(RoleReducer).File; got != "reducer.json" {
		t.Fatalf("expected default reducer file, got %q", got)
	}
}
