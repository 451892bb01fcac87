package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/resume-screener/internal/config"
	"github.com/kirillkom/resume-screener/internal/core/domain"
)

var testArtifacts = map[string]string{
	"tfidf.json":   `{"vocabulary":{"python":0,"sql":1,"ledger":2},"idf":[1.5,1.2,2.0],"ngram_range":[1,1],"norm":"l2"}`,
	"clf.json":     `{"kind":"linear","classes":[0,1,2],"coef":[[2,0,0],[0,2,0],[0,0,2]],"intercept":[0,0,0]}`,
	"encoder.json": `{"classes":["Data Science","Database","Accountant"]}`,
	"reducer.json": `{"components":[[1,0,0],[0,1,0],[0,0,1]],"mean":[0,0,0]}`,
}

func writeArtifacts(t *testing.T, skip string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range testArtifacts {
		if name == skip {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func testConfig(dir string) config.Config {
	return config.Config{
		ArtifactSource:        "local",
		ArtifactDir:           dir,
		ReducerEnabled:        true,
		ResilienceMaxAttempts: 1,
	}
}

func TestNewScreensPlainTextEndToEnd(t *testing.T) {
	app, err := New(context.Background(), testConfig(writeArtifacts(t, "")), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if app.History != nil {
		t.Fatalf("history must be disabled without POSTGRES_DSN")
	}

	payload := []byte("Python developer. Python, SQL and pandas.\nhttps://github.com/jdoe profile")
	first, err := app.Screener.Screen(context.Background(), "cv.txt", payload)
	if err != nil {
		t.Fatalf("Screen() error = %v", err)
	}
	if first.Category != "Data Science" || first.CategoryID != 0 {
		t.Fatalf("expected Data Science, got %d %q", first.CategoryID, first.Category)
	}
	if first.Point == nil {
		t.Fatalf("expected reducer point when reducer is enabled")
	}

	second, err := app.Screener.Screen(context.Background(), "cv.txt", payload)
	if err != nil {
		t.Fatalf("Screen() second run error = %v", err)
	}
	if second.Category != first.Category || second.NormalizedText != first.NormalizedText || *second.Point != *first.Point {
		t.Fatalf("identical input must give identical output: %+v vs %+v", first, second)
	}

	if got := app.Screener.Categories(); len(got) != 3 || got[2] != "Accountant" {
		t.Fatalf("unexpected categories %v", got)
	}
}

func TestNewWithoutReducerDoesNotReadIt(t *testing.T) {
	cfg := testConfig(writeArtifacts(t, "reducer.json"))
	cfg.ReducerEnabled = false

	app, err := New(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	got, err := app.Screener.Screen(context.Background(), "ledger.txt", []byte("Ledger and more ledger work"))
	if err != nil {
		t.Fatalf("Screen() error = %v", err)
	}
	if got.Category != "Accountant" || got.Point != nil {
		t.Fatalf("unexpected screening %+v", got)
	}
}

func TestNewFailsOnMissingArtifact(t *testing.T) {
	_, err := New(context.Background(), testConfig(writeArtifacts(t, "clf.json")), Options{})
	if err == nil {
		t.Fatalf("expected error for missing classifier")
	}
	if !domain.IsKind(err, domain.ErrMissingArtifact) {
		t.Fatalf("expected ErrMissingArtifact, got %v", err)
	}
	if !strings.Contains(err.Error(), "classifier") {
		t.Fatalf("error must name the missing role: %v", err)
	}
}

func TestNewFailsOnMissingDirectory(t *testing.T) {
	_, err := New(context.Background(), testConfig(filepath.Join(t.TempDir(), "absent")), Options{})
	if !domain.IsKind(err, domain.ErrMissingArtifact) {
		t.Fatalf("expected ErrMissingArtifact, got %v", err)
	}
}

func TestNewRejectsUnknownArtifactSource(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.ArtifactSource = "ftp"

	_, err := New(context.Background(), cfg, Options{})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestResilienceConfigFromEnvironment(t *testing.T) {
	got := ResilienceConfig(config.Config{ResilienceMaxAttempts: 2, ResilienceBreakerEnabled: false})
	if got.RetryMaxAttempts != 2 || got.BreakerEnabled {
		t.Fatalf("unexpected resilience config %+v", got)
	}

	got = ResilienceConfig(config.Config{ResilienceBreakerEnabled: true})
	if got.RetryMaxAttempts != 4 || !got.BreakerEnabled {
		t.Fatalf("expected defaults, got %+v", got)
	}
}
