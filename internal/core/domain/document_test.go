package domain

import (
	"errors"
	"testing"
)

func TestFormatFromFilename(t *testing.T) {
	cases := map[string]Format{
		"resume.pdf":       FormatPDF,
		"Resume.PDF":       FormatPDF,
		"cv.docx":          FormatDOCX,
		"notes.txt":        FormatText,
		"data.csv":         FormatUnsupported,
		"legacy.doc":       FormatUnsupported,
		"no-extension":     FormatUnsupported,
		"archive.txt.zip":  FormatUnsupported,
		"dir.pdf/file.txt": FormatText,
	}
	for name, want := range cases {
		if got := FormatFromFilename(name); got != want {
			t.Fatalf("FormatFromFilename(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestUnsupportedFormatIsNotSupported(t *testing.T) {
	if FormatUnsupported.Supported() {
		t.Fatalf("unsupported format must not report supported")
	}
	for _, f := range SupportedFormats {
		if !f.Supported() {
			t.Fatalf("expected %q to be supported", f)
		}
	}
}

func TestWrapErrorKeepsKind(t *testing.T) {
	err := WrapError(ErrUnsupportedFormat, "extract", errors.New("suffix .csv"))
	if !IsKind(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat in %v", err)
	}
	if KindOf(err) != ErrUnsupportedFormat {
		t.Fatalf("KindOf() = %v", KindOf(err))
	}
	if WrapError(ErrTemporary, "op", nil) != nil {
		t.Fatalf("expected nil for nil cause")
	}
	if KindOf(errors.New("plain")) != nil {
		t.Fatalf("expected no kind for plain error")
	}
}

func TestKindNameRoundTrip(t *testing.T) {
	for _, kind := range []error{ErrUnsupportedFormat, ErrExtractionFailure, ErrArtifactInconsistent, ErrTemporary} {
		name := KindName(WrapError(kind, "op", errors.New("cause")))
		if KindFromName(name) != kind {
			t.Fatalf("kind %v did not round-trip through %q", kind, name)
		}
	}
	if KindName(nil) != "" {
		t.Fatalf("expected empty name for nil")
	}
	if KindName(errors.New("plain")) != "internal" {
		t.Fatalf("expected internal for untyped error")
	}
	if KindFromName("internal") != nil {
		t.Fatalf("expected nil kind for internal")
	}
}
