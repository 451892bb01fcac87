package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingArtifact      = errors.New("missing artifact")
	ErrInvalidArtifact      = errors.New("invalid artifact")
	ErrArtifactInconsistent = errors.New("artifact inconsistency")
	ErrUnsupportedFormat    = errors.New("unsupported format")
	ErrExtractionFailure    = errors.New("extraction failure")
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
	ErrTemporary            = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// KindOf returns the first semantic kind found in err's chain, or nil.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrMissingArtifact,
		ErrInvalidArtifact,
		ErrArtifactInconsistent,
		ErrUnsupportedFormat,
		ErrExtractionFailure,
		ErrInvalidInput,
		ErrNotFound,
		ErrTemporary,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

var kindNames = []struct {
	kind error
	name string
}{
	{ErrMissingArtifact, "missing_artifact"},
	{ErrInvalidArtifact, "invalid_artifact"},
	{ErrArtifactInconsistent, "artifact_inconsistent"},
	{ErrUnsupportedFormat, "unsupported_format"},
	{ErrExtractionFailure, "extraction_failure"},
	{ErrInvalidInput, "invalid_input"},
	{ErrNotFound, "not_found"},
	{ErrTemporary, "temporary"},
}

// KindName is the stable wire name of err's kind: "" for nil, "internal" when untyped.
func KindName(err error) string {
	if err == nil {
		return ""
	}
	kind := KindOf(err)
	for _, k := range kindNames {
		if k.kind == kind {
			return k.name
		}
	}
	return "internal"
}

// KindFromName reverses KindName. Unknown names yield nil.
func KindFromName(name string) error {
	for _, k := range kindNames {
		if k.name == name {
			return k.kind
		}
	}
	return nil
}
