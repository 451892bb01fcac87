package model

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kirillkom/resume-screener/internal/core/domain"
)

// LabelEncoder maps category id i to classes[i].
type LabelEncoder struct {
	classes []string
}

type labelFile struct {
	Classes []string `json:"classes"`
}

func DecodeLabelEncoder(r io.Reader) (*LabelEncoder, error) {
	var file labelFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode label encoder json: %w", err)
	}
	return NewLabelEncoder(file.Classes)
}

func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("label encoder has no classes")
	}
	seen := make(map[string]struct{}, len(classes))
	for i, name := range classes {
		if name == "" {
			return nil, fmt.Errorf("class %d has an empty name", i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate class name %q", name)
		}
		seen[name] = struct{}{}
	}
	return &LabelEncoder{classes: append([]string(nil), classes...)}, nil
}

func (e *LabelEncoder) Resolve(id int) (string, error) {
	if id < 0 || id >= len(e.classes) {
		return "", domain.WrapError(
			domain.ErrArtifactInconsistent,
			"resolve label",
			fmt.Errorf("category id %d outside [0,%d)", id, len(e.classes)),
		)
	}
	return e.classes[id], nil
}

func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}
