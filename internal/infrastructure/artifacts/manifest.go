package artifacts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Role names one artifact of the model set.
type Role string

const (
	RoleVectorizer Role = "vectorizer"
	RoleClassifier Role = "classifier"
	RoleLabels     Role = "labels"
	RoleReducer    Role = "reducer"
)

var defaultFiles = map[Role]string{
	RoleVectorizer: "tfidf.json",
	RoleClassifier: "clf.json",
	RoleLabels:     "encoder.json",
	RoleReducer:    "reducer.json",
}

// Entry locates one artifact and optionally pins its content.
type Entry struct {
	File   string `yaml:"file"`
	SHA256 string `yaml:"sha256"`
}

// Manifest is the optional manifest.yaml shipped next to the artifacts.
type Manifest struct {
	Version   string         `yaml:"version"`
	Artifacts map[Role]Entry `yaml:"artifacts"`
}

func ParseManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest yaml: %w", err)
	}
	for role, entry := range m.Artifacts {
		if _, ok := defaultFiles[role]; !ok {
			return nil, fmt.Errorf("unknown artifact role %q", role)
		}
		if entry.SHA256 != "" {
			if _, err := hex.DecodeString(entry.SHA256); err != nil || len(entry.SHA256) != sha256.Size*2 {
				return nil, fmt.Errorf("artifact %s: sha256 must be %d hex characters", role, sha256.Size*2)
			}
		}
	}
	return &m, nil
}

// Entry returns the manifest entry for role with the default file name filled in.
func (m *Manifest) Entry(role Role) Entry {
	var entry Entry
	if m != nil {
		entry = m.Artifacts[role]
	}
	if strings.TrimSpace(entry.File) == "" {
		entry.File = defaultFiles[role]
	}
	return entry
}

func verifyChecksum(body []byte, want string) error {
	if want == "" {
		return nil
	}
	sum := sha256.Sum256(body)
	got := hex.EncodeToString(sum[:])
	if !strings.EqualFold(got, want) {
		return fmt.Errorf("sha256 mismatch: got %s, want %s", got, strings.ToLower(want))
	}
	return nil
}
