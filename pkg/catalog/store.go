package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	aperrors "github.com/iandesj/aperture/pkg/errors"
)

// EntityStore reads entity documents from a local catalog directory.
// Reads are pure and synchronous: every call re-reads the directory so
// edits to descriptor files are picked up without a restart.
//
// Each .yaml/.yml file may contain multiple documents separated by "---".
// Documents of unrecognized kinds are ignored; Component documents with
// missing required fields are skipped with a logged warning rather than
// failing the whole directory read.
type EntityStore struct {
	dir    string
	logger *log.Logger
}

// NewEntityStore creates a store reading from dir.
// Pass nil for logger to use log.Default().
func NewEntityStore(dir string, logger *log.Logger) *EntityStore {
	if logger == nil {
		logger = log.Default()
	}
	return &EntityStore{dir: dir, logger: logger}
}

// Dir returns the catalog directory path.
func (s *EntityStore) Dir() string { return s.dir }

// Components reads all Component documents from the catalog directory.
// A missing or unreadable directory is fatal for the call.
func (s *EntityStore) Components() ([]Component, error) {
	var components []Component
	err := s.walk(func(path string, doc []byte) {
		c, err := ParseComponent(doc)
		if err != nil {
			s.logger.Warn("skipping invalid component document", "file", path, "err", err)
			return
		}
		if c != nil {
			components = append(components, *c)
		}
	})
	if err != nil {
		return nil, err
	}
	return components, nil
}

// Groups reads all Group documents from the catalog directory.
func (s *EntityStore) Groups() ([]Group, error) {
	var groups []Group
	err := s.walk(func(path string, doc []byte) {
		g, err := parseGroup(doc)
		if err != nil {
			s.logger.Warn("skipping invalid group document", "file", path, "err", err)
			return
		}
		if g != nil {
			groups = append(groups, *g)
		}
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// GroupByRef resolves an owner reference or bare group name against the
// local groups. Returns (nil, nil) when no group matches.
func (s *EntityStore) GroupByRef(refOrName string) (*Group, error) {
	want := NormalizeGroupRef(refOrName)
	groups, err := s.Groups()
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if groups[i].Ref() == want {
			return &groups[i], nil
		}
	}
	return nil, nil
}

// walk reads every YAML file in the catalog directory and invokes fn once
// per document. Files are visited in lexical order (os.ReadDir sorts), which
// fixes the catalog's incidental ordering across runs.
func (s *EntityStore) walk(fn func(path string, doc []byte)) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read catalog directory %s: %w", s.dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read entity file %s: %w", path, err)
		}
		docs, err := decodeDocuments(data)
		if err != nil {
			s.logger.Warn("skipping unparseable entity file", "file", path, "err", err)
			continue
		}
		for _, doc := range docs {
			fn(path, doc)
		}
	}
	return nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// parseGroup parses a single Group document. Documents of other kinds
// return (nil, nil); a Group missing its name returns an error.
func parseGroup(data []byte) (*Group, error) {
	var env envelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, aperrors.Wrap(aperrors.ErrCodeInvalidEntity, err, "malformed entity document")
	}
	if env.Kind != KindGroup || !env.recognized() {
		return nil, nil
	}

	var g Group
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, aperrors.Wrap(aperrors.ErrCodeInvalidEntity, err, "malformed group document")
	}
	if g.Metadata.Name == "" {
		return nil, aperrors.New(aperrors.ErrCodeInvalidEntity, "group is missing metadata.name")
	}
	return &g, nil
}
