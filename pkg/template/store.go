package template

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
)

// documentExtensions lists the accepted file extensions in lookup order.
var documentExtensions = []string{".json", ".yaml", ".yml"}

const documentGlob = "*.{json,yaml,yml}"

// Store reads and writes template documents in a single directory.
type Store struct {
	dir    string
	logger zerolog.Logger
}

func NewStore(dir string, logger zerolog.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

func (s *Store) Dir() string { return s.dir }

// List returns every parseable template sorted by name. Documents that
// fail to parse are skipped and returned as *DocumentError values. A
// missing directory yields an empty list.
func (s *Store) List() ([]*Template, []error) {
	if _, err := os.Stat(s.dir); errors.Is(err, fs.ErrNotExist) {
		return []*Template{}, nil
	}

	matches, err := doublestar.Glob(os.DirFS(s.dir), documentGlob)
	if err != nil {
		return []*Template{}, []error{fmt.Errorf("failed to scan %s: %w", s.dir, err)}
	}
	sort.Strings(matches)

	templates := make([]*Template, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	var problems []error

	for _, name := range matches {
		id := stem(name)
		if seen[id] {
			continue
		}
		seen[id] = true

		t, err := s.Load(id)
		if err != nil {
			s.logger.Warn().Err(err).Str("file", name).Msg("skipping template")
			problems = append(problems, err)
			continue
		}
		templates = append(templates, t)
	}

	sort.SliceStable(templates, func(i, j int) bool {
		if templates[i].Name != templates[j].Name {
			return templates[i].Name < templates[j].Name
		}
		return templates[i].ID < templates[j].ID
	})

	return templates, problems
}

// Load reads the template whose filename stem is id.
func (s *Store) Load(id string) (*Template, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, &NotFoundError{ID: id}
	}

	for _, ext := range documentExtensions {
		path := filepath.Join(s.dir, id+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", path, err)
		}

		t, err := Parse(path, data)
		if err != nil {
			return nil, &DocumentError{Path: path, Err: err}
		}
		t.ID = id
		s.logger.Debug().Str("id", id).Str("file", path).Msg("loaded template")
		return t, nil
	}

	return nil, &NotFoundError{ID: id}
}

// Save writes t as <dir>/<id>.json, creating the directory when needed.
func (s *Store) Save(id string, t *Template) error {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("invalid template identifier %q", id)
	}

	data, err := Encode(t)
	if err != nil {
		return fmt.Errorf("failed to encode template: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create templates directory: %w", err)
	}

	path := filepath.Join(s.dir, id+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write template %s: %w", path, err)
	}
	s.logger.Debug().Str("id", id).Str("file", path).Msg("saved template")
	return nil
}

// Import parses the document at path and saves it under id. An empty id
// uses the file's stem.
func (s *Store) Import(path, id string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	t, err := Parse(path, data)
	if err != nil {
		return nil, &DocumentError{Path: path, Err: err}
	}

	if id == "" {
		id = stem(filepath.Base(path))
	}
	if err := s.Save(id, t); err != nil {
		return nil, err
	}
	t.ID = id
	return t, nil
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
