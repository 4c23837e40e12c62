package skill

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// defaultConcurrency bounds parallel file reads during LoadSkills.
const defaultConcurrency = 8

// LoadError wraps a failure to read, decode or validate one skill file.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader reads skill definitions from a directory tree. It keeps no state
// between calls, so one Loader may be shared by concurrent callers.
type Loader struct {
	Dir         string
	Concurrency int
}

// NewLoader returns a Loader for dir.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir, Concurrency: defaultConcurrency}
}

// LoadSkills loads every valid skill under the directory, creating the
// directory if it does not exist. Files that fail to decode or validate are
// logged and skipped. Results are ordered by file path; when two files
// declare the same name the first one wins and the later one is skipped.
func (l *Loader) LoadSkills() []Loaded {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", l.Dir).Msg("creating skills directory")
		return nil
	}

	paths, err := discover(l.Dir)
	if err != nil {
		log.Error().Err(err).Str("dir", l.Dir).Msg("listing skills directory")
		return nil
	}

	results := make([]*Loaded, len(paths))
	var g errgroup.Group
	g.SetLimit(max(l.Concurrency, 1))
	for i, path := range paths {
		g.Go(func() error {
			s, err := LoadSkill(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("skipping skill file")
				return nil
			}
			results[i] = &s
			return nil
		})
	}
	_ = g.Wait()

	owner := make(map[string]string)
	skills := make([]Loaded, 0, len(paths))
	for _, s := range results {
		if s == nil {
			continue
		}
		if prev, ok := owner[s.Name()]; ok {
			log.Warn().
				Str("skill", s.Name()).
				Str("path", s.Path).
				Str("kept", prev).
				Msg("duplicate skill name, skipping")
			continue
		}
		owner[s.Name()] = s.Path
		skills = append(skills, *s)
	}

	log.Debug().Str("dir", l.Dir).Int("files", len(paths)).Int("skills", len(skills)).Msg("loaded skills")
	return skills
}

// LoadSkill reads, decodes and validates a single skill file.
func LoadSkill(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, &LoadError{Path: path, Err: fmt.Errorf("reading skill file: %w", err)}
	}
	def, err := Decode(data)
	if err != nil {
		return Loaded{}, &LoadError{Path: path, Err: err}
	}
	if err := Validate(def); err != nil {
		return Loaded{}, &LoadError{Path: path, Err: fmt.Errorf("validating skill %q: %w", def.Name, err)}
	}
	return Loaded{Definition: def, Path: path}, nil
}

// Decode parses a skill definition from YAML. Unknown keys are rejected so
// that misspelled fields surface as errors instead of silently dropped rules.
func Decode(data []byte) (Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return Definition{}, errors.New("parsing skill YAML: empty document")
		}
		return Definition{}, fmt.Errorf("parsing skill YAML: %w", err)
	}
	return def, nil
}

// discover walks root and returns candidate skill files, skipping hidden
// files and directories.
func discover(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Warn().Err(err).Str("path", path).Msg("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && isSkillFile(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

func isSkillFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
