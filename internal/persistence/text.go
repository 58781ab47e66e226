// Package persistence provides ecosystem storage backends: the plain-text
// directory layout, a SQLite database and an in-memory store.
package persistence

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/talgya/ecosim/internal/ecosystem"
)

// Labels used in the conditions file.
const (
	labelTemperature = "temperature"
	labelHumidity    = "humidity"
	labelWater       = "available water"
)

// FileNames are the per-ecosystem file names of the text layout.
type FileNames struct {
	Plants       string
	Animals      string
	Interactions string
	Resources    string
}

// DefaultFileNames returns the standard layout.
func DefaultFileNames() FileNames {
	return FileNames{
		Plants:       "plants.txt",
		Animals:      "animals.txt",
		Interactions: "interactions.txt",
		Resources:    "resources.txt",
	}
}

// TextStore keeps each ecosystem in its own directory under root:
//
//	plants.txt        one plant name per line
//	animals.txt       "<name> (<diet>)" per line
//	interactions.txt  free-text log, one entry per line
//	resources.txt     "temperature: <f>", "humidity: <f>", "available water: <f>"
//
// Rewrites go through a temporary file and a rename.
type TextStore struct {
	root  string
	files FileNames
}

// NewTextStore returns a store rooted at dir. The directory is created lazily.
func NewTextStore(dir string, files FileNames) *TextStore {
	return &TextStore{root: dir, files: files}
}

func (s *TextStore) dir(name string) string {
	return filepath.Join(s.root, name)
}

func (s *TextStore) path(name, file string) string {
	return filepath.Join(s.root, name, file)
}

// List returns ecosystem directory names. A missing root means no ecosystems.
func (s *TextStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *TextStore) Exists(name string) (bool, error) {
	info, err := os.Stat(s.dir(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

func (s *TextStore) Create(eco *ecosystem.Ecosystem) error {
	exists, err := s.Exists(eco.Name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ecosystem.ErrEcosystemExists, eco.Name)
	}
	if err := os.MkdirAll(s.dir(eco.Name), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	plants, animals := speciesLines(eco)
	if err := writeLines(s.path(eco.Name, s.files.Plants), plants); err != nil {
		return err
	}
	if err := writeLines(s.path(eco.Name, s.files.Animals), animals); err != nil {
		return err
	}
	if err := s.SaveConditions(eco.Name, eco.Conditions()); err != nil {
		return err
	}
	return writeLines(s.path(eco.Name, s.files.Interactions), interactionLines(eco.Log()))
}

func (s *TextStore) Load(name string) (*ecosystem.Ecosystem, error) {
	exists, err := s.Exists(name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ecosystem.ErrEcosystemNotFound, name)
	}

	resources, err := readLines(s.path(name, s.files.Resources))
	if err != nil {
		return nil, err
	}
	cond, err := parseConditions(resources)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.files.Resources, err)
	}
	eco := ecosystem.New(name, cond)

	plants, err := readLines(s.path(name, s.files.Plants))
	if err != nil {
		return nil, err
	}
	for _, line := range plants {
		eco.AddSpecies(ecosystem.NewPlant(line))
	}

	animals, err := readLines(s.path(name, s.files.Animals))
	if err != nil {
		return nil, err
	}
	for i, line := range animals {
		a, err := parseAnimal(line)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.files.Animals, i+1, err)
		}
		eco.AddSpecies(a)
	}

	log, err := readLines(s.path(name, s.files.Interactions))
	if err != nil {
		return nil, err
	}
	for _, line := range log {
		eco.Record(ecosystem.Interaction{Text: line})
	}
	return eco, nil
}

// SaveSpecies rewrites only the species files whose content changed. All
// changed files are staged before any is renamed into place, and a failed
// rename restores the files already replaced.
func (s *TextStore) SaveSpecies(eco *ecosystem.Ecosystem) error {
	plants, animals := speciesLines(eco)

	var pending []rewrite
	for _, f := range []struct {
		file  string
		lines []string
	}{
		{s.files.Plants, plants},
		{s.files.Animals, animals},
	} {
		path := s.path(eco.Name, f.file)
		old, err := readLines(path)
		if err != nil {
			return err
		}
		if slices.Equal(old, f.lines) {
			continue
		}
		pending = append(pending, rewrite{path: path, lines: f.lines, old: old})
	}
	return commitRewrites(pending)
}

func (s *TextStore) SaveConditions(name string, c ecosystem.Conditions) error {
	return writeLines(s.path(name, s.files.Resources), []string{
		labelTemperature + ": " + formatFloat(c.Temperature),
		labelHumidity + ": " + formatFloat(c.Humidity),
		labelWater + ": " + formatFloat(c.WaterAmount),
	})
}

func (s *TextStore) AppendInteraction(name string, in *ecosystem.Interaction) error {
	f, err := os.OpenFile(s.path(name, s.files.Interactions), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(in.Text + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *TextStore) Close() error { return nil }

// parseAnimal reads "<name> (<diet>)".
func parseAnimal(line string) (ecosystem.Species, error) {
	name, rest, ok := strings.Cut(line, " (")
	if !ok || !strings.HasSuffix(rest, ")") {
		return ecosystem.Species{}, fmt.Errorf("malformed animal record %q", line)
	}
	diet, err := ecosystem.ParseDiet(strings.TrimSuffix(rest, ")"))
	if err != nil {
		return ecosystem.Species{}, err
	}
	return ecosystem.NewAnimal(name, diet), nil
}

// parseConditions reads labelled values. Missing labels stay at zero.
func parseConditions(lines []string) (ecosystem.Conditions, error) {
	var c ecosystem.Conditions
	for _, line := range lines {
		label, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		var target *float64
		switch label {
		case labelTemperature:
			target = &c.Temperature
		case labelHumidity:
			target = &c.Humidity
		case labelWater:
			target = &c.WaterAmount
		default:
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return c, fmt.Errorf("parse %s: %w", label, err)
		}
		*target = v
	}
	return c, nil
}

// formatFloat always keeps a decimal point, so 22 is written as "22.0".
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

func speciesLines(eco *ecosystem.Ecosystem) (plants, animals []string) {
	for _, p := range eco.Plants() {
		plants = append(plants, p.String())
	}
	for _, a := range eco.Animals() {
		animals = append(animals, a.String())
	}
	return plants, animals
}

func interactionLines(log []ecosystem.Interaction) []string {
	lines := make([]string, 0, len(log))
	for _, in := range log {
		lines = append(lines, in.Text)
	}
	return lines
}

// readLines returns the non-blank lines of a file. A missing file is empty.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return lines, nil
}

// rewrite is one pending file replacement. old is the content to restore
// if a later rename in the same batch fails.
type rewrite struct {
	path  string
	lines []string
	old   []string
	tmp   string
}

func commitRewrites(pending []rewrite) error {
	defer func() {
		for _, rw := range pending {
			if rw.tmp != "" {
				os.Remove(rw.tmp)
			}
		}
	}()
	for i := range pending {
		tmp, err := stageLines(pending[i].path, pending[i].lines)
		if err != nil {
			return err
		}
		pending[i].tmp = tmp
	}
	for i, rw := range pending {
		if err := os.Rename(rw.tmp, rw.path); err != nil {
			for _, done := range pending[:i] {
				if rerr := writeLines(done.path, done.old); rerr != nil {
					return fmt.Errorf("replace %s: %w (restoring %s: %v)",
						filepath.Base(rw.path), err, filepath.Base(done.path), rerr)
				}
			}
			return fmt.Errorf("replace %s: %w", filepath.Base(rw.path), err)
		}
		pending[i].tmp = ""
	}
	return nil
}

// writeLines replaces path atomically.
func writeLines(path string, lines []string) error {
	tmp, err := stageLines(path, lines)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// stageLines writes lines to a synced temporary file next to path and
// returns its name.
func stageLines(path string, lines []string) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return "", fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		w.WriteString(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return tmp.Name(), nil
}
