package charged

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Normalizer is the subset of morph.Normalizer needed to build a Set.
type Normalizer interface {
	Normalize(word string) string
}

// Set is a read-only collection of normalized charged words. It is built
// once at startup and shared by all pipelines without locking.
type Set struct {
	words map[string]struct{}
}

func NewSet(words []string, normalizer Normalizer) *Set {
	set := &Set{words: make(map[string]struct{}, len(words))}
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		if normalizer != nil {
			word = normalizer.Normalize(word)
		}
		if word != "" {
			set.words[word] = struct{}{}
		}
	}
	return set
}

func (s *Set) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

func (s *Set) Len() int {
	return len(s.words)
}

type yamlList struct {
	Words []string `yaml:"words"`
}

// LoadDir reads every *.txt, *.yml and *.yaml file in dir. Text files hold
// one word per line with '#' comments; YAML files hold a "words" list.
func LoadDir(dir string, normalizer Normalizer) (*Set, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("failed to open charged dictionary: %w", err)
	}

	var files []string
	for _, pattern := range []string{"*.txt", "*.yml", "*.yaml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to find %s files: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("no word lists found in %s", dir)
	}

	var words []string
	for _, file := range files {
		fileWords, err := loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}
		slog.Debug("Charged words loaded", "file", file, "count", len(fileWords))
		words = append(words, fileWords...)
	}

	return NewSet(words, normalizer), nil
}

func loadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if ext := filepath.Ext(path); ext == ".yml" || ext == ".yaml" {
		var list yamlList
		if err := yaml.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		return list.Words, nil
	}

	var words []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan file: %w", err)
	}

	return words, nil
}
