package morph

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/kljensen/snowball"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalizer reduces a word to the form used for counting and matching.
type Normalizer interface {
	Normalize(word string) string
}

var supportedLanguages = map[string]language.Tag{
	"english":   language.English,
	"french":    language.French,
	"hungarian": language.Hungarian,
	"norwegian": language.Norwegian,
	"russian":   language.Russian,
	"spanish":   language.Spanish,
	"swedish":   language.Swedish,
}

// Stemmer normalizes words with Unicode NFC, case folding and a Snowball
// stemmer. One instance is shared by every pipeline. Only the case folding
// is serialized: cases.Caser keeps internal state between calls.
type Stemmer struct {
	language string
	caser    cases.Caser
	mu       sync.Mutex
}

func NewStemmer(lang string) (*Stemmer, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	tag, ok := supportedLanguages[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported stemmer language: %s", lang)
	}

	return &Stemmer{
		language: lang,
		caser:    cases.Lower(tag),
	}, nil
}

func (s *Stemmer) Language() string {
	return s.language
}

func (s *Stemmer) Normalize(word string) string {
	word = strings.TrimSpace(norm.NFC.String(word))
	if word == "" {
		return ""
	}

	word = s.lower(word)
	if s.language == "russian" {
		word = strings.ReplaceAll(word, "ё", "е")
	}

	stemmed, err := snowball.Stem(word, s.language, true)
	if err != nil {
		slog.Debug("Stemming failed, keeping lowercase form", "word", word, "error", err)
		return word
	}

	return stemmed
}

func (s *Stemmer) lower(word string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.caser.String(word)
}
