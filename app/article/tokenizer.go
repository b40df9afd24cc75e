package article

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Qwedfgr/jaundice-rate-dvmn/app/morph"
)

// How many words are normalized between two deadline checks.
const cancelCheckInterval = 64

const negationParticle = "не"

var quoteStripper = strings.NewReplacer("«", "", "»", "", "…", "")

// Tokenizer splits text into normalized words with a shared normalizer.
type Tokenizer struct {
	normalizer morph.Normalizer
}

func NewTokenizer(normalizer morph.Normalizer) *Tokenizer {
	return &Tokenizer{normalizer: normalizer}
}

// Split returns the normalized words of text in order. Words shorter than
// three characters are dropped, except the negation particle. It stops
// with ctx.Err() once ctx is done.
func (t *Tokenizer) Split(ctx context.Context, text string) ([]string, error) {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))

	for i, field := range fields {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		word := cleanWord(field)
		if word == "" {
			continue
		}

		normalized := t.normalizer.Normalize(word)
		if utf8.RuneCountInString(normalized) > 2 || normalized == negationParticle {
			words = append(words, normalized)
		}
	}

	return words, nil
}

func cleanWord(word string) string {
	word = quoteStripper.Replace(word)
	word = strings.TrimFunc(word, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})

	if strings.IndexFunc(word, unicode.IsLetter) < 0 {
		return ""
	}
	return word
}
