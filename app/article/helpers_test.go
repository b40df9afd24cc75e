package article

import (
	"strings"
	"time"
)

type lowerNormalizer struct{}

func (lowerNormalizer) Normalize(word string) string {
	return strings.ToLower(word)
}

type slowNormalizer struct {
	delay time.Duration
}

func (n slowNormalizer) Normalize(word string) string {
	time.Sleep(n.delay)
	return strings.ToLower(word)
}

type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	set := make(wordSet, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func (s wordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}
