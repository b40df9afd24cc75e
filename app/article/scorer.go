package article

// WordSet answers membership queries for charged words.
type WordSet interface {
	Contains(word string) bool
}

// Score returns the share of charged words among words. The second result
// is false when there are no words and the rate is undefined.
func Score(words []string, charged WordSet) (float64, bool) {
	if len(words) == 0 {
		return 0, false
	}

	count := 0
	for _, word := range words {
		if charged.Contains(word) {
			count++
		}
	}

	return float64(count) / float64(len(words)), true
}
