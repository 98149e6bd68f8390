// Package keywords extracts the most frequent salient terms from email text.
package keywords

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxKeywords is the maximum number of terms Extract returns.
const MaxKeywords = 5

// minTokenLen is exclusive: tokens must be longer than this many runes.
const minTokenLen = 4

// stopwords are common Portuguese connectives and courtesy words that carry
// no signal about the email's subject.
var stopwords = map[string]struct{}{
	"para": {}, "como": {}, "isso": {}, "essa": {}, "este": {}, "dessa": {},
	"estar": {}, "que": {}, "dos": {}, "das": {}, "uma": {}, "esteja": {},
	"sobre": {}, "desde": {}, "preciso": {}, "precisa": {}, "gostaria": {},
	"favor": {}, "olá": {}, "ola": {}, "bom": {}, "boa": {}, "dia": {},
	"tarde": {}, "noite": {},
}

// Extract returns up to MaxKeywords terms from text ordered by descending
// frequency, ties broken by first occurrence. Letters outside ASCII
// (accented Portuguese letters) are kept as part of words.
func Extract(text string) []string {
	words := strings.Fields(sanitize(text))

	counts := make(map[string]int)
	var order []string
	for _, w := range words {
		if utf8.RuneCountInString(w) <= minTokenLen {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > MaxKeywords {
		order = order[:MaxKeywords]
	}
	if order == nil {
		order = []string{}
	}
	return order
}

// sanitize lowercases text and replaces every rune that is not a letter,
// digit or whitespace with a space.
func sanitize(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
}
