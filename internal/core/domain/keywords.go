package domain

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// KeywordSet is an unordered set of normalized keywords.
type KeywordSet struct {
	items map[string]struct{}
}

// ParseKeywords splits a comma separated list. Tokens are trimmed, lowercased
// and NFC normalized; empty tokens and duplicates are dropped.
func ParseKeywords(raw string) KeywordSet {
	set := KeywordSet{items: make(map[string]struct{})}
	for _, token := range strings.Split(raw, ",") {
		token = NormalizeText(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		set.items[token] = struct{}{}
	}
	return set
}

// NormalizeText lowercases and NFC normalizes text so that keywords and
// document text compare on the same form.
func NormalizeText(text string) string {
	return norm.NFC.String(cases.Lower(language.Und).String(text))
}

func (s KeywordSet) Len() int {
	return len(s.items)
}

func (s KeywordSet) Empty() bool {
	return len(s.items) == 0
}

func (s KeywordSet) Values() []string {
	out := make([]string, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// AllIn reports whether every keyword occurs in text. An empty set is
// vacuously satisfied.
func (s KeywordSet) AllIn(text string) bool {
	for k := range s.items {
		if !strings.Contains(text, k) {
			return false
		}
	}
	return true
}

func (s KeywordSet) AnyIn(text string) bool {
	for k := range s.items {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func (s KeywordSet) String() string {
	return strings.Join(s.Values(), ",")
}
