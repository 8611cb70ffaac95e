// File: internal/resolver/matchers.go
package resolver

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/iyunix/go-lifexia/internal/factstore"
)

// minReverseLen is the shortest fragment that may match as an abbreviation
// of a drug name. Shorter fragments such as "is" or "of" hit unrelated names.
const minReverseLen = 4

// nonIdentifying words appear inside drug names but name no drug on their own.
var nonIdentifying = map[string]struct{}{
	"acid": {}, "calcium": {}, "potassium": {}, "hydrochloride": {},
	"sulfate": {}, "besylate": {}, "human": {}, "analog": {},
}

// reversible reports whether text may stand for an abbreviated drug name.
func reversible(text string) bool {
	return len([]rune(text)) >= minReverseLen && !strings.ContainsRune(text, ' ')
}

// Matcher is one stage of the resolution pipeline.
type Matcher interface {
	Stage() Stage
	Match(text string) (key string, ok bool)
}

type exactKeyMatcher struct{ store *factstore.Store }

func (m exactKeyMatcher) Stage() Stage { return StageExactKey }

func (m exactKeyMatcher) Match(text string) (string, bool) {
	if m.store.Has(text) {
		return text, true
	}
	return "", false
}

type exactAliasMatcher struct{ store *factstore.Store }

func (m exactAliasMatcher) Stage() Stage { return StageExactAlias }

func (m exactAliasMatcher) Match(text string) (string, bool) {
	return m.store.AliasTarget(text)
}

type nameEntry struct {
	key, generic string
	// tokens are the identifying words of the key and generic name. An
	// abbreviation matches only as a prefix of one of them.
	tokens []string
}

func nameEntries(store *factstore.Store) []nameEntry {
	records := store.All()
	entries := make([]nameEntry, len(records))
	for i, rec := range records {
		generic := factstore.Normalize(rec.Generic)
		var tokens []string
		for _, w := range strings.Fields(rec.Key + " " + generic) {
			if _, skip := nonIdentifying[w]; !skip {
				tokens = append(tokens, w)
			}
		}
		entries[i] = nameEntry{key: rec.Key, generic: generic, tokens: tokens}
	}
	return entries
}

func (e nameEntry) abbreviatedBy(fragment string) bool {
	for _, t := range e.tokens {
		if strings.HasPrefix(t, fragment) {
			return true
		}
	}
	return false
}

// substringMatcher finds a canonical key or generic name inside the text, or
// accepts the text as an abbreviation ("amox") of one of them.
type substringMatcher struct{ entries []nameEntry }

func (m substringMatcher) Stage() Stage { return StageSubstring }

func (m substringMatcher) Match(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	reverse := reversible(text)
	for _, e := range m.entries {
		if strings.Contains(text, e.key) || (e.generic != "" && strings.Contains(text, e.generic)) {
			return e.key, true
		}
		if reverse && e.abbreviatedBy(text) {
			return e.key, true
		}
	}
	return "", false
}

// aliasSubstringMatcher finds a brand or alternate name on word boundaries.
// Brand names are never abbreviated: "calm" must not mean "calmpose".
type aliasSubstringMatcher struct{ aliases []factstore.Alias }

func (m aliasSubstringMatcher) Stage() Stage { return StageAliasSubstring }

func (m aliasSubstringMatcher) Match(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, a := range m.aliases {
		if containsWord(text, a.Name) {
			return a.Key, true
		}
	}
	return "", false
}

// containsWord reports whether alias occurs in text on word boundaries.
// Short aliases like "mox" must not match inside unrelated words.
func containsWord(text, alias string) bool {
	from := 0
	for {
		i := strings.Index(text[from:], alias)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(alias)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		from = start + 1
	}
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r := rune(s[i-1])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r := rune(s[i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// chain runs the direct matchers in order and stops at the first hit.
type chain []Matcher

func (c chain) match(text string) (string, bool) {
	for _, m := range c {
		if key, ok := m.Match(text); ok {
			return key, true
		}
	}
	return "", false
}

var extractionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:about|info(?:rmation)?|details?\s+(?:about|on|of)?|tell\s+me\s+about)\s+(.+?)(?:\s*\?|\s*$)`),
	regexp.MustCompile(`(?i)(?:what\s+is|what'?s)\s+(.+?)(?:\s+used\s+for|\s*\?|\s*$)`),
	regexp.MustCompile(`(?i)(?:dosage|dose)\s+(?:of|for)\s+(.+?)(?:\s*\?|\s*$)`),
	regexp.MustCompile(`(?i)(?:side\s+effects?\s+of)\s+(.+?)(?:\s*\?|\s*$)`),
	regexp.MustCompile(`(?i)(?:interactions?\s+(?:of|for|with))\s+(.+?)(?:\s*\?|\s*$)`),
	regexp.MustCompile(`(?i)(?:how\s+to\s+(?:use|take))\s+(.+?)(?:\s*\?|\s*$)`),
	regexp.MustCompile(`(?i)(?:is|can)\s+(.+?)\s+(?:safe|used|good)`),
}

// patternMatcher pulls the drug span out of common question phrasings and
// retries the direct stages on that span.
type patternMatcher struct {
	direct   chain
	patterns []*regexp.Regexp
}

func (m patternMatcher) Stage() Stage { return StagePattern }

func (m patternMatcher) Match(text string) (string, bool) {
	for _, re := range m.patterns {
		sub := re.FindStringSubmatch(text)
		if len(sub) < 2 {
			continue
		}
		span := trimSpan(sub[1])
		if span == "" {
			continue
		}
		if key, ok := m.direct.match(span); ok {
			return key, true
		}
	}
	return "", false
}

// windowMatcher tries every single word, then two- and three-word windows.
type windowMatcher struct{ direct chain }

func (m windowMatcher) Stage() Stage { return StageWindow }

func (m windowMatcher) Match(text string) (string, bool) {
	words := tokenize(text)
	for _, w := range words {
		if key, ok := m.direct.match(w); ok {
			return key, true
		}
	}
	for i := range words {
		for size := 2; size <= 3 && i+size <= len(words); size++ {
			if key, ok := m.direct.match(strings.Join(words[i:i+size], " ")); ok {
				return key, true
			}
		}
	}
	return "", false
}

func tokenize(text string) []string {
	var words []string
	for _, f := range strings.Fields(text) {
		if w := trimSpan(f); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func trimSpan(s string) string {
	return strings.TrimFunc(factstore.Normalize(s), func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
}
