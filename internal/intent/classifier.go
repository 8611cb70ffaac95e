// File: internal/intent/classifier.go
package intent

import (
	"regexp"
	"strings"

	"github.com/iyunix/go-lifexia/internal/factstore"
	"github.com/iyunix/go-lifexia/internal/formatter"
)

// Intent is a fixed, non-drug request category.
type Intent string

const (
	None              Intent = ""
	EmergencyDrugs    Intent = "emergency_drugs"
	EmergencyContacts Intent = "emergency_contacts"
	Scheme            Intent = "scheme"
	Catalog           Intent = "catalog"
	Facility          Intent = "facility"
	Greeting          Intent = "greeting"
)

type rule struct {
	intent   Intent
	phrases  []string
	wordsExp *regexp.Regexp
}

func (r rule) matches(q string) bool {
	for _, p := range r.phrases {
		if strings.Contains(q, p) {
			return true
		}
	}
	return r.wordsExp != nil && r.wordsExp.MatchString(q)
}

// wholeWords compiles a case-insensitive alternation anchored on word boundaries.
func wholeWords(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Classifier recognises fixed intents by keyword. Rules are checked in
// priority order and the first match wins.
type Classifier struct {
	rules     []rule
	responses map[Intent]string
}

// New builds a classifier whose catalogue answers come from the fact store.
func New(store *factstore.Store) *Classifier {
	return &Classifier{
		rules: []rule{
			{intent: EmergencyDrugs, phrases: []string{"emergency drug", "emergency medication", "emergency medicine", "emergency list"}},
			{intent: EmergencyContacts, phrases: []string{"emergency"}, wordsExp: wholeWords("sos", "108", "112", "ambulance")},
			{intent: Scheme, phrases: []string{"ayushman", "pmjay", "pm-jay"}},
			{intent: Catalog, phrases: []string{"drug list", "available drugs", "what drugs", "all medicines", "all drugs", "medicine list"}},
			{intent: Facility, phrases: []string{"nearby hospital", "find hospital", "hospital near", "hospitals near", "nearest hospital", "find a hospital"}},
			{intent: Greeting, wordsExp: wholeWords("hi", "hello", "hey", "start", "menu", "help", "good morning", "good afternoon", "good evening")},
		},
		responses: map[Intent]string{
			EmergencyDrugs:    formatter.EmergencyList(store.EmergencyDrugs()),
			EmergencyContacts: emergencyContactsText,
			Scheme:            schemeText,
			Catalog:           formatter.Catalog(store.All()),
			Facility:          facilityText,
			Greeting:          greetingText,
		},
	}
}

// Classify returns the highest-priority intent present in query, or None.
func (c *Classifier) Classify(query string) Intent {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return None
	}
	for _, r := range c.rules {
		if r.matches(q) {
			return r.intent
		}
	}
	return None
}

// Respond returns the fixed response text for an intent.
func (c *Classifier) Respond(in Intent) (string, bool) {
	text, ok := c.responses[in]
	return text, ok
}

// Match classifies and responds in one step.
func (c *Classifier) Match(query string) (Intent, string, bool) {
	in := c.Classify(query)
	if in == None {
		return None, "", false
	}
	text, ok := c.Respond(in)
	return in, text, ok
}
