// File: internal/resolver/resolver.go
package resolver

import (
	"github.com/iyunix/go-lifexia/internal/domain"
	"github.com/iyunix/go-lifexia/internal/factstore"
)

// Stage names the step of the pipeline that produced a match.
type Stage string

const (
	StageNone           Stage = ""
	StageExactKey       Stage = "exact_key"
	StageExactAlias     Stage = "exact_alias"
	StageSubstring      Stage = "substring"
	StageAliasSubstring Stage = "alias_substring"
	StagePattern        Stage = "pattern"
	StageWindow         Stage = "window"
)

// Match describes a successful resolution.
type Match struct {
	Key   string
	Stage Stage
}

// Resolver maps free text onto a canonical drug key. Stages run in a fixed
// order and the first hit wins, so results are deterministic for a dataset.
type Resolver struct {
	store    *factstore.Store
	direct   chain
	pipeline []Matcher
}

func New(store *factstore.Store) *Resolver {
	direct := chain{
		exactKeyMatcher{store: store},
		exactAliasMatcher{store: store},
		substringMatcher{entries: nameEntries(store)},
		aliasSubstringMatcher{aliases: store.Aliases()},
	}
	pipeline := append([]Matcher{}, direct...)
	pipeline = append(pipeline,
		patternMatcher{direct: direct, patterns: extractionPatterns},
		windowMatcher{direct: direct},
	)
	return &Resolver{store: store, direct: direct, pipeline: pipeline}
}

// Resolve runs the full pipeline. ok is false when no stage matched.
func (r *Resolver) Resolve(text string) (domain.DrugRecord, Match, bool) {
	return r.run(r.pipeline, text)
}

// Lookup runs only the direct stages. It serves name searches where question
// phrasing is not expected.
func (r *Resolver) Lookup(text string) (domain.DrugRecord, Match, bool) {
	return r.run(r.direct, text)
}

func (r *Resolver) run(stages []Matcher, text string) (domain.DrugRecord, Match, bool) {
	normalized := factstore.Normalize(text)
	if normalized == "" {
		return domain.DrugRecord{}, Match{}, false
	}
	for _, m := range stages {
		key, ok := m.Match(normalized)
		if !ok {
			continue
		}
		rec, found := r.store.Get(key)
		if !found {
			continue
		}
		return rec, Match{Key: key, Stage: m.Stage()}, true
	}
	return domain.DrugRecord{}, Match{}, false
}
