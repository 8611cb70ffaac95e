// File: internal/services/drug_service.go
package services

import (
	"errors"
	"strings"

	"github.com/iyunix/go-lifexia/internal/domain"
	"github.com/iyunix/go-lifexia/internal/factstore"
	"github.com/iyunix/go-lifexia/internal/formatter"
	"github.com/iyunix/go-lifexia/internal/resolver"
)

var ErrUnknownDrug = errors.New("drug not found")

// DrugSearchResult is the outcome of a direct catalog lookup.
type DrugSearchResult struct {
	Found    bool
	Drug     domain.DrugRecord
	Stage    resolver.Stage
	Response string
}

// EmergencyCatalog lists emergency drugs and every category in the store.
type EmergencyCatalog struct {
	Drugs      []formatter.EmergencyEntry `json:"drugs"`
	Categories []string                   `json:"categories"`
}

// DrugService exposes the verified catalog without going through the engine.
type DrugService struct {
	store    *factstore.Store
	resolver *resolver.Resolver
	logger   Logger
}

func NewDrugService(store *factstore.Store, r *resolver.Resolver, logger Logger) *DrugService {
	return &DrugService{store: store, resolver: r, logger: logger}
}

// Search resolves name through the direct stages only (key, alias and
// their substring forms), never through sentence patterns.
func (s *DrugService) Search(name string, audience domain.Audience) DrugSearchResult {
	name = strings.TrimSpace(name)
	if name == "" {
		return DrugSearchResult{}
	}
	rec, match, ok := s.resolver.Lookup(name)
	if !ok {
		s.logger.Debug("drug search missed", "query", name)
		return DrugSearchResult{}
	}
	return DrugSearchResult{
		Found:    true,
		Drug:     rec,
		Stage:    match.Stage,
		Response: formatter.Format(rec, audience),
	}
}

func (s *DrugService) QuickInfo(name string) (formatter.QuickInfo, error) {
	res := s.Search(name, domain.AudienceGeneralPublic)
	if !res.Found {
		return formatter.QuickInfo{}, ErrUnknownDrug
	}
	return formatter.NewQuickInfo(res.Drug), nil
}

func (s *DrugService) EmergencyDrugs() EmergencyCatalog {
	recs := s.store.EmergencyDrugs()
	entries := make([]formatter.EmergencyEntry, len(recs))
	for i, rec := range recs {
		entries[i] = formatter.NewEmergencyEntry(rec)
	}
	return EmergencyCatalog{Drugs: entries, Categories: s.store.Categories()}
}
