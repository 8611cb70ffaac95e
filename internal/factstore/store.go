// File: internal/factstore/store.go
package factstore

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iyunix/go-lifexia/internal/domain"
)

//go:embed data/drugs.json
var defaultDataset []byte

// Alias maps a brand or alternate name onto a canonical key.
type Alias struct {
	Name string `json:"alias"`
	Key  string `json:"key"`
}

// Dataset is the on-disk shape of the verified drug set.
type Dataset struct {
	Drugs   []domain.DrugRecord `json:"drugs"`
	Aliases []Alias             `json:"aliases"`
}

// Store is the read-only catalogue of verified drug records and aliases.
// It is built once at startup and is safe for concurrent readers.
type Store struct {
	records []domain.DrugRecord
	byKey   map[string]int
	aliases []Alias
	aliasOf map[string]string
}

// Normalize lowercases and trims a name the way keys and aliases are stored.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// New validates the dataset and builds a Store from it.
func New(ds Dataset) (*Store, error) {
	s := &Store{
		byKey:   make(map[string]int, len(ds.Drugs)),
		aliasOf: make(map[string]string, len(ds.Aliases)),
	}

	for _, rec := range ds.Drugs {
		key := Normalize(rec.Key)
		if key == "" {
			return nil, newValidationError(rec.Name, "drug record has an empty key")
		}
		if _, dup := s.byKey[key]; dup {
			return nil, newValidationError(key, "duplicate canonical key")
		}
		if strings.TrimSpace(rec.Name) == "" {
			return nil, newValidationError(key, "drug record has no display name")
		}
		if rec.EmergencyUse && strings.TrimSpace(rec.Warning) == "" {
			return nil, newValidationError(key, "emergency drug must carry a warning")
		}
		rec.Key = key
		s.byKey[key] = len(s.records)
		s.records = append(s.records, rec.Clone())
	}

	for _, a := range ds.Aliases {
		name, key := Normalize(a.Name), Normalize(a.Key)
		if name == "" {
			return nil, newValidationError(key, "alias has an empty name")
		}
		if _, ok := s.byKey[key]; !ok {
			return nil, newValidationError(name, fmt.Sprintf("alias points to unknown key %q", key))
		}
		if existing, ok := s.aliasOf[name]; ok {
			if existing != key {
				return nil, newValidationError(name, "alias maps to more than one key")
			}
			continue
		}
		s.aliasOf[name] = key
		s.aliases = append(s.aliases, Alias{Name: name, Key: key})
	}

	return s, nil
}

// Load decodes a JSON dataset and builds a Store from it.
func Load(r io.Reader) (*Store, error) {
	var ds Dataset
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ds); err != nil {
		return nil, &DatasetError{Type: ErrTypeDecode, Message: "invalid dataset JSON", Cause: err}
	}
	return New(ds)
}

// LoadFile reads a dataset from disk.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DatasetError{Type: ErrTypeDecode, Message: "cannot open " + path, Cause: err}
	}
	defer f.Close()
	return Load(f)
}

// Default returns the store built from the embedded verified dataset.
func Default() (*Store, error) {
	return Load(bytes.NewReader(defaultDataset))
}

// MustDefault is Default for tests and tools; it panics on a broken embed.
func MustDefault() *Store {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}

// Get returns a copy of the record stored under a canonical key.
func (s *Store) Get(key string) (domain.DrugRecord, bool) {
	i, ok := s.byKey[Normalize(key)]
	if !ok {
		return domain.DrugRecord{}, false
	}
	return s.records[i].Clone(), true
}

// Has reports whether key is a canonical key.
func (s *Store) Has(key string) bool {
	_, ok := s.byKey[Normalize(key)]
	return ok
}

// AliasTarget resolves an exact alias to its canonical key.
func (s *Store) AliasTarget(alias string) (string, bool) {
	key, ok := s.aliasOf[Normalize(alias)]
	return key, ok
}

// Aliases lists aliases in dataset order.
func (s *Store) Aliases() []Alias {
	return append([]Alias(nil), s.aliases...)
}

// All returns copies of every record in dataset order.
func (s *Store) All() []domain.DrugRecord {
	out := make([]domain.DrugRecord, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

// Names lists display names in dataset order.
func (s *Store) Names() []string {
	names := make([]string, len(s.records))
	for i, r := range s.records {
		names[i] = r.Name
	}
	return names
}

// EmergencyDrugs returns the records flagged for emergency use.
func (s *Store) EmergencyDrugs() []domain.DrugRecord {
	var out []domain.DrugRecord
	for _, r := range s.records {
		if r.EmergencyUse {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Categories returns the distinct categories, sorted.
func (s *Store) Categories() []string {
	seen := make(map[string]struct{})
	for _, r := range s.records {
		seen[r.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (s *Store) Len() int {
	return len(s.records)
}
