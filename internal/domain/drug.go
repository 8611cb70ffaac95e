// File: internal/domain/drug.go
package domain

import "strings"

// Audience selects how a drug record is presented.
type Audience string

const (
	AudienceGeneralPublic   Audience = "general-public"
	AudienceClinicalStudent Audience = "clinical-student"
)

// ParseAudience maps the values accepted by the chat channels onto an Audience.
// Anything unrecognised falls back to the general public.
func ParseAudience(value string) Audience {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "student", "clinical-student", "clinical", "clinical_student":
		return AudienceClinicalStudent
	default:
		return AudienceGeneralPublic
	}
}

// Dosage holds free-text dose ranges per age band.
type Dosage struct {
	Adult   string `json:"adult"`
	Child   string `json:"child"`
	Elderly string `json:"elderly,omitempty"`
}

// Pharmacology is only rendered for the clinical-student audience.
type Pharmacology struct {
	Mechanism  string `json:"mechanism,omitempty"`
	Onset      string `json:"onset,omitempty"`
	Peak       string `json:"peak,omitempty"`
	Duration   string `json:"duration,omitempty"`
	HalfLife   string `json:"half_life,omitempty"`
	Metabolism string `json:"metabolism,omitempty"`
	Excretion  string `json:"excretion,omitempty"`
}

// DrugRecord is one medically verified substance in the fact store.
type DrugRecord struct {
	Key               string        `json:"key"`
	Name              string        `json:"name"`
	Generic           string        `json:"generic"`
	Category          string        `json:"category"`
	EssentialMedicine bool          `json:"nlem"`
	Use               string        `json:"use"`
	Dosage            Dosage        `json:"dosage"`
	SideEffects       []string      `json:"side_effects"`
	Contraindications []string      `json:"contraindications"`
	Interactions      []string      `json:"interactions"`
	Warning           string        `json:"warning"`
	EmergencyUse      bool          `json:"emergency_use"`
	Pharmacology      *Pharmacology `json:"pharmacology,omitempty"`
}

// Clone returns a deep copy so callers can never mutate the store's record.
func (d DrugRecord) Clone() DrugRecord {
	out := d
	out.SideEffects = append([]string(nil), d.SideEffects...)
	out.Contraindications = append([]string(nil), d.Contraindications...)
	out.Interactions = append([]string(nil), d.Interactions...)
	if d.Pharmacology != nil {
		p := *d.Pharmacology
		out.Pharmacology = &p
	}
	return out
}
