// File: internal/formatter/catalog.go
package formatter

import (
	"fmt"
	"strings"

	"github.com/iyunix/go-lifexia/internal/domain"
)

// EmergencyEntry is the condensed card used by the emergency drug listing.
type EmergencyEntry struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	PrimaryUse string `json:"primary_use"`
	Warning    string `json:"warning"`
}

// NewEmergencyEntry shortens the use and warning text for list views.
func NewEmergencyEntry(rec domain.DrugRecord) EmergencyEntry {
	return EmergencyEntry{
		Key:        rec.Key,
		Name:       rec.Name,
		Category:   rec.Category,
		PrimaryUse: Abbreviate(rec.Use, 100),
		Warning:    Abbreviate(rec.Warning, 80),
	}
}

// Abbreviate cuts s to max runes and appends an ellipsis when it was cut.
func Abbreviate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// EmergencyList renders the emergency drug catalogue as chat text.
func EmergencyList(records []domain.DrugRecord) string {
	var b strings.Builder
	b.WriteString("## 🚨 Emergency Drug List\n\n")
	b.WriteString("These verified medicines are commonly used in emergencies:\n\n")
	for i, rec := range records {
		e := NewEmergencyEntry(rec)
		fmt.Fprintf(&b, "%d. **%s** (%s)\n   %s\n", i+1, e.Name, e.Category, e.PrimaryUse)
	}
	b.WriteString("\nAsk about any of them by name for dosage and safety details.\n\n")
	b.WriteString("**In a medical emergency call 108 (ambulance) or 112 immediately.**")
	return b.String()
}

// Catalog renders every verified drug in dataset order.
func Catalog(records []domain.DrugRecord) string {
	var b strings.Builder
	b.WriteString("## 📋 Available Verified Drugs\n\n")
	for _, rec := range records {
		fmt.Fprintf(&b, "- **%s** (%s)\n", rec.Name, rec.Category)
	}
	b.WriteString("\nAsk about any drug by name, e.g. \"Tell me about paracetamol\" or \"dosage of metformin\".")
	return b.String()
}

// QuickInfo is the compact summary returned by the quick-info endpoint.
type QuickInfo struct {
	Key          string        `json:"key"`
	Name         string        `json:"name"`
	Generic      string        `json:"generic"`
	Category     string        `json:"category"`
	Use          string        `json:"use"`
	Dosage       domain.Dosage `json:"dosage"`
	Warning      string        `json:"warning"`
	EmergencyUse bool          `json:"emergency_use"`
}

func NewQuickInfo(rec domain.DrugRecord) QuickInfo {
	return QuickInfo{
		Key:          rec.Key,
		Name:         rec.Name,
		Generic:      orNA(rec.Generic),
		Category:     orNA(rec.Category),
		Use:          orNA(rec.Use),
		Dosage: domain.Dosage{
			Adult:   orNA(rec.Dosage.Adult),
			Child:   orNA(rec.Dosage.Child),
			Elderly: orNA(rec.Dosage.Elderly),
		},
		Warning:      orNA(rec.Warning),
		EmergencyUse: rec.EmergencyUse,
	}
}
