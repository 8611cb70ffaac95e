// File: internal/formatter/formatter.go
package formatter

import (
	"fmt"
	"strings"

	"github.com/iyunix/go-lifexia/internal/domain"
)

const (
	NotAvailable = "Not available"

	PublicDisclaimer = "*⚕️ This information is for reference only. Always consult your doctor or pharmacist before taking any medication.*"
	StudentSources   = "Indian Pharmacopoeia 2022, NLEM 2022, WHO Essential Medicines List"

	publicSideEffects       = 5
	publicContraindications = 3
	publicInteractions      = 4
)

// Format renders a drug record for the given audience. The output depends
// only on the record and the audience.
func Format(rec domain.DrugRecord, audience domain.Audience) string {
	if audience == domain.AudienceClinicalStudent {
		return formatStudent(rec)
	}
	return formatPublic(rec)
}

func formatPublic(rec domain.DrugRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## 💊 %s\n\n", rec.Name)
	fmt.Fprintf(&b, "**Category:** %s\n\n", orNA(rec.Category))
	fmt.Fprintf(&b, "**What it's used for:** %s\n\n", orNA(rec.Use))

	b.WriteString("### Dosage\n")
	fmt.Fprintf(&b, "- **Adults:** %s\n", orNA(rec.Dosage.Adult))
	fmt.Fprintf(&b, "- **Children:** %s\n\n", orNA(rec.Dosage.Child))

	fmt.Fprintf(&b, "### ⚠️ Important Warnings\n%s\n\n", orNA(rec.Warning))

	writeList(&b, "### Common Side Effects", first(rec.SideEffects, publicSideEffects))
	writeList(&b, "### Do Not Use If", first(rec.Contraindications, publicContraindications))
	writeList(&b, "### Drug Interactions", first(rec.Interactions, publicInteractions))

	b.WriteString("---\n")
	b.WriteString(PublicDisclaimer)
	return b.String()
}

func formatStudent(rec domain.DrugRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## 💊 %s\n\n", rec.Name)
	fmt.Fprintf(&b, "**Generic Name:** %s\n", orNA(rec.Generic))
	fmt.Fprintf(&b, "**Category:** %s\n", orNA(rec.Category))
	if rec.EssentialMedicine {
		b.WriteString("**NLEM 2022:** ✅ Listed\n")
	} else {
		b.WriteString("**NLEM 2022:** Not listed\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "### Clinical Uses\n%s\n\n", orNA(rec.Use))

	b.WriteString("### Dosage Regimen\n")
	b.WriteString("| Population | Dose |\n|---|---|\n")
	fmt.Fprintf(&b, "| Adult | %s |\n", cell(rec.Dosage.Adult))
	fmt.Fprintf(&b, "| Pediatric | %s |\n", cell(rec.Dosage.Child))
	fmt.Fprintf(&b, "| Geriatric | %s |\n\n", cell(rec.Dosage.Elderly))

	p := rec.Pharmacology
	if p == nil {
		p = &domain.Pharmacology{}
	}
	b.WriteString("### Pharmacology\n")
	fmt.Fprintf(&b, "**Mechanism of Action:** %s\n\n", orNA(p.Mechanism))
	b.WriteString("| Parameter | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Onset | %s |\n", cell(p.Onset))
	fmt.Fprintf(&b, "| Peak | %s |\n", cell(p.Peak))
	fmt.Fprintf(&b, "| Duration | %s |\n", cell(p.Duration))
	fmt.Fprintf(&b, "| Half-life | %s |\n", cell(p.HalfLife))
	fmt.Fprintf(&b, "| Metabolism | %s |\n", cell(p.Metabolism))
	fmt.Fprintf(&b, "| Excretion | %s |\n\n", cell(p.Excretion))

	writeList(&b, "### Adverse Effects", rec.SideEffects)
	writeList(&b, "### Contraindications", rec.Contraindications)
	writeList(&b, "### Drug Interactions", rec.Interactions)

	fmt.Fprintf(&b, "### Safety Warnings\n%s\n\n", orNA(rec.Warning))

	b.WriteString("---\n")
	fmt.Fprintf(&b, "*📚 Source: %s*", StudentSources)
	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	b.WriteString(heading)
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString("- ")
		b.WriteString(NotAvailable)
		b.WriteString("\n\n")
		return
	}
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func first(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

// cell keeps table rows intact when a value contains a pipe.
func cell(s string) string {
	return strings.ReplaceAll(orNA(s), "|", "/")
}
