// File: internal/services/generation/messages.go
package generation

import (
	"fmt"
	"strings"
)

// SafeFallbackMessage is returned whenever generation fails or produces
// unusable output. It never depends on the failure.
const SafeFallbackMessage = `I'm sorry, I couldn't put together a reliable answer to that right now.

I only share **verified** medication information, so please:
- Ask about a specific medicine by name, e.g. *"Tell me about Paracetamol"*
- Type *"drug list"* to see every medicine I have verified data for
- Consult a doctor or pharmacist for anything else

🚨 **Emergency?** Call **108** immediately.`

// CatalogGuidance is returned when no language model is configured.
func CatalogGuidance(question string, names []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thanks for your question: *\"%s\"*\n\n", strings.TrimSpace(question))
	b.WriteString("I provide **verified pharmaceutical information** only. I currently have detailed data for:\n\n")
	fmt.Fprintf(&b, "**%s**\n\n", strings.Join(names, ", "))
	b.WriteString("### How to get the best results\n")
	b.WriteString("- *\"Tell me about Paracetamol\"*\n")
	b.WriteString("- *\"What is the dosage for Amoxicillin?\"*\n")
	b.WriteString("- *\"Side effects of Ibuprofen\"*\n")
	b.WriteString("- *\"Drug interactions of Aspirin\"*\n")
	b.WriteString("- *\"Emergency drugs list\"*\n\n")
	b.WriteString("🏥 Ask *\"find hospital near me\"* for nearby hospitals. 🚨 **Emergency?** Call **108** immediately.\n\n")
	b.WriteString("*I will never guess drug information.*")
	return b.String()
}
