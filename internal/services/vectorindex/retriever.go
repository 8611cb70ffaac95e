// File: internal/services/vectorindex/retriever.go
package vectorindex

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const maxPassageRunes = 1200

// Retriever embeds a question and returns the best matching passages as
// prompt-ready text blocks.
type Retriever struct {
	embedder Embedder
	index    Index
	logger   Logger
}

func NewRetriever(embedder Embedder, index Index, logger Logger) *Retriever {
	return &Retriever{embedder: embedder, index: index, logger: logger}
}

func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]string, error) {
	if k <= 0 {
		return nil, nil
	}

	vector, err := r.embedder.CreateEmbedding(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	passages, err := r.index.Query(ctx, vector, k)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})

	blocks := make([]string, 0, len(passages))
	for _, p := range passages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		blocks = append(blocks, renderPassage(p))
		if len(blocks) == k {
			break
		}
	}
	r.logger.Debug("retrieved passages", "requested", k, "returned", len(blocks))
	return blocks, nil
}

func renderPassage(p Passage) string {
	text := strings.TrimSpace(p.Text)
	if utf8.RuneCountInString(text) > maxPassageRunes {
		text = string([]rune(text)[:maxPassageRunes])
	}

	var label []string
	if p.Source != "" {
		label = append(label, p.Source)
	}
	if p.Heading != "" {
		label = append(label, p.Heading)
	}
	if len(label) == 0 {
		return text
	}
	return "[" + strings.Join(label, " / ") + "] " + text
}
