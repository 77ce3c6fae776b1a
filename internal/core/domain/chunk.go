package domain

import "fmt"

// Chunk is a span of document text at one level of the chunk hierarchy.
// Level 0 chunks are the smallest retrieval units and the only ones that
// carry embeddings at ingestion time; higher levels are coarser ancestors.
// Chunks are written by the ingestion pipeline and read-only here.
type Chunk struct {
	ID           string    `json:"id"`
	DocumentID   string    `json:"document_id"`
	Text         string    `json:"text"`
	TokenCount   int       `json:"token_count"`
	Level        int       `json:"level"`
	ParentID     string    `json:"parent_id,omitempty"` // empty at the root level
	ChildIDs     []string  `json:"child_ids,omitempty"` // ordered, level-1 chunks
	Embedding    []float32 `json:"embedding,omitempty"`
	ParentWindow string    `json:"parent_window,omitempty"` // precomputed parent-extent text

	// Structural metadata, used as conjunctive search filters
	Section string `json:"section,omitempty"`
	Chapter int    `json:"chapter,omitempty"`
	Part    int    `json:"part,omitempty"`
}

// Validate checks chunk-local invariants
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: chunk id is required", ErrInvalidInput)
	}
	if c.DocumentID == "" {
		return fmt.Errorf("%w: chunk %s has no document id", ErrInvalidInput, c.ID)
	}
	if c.Level < 0 {
		return fmt.Errorf("%w: chunk %s has negative level %d", ErrInvalidInput, c.ID, c.Level)
	}
	if c.Level > 0 && len(c.Embedding) > 0 {
		return fmt.Errorf("%w: chunk %s at level %d carries an ingestion embedding", ErrInvalidInput, c.ID, c.Level)
	}
	return nil
}

// VerifyLink checks the parent-side invariants of a child->parent edge:
// same document, parent exactly one level up, and the parent listing the
// child among its children (bidirectional integrity).
func VerifyLink(child, parent *Chunk) error {
	if child.ParentID != parent.ID {
		return fmt.Errorf("%w: chunk %s does not reference parent %s", ErrConsistency, child.ID, parent.ID)
	}
	if parent.DocumentID != child.DocumentID {
		return fmt.Errorf("%w: chunk %s and parent %s belong to different documents", ErrConsistency, child.ID, parent.ID)
	}
	if parent.Level != child.Level+1 {
		return fmt.Errorf("%w: parent %s at level %d, expected %d", ErrConsistency, parent.ID, parent.Level, child.Level+1)
	}
	for _, id := range parent.ChildIDs {
		if id == child.ID {
			return nil
		}
	}
	return fmt.Errorf("%w: parent %s does not list child %s", ErrConsistency, parent.ID, child.ID)
}
