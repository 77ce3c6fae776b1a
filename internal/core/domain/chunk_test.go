package domain

import (
	"errors"
	"testing"
)

func TestChunk_Validate(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr bool
	}{
		{
			name:  "valid leaf chunk",
			chunk: &Chunk{ID: "c1", DocumentID: "doc-1", Level: 0, Embedding: []float32{0.1, 0.2}},
		},
		{
			name:  "valid ancestor without embedding",
			chunk: &Chunk{ID: "c2", DocumentID: "doc-1", Level: 1, ChildIDs: []string{"c1"}},
		},
		{
			name:    "missing id",
			chunk:   &Chunk{DocumentID: "doc-1"},
			wantErr: true,
		},
		{
			name:    "missing document id",
			chunk:   &Chunk{ID: "c3"},
			wantErr: true,
		},
		{
			name:    "negative level",
			chunk:   &Chunk{ID: "c4", DocumentID: "doc-1", Level: -1},
			wantErr: true,
		},
		{
			name:    "ancestor with ingestion embedding",
			chunk:   &Chunk{ID: "c5", DocumentID: "doc-1", Level: 2, Embedding: []float32{0.1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.chunk.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr && err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestVerifyLink_Valid(t *testing.T) {
	parent := &Chunk{ID: "p1", DocumentID: "doc-1", Level: 1, ChildIDs: []string{"c1", "c2"}}
	child := &Chunk{ID: "c1", DocumentID: "doc-1", Level: 0, ParentID: "p1"}

	if err := VerifyLink(child, parent); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestVerifyLink_Violations(t *testing.T) {
	tests := []struct {
		name   string
		child  *Chunk
		parent *Chunk
	}{
		{
			name:   "wrong parent reference",
			child:  &Chunk{ID: "c1", DocumentID: "doc-1", Level: 0, ParentID: "other"},
			parent: &Chunk{ID: "p1", DocumentID: "doc-1", Level: 1, ChildIDs: []string{"c1"}},
		},
		{
			name:   "different document",
			child:  &Chunk{ID: "c1", DocumentID: "doc-1", Level: 0, ParentID: "p1"},
			parent: &Chunk{ID: "p1", DocumentID: "doc-2", Level: 1, ChildIDs: []string{"c1"}},
		},
		{
			name:   "level not exactly one up",
			child:  &Chunk{ID: "c1", DocumentID: "doc-1", Level: 0, ParentID: "p1"},
			parent: &Chunk{ID: "p1", DocumentID: "doc-1", Level: 2, ChildIDs: []string{"c1"}},
		},
		{
			name:   "parent does not list child",
			child:  &Chunk{ID: "c1", DocumentID: "doc-1", Level: 0, ParentID: "p1"},
			parent: &Chunk{ID: "p1", DocumentID: "doc-1", Level: 1, ChildIDs: []string{"c2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyLink(tt.child, tt.parent)
			if err == nil {
				t.Fatal("expected consistency error, got nil")
			}
			if !errors.Is(err, ErrConsistency) {
				t.Errorf("expected ErrConsistency, got %v", err)
			}
		})
	}
}
