package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore implements driven.ChunkStore using PostgreSQL.
// The chunk hierarchy is ingested externally; this store only reads it.
// Embeddings live in the search index, not here.
type ChunkStore struct {
	db *DB
}

// NewChunkStore creates a new ChunkStore
func NewChunkStore(db *DB) *ChunkStore {
	return &ChunkStore{db: db}
}

const chunkColumns = `id, document_id, text, token_count, level,
	COALESCE(parent_id, ''), child_ids, COALESCE(parent_window, ''),
	COALESCE(section, ''), chapter, part`

// Get retrieves a chunk by id
func (s *ChunkStore) Get(ctx context.Context, id string) (*domain.Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE id = $1`

	chunk, err := scanChunk(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chunk: %w", err)
	}
	return chunk, nil
}

// GetMany retrieves chunks for the given ids, preserving input order.
// Unknown ids are silently omitted.
func (s *ChunkStore) GetMany(ctx context.Context, ids []string) ([]*domain.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE id = ANY($1)`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get chunks: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*domain.Chunk, len(ids))
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		byID[chunk.ID] = chunk
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	ordered := make([]*domain.Chunk, 0, len(ids))
	for _, id := range ids {
		if chunk, ok := byID[id]; ok {
			ordered = append(ordered, chunk)
		}
	}
	return ordered, nil
}

// Children retrieves a chunk's direct children in the parent's stored order
func (s *ChunkStore) Children(ctx context.Context, id string) ([]*domain.Chunk, error) {
	parent, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.GetMany(ctx, parent.ChildIDs)
}

// scanner covers both sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanChunk(row scanner) (*domain.Chunk, error) {
	var chunk domain.Chunk
	err := row.Scan(
		&chunk.ID,
		&chunk.DocumentID,
		&chunk.Text,
		&chunk.TokenCount,
		&chunk.Level,
		&chunk.ParentID,
		pq.Array(&chunk.ChildIDs),
		&chunk.ParentWindow,
		&chunk.Section,
		&chunk.Chapter,
		&chunk.Part,
	)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}
