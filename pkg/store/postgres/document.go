package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docuforge/docuforge/pkg/domain"
)

var _ domain.DocumentStore = (*DocumentRepository)(nil)

// DocumentRepository persists documents in PostgreSQL. Collaborators,
// signature state and version history are JSONB columns of the document
// row, so every mutation is a single-row write guarded by the revision
// stamp.
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a document repository backed by the pool
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, title, type, category, content, status, creator_id,
	metadata, collaborators, signature, history, revision, created_at, updated_at`

type documentJSON struct {
	metadata      []byte
	collaborators []byte
	signature     []byte
	history       []byte
}

func encodeDocument(d *domain.Document) (documentJSON, error) {
	var enc documentJSON
	var err error
	if enc.metadata, err = json.Marshal(d.Metadata); err != nil {
		return enc, fmt.Errorf("failed to encode metadata: %w", err)
	}
	if enc.collaborators, err = json.Marshal(d.Collaborators); err != nil {
		return enc, fmt.Errorf("failed to encode collaborators: %w", err)
	}
	if enc.signature, err = json.Marshal(d.Signature); err != nil {
		return enc, fmt.Errorf("failed to encode signature: %w", err)
	}
	if enc.history, err = json.Marshal(d.History); err != nil {
		return enc, fmt.Errorf("failed to encode history: %w", err)
	}
	return enc, nil
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var d domain.Document
	var metadata, collaborators, signature, history []byte

	err := row.Scan(
		&d.ID, &d.Title, &d.Type, &d.Category, &d.Content, &d.Status, &d.CreatorID,
		&metadata, &collaborators, &signature, &history,
		&d.Revision, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metadata, &d.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if err := json.Unmarshal(collaborators, &d.Collaborators); err != nil {
		return nil, fmt.Errorf("failed to decode collaborators: %w", err)
	}
	if err := json.Unmarshal(signature, &d.Signature); err != nil {
		return nil, fmt.Errorf("failed to decode signature: %w", err)
	}
	if err := json.Unmarshal(history, &d.History); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return &d, nil
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	enc, err := encodeDocument(d)
	if err != nil {
		return err
	}

	query := `INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = r.db.Exec(ctx, query,
		d.ID, d.Title, d.Type, d.Category, d.Content, d.Status, d.CreatorID,
		enc.metadata, enc.collaborators, enc.signature, enc.history,
		d.Revision, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	d, err := scanDocument(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("document")
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return d, nil
}

// Update writes the document only when the stored revision still matches
// the revision the caller read, then bumps it. A stale revision means a
// concurrent writer won; the caller gets a conflict and must re-read.
func (r *DocumentRepository) Update(ctx context.Context, d *domain.Document) error {
	enc, err := encodeDocument(d)
	if err != nil {
		return err
	}

	query := `UPDATE documents SET
		title = $2, type = $3, category = $4, content = $5, status = $6,
		metadata = $7, collaborators = $8, signature = $9, history = $10,
		revision = revision + 1, updated_at = $11
		WHERE id = $1 AND revision = $12`

	tag, err := r.db.Exec(ctx, query,
		d.ID, d.Title, d.Type, d.Category, d.Content, d.Status,
		enc.metadata, enc.collaborators, enc.signature, enc.history,
		d.UpdatedAt, d.Revision,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing row from a stale revision.
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM documents WHERE id = $1)`, d.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check document existence: %w", err)
		}
		if !exists {
			return domain.NewNotFoundError("document")
		}
		return domain.NewConflictError("document was modified by another request")
	}
	d.Revision++
	return nil
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID uuid.UUID, f domain.DocumentFilter) ([]*domain.Document, int, error) {
	membership, err := json.Marshal([]map[string]string{{"user_id": userID.String()}})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode membership filter: %w", err)
	}
	return r.list(ctx, f, "(creator_id = $1 OR collaborators @> $2::jsonb)", []any{userID, membership})
}

func (r *DocumentRepository) ListAll(ctx context.Context, f domain.DocumentFilter) ([]*domain.Document, int, error) {
	return r.list(ctx, f, "TRUE", nil)
}

func (r *DocumentRepository) list(ctx context.Context, f domain.DocumentFilter, baseCond string, baseArgs []any) ([]*domain.Document, int, error) {
	where := []string{baseCond}
	args := append([]any{}, baseArgs...)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Type != "" {
		where = append(where, "type = "+arg(f.Type))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.Search != "" {
		where = append(where, "lower(title) LIKE "+arg("%"+strings.ToLower(f.Search)+"%"))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM documents WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE ` + cond +
		` ORDER BY updated_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, total, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("document")
	}
	return nil
}
