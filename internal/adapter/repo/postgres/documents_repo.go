package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/evaluasi/cv-evaluator/internal/domain"
)

// DocumentRepo persists and loads uploaded document texts.
type DocumentRepo struct{ Pool PgxPool }

// NewDocumentRepo constructs a DocumentRepo with the given pool.
func NewDocumentRepo(p PgxPool) *DocumentRepo { return &DocumentRepo{Pool: p} }

// Create inserts a new document and returns its id.
func (r *DocumentRepo) Create(ctx domain.Context, d domain.Document) (string, error) {
	tracer := otel.Tracer("repo.documents")
	ctx, span := tracer.Start(ctx, "documents.Create")
	defer span.End()
	id := d.ID
	if id == "" {
		id = uuid.New().String()
	}
	q := `INSERT INTO documents (id, type, text, filename, mime, size, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.Pool.Exec(ctx, q, id, d.Type, d.Text, d.Filename, d.MIME, d.Size, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=document.create: %w", err)
	}
	return id, nil
}

// Get loads a document by id.
func (r *DocumentRepo) Get(ctx domain.Context, id string) (domain.Document, error) {
	tracer := otel.Tracer("repo.documents")
	ctx, span := tracer.Start(ctx, "documents.Get")
	defer span.End()
	q := `SELECT id, type, text, filename, mime, size, created_at FROM documents WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	var d domain.Document
	if err := row.Scan(&d.ID, &d.Type, &d.Text, &d.Filename, &d.MIME, &d.Size, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Document{}, fmt.Errorf("op=document.get: %w", domain.ErrNotFound)
		}
		return domain.Document{}, fmt.Errorf("op=document.get: %w", err)
	}
	return d, nil
}

// GetText loads only the plain text of a document by id.
func (r *DocumentRepo) GetText(ctx domain.Context, id string) (string, error) {
	tracer := otel.Tracer("repo.documents")
	ctx, span := tracer.Start(ctx, "documents.GetText")
	defer span.End()
	q := `SELECT text FROM documents WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	var text string
	if err := row.Scan(&text); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("op=document.get_text: %w", domain.ErrNotFound)
		}
		return "", fmt.Errorf("op=document.get_text: %w", err)
	}
	return text, nil
}
