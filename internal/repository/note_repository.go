package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jabana-gov/case-service/internal/domain"
)

// NoteRepository manages the append-only note thread of a case. There is
// deliberately no update or delete.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.CaseNote) error
	ListByCase(ctx context.Context, caseID string) ([]domain.CaseNote, error)
}

type noteRepository struct {
	pool *pgxpool.Pool
}

// NewNoteRepository builds the repository.
func NewNoteRepository(pool *pgxpool.Pool) NoteRepository {
	return &noteRepository{pool: pool}
}

func (r *noteRepository) Create(ctx context.Context, note *domain.CaseNote) error {
	const query = `
        INSERT INTO case_notes (case_id, author_staff_id, body)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		note.CaseID,
		note.AuthorID,
		note.Body,
	).Scan(&note.ID, &note.CreatedAt)
}

func (r *noteRepository) ListByCase(ctx context.Context, caseID string) ([]domain.CaseNote, error) {
	const query = `
        SELECT n.id, n.case_id, n.author_staff_id, COALESCE(s.name, ''), n.body, n.created_at
        FROM case_notes n
        LEFT JOIN staff_members s ON s.id = n.author_staff_id
        WHERE n.case_id=$1 ORDER BY n.created_at ASC, n.id ASC`
	rows, err := r.pool.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CaseNote
	for rows.Next() {
		var note domain.CaseNote
		if err := rows.Scan(
			&note.ID,
			&note.CaseID,
			&note.AuthorID,
			&note.AuthorName,
			&note.Body,
			&note.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	return result, rows.Err()
}
