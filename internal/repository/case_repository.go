package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jabana-gov/case-service/internal/domain"
)

// ErrVersionConflict is returned by Update when the stored case version no
// longer matches the one the caller read. The caller should refetch and
// retry.
var ErrVersionConflict = errors.New("case version conflict")

// CaseFilter captures list parameters for staff and citizen views. Search
// matches reference, category and citizen name case-insensitively.
// A zero Limit falls back to 20; a negative Limit disables pagination, which
// reporting relies on to scan a whole period.
type CaseFilter struct {
	CitizenID   *string
	AssigneeID  *string
	Status      *domain.CaseStatus
	Priority    *domain.CasePriority
	Type        *domain.CaseType
	Search      *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// CaseRepository encapsulates case persistence.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	// Update persists all mutable fields with a compare-and-swap on Version.
	// Returns ErrVersionConflict when the row exists at a different version
	// and pgx.ErrNoRows when the case does not exist.
	Update(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	GetByReference(ctx context.Context, reference string) (*domain.Case, error)
	ListWithFilter(ctx context.Context, filter CaseFilter) ([]domain.Case, error)
	CountByStatus(ctx context.Context) (map[domain.CaseStatus]int, error)
}

type caseRepository struct {
	pool *pgxpool.Pool
}

// NewCaseRepository instantiates the repository.
func NewCaseRepository(pool *pgxpool.Pool) CaseRepository {
	return &caseRepository{pool: pool}
}

const caseColumns = `c.id, c.reference, c.case_type, c.category, c.description, c.status, c.priority,
    c.citizen_user_id, c.citizen_name, c.citizen_phone, c.citizen_email, c.location,
    c.assignee_staff_id, s.name, c.version, c.created_at, c.updated_at, c.resolved_at`

// caseFrom resolves the assignee display name at read time so views never
// have to look it up separately.
const caseFrom = `cases c LEFT JOIN staff_members s ON s.id = c.assignee_staff_id`

func (r *caseRepository) Create(ctx context.Context, c *domain.Case) error {
	const query = `
        INSERT INTO cases (reference, case_type, category, description, status, priority,
            citizen_user_id, citizen_name, citizen_phone, citizen_email, location, assignee_staff_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, version, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		c.Reference,
		c.Type,
		c.Category,
		c.Description,
		c.Status,
		c.Priority,
		c.CitizenID,
		c.CitizenName,
		c.CitizenPhone,
		c.CitizenEmail,
		c.Location,
		c.AssigneeID,
	).Scan(&c.ID, &c.Version, &c.CreatedAt, &c.UpdatedAt)
}

func (r *caseRepository) Update(ctx context.Context, c *domain.Case) error {
	const query = `
        UPDATE cases SET category=$1, description=$2, status=$3, priority=$4,
            location=$5, assignee_staff_id=$6, resolved_at=$7,
            version=version+1, updated_at=NOW()
        WHERE id=$8 AND version=$9
        RETURNING version, updated_at`
	err := r.pool.QueryRow(ctx, query,
		c.Category,
		c.Description,
		c.Status,
		c.Priority,
		c.Location,
		c.AssigneeID,
		c.ResolvedAt,
		c.ID,
		c.Version,
	).Scan(&c.Version, &c.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	// No row matched id+version: distinguish a missing case from a lost race.
	var exists bool
	if checkErr := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM cases WHERE id=$1)`, c.ID).Scan(&exists); checkErr != nil {
		return checkErr
	}
	if exists {
		return ErrVersionConflict
	}
	return pgx.ErrNoRows
}

func (r *caseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE c.id=$1`, caseColumns, caseFrom)
	return r.fetchSingle(ctx, query, id)
}

func (r *caseRepository) GetByReference(ctx context.Context, reference string) (*domain.Case, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE UPPER(c.reference)=UPPER($1)`, caseColumns, caseFrom)
	return r.fetchSingle(ctx, query, reference)
}

func (r *caseRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Case, error) {
	var c domain.Case
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&c.ID,
		&c.Reference,
		&c.Type,
		&c.Category,
		&c.Description,
		&c.Status,
		&c.Priority,
		&c.CitizenID,
		&c.CitizenName,
		&c.CitizenPhone,
		&c.CitizenEmail,
		&c.Location,
		&c.AssigneeID,
		&c.AssigneeName,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caseRepository) ListWithFilter(ctx context.Context, filter CaseFilter) ([]domain.Case, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CitizenID != nil {
		args = append(args, *filter.CitizenID)
		clauses = append(clauses, fmt.Sprintf("c.citizen_user_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("c.assignee_staff_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("c.status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("c.priority=$%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("c.case_type=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("c.created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("c.created_at <= $%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(c.reference) LIKE %s OR LOWER(c.category) LIKE %s OR LOWER(c.citizen_name) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	// Insertion order is the contract for list views; no view re-sorts.
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY c.created_at ASC, c.id ASC`,
		caseColumns, caseFrom, strings.Join(clauses, " AND "))
	switch {
	case filter.Limit > 0:
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	case filter.Limit == 0:
		query += fmt.Sprintf(" LIMIT 20 OFFSET %d", offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCases(rows)
}

func (r *caseRepository) CountByStatus(ctx context.Context) (map[domain.CaseStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM cases GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.CaseStatus]int)
	for rows.Next() {
		var status domain.CaseStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanCases(rows pgx.Rows) ([]domain.Case, error) {
	var result []domain.Case
	for rows.Next() {
		var c domain.Case
		if err := rows.Scan(
			&c.ID,
			&c.Reference,
			&c.Type,
			&c.Category,
			&c.Description,
			&c.Status,
			&c.Priority,
			&c.CitizenID,
			&c.CitizenName,
			&c.CitizenPhone,
			&c.CitizenEmail,
			&c.Location,
			&c.AssigneeID,
			&c.AssigneeName,
			&c.Version,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
