package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NetPranav/Vyom/internal/domain"
	"github.com/NetPranav/Vyom/internal/domain/task"
)

// Store implements database.Store using PostgreSQL.
//
// Transitions are single conditional UPDATEs: the WHERE clause re-checks the
// expected prior state, so the check-then-mutate sequence is atomic at the
// row level and concurrent transitions on the same task serialize in the
// database. A transition that matches no row lost the race and surfaces as
// domain.ErrInvalidState.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// taskColumns is the SELECT/RETURNING column list for tasks queries.
const taskColumns = `id, owner_id, COALESCE(assignee_id, ''), status, title, description, category, priority,
	budget, location, deadline, contact_email, contact_phone, image_url, submitted, rejected_assignees,
	created_at, assigned_at, submitted_at, resolved_at`

func scanTask(row scannable) (task.Task, error) {
	var t task.Task
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.AssigneeID, &t.Status, &t.Title, &t.Description, &t.Category, &t.Priority,
		&t.Budget, &t.Location, &t.Deadline, &t.ContactEmail, &t.ContactPhone, &t.ImageURL, &t.Submitted,
		&t.RejectedAssignees,
		&t.CreatedAt, &t.AssignedAt, &t.SubmittedAt, &t.ResolvedAt,
	)
	return t, err
}

// --- Tasks ---

func (s *Store) CreateTask(ctx context.Context, ownerID string, req task.CreateRequest) (*task.Task, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO tasks (owner_id, title, description, category, priority, budget, location, deadline, contact_email, contact_phone, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+taskColumns,
		ownerID, req.Title, req.Description, req.Category, priorityOrDefault(req.Priority), req.Budget,
		req.Location, req.Deadline, req.ContactEmail, req.ContactPhone, req.ImageURL)

	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &t, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*task.Task, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isBadUUID(err) {
			return nil, fmt.Errorf("get task %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return &t, nil
}

func (s *Store) ListOpenTasks(ctx context.Context, search string) ([]task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE status = 'open'`
	args := []any{}
	if search != "" {
		query += ` AND (title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')`
		args = append(args, search)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return orEmpty(tasks), rows.Err()
}

// --- Transitions ---

func (s *Store) ClaimTask(ctx context.Context, id, claimantID string) (*task.Task, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE tasks
		 SET status = 'assigned', assignee_id = $2, assigned_at = now()
		 WHERE id = $1 AND status = 'open'
		 RETURNING `+taskColumns,
		id, claimantID)

	t, err := scanTask(row)
	if err != nil {
		if isBadUUID(err) {
			return nil, fmt.Errorf("claim task %s: %w", id, domain.ErrNotFound)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("claim task %s: %w", id, domain.ErrInvalidState)
		}
		return nil, fmt.Errorf("claim task %s: %w", id, err)
	}
	return &t, nil
}

func (s *Store) SubmitTask(ctx context.Context, id, assigneeID string) (*task.Task, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE tasks
		 SET status = 'in_review', submitted = TRUE, submitted_at = now()
		 WHERE id = $1 AND status = 'assigned' AND assignee_id = $2
		 RETURNING `+taskColumns,
		id, assigneeID)

	t, err := scanTask(row)
	if err != nil {
		if isBadUUID(err) {
			return nil, fmt.Errorf("submit task %s: %w", id, domain.ErrNotFound)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("submit task %s: %w", id, domain.ErrInvalidState)
		}
		return nil, fmt.Errorf("submit task %s: %w", id, err)
	}
	return &t, nil
}

func (s *Store) CompleteTask(ctx context.Context, id string) (*task.Task, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE tasks
		 SET status = 'completed', resolved_at = now()
		 WHERE id = $1 AND status = 'in_review'
		 RETURNING `+taskColumns,
		id)

	t, err := scanTask(row)
	if err != nil {
		if isBadUUID(err) {
			return nil, fmt.Errorf("complete task %s: %w", id, domain.ErrNotFound)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("complete task %s: %w", id, domain.ErrInvalidState)
		}
		return nil, fmt.Errorf("complete task %s: %w", id, err)
	}
	return &t, nil
}

func (s *Store) ReopenTask(ctx context.Context, id, rejectedAssigneeID string) (*task.Task, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE tasks
		 SET status = 'open', assignee_id = NULL, submitted = FALSE,
		     assigned_at = NULL, submitted_at = NULL, resolved_at = NULL,
		     rejected_assignees = array_append(rejected_assignees, $2)
		 WHERE id = $1 AND status = 'in_review' AND assignee_id = $2
		 RETURNING `+taskColumns,
		id, rejectedAssigneeID)

	t, err := scanTask(row)
	if err != nil {
		if isBadUUID(err) {
			return nil, fmt.Errorf("reopen task %s: %w", id, domain.ErrNotFound)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("reopen task %s: %w", id, domain.ErrInvalidState)
		}
		return nil, fmt.Errorf("reopen task %s: %w", id, err)
	}
	return &t, nil
}

func priorityOrDefault(p task.Priority) task.Priority {
	if p == "" {
		return task.PriorityMedium
	}
	return p
}
