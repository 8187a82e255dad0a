package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasktracker/internal/apperrors"
	"tasktracker/internal/models"

	"github.com/lib/pq"
)

const taskSelect = `
SELECT t.id, t.title, COALESCE(t.description, ''), t.status, t.priority, t.due_date,
       t.is_completed, t.completed_at, t.created_by, t.assigned_to, t.created_at, t.updated_at,
       c.name, c.email, a.name, a.email
FROM tasks t
JOIN users c ON c.id = t.created_by
LEFT JOIN users a ON a.id = t.assigned_to`

var sortColumns = map[models.SortField]string{
	models.SortCreatedAt:   "t.created_at",
	models.SortUpdatedAt:   "t.updated_at",
	models.SortTitle:       "t.title",
	models.SortStatus:      rankCase("t.status", models.TaskStatuses),
	models.SortPriority:    rankCase("t.priority", models.TaskPriorities),
	models.SortDueDate:     "t.due_date",
	models.SortCompletedAt: "t.completed_at",
}

// rankCase orders an enum column by declaration order instead of alphabetically.
// Unknown values sort last.
func rankCase[T ~string](column string, values []T) string {
	var b strings.Builder
	b.WriteString("CASE " + column)
	for i, v := range values {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", v, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(values))
	return b.String()
}

func orderBy(sort models.TaskSort) string {
	column, ok := sortColumns[sort.Field]
	if !ok {
		column = sortColumns[models.DefaultTaskSort.Field]
	}
	direction := "ASC"
	if sort.Desc {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, t.id", column, direction)
}

type PostgresTaskRepository struct {
	db *sql.DB
}

func NewPostgresTaskRepository(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

func scanTask(row interface{ Scan(...any) error }) (models.Task, error) {
	var (
		t                          models.Task
		status, priority           string
		dueDate, completedAt       sql.NullTime
		assignedTo                 sql.NullString
		creatorName, creatorMail   string
		assigneeName, assigneeMail sql.NullString
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &status, &priority, &dueDate,
		&t.IsCompleted, &completedAt, &t.CreatedBy, &assignedTo, &t.CreatedAt, &t.UpdatedAt,
		&creatorName, &creatorMail, &assigneeName, &assigneeMail,
	)
	if err != nil {
		return models.Task{}, err
	}
	t.Status = models.TaskStatus(status)
	t.Priority = models.TaskPriority(priority)
	t.DueDate = timePtr(dueDate)
	t.CompletedAt = timePtr(completedAt)
	t.Creator = &models.UserSummary{ID: t.CreatedBy, Name: creatorName, Email: creatorMail}
	if assignedTo.Valid {
		id := assignedTo.String
		t.AssignedTo = &id
		if assigneeName.Valid {
			t.Assignee = &models.UserSummary{ID: id, Name: assigneeName.String, Email: assigneeMail.String}
		}
	}
	return t, nil
}

func (r *PostgresTaskRepository) Create(ctx context.Context, task models.Task) (models.Task, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, status, priority, due_date, is_completed, completed_at,
		                    created_by, assigned_to, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		task.ID, task.Title, nullString(task.Description), string(task.Status), string(task.Priority),
		nullTime(task.DueDate), task.IsCompleted, nullTime(task.CompletedAt),
		task.CreatedBy, nullStringPtr(task.AssignedTo), task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return models.Task{}, translateTaskError(err)
	}
	return r.GetByID(ctx, task.ID)
}

func (r *PostgresTaskRepository) GetByID(ctx context.Context, id string) (models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, taskSelect+" WHERE t.id = $1", id))
	if err != nil {
		return models.Task{}, translateTaskError(err)
	}
	return t, nil
}

func (r *PostgresTaskRepository) List(ctx context.Context, filter models.TaskFilter, sort models.TaskSort) ([]models.Task, error) {
	where, args := buildTaskWhere(filter)
	query := taskSelect + where + orderBy(sort)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return []models.Task{}, nil
		}
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *PostgresTaskRepository) Count(ctx context.Context, filter models.TaskFilter) (int, error) {
	where, args := buildTaskWhere(filter)
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks t"+where, args...).Scan(&n); err != nil {
		if isInvalidUUID(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (r *PostgresTaskRepository) Update(ctx context.Context, task models.Task) (models.Task, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, status = $3, priority = $4, due_date = $5,
		     is_completed = $6, completed_at = $7, assigned_to = $8, updated_at = $9
		 WHERE id = $10`,
		task.Title, nullString(task.Description), string(task.Status), string(task.Priority), nullTime(task.DueDate),
		task.IsCompleted, nullTime(task.CompletedAt), nullStringPtr(task.AssignedTo), time.Now().UTC(), task.ID,
	)
	if err != nil {
		return models.Task{}, translateTaskError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Task{}, apperrors.NotFound("Task not found")
	}
	return r.GetByID(ctx, task.ID)
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return translateTaskError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("Task not found")
	}
	return nil
}

// buildTaskWhere turns a filter into a WHERE clause with positional args.
// Every clause is ANDed; the search term is an OR across title and description.
func buildTaskWhere(f models.TaskFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(format string, v any) {
		args = append(args, v)
		n := len(args)
		clauses = append(clauses, strings.ReplaceAll(format, "?", fmt.Sprintf("$%d", n)))
	}

	if f.Status != nil {
		add("t.status = ?", string(*f.Status))
	}
	if f.Priority != nil {
		add("t.priority = ?", string(*f.Priority))
	}
	if f.IsCompleted != nil {
		add("t.is_completed = ?", *f.IsCompleted)
	}
	if f.AssignedTo != nil {
		add("t.assigned_to = ?", *f.AssignedTo)
	}
	if f.CreatedBy != nil {
		add("t.created_by = ?", *f.CreatedBy)
	}
	if f.Search != "" {
		add("(t.title ILIKE ? OR t.description ILIKE ?)", "%"+escapeLike(f.Search)+"%")
	}
	if f.VisibleTo != "" {
		add("(t.created_by = ? OR t.assigned_to = ?)", f.VisibleTo)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func translateTaskError(err error) error {
	if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
		return apperrors.NotFound("Task not found")
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
		return apperrors.Reference("Referenced user not found")
	}
	return fmt.Errorf("tasks: %w", err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside ILIKE patterns.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
