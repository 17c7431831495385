// Package projects предоставляет доступ к хранению проектов и очереди команд
package projects

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Ultrahd-dev/project-manager-app/backend/internal/users"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repository предоставляет доступ к хранению проектов
type Repository struct {
	db *sql.DB
}

// NewRepository создает новый репозиторий проектов
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create создает новый проект
func (r *Repository) Create(ctx context.Context, project *Project) error {
	query := `
		INSERT INTO projects (id, name, description, status, author, assigned_team)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.Status,
		project.Author,
		project.AssignedTeam).
		Scan(&project.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrProjectNameExists
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetByID получает проект по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	query := `
		SELECT id, name, description, status, author, assigned_team, created_at
		FROM projects
		WHERE id = $1`

	project := &Project{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.Status,
		&project.Author,
		&project.AssignedTeam,
		&project.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project by ID: %w", err)
	}

	return project, nil
}

// List возвращает проекты, при необходимости фильтруя по статусу
func (r *Repository) List(ctx context.Context, status Status) ([]*Project, error) {
	builder := psql.
		Select("id", "name", "description", "status", "author", "assigned_team", "created_at").
		From("projects").
		OrderBy("created_at")

	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build projects query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var result []*Project
	for rows.Next() {
		project := &Project{}
		err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.Description,
			&project.Status,
			&project.Author,
			&project.AssignedTeam,
			&project.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		result = append(result, project)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// Delete удаляет проект; условие в WHERE повторно проверяет, что команда
// не назначена, закрывая гонку с параллельным назначением
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM projects WHERE id = $1 AND assigned_team IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if affected == 0 {
		// Либо проекта нет, либо у него уже есть назначенная команда
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrProjectHasAssignedTeam
	}

	return nil
}

// QueueTeam ставит команду в очередь проекта. Уникальный индекс по team_id
// гарантирует на уровне БД, что команда стоит в очереди не более чем на
// один проект во всей системе
func (r *Repository) QueueTeam(ctx context.Context, projectID, teamID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO project_queue (project_id, team_id) VALUES ($1, $2)`, projectID, teamID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrTeamAlreadyQueued
		}
		return fmt.Errorf("failed to queue team: %w", err)
	}

	return nil
}

// DequeueTeam убирает команду из очереди проекта
func (r *Repository) DequeueTeam(ctx context.Context, projectID, teamID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM project_queue WHERE project_id = $1 AND team_id = $2`, projectID, teamID)
	if err != nil {
		return fmt.Errorf("failed to dequeue team: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to dequeue team: %w", err)
	}
	if affected == 0 {
		return ErrTeamNotQueued
	}

	return nil
}

// QueuedTeamIDs возвращает очередь проекта в порядке постановки
func (r *Repository) QueuedTeamIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT team_id FROM project_queue WHERE project_id = $1 ORDER BY queued_at, team_id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get queued teams: %w", err)
	}
	defer rows.Close()

	var teamIDs []uuid.UUID
	for rows.Next() {
		var teamID uuid.UUID
		if err := rows.Scan(&teamID); err != nil {
			return nil, fmt.Errorf("failed to scan team ID: %w", err)
		}
		teamIDs = append(teamIDs, teamID)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return teamIDs, nil
}

// Assign назначает проекту первую команду из очереди в одной транзакции:
// выбирает команду, очищает всю очередь и переводит участников назначенной
// команды в статус assigned
func (r *Repository) Assign(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Блокируем строку проекта, сериализуя конкурентные назначения
	var status Status
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM projects WHERE id = $1 FOR UPDATE`, projectID).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, ErrProjectNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to lock project: %w", err)
	}

	// Назначение необратимо: повторное назначение отклоняется
	if status == StatusAssigned {
		return uuid.Nil, ErrProjectHasAssignedTeam
	}

	// Детерминированный выбор: команда, вставшая в очередь раньше всех
	var teamID uuid.UUID
	err = tx.QueryRowContext(ctx,
		`SELECT team_id FROM project_queue WHERE project_id = $1 ORDER BY queued_at, team_id LIMIT 1`,
		projectID).Scan(&teamID)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, ErrNoTeamsQueued
		}
		return uuid.Nil, fmt.Errorf("failed to pick queued team: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE projects SET assigned_team = $2, status = $3 WHERE id = $1`,
		projectID, teamID, StatusAssigned)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to assign team: %w", err)
	}

	// Остальные команды из очереди выбывают, а не переносятся
	_, err = tx.ExecContext(ctx,
		`DELETE FROM project_queue WHERE project_id = $1`, projectID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to clear project queue: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET status = $2 WHERE team_id = $1`, teamID, users.StudentStatusAssigned)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to mark students assigned: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit assignment: %w", err)
	}

	return teamID, nil
}
