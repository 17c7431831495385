// Package teams предоставляет доступ к хранению команд
package teams

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repository предоставляет доступ к хранению команд
type Repository struct {
	db *sql.DB
}

// NewRepository создает новый репозиторий команд
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create создает команду и привязывает владельца к ней в одной транзакции
func (r *Repository) Create(ctx context.Context, team *Team) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO teams (id, name, first_teammate)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err = tx.QueryRowContext(ctx, query, team.ID, team.Name, team.FirstTeammate).
		Scan(&team.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrTeamNameExists
		}
		return fmt.Errorf("failed to create team: %w", err)
	}

	// Условие team_id IS NULL закрывает гонку двух конкурентных запросов,
	// привязывающих одного студента к разным командам
	if err := attachUser(ctx, tx, team.FirstTeammate, team.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit team creation: %w", err)
	}

	return nil
}

// GetByID получает команду по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	query := `
		SELECT id, name, first_teammate, second_teammate, created_at
		FROM teams
		WHERE id = $1`

	team := &Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.FirstTeammate,
		&team.SecondTeammate,
		&team.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team by ID: %w", err)
	}

	return team, nil
}

// List возвращает все команды
func (r *Repository) List(ctx context.Context) ([]*Team, error) {
	query, args, err := psql.
		Select("id", "name", "first_teammate", "second_teammate", "created_at").
		From("teams").
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build teams query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var result []*Team
	for rows.Next() {
		team := &Team{}
		err := rows.Scan(&team.ID, &team.Name, &team.FirstTeammate, &team.SecondTeammate, &team.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		result = append(result, team)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// attachUser привязывает студента к команде, только если он еще свободен.
// Каждый запрос загружает своего пользователя до начала транзакции, поэтому
// проверка team_id в сервисе не защищает от конкурентного запроса того же
// студента; условие в UPDATE делает привязку атомарной
func attachUser(ctx context.Context, tx *sql.Tx, userID, teamID uuid.UUID) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE users SET team_id = $2 WHERE id = $1 AND team_id IS NULL`, userID, teamID)
	if err != nil {
		return fmt.Errorf("failed to attach user to team: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to attach user to team: %w", err)
	}
	if affected == 0 {
		return ErrUserAlreadyInTeam
	}

	return nil
}

// lockTeam загружает команду под блокировкой строки (FOR UPDATE),
// сериализуя конкурентные изменения состава одной команды
func lockTeam(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*Team, error) {
	query := `
		SELECT id, name, first_teammate, second_teammate, created_at
		FROM teams
		WHERE id = $1
		FOR UPDATE`

	team := &Team{}
	err := tx.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.FirstTeammate,
		&team.SecondTeammate,
		&team.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to lock team: %w", err)
	}

	return team, nil
}

// AddMember добавляет студента во второй слот команды
func (r *Repository) AddMember(ctx context.Context, teamID, userID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	team, err := lockTeam(ctx, tx, teamID)
	if err != nil {
		return err
	}

	if err := team.AddMember(userID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE teams SET second_teammate = $2 WHERE id = $1`, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to fill second slot: %w", err)
	}

	if err := attachUser(ctx, tx, userID, teamID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit team join: %w", err)
	}

	return nil
}

// RemoveMember убирает студента из команды: освобождает слот, повышает
// второго участника до первого слота либо удаляет опустевшую команду
func (r *Repository) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	team, err := lockTeam(ctx, tx, teamID)
	if err != nil {
		return err
	}

	dissolved, err := team.RemoveMember(userID)
	if err != nil {
		return err
	}

	// Сначала отвязываем уходящего, чтобы удаление команды не упёрлось в FK
	_, err = tx.ExecContext(ctx,
		`UPDATE users SET team_id = NULL WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to detach user from team: %w", err)
	}

	if dissolved {
		_, err = tx.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
		if err != nil {
			// projects.assigned_team запрещает удалять назначенную команду
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
				return ErrTeamAssigned
			}
			return fmt.Errorf("failed to delete empty team: %w", err)
		}
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE teams SET first_teammate = $2, second_teammate = $3 WHERE id = $1`,
			teamID, team.FirstTeammate, team.SecondTeammate)
		if err != nil {
			return fmt.Errorf("failed to update team slots: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit team leave: %w", err)
	}

	return nil
}
