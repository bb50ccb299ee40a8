package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Khyle1o1/student-management-system-sub000/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamNameConflict      = errors.New("team name conflict")
	ErrTeamAlreadyRegistered = errors.New("team already registered for tournament")
	ErrTeamNotRegistered     = errors.New("team not registered for tournament")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error
	Delete(ctx context.Context, id int) error
	Register(ctx context.Context, exec SQLExecutor, tournamentID, teamID int) error
	Unregister(ctx context.Context, exec SQLExecutor, tournamentID, teamID int) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (name, department, color)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, team.Name, team.Department, team.Color).
		Scan(&team.ID, &team.CreatedAt)
	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, name, department, color, logo_key, created_at
		FROM teams WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.Department,
		&team.Color,
		&team.LogoKey,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team by id %d: %w", id, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]models.Team, error) {
	query := `
		SELECT id, name, department, color, logo_key, created_at
		FROM teams ORDER BY name ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var team models.Team
		if scanErr := rows.Scan(
			&team.ID,
			&team.Name,
			&team.Department,
			&team.Color,
			&team.LogoKey,
			&team.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", scanErr)
		}
		teams = append(teams, team)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team rows iteration: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `UPDATE teams SET name = $1, department = $2, color = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, team.Name, team.Department, team.Color, team.ID)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error {
	query := `UPDATE teams SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, teamID)
	if err != nil {
		return fmt.Errorf("failed to update logo key for team %d: %w", teamID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM teams WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

// Register appends the team to the tournament registry. registration_order
// defines the default seed order until the organizer randomizes.
func (r *postgresTeamRepository) Register(ctx context.Context, exec SQLExecutor, tournamentID, teamID int) error {
	query := `
		INSERT INTO tournament_teams (tournament_id, team_id, registration_order)
		VALUES ($1, $2, (
			SELECT COALESCE(MAX(registration_order), 0) + 1
			FROM tournament_teams WHERE tournament_id = $1
		))`

	_, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID, teamID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return ErrTeamAlreadyRegistered
			case "foreign_key_violation":
				if pqErr.Constraint == "tournament_teams_tournament_id_fkey" {
					return ErrTournamentNotFound
				}
				return ErrTeamNotFound
			}
		}
		return fmt.Errorf("failed to register team %d for tournament %d: %w", teamID, tournamentID, err)
	}
	return nil
}

func (r *postgresTeamRepository) Unregister(ctx context.Context, exec SQLExecutor, tournamentID, teamID int) error {
	query := `DELETE FROM tournament_teams WHERE tournament_id = $1 AND team_id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID, teamID)
	if err != nil {
		return fmt.Errorf("failed to unregister team %d from tournament %d: %w", teamID, tournamentID, err)
	}
	return checkAffectedRows(result, ErrTeamNotRegistered)
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	query := `
		SELECT t.id, t.name, t.department, t.color, t.logo_key, t.created_at
		FROM teams t
		JOIN tournament_teams tt ON tt.team_id = t.id
		WHERE tt.tournament_id = $1
		ORDER BY tt.registration_order ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team := &models.Team{}
		if scanErr := rows.Scan(
			&team.ID,
			&team.Name,
			&team.Department,
			&team.Color,
			&team.LogoKey,
			&team.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", scanErr)
		}
		teams = append(teams, team)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team rows iteration: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code.Name() == "unique_violation" {
			return ErrTeamNameConflict
		}
	}
	return fmt.Errorf("team repository error: %w", err)
}
