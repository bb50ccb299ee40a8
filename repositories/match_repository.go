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
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchTeamInvalid       = errors.New("match team conflict or invalid")
	ErrMatchTemplateKeyTaken  = errors.New("match template key already exists for tournament")
)

const matchColumns = `
	id, tournament_id, template_key, bracket_stage, round, stage_round, match_number,
	display_label, team1_id, team2_id, winner_id, team1_score, team2_score, status,
	is_bye, is_third_place, next_match_id, next_match_position,
	loser_next_match_id, loser_next_match_position, scheduled_at, created_at`

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	UpdateAdvancement(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdateState(ctx context.Context, exec SQLExecutor, match *models.Match) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, template_key, bracket_stage, round, stage_round, match_number,
			 display_label, team1_id, team2_id, winner_id, team1_score, team2_score, status,
			 is_bye, is_third_place, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		match.TournamentID,
		match.TemplateKey,
		match.BracketStage,
		match.Round,
		match.StageRound,
		match.MatchNumber,
		match.DisplayLabel,
		match.Team1ID,
		match.Team2ID,
		match.WinnerID,
		match.Team1Score,
		match.Team2Score,
		match.Status,
		match.IsBye,
		match.IsThirdPlace,
		match.ScheduledAt,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := r.scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1
		ORDER BY round ASC, bracket_stage ASC, stage_round ASC, match_number ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateAdvancement(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		UPDATE matches
		SET next_match_id = $1, next_match_position = $2,
		    loser_next_match_id = $3, loser_next_match_position = $4
		WHERE id = $5`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		match.NextMatchID,
		match.NextMatchPosition,
		match.LoserNextMatchID,
		match.LoserNextMatchPosition,
		match.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateState(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		UPDATE matches
		SET team1_id = $1, team2_id = $2, winner_id = $3,
		    team1_score = $4, team2_score = $5, status = $6, scheduled_at = $7
		WHERE id = $8`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		match.Team1ID,
		match.Team2ID,
		match.WinnerID,
		match.Team1Score,
		match.Team2Score,
		match.Status,
		match.ScheduledAt,
		match.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	query := `DELETE FROM matches WHERE tournament_id = $1`
	_, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete matches for tournament %d: %w", tournamentID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresMatchRepository) scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	err := row.Scan(
		&match.ID,
		&match.TournamentID,
		&match.TemplateKey,
		&match.BracketStage,
		&match.Round,
		&match.StageRound,
		&match.MatchNumber,
		&match.DisplayLabel,
		&match.Team1ID,
		&match.Team2ID,
		&match.WinnerID,
		&match.Team1Score,
		&match.Team2Score,
		&match.Status,
		&match.IsBye,
		&match.IsThirdPlace,
		&match.NextMatchID,
		&match.NextMatchPosition,
		&match.LoserNextMatchID,
		&match.LoserNextMatchPosition,
		&match.ScheduledAt,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			if pqErr.Constraint == "matches_tournament_id_template_key_key" {
				return ErrMatchTemplateKeyTaken
			}
		case "foreign_key_violation":
			switch pqErr.Constraint {
			case "matches_tournament_id_fkey":
				return ErrMatchTournamentInvalid
			case "matches_team1_id_fkey", "matches_team2_id_fkey", "matches_winner_id_fkey":
				return ErrMatchTeamInvalid
			}
		}
	}
	return fmt.Errorf("match repository error: %w", err)
}
