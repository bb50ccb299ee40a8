package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Khyle1o1/student-management-system-sub000/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrTournamentNameConflict  = errors.New("tournament name conflict for this category")
	ErrTournamentInUse         = errors.New("tournament is in use (teams/matches exist)")
	ErrRandomizeStateConflict  = errors.New("randomize state changed concurrently")
	ErrTournamentAlreadyLocked = errors.New("tournament seeding already locked")
)

type ListTournamentsFilter struct {
	Status   *models.TournamentStatus
	Category *string
	Limit    int
	Offset   int
}

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, t *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	UpdateLogoKey(ctx context.Context, tournamentID int, logoKey *string) error
	IncrementRandomizeCount(ctx context.Context, exec SQLExecutor, id int, expectedCount int) error
	LockSeeding(ctx context.Context, exec SQLExecutor, id int) error
	Delete(ctx context.Context, id int) error
	UpdateStatusesByDates(ctx context.Context, exec SQLExecutor, now time.Time) (started int64, err error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, category, bracket_type, status, with_third_place, grand_final_reset,
	randomize_locked, randomize_count, max_random_attempts, start_date, end_date,
	logo_key, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments
			(name, category, bracket_type, status, with_third_place, grand_final_reset,
			 max_random_attempts, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, randomize_locked, randomize_count, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name,
		t.Category,
		t.BracketType,
		t.Status,
		t.WithThirdPlace,
		t.GrandFinalReset,
		t.MaxRandomAttempts,
		t.StartDate,
		t.EndDate,
	).Scan(&t.ID, &t.RandomizeLocked, &t.RandomizeCount, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.Category,
		&t.BracketType,
		&t.Status,
		&t.WithThirdPlace,
		&t.GrandFinalReset,
		&t.RandomizeLocked,
		&t.RandomizeCount,
		&t.MaxRandomAttempts,
		&t.StartDate,
		&t.EndDate,
		&t.LogoKey,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament by id %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`)

	args := []interface{}{}
	placeholderIndex := 1

	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Status)
		placeholderIndex++
	}
	if filter.Category != nil {
		queryBuilder.WriteString(" AND category = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Category)
		placeholderIndex++
	}

	queryBuilder.WriteString(" ORDER BY start_date DESC, id DESC")

	if filter.Limit > 0 {
		queryBuilder.WriteString(" LIMIT $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, filter.Limit)
		placeholderIndex++
	}
	if filter.Offset > 0 {
		queryBuilder.WriteString(" OFFSET $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Category,
			&t.BracketType,
			&t.Status,
			&t.WithThirdPlace,
			&t.GrandFinalReset,
			&t.RandomizeLocked,
			&t.RandomizeCount,
			&t.MaxRandomAttempts,
			&t.StartDate,
			&t.EndDate,
			&t.LogoKey,
			&t.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments
		SET name = $1, category = $2, with_third_place = $3, grand_final_reset = $4,
		    max_random_attempts = $5, start_date = $6, end_date = $7
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		t.Name,
		t.Category,
		t.WithThirdPlace,
		t.GrandFinalReset,
		t.MaxRandomAttempts,
		t.StartDate,
		t.EndDate,
		t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, tournamentID int, logoKey *string) error {
	query := `UPDATE tournaments SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to update logo key for tournament %d: %w", tournamentID, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// IncrementRandomizeCount performs a compare-and-swap on randomize_count so
// two concurrent randomize calls cannot both consume the same attempt.
func (r *postgresTournamentRepository) IncrementRandomizeCount(ctx context.Context, exec SQLExecutor, id int, expectedCount int) error {
	query := `
		UPDATE tournaments
		SET randomize_count = randomize_count + 1
		WHERE id = $1
		  AND randomize_count = $2
		  AND randomize_locked = FALSE
		  AND randomize_count < max_random_attempts`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, id, expectedCount)
	if err != nil {
		return fmt.Errorf("failed to increment randomize count for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrRandomizeStateConflict)
}

func (r *postgresTournamentRepository) LockSeeding(ctx context.Context, exec SQLExecutor, id int) error {
	query := `UPDATE tournaments SET randomize_locked = TRUE WHERE id = $1 AND randomize_locked = FALSE`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to lock seeding for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentAlreadyLocked)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// UpdateStatusesByDates flips upcoming tournaments to ongoing once their start
// date has passed. Completion is driven by match results, not dates.
func (r *postgresTournamentRepository) UpdateStatusesByDates(ctx context.Context, exec SQLExecutor, now time.Time) (int64, error) {
	query := `
		UPDATE tournaments
		SET status = $1
		WHERE status = $2 AND start_date <= $3`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		models.TournamentStatusOngoing,
		models.TournamentStatusUpcoming,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to auto-update tournament statuses: %w", err)
	}
	started, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return started, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			if pqErr.Constraint == "tournaments_category_name_key" {
				return ErrTournamentNameConflict
			}
		case "foreign_key_violation":
			return ErrTournamentInUse
		}
	}
	return fmt.Errorf("tournament repository error: %w", err)
}
