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
	ErrStaffNotFound      = errors.New("staff user not found")
	ErrStaffEmailConflict = errors.New("staff email already in use")
)

type StaffRepository interface {
	Create(ctx context.Context, user *models.StaffUser) error
	GetByID(ctx context.Context, id int) (*models.StaffUser, error)
	GetByEmail(ctx context.Context, email string) (*models.StaffUser, error)
}

type postgresStaffRepository struct {
	db *sql.DB
}

func NewPostgresStaffRepository(db *sql.DB) StaffRepository {
	return &postgresStaffRepository{db: db}
}

func (r *postgresStaffRepository) Create(ctx context.Context, user *models.StaffUser) error {
	query := `
		INSERT INTO staff_users (email, full_name, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Email,
		user.FullName,
		user.Role,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrStaffEmailConflict
		}
		return fmt.Errorf("failed to create staff user: %w", err)
	}
	return nil
}

func (r *postgresStaffRepository) GetByID(ctx context.Context, id int) (*models.StaffUser, error) {
	query := `
		SELECT id, email, full_name, role, password_hash, created_at
		FROM staff_users WHERE id = $1`
	return r.scanStaff(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresStaffRepository) GetByEmail(ctx context.Context, email string) (*models.StaffUser, error) {
	query := `
		SELECT id, email, full_name, role, password_hash, created_at
		FROM staff_users WHERE email = $1`
	return r.scanStaff(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresStaffRepository) scanStaff(row *sql.Row) (*models.StaffUser, error) {
	user := &models.StaffUser{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to scan staff user: %w", err)
	}
	return user, nil
}
