package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Khyle1o1/student-management-system-sub000/models"
	"github.com/Khyle1o1/student-management-system-sub000/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeStaffRepo struct {
	byEmail   map[string]*models.StaffUser
	created   []*models.StaffUser
	createErr error
}

func (f *fakeStaffRepo) Create(_ context.Context, user *models.StaffUser) error {
	if f.createErr != nil {
		return f.createErr
	}
	user.ID = len(f.created) + 1
	f.created = append(f.created, user)
	return nil
}

func (f *fakeStaffRepo) GetByID(_ context.Context, id int) (*models.StaffUser, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repositories.ErrStaffNotFound
}

func (f *fakeStaffRepo) GetByEmail(_ context.Context, email string) (*models.StaffUser, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, repositories.ErrStaffNotFound
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func staffWithPassword(t *testing.T, email, password string) *models.StaffUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.StaffUser{
		ID:           7,
		Email:        email,
		FullName:     "Ops Staff",
		Role:         models.StaffRoleOrganizer,
		PasswordHash: string(hash),
	}
}

func TestLoginSignsClaimsForKnownStaff(t *testing.T) {
	repo := &fakeStaffRepo{byEmail: map[string]*models.StaffUser{
		"ops@campus.edu": staffWithPassword(t, "ops@campus.edu", "super-secret"),
	}}
	svc := NewAuthService(repo, "test-signing-key", testLogger())

	user, token, err := svc.Login(context.Background(), LoginInput{
		Email:    "  OPS@campus.edu ",
		Password: "super-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	require.NotEmpty(t, token)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-signing-key"), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(7), claims["sub"])
	assert.Equal(t, string(models.StaffRoleOrganizer), claims["role"])
	assert.NotEmpty(t, claims["exp"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := &fakeStaffRepo{byEmail: map[string]*models.StaffUser{
		"ops@campus.edu": staffWithPassword(t, "ops@campus.edu", "super-secret"),
	}}
	svc := NewAuthService(repo, "test-signing-key", testLogger())

	_, _, err := svc.Login(context.Background(), LoginInput{
		Email:    "ops@campus.edu",
		Password: "not-it",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmailLooksLikeBadCredentials(t *testing.T) {
	repo := &fakeStaffRepo{byEmail: map[string]*models.StaffUser{}}
	svc := NewAuthService(repo, "test-signing-key", testLogger())

	_, _, err := svc.Login(context.Background(), LoginInput{
		Email:    "nobody@campus.edu",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterNormalizesAndHashes(t *testing.T) {
	repo := &fakeStaffRepo{byEmail: map[string]*models.StaffUser{}}
	svc := NewAuthService(repo, "test-signing-key", testLogger())

	user, err := svc.Register(context.Background(), RegisterStaffInput{
		Email:    " New.Organizer@Campus.edu ",
		FullName: " Jordan Reyes ",
		Role:     models.StaffRoleOrganizer,
		Password: "long-enough-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "new.organizer@campus.edu", user.Email)
	assert.Equal(t, "Jordan Reyes", user.FullName)
	assert.NotEqual(t, "long-enough-pass", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("long-enough-pass")))
	require.Len(t, repo.created, 1)
}

func TestRegisterValidation(t *testing.T) {
	repo := &fakeStaffRepo{byEmail: map[string]*models.StaffUser{}}
	svc := NewAuthService(repo, "test-signing-key", testLogger())

	_, err := svc.Register(context.Background(), RegisterStaffInput{
		Email:    "x@campus.edu",
		Role:     models.StaffRole("superuser"),
		Password: "long-enough-pass",
	})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Register(context.Background(), RegisterStaffInput{
		Email:    "x@campus.edu",
		Role:     models.StaffRoleAdmin,
		Password: "short",
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestRegisterEmailConflict(t *testing.T) {
	repo := &fakeStaffRepo{
		byEmail:   map[string]*models.StaffUser{},
		createErr: repositories.ErrStaffEmailConflict,
	}
	svc := NewAuthService(repo, "test-signing-key", testLogger())

	_, err := svc.Register(context.Background(), RegisterStaffInput{
		Email:    "dupe@campus.edu",
		Role:     models.StaffRoleAdmin,
		Password: "long-enough-pass",
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}
