package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Khyle1o1/student-management-system-sub000/models"
	"github.com/Khyle1o1/student-management-system-sub000/repositories"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.StaffUser, string, error)
	Register(ctx context.Context, input RegisterStaffInput) (*models.StaffUser, error)
}

type RegisterStaffInput struct {
	Email    string           `json:"email"`
	FullName string           `json:"full_name"`
	Role     models.StaffRole `json:"role"`
	Password string           `json:"password"`
}

type authService struct {
	staffRepo repositories.StaffRepository
	jwtSecret []byte
	logger    *slog.Logger
}

func NewAuthService(staffRepo repositories.StaffRepository, jwtSecret string, logger *slog.Logger) AuthService {
	return &authService{
		staffRepo: staffRepo,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.StaffUser, string, error) {
	user, err := s.staffRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrStaffNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find staff user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("staff login", slog.Int("staff_id", user.ID), slog.String("role", string(user.Role)))
	return user, token, nil
}

func (s *authService) Register(ctx context.Context, input RegisterStaffInput) (*models.StaffUser, error) {
	if input.Role != models.StaffRoleAdmin && input.Role != models.StaffRoleOrganizer {
		return nil, ErrValidationFailed
	}
	if len(input.Password) < 8 {
		return nil, ErrValidationFailed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.StaffUser{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		FullName:     strings.TrimSpace(input.FullName),
		Role:         input.Role,
		PasswordHash: string(hash),
	}
	if err := s.staffRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrStaffEmailConflict) {
			return nil, ErrValidationFailed
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) generateToken(user *models.StaffUser) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
