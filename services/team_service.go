package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Khyle1o1/student-management-system-sub000/models"
	"github.com/Khyle1o1/student-management-system-sub000/repositories"
	"github.com/Khyle1o1/student-management-system-sub000/storage"
)

type CreateTeamInput struct {
	Name       string  `json:"name"`
	Department *string `json:"department"`
	Color      *string `json:"color"`
}

type UpdateTeamInput struct {
	Name       *string `json:"name"`
	Department *string `json:"department"`
	Color      *string `json:"color"`
}

type TeamService interface {
	Create(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	Update(ctx context.Context, id int, input UpdateTeamInput) (*models.Team, error)
	Delete(ctx context.Context, id int) error
	UploadLogo(ctx context.Context, id int, contentType string, body io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewTeamService(teamRepo repositories.TeamRepository, uploader storage.FileUploader, logger *slog.Logger) TeamService {
	return &teamService{
		teamRepo: teamRepo,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *teamService) Create(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{
		Name:       input.Name,
		Department: input.Department,
		Color:      input.Color,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, err
	}

	s.logger.Info("team created", slog.Int("team_id", team.ID), slog.String("name", team.Name))
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) List(ctx context.Context) ([]models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		s.populateLogoURL(&teams[i])
	}
	return teams, nil
}

func (s *teamService) Update(ctx context.Context, id int, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		team.Name = name
	}
	if input.Department != nil {
		team.Department = input.Department
	}
	if input.Color != nil {
		team.Color = input.Color
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, err
	}
	return team, nil
}

func (s *teamService) Delete(ctx context.Context, id int) error {
	err := s.teamRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrTeamNotFound) {
		return ErrTeamNotFound
	}
	return err
}

func (s *teamService) UploadLogo(ctx context.Context, id int, contentType string, body io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, ErrLogoStorageNotConfigured
	}

	team, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext, err := logoExtension(contentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("teams/%d/logo.%s", id, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}

	if team.LogoKey != nil && *team.LogoKey != key {
		if delErr := s.uploader.Delete(ctx, *team.LogoKey); delErr != nil {
			s.logger.Warn("failed to delete previous team logo",
				slog.Int("team_id", id),
				slog.String("key", *team.LogoKey),
				slog.Any("error", delErr),
			)
		}
	}

	if err := s.teamRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, err
	}

	team.LogoKey = &key
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) populateLogoURL(team *models.Team) {
	if s.uploader == nil || team.LogoKey == nil || *team.LogoKey == "" {
		return
	}
	url := s.uploader.GetPublicURL(*team.LogoKey)
	team.LogoURL = &url
}
