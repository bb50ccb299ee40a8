package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Khyle1o1/student-management-system-sub000/models"
	"github.com/Khyle1o1/student-management-system-sub000/repositories"
	"github.com/Khyle1o1/student-management-system-sub000/storage"
)

const defaultMaxRandomAttempts = 3

type CreateTournamentInput struct {
	Name              string             `json:"name"`
	Category          string             `json:"category"`
	BracketType       models.BracketType `json:"bracket_type"`
	WithThirdPlace    bool               `json:"with_third_place"`
	GrandFinalReset   bool               `json:"grand_final_reset"`
	MaxRandomAttempts int                `json:"max_random_attempts"`
	StartDate         time.Time          `json:"start_date"`
	EndDate           time.Time          `json:"end_date"`
}

type UpdateTournamentInput struct {
	Name              *string    `json:"name"`
	Category          *string    `json:"category"`
	WithThirdPlace    *bool      `json:"with_third_place"`
	GrandFinalReset   *bool      `json:"grand_final_reset"`
	MaxRandomAttempts *int       `json:"max_random_attempts"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error)
	Cancel(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
	RegisterTeam(ctx context.Context, tournamentID, teamID int) error
	UnregisterTeam(ctx context.Context, tournamentID, teamID int) error
	UploadLogo(ctx context.Context, id int, contentType string, body io.Reader) (*models.Tournament, error)
	AutoUpdateStatusesByDates(ctx context.Context, now time.Time) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.BracketType != models.BracketSingleElimination && input.BracketType != models.BracketDoubleElimination {
		return nil, ErrInvalidBracketType
	}
	if !input.StartDate.Before(input.EndDate) {
		return nil, ErrInvalidDateRange
	}
	if input.MaxRandomAttempts == 0 {
		input.MaxRandomAttempts = defaultMaxRandomAttempts
	}
	if input.MaxRandomAttempts < 0 {
		return nil, ErrInvalidRandomAttempts
	}

	tournament := &models.Tournament{
		Name:              input.Name,
		Category:          strings.TrimSpace(input.Category),
		BracketType:       input.BracketType,
		Status:            models.TournamentStatusUpcoming,
		WithThirdPlace:    input.WithThirdPlace,
		GrandFinalReset:   input.GrandFinalReset,
		MaxRandomAttempts: input.MaxRandomAttempts,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, err
	}

	s.logger.Info("tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.String("name", tournament.Name),
		slog.String("bracket_type", string(tournament.BracketType)),
	)
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		s.populateLogoURL(&tournaments[i])
	}
	return tournaments, nil
}

func (s *tournamentService) Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.Status == models.TournamentStatusCompleted {
		return nil, ErrTournamentCompleted
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTournamentNameRequired
		}
		tournament.Name = name
	}
	if input.Category != nil {
		tournament.Category = strings.TrimSpace(*input.Category)
	}
	if input.WithThirdPlace != nil {
		tournament.WithThirdPlace = *input.WithThirdPlace
	}
	if input.GrandFinalReset != nil {
		tournament.GrandFinalReset = *input.GrandFinalReset
	}
	if input.MaxRandomAttempts != nil {
		if *input.MaxRandomAttempts <= 0 {
			return nil, ErrInvalidRandomAttempts
		}
		tournament.MaxRandomAttempts = *input.MaxRandomAttempts
	}
	if input.StartDate != nil {
		tournament.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		tournament.EndDate = *input.EndDate
	}
	if !tournament.StartDate.Before(tournament.EndDate) {
		return nil, ErrInvalidDateRange
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) Cancel(ctx context.Context, id int) error {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tournament.Status == models.TournamentStatusCompleted {
		return ErrTournamentCompleted
	}
	return s.tournamentRepo.UpdateStatus(ctx, nil, id, models.TournamentStatusCanceled)
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	err := s.tournamentRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return ErrTournamentNotFound
	}
	return err
}

// RegisterTeam adds a team to the tournament registry. Registration closes
// permanently once the bracket exists; team changes after that point would
// desync the stored matches from the template.
func (s *tournamentService) RegisterTeam(ctx context.Context, tournamentID, teamID int) error {
	tournament, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return err
	}
	if tournament.Status != models.TournamentStatusUpcoming {
		return ErrRegistrationClosed
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if len(matches) > 0 {
		return ErrRegistrationClosed
	}

	if err := s.teamRepo.Register(ctx, nil, tournamentID, teamID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamAlreadyRegistered):
			return ErrTeamAlreadyRegistered
		case errors.Is(err, repositories.ErrTeamNotFound):
			return ErrTeamNotFound
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return ErrTournamentNotFound
		}
		return err
	}
	return nil
}

func (s *tournamentService) UnregisterTeam(ctx context.Context, tournamentID, teamID int) error {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if len(matches) > 0 {
		return ErrRegistrationClosed
	}

	if err := s.teamRepo.Unregister(ctx, nil, tournamentID, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotRegistered) {
			return ErrTeamNotFound
		}
		return err
	}
	return nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, id int, contentType string, body io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrLogoStorageNotConfigured
	}

	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext, err := logoExtension(contentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("tournaments/%d/logo.%s", id, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload tournament logo: %w", err)
	}

	if tournament.LogoKey != nil && *tournament.LogoKey != key {
		if delErr := s.uploader.Delete(ctx, *tournament.LogoKey); delErr != nil {
			s.logger.Warn("failed to delete previous tournament logo",
				slog.Int("tournament_id", id),
				slog.String("key", *tournament.LogoKey),
				slog.Any("error", delErr),
			)
		}
	}

	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, err
	}

	tournament.LogoKey = &key
	s.populateLogoURL(tournament)
	return tournament, nil
}

// AutoUpdateStatusesByDates is invoked by the background scheduler to move
// upcoming tournaments to ongoing once their start date arrives.
func (s *tournamentService) AutoUpdateStatusesByDates(ctx context.Context, now time.Time) error {
	started, err := s.tournamentRepo.UpdateStatusesByDates(ctx, nil, now)
	if err != nil {
		return err
	}
	if started > 0 {
		s.logger.Info("tournaments moved to ongoing by schedule", slog.Int64("count", started))
	}
	return nil
}

func (s *tournamentService) populateLogoURL(t *models.Tournament) {
	if s.uploader == nil || t.LogoKey == nil || *t.LogoKey == "" {
		return
	}
	url := s.uploader.GetPublicURL(*t.LogoKey)
	t.LogoURL = &url
}

func logoExtension(contentType string) (string, error) {
	switch strings.ToLower(contentType) {
	case "image/png":
		return "png", nil
	case "image/jpeg", "image/jpg":
		return "jpg", nil
	case "image/webp":
		return "webp", nil
	case "image/svg+xml":
		return "svg", nil
	default:
		return "", ErrUnsupportedLogoFormat
	}
}
