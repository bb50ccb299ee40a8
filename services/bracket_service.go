package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Khyle1o1/student-management-system-sub000/brackets"
	"github.com/Khyle1o1/student-management-system-sub000/models"
	"github.com/Khyle1o1/student-management-system-sub000/repositories"
	"github.com/Khyle1o1/student-management-system-sub000/storage"
	"golang.org/x/sync/errgroup"
)

// BracketView is the full payload served to bracket pages: the tournament,
// its registered teams in seed order, every match row, and the rendered
// coordinate layout.
type BracketView struct {
	Tournament *models.Tournament      `json:"tournament"`
	Teams      []*models.Team          `json:"teams"`
	Matches    []*models.Match         `json:"matches"`
	Layout     *brackets.BracketLayout `json:"layout,omitempty"`
}

type BracketService interface {
	CreateBracket(ctx context.Context, tournamentID int) (*BracketView, error)
	GetBracketView(ctx context.Context, tournamentID int) (*BracketView, error)
}

type bracketService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	uploader       storage.FileUploader
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		uploader:       uploader,
		hub:            hub,
		logger:         logger,
	}
}

// CreateBracket builds the template for the tournament's registered teams,
// persists one match row per template node, wires the advancement columns and
// assigns round-1 seeds in registration order. It refuses to run twice.
func (s *bracketService) CreateBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	switch tournament.Status {
	case models.TournamentStatusCompleted:
		return nil, ErrTournamentCompleted
	case models.TournamentStatusCanceled:
		return nil, ErrTournamentCanceled
	}

	existing, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrBracketAlreadyCreated
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(teams) < 2 {
		return nil, ErrNotEnoughTeams
	}

	template, err := brackets.BuildTemplate(brackets.TemplateParams{
		TeamCount:      len(teams),
		Type:           tournament.BracketType,
		WithThirdPlace: tournament.WithThirdPlace,
	})
	if err != nil {
		return nil, err
	}

	matches := brackets.InstantiateMatches(template, tournamentID)

	teamIDs := make([]int, len(teams))
	for i, team := range teams {
		teamIDs[i] = team.ID
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, match := range matches {
			if txErr := s.matchRepo.Create(ctx, tx, match); txErr != nil {
				return txErr
			}
		}

		if txErr := brackets.LinkMatches(template, matches); txErr != nil {
			return txErr
		}
		for _, match := range matches {
			if txErr := s.matchRepo.UpdateAdvancement(ctx, tx, match); txErr != nil {
				return txErr
			}
		}

		changed, txErr := brackets.AssignSeeds(template, matches, teamIDs)
		if txErr != nil {
			return txErr
		}
		for _, match := range changed {
			if stateErr := s.matchRepo.UpdateState(ctx, tx, match); stateErr != nil {
				return stateErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist bracket for tournament %d: %w", tournamentID, err)
	}

	s.logger.Info("bracket created",
		slog.Int("tournament_id", tournamentID),
		slog.Int("team_count", len(teams)),
		slog.Int("match_count", len(matches)),
	)
	s.broadcastBracketUpdated(tournamentID)

	return s.GetBracketView(ctx, tournamentID)
}

// GetBracketView loads the tournament, teams and matches in parallel and
// projects the coordinate layout from the rebuilt template.
func (s *bracketService) GetBracketView(ctx context.Context, tournamentID int) (*BracketView, error) {
	view := &BracketView{}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tournament, err := s.tournamentRepo.GetByID(gCtx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		s.resolveTournamentLogo(tournament)
		view.Tournament = tournament
		return nil
	})

	g.Go(func() error {
		teams, err := s.teamRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return err
		}
		for _, team := range teams {
			s.resolveTeamLogo(team)
		}
		view.Teams = teams
		return nil
	})

	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return err
		}
		view.Matches = matches
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(view.Matches) > 0 && len(view.Teams) >= 2 {
		template, err := brackets.BuildTemplate(brackets.TemplateParams{
			TeamCount:      len(view.Teams),
			Type:           view.Tournament.BracketType,
			WithThirdPlace: view.Tournament.WithThirdPlace,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild template for tournament %d: %w", tournamentID, err)
		}
		view.Layout = brackets.Project(template, view.Matches)
	}

	return view, nil
}

func (s *bracketService) resolveTournamentLogo(t *models.Tournament) {
	if s.uploader == nil || t.LogoKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*t.LogoKey)
	t.LogoURL = &url
}

func (s *bracketService) resolveTeamLogo(team *models.Team) {
	if s.uploader == nil || team.LogoKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*team.LogoKey)
	team.LogoURL = &url
}

func (s *bracketService) broadcastBracketUpdated(tournamentID int) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastTournament(tournamentID, brackets.Event{
		Type:    brackets.EventBracketUpdated,
		Payload: map[string]int{"tournament_id": tournamentID},
	})
}
