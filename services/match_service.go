package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/Khyle1o1/student-management-system-sub000/brackets"
	"github.com/Khyle1o1/student-management-system-sub000/models"
	"github.com/Khyle1o1/student-management-system-sub000/repositories"
)

type RecordResultInput struct {
	WinnerID   int `json:"winner_id"`
	Team1Score int `json:"team1_score"`
	Team2Score int `json:"team2_score"`
}

type MatchService interface {
	RecordResult(ctx context.Context, matchID int, input RecordResultInput) (*brackets.AdvancementEffects, error)
	GetByID(ctx context.Context, matchID int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
}

type matchService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		hub:            hub,
		logger:         logger,
	}
}

// RecordResult applies a result to the in-memory bracket first, then persists
// exactly the rows the engine reports as changed. Validation failures leave
// the database untouched.
func (s *matchService) RecordResult(ctx context.Context, matchID int, input RecordResultInput) (*brackets.AdvancementEffects, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, brackets.ErrMatchNotFound
		}
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	matches, err := s.matchRepo.ListByTournament(ctx, match.TournamentID)
	if err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.ListByTournament(ctx, match.TournamentID)
	if err != nil {
		return nil, err
	}

	template, err := brackets.BuildTemplate(brackets.TemplateParams{
		TeamCount:      len(teams),
		Type:           tournament.BracketType,
		WithThirdPlace: tournament.WithThirdPlace,
	})
	if err != nil {
		return nil, err
	}

	effects, err := brackets.RecordResult(template, tournament, matches, brackets.ResultParams{
		MatchID:    matchID,
		WinnerID:   input.WinnerID,
		Team1Score: input.Team1Score,
		Team2Score: input.Team2Score,
	})
	if err != nil {
		return nil, err
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, updated := range effects.Updated {
			if txErr := s.matchRepo.UpdateState(ctx, tx, updated); txErr != nil {
				return txErr
			}
		}
		for _, created := range effects.Created {
			if txErr := s.matchRepo.Create(ctx, tx, created); txErr != nil {
				return txErr
			}
		}
		if effects.ChampionID != nil {
			if txErr := s.tournamentRepo.UpdateStatus(ctx, tx, tournament.ID, models.TournamentStatusCompleted); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match result recorded",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("match_id", matchID),
		slog.Int("winner_id", input.WinnerID),
		slog.Int("updated", len(effects.Updated)),
		slog.Int("created", len(effects.Created)),
	)
	if effects.ChampionID != nil {
		s.logger.Info("tournament decided",
			slog.Int("tournament_id", tournament.ID),
			slog.Int("champion_id", *effects.ChampionID),
		)
	}

	if s.hub != nil {
		s.hub.BroadcastTournament(tournament.ID, brackets.Event{
			Type: brackets.EventMatchUpdated,
			Payload: map[string]interface{}{
				"tournament_id": tournament.ID,
				"match_id":      matchID,
				"champion_id":   effects.ChampionID,
			},
		})
	}

	return effects, nil
}

func (s *matchService) GetByID(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, brackets.ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return s.matchRepo.ListByTournament(ctx, tournamentID)
}
