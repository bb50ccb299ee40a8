package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/Khyle1o1/student-management-system-sub000/brackets"
	"github.com/Khyle1o1/student-management-system-sub000/models"
	"github.com/Khyle1o1/student-management-system-sub000/repositories"
)

// SeedingService owns the pre-lock phase of a bracket: reshuffling round-1
// slot assignments within the bounded attempt budget and freezing them.
type SeedingService interface {
	Randomize(ctx context.Context, tournamentID int) (*models.Tournament, []*models.Match, error)
	Lock(ctx context.Context, tournamentID int) (*models.Tournament, error)
}

type seedingService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	hub            *brackets.Hub
	logger         *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewSeedingService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
	rng *rand.Rand,
) SeedingService {
	return &seedingService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		hub:            hub,
		logger:         logger,
		rng:            rng,
	}
}

// Randomize consumes one attempt and rebinds every seed slot to a fresh
// shuffle of the registered teams. The attempt counter is advanced with a
// compare-and-swap so concurrent calls cannot share an attempt.
func (s *seedingService) Randomize(ctx context.Context, tournamentID int) (*models.Tournament, []*models.Match, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, nil, ErrTournamentNotFound
		}
		return nil, nil, err
	}

	if tournament.RandomizeLocked {
		return nil, nil, brackets.ErrRandomizeLocked
	}
	if tournament.AttemptsRemaining() == 0 {
		return nil, nil, brackets.ErrAttemptsExhausted
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, nil, err
	}
	if len(matches) == 0 {
		return nil, nil, ErrBracketNotCreated
	}
	for _, match := range matches {
		if match.Status == models.MatchStatusCompleted && !match.IsBye {
			return nil, nil, ErrBracketAlreadyStarted
		}
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, nil, err
	}

	template, err := brackets.BuildTemplate(brackets.TemplateParams{
		TeamCount:      len(teams),
		Type:           tournament.BracketType,
		WithThirdPlace: tournament.WithThirdPlace,
	})
	if err != nil {
		return nil, nil, err
	}

	teamIDs := make([]int, len(teams))
	for i, team := range teams {
		teamIDs[i] = team.ID
	}

	s.rngMu.Lock()
	shuffled := brackets.ShuffleTeams(s.rng, teamIDs)
	s.rngMu.Unlock()

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if txErr := s.tournamentRepo.IncrementRandomizeCount(ctx, tx, tournamentID, tournament.RandomizeCount); txErr != nil {
			if errors.Is(txErr, repositories.ErrRandomizeStateConflict) {
				return s.classifyRandomizeConflict(ctx, tournamentID)
			}
			return txErr
		}

		changed, txErr := brackets.AssignSeeds(template, matches, shuffled)
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
		return nil, nil, err
	}

	tournament.RandomizeCount++

	s.logger.Info("seeding randomized",
		slog.Int("tournament_id", tournamentID),
		slog.Int("attempt", tournament.RandomizeCount),
		slog.Int("attempts_remaining", tournament.AttemptsRemaining()),
	)
	s.broadcastBracketUpdated(tournamentID)

	return tournament, matches, nil
}

// classifyRandomizeConflict turns a lost compare-and-swap into the error the
// caller can act on. The conflict means another request moved the randomize
// state between our read and the update; the fresh row says whether it was a
// lock, the last attempt, or a plain concurrent randomize.
func (s *seedingService) classifyRandomizeConflict(ctx context.Context, tournamentID int) error {
	current, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return err
	}
	if current.RandomizeLocked {
		return brackets.ErrRandomizeLocked
	}
	if current.AttemptsRemaining() == 0 {
		return brackets.ErrAttemptsExhausted
	}
	return ErrSeedingConflict
}

// Lock freezes the current seed assignment. Results can only be recorded on
// a locked bracket, and a locked bracket can never be randomized again.
func (s *seedingService) Lock(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.RandomizeLocked {
		return nil, brackets.ErrAlreadyLocked
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrBracketNotCreated
	}

	if err := s.tournamentRepo.LockSeeding(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentAlreadyLocked) {
			return nil, brackets.ErrAlreadyLocked
		}
		return nil, err
	}

	tournament.RandomizeLocked = true

	s.logger.Info("seeding locked", slog.Int("tournament_id", tournamentID))
	s.broadcastBracketUpdated(tournamentID)

	return tournament, nil
}

func (s *seedingService) broadcastBracketUpdated(tournamentID int) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastTournament(tournamentID, brackets.Event{
		Type:    brackets.EventBracketUpdated,
		Payload: map[string]int{"tournament_id": tournamentID},
	})
}
