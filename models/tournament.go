package models

import "time"

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	TournamentStatusUpcoming  TournamentStatus = "upcoming"
	TournamentStatusOngoing   TournamentStatus = "ongoing"
	TournamentStatusCompleted TournamentStatus = "completed"
	TournamentStatusCanceled  TournamentStatus = "canceled"
)

type BracketType string

const (
	BracketSingleElimination BracketType = "single_elimination"
	BracketDoubleElimination BracketType = "double_elimination"
)

// Tournament is one intramurals event bracket. The randomize fields form a
// small owned state machine: the count may only grow up to the configured
// maximum, and once RandomizeLocked is set the round-1 slot bindings are
// frozen for the lifetime of the tournament.
type Tournament struct {
	ID                int              `json:"id" db:"id"`
	Name              string           `json:"name" db:"name"`
	Category          string           `json:"category" db:"category"`
	BracketType       BracketType      `json:"bracket_type" db:"bracket_type"`
	Status            TournamentStatus `json:"status" db:"status"`
	WithThirdPlace    bool             `json:"with_third_place" db:"with_third_place"`
	GrandFinalReset   bool             `json:"grand_final_reset" db:"grand_final_reset"`
	RandomizeLocked   bool             `json:"randomize_locked" db:"randomize_locked"`
	RandomizeCount    int              `json:"randomize_count" db:"randomize_count"`
	MaxRandomAttempts int              `json:"max_random_attempts" db:"max_random_attempts"`
	StartDate         time.Time        `json:"start_date" db:"start_date"`
	EndDate           time.Time        `json:"end_date" db:"end_date"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	// Related entities, loaded on demand.
	Teams   []Team  `json:"teams,omitempty" db:"-"`
	Matches []Match `json:"matches,omitempty" db:"-"`
}

func (t *Tournament) AttemptsRemaining() int {
	remaining := t.MaxRandomAttempts - t.RandomizeCount
	if remaining < 0 {
		return 0
	}
	return remaining
}
