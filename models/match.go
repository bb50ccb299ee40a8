package models

import "time"

// MatchStatus mirrors the match_status ENUM in the database.
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCanceled  MatchStatus = "canceled"
)

// BracketStage partitions the bracket graph. Single elimination uses winners
// plus final; double elimination adds losers and grand_final.
type BracketStage string

const (
	StageWinners    BracketStage = "winners"
	StageLosers     BracketStage = "losers"
	StageFinal      BracketStage = "final"
	StageGrandFinal BracketStage = "grand_final"
)

// Match is the live row bound 1:1 to a template node via TemplateKey. Team
// slots stay nil until seeding (round 1) or advancement (later rounds) fills
// them; status is derived from the slots, never set directly by callers.
type Match struct {
	ID           int    `json:"id" db:"id"`
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	TemplateKey  string `json:"template_key" db:"template_key"`

	BracketStage BracketStage `json:"bracket_stage" db:"bracket_stage"`
	Round        int          `json:"round" db:"round"`
	StageRound   int          `json:"stage_round" db:"stage_round"`
	MatchNumber  int          `json:"match_number" db:"match_number"`
	DisplayLabel string       `json:"display_label" db:"display_label"`

	Team1ID    *int        `json:"team1_id" db:"team1_id"`
	Team2ID    *int        `json:"team2_id" db:"team2_id"`
	WinnerID   *int        `json:"winner_id" db:"winner_id"`
	Team1Score *int        `json:"team1_score" db:"team1_score"`
	Team2Score *int        `json:"team2_score" db:"team2_score"`
	Status     MatchStatus `json:"status" db:"status"`

	IsBye        bool `json:"is_bye" db:"is_bye"`
	IsThirdPlace bool `json:"is_third_place" db:"is_third_place"`

	NextMatchID            *int `json:"next_match_id" db:"next_match_id"`
	NextMatchPosition      *int `json:"next_match_position" db:"next_match_position"`
	LoserNextMatchID       *int `json:"loser_next_match_id" db:"loser_next_match_id"`
	LoserNextMatchPosition *int `json:"loser_next_match_position" db:"loser_next_match_position"`

	ScheduledAt *time.Time `json:"scheduled_at,omitempty" db:"scheduled_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// HasTeam reports whether teamID occupies one of the match slots.
func (m *Match) HasTeam(teamID int) bool {
	return (m.Team1ID != nil && *m.Team1ID == teamID) || (m.Team2ID != nil && *m.Team2ID == teamID)
}

// LoserID returns the losing team of a completed match, nil for byes and
// unfinished matches.
func (m *Match) LoserID() *int {
	if m.Status != MatchStatusCompleted || m.WinnerID == nil || m.IsBye {
		return nil
	}
	if m.Team1ID != nil && *m.Team1ID != *m.WinnerID {
		return m.Team1ID
	}
	if m.Team2ID != nil && *m.Team2ID != *m.WinnerID {
		return m.Team2ID
	}
	return nil
}
