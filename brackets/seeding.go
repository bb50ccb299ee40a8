package brackets

import (
	"fmt"
	"math/rand"

	"github.com/Khyle1o1/student-management-system-sub000/models"
)

// InstantiateMatches creates the live match rows mirroring a template, one
// per node, all pending and empty. IDs are assigned by the persistence
// layer; call LinkMatches afterwards to wire the advancement columns.
func InstantiateMatches(t *BracketTemplate, tournamentID int) []*models.Match {
	matches := make([]*models.Match, 0, len(t.Nodes))
	for _, n := range t.Nodes {
		matches = append(matches, &models.Match{
			TournamentID: tournamentID,
			TemplateKey:  string(n.Key),
			BracketStage: n.Stage,
			StageRound:   n.StageRound,
			Round:        flatRound(t, n),
			MatchNumber:  n.MatchNumber,
			DisplayLabel: displayLabel(t, n),
			Status:       models.MatchStatusPending,
			IsBye:        n.IsBye,
			IsThirdPlace: n.IsThirdPlace,
		})
	}
	return matches
}

// flatRound gives matches a tournament-wide ordering round: winners and
// losers stages keep their own numbering, the finals sort after the winners
// rounds.
func flatRound(t *BracketTemplate, n *TemplateNode) int {
	switch n.Stage {
	case models.StageFinal:
		return t.WinnersRounds() + 1
	case models.StageGrandFinal:
		return t.WinnersRounds() + 2
	default:
		return n.StageRound
	}
}

func displayLabel(t *BracketTemplate, n *TemplateNode) string {
	switch {
	case n.IsThirdPlace:
		return "Third Place"
	case n.Stage == models.StageFinal:
		if t.Type == models.BracketDoubleElimination {
			return "Losers Final"
		}
		return "Final"
	case n.Stage == models.StageGrandFinal:
		return "Grand Final"
	case n.Stage == models.StageLosers:
		return fmt.Sprintf("Losers Round %d - Match %d", n.StageRound, n.MatchNumber)
	default:
		if t.Type == models.BracketDoubleElimination {
			return fmt.Sprintf("Winners Round %d - Match %d", n.StageRound, n.MatchNumber)
		}
		return fmt.Sprintf("Round %d - Match %d", n.StageRound, n.MatchNumber)
	}
}

// LinkMatches fills the next/loser-next match columns from the template
// edges. Matches must already have their IDs assigned.
func LinkMatches(t *BracketTemplate, matches []*models.Match) error {
	byKey := indexByKey(matches)
	for _, n := range t.Nodes {
		m := byKey[n.Key]
		if m == nil {
			return fmt.Errorf("%w: no match bound to template key %q", ErrMatchNotFound, n.Key)
		}
		if n.NextKey != nil {
			target := byKey[*n.NextKey]
			if target == nil {
				return fmt.Errorf("%w: no match bound to template key %q", ErrMatchNotFound, *n.NextKey)
			}
			id := target.ID
			pos := n.NextPosition
			m.NextMatchID = &id
			m.NextMatchPosition = &pos
		}
		if n.LoserNextKey != nil {
			target := byKey[*n.LoserNextKey]
			if target == nil {
				return fmt.Errorf("%w: no match bound to template key %q", ErrMatchNotFound, *n.LoserNextKey)
			}
			id := target.ID
			pos := n.LoserNextPosition
			m.LoserNextMatchID = &id
			m.LoserNextMatchPosition = &pos
		}
	}
	return nil
}

// AssignSeeds binds teams to the template's seed slots in seed order and
// resolves the resulting byes, cascading bye survivors into later rounds.
// It overwrites any previous seed assignment, so the caller must ensure no
// results have been recorded yet (and must never call this after lock).
// Returns every match it touched.
func AssignSeeds(t *BracketTemplate, matches []*models.Match, orderedTeamIDs []int) ([]*models.Match, error) {
	if len(orderedTeamIDs) != t.TeamCount {
		return nil, fmt.Errorf("%w: have %d teams, template holds %d",
			ErrTeamCountMismatch, len(orderedTeamIDs), t.TeamCount)
	}

	byKey := indexByKey(matches)
	for _, n := range t.Nodes {
		if byKey[n.Key] == nil {
			return nil, fmt.Errorf("%w: no match bound to template key %q", ErrMatchNotFound, n.Key)
		}
	}

	changed := newChangeSet()

	// Wipe previous seed-derived placement before re-applying.
	for _, m := range matches {
		if m.Status == models.MatchStatusCanceled {
			continue
		}
		if m.Team1ID != nil || m.Team2ID != nil || m.Status != models.MatchStatusPending {
			changed.add(m)
		}
		m.Team1ID = nil
		m.Team2ID = nil
		m.WinnerID = nil
		m.Team1Score = nil
		m.Team2Score = nil
		m.Status = models.MatchStatusPending
	}

	for _, n := range t.Nodes {
		m := byKey[n.Key]
		if n.Slot1.Kind == SlotSeed {
			id := orderedTeamIDs[n.Slot1.Seed-1]
			m.Team1ID = &id
			changed.add(m)
		}
		if n.Slot2.Kind == SlotSeed {
			id := orderedTeamIDs[n.Slot2.Seed-1]
			m.Team2ID = &id
			changed.add(m)
		}
	}

	// Resolve statuses and bye cascades.
	for _, n := range t.Nodes {
		m := byKey[n.Key]
		if n.IsBye {
			survivor := m.Team1ID
			if survivor == nil {
				survivor = m.Team2ID
			}
			if survivor != nil && m.Status != models.MatchStatusCompleted {
				completeBye(t, byKey, n, m, *survivor, changed)
			}
			continue
		}
		if m.Status == models.MatchStatusPending && slotsFilled(n, m) {
			m.Status = models.MatchStatusScheduled
			changed.add(m)
		}
	}

	return changed.list, nil
}

// ShuffleTeams returns a uniformly random permutation of teamIDs using
// Fisher-Yates over the supplied source. The input slice is not modified.
func ShuffleTeams(r *rand.Rand, teamIDs []int) []int {
	out := make([]int, len(teamIDs))
	copy(out, teamIDs)
	for i := len(out) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
