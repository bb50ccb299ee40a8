package brackets

import (
	"github.com/Khyle1o1/student-management-system-sub000/models"
)

// ResultParams is one recorded (or corrected) match result.
type ResultParams struct {
	MatchID    int
	WinnerID   int
	Team1Score int
	Team2Score int
}

// AdvancementEffects reports every match whose state changed so the caller
// can persist exactly those rows and invalidate views.
type AdvancementEffects struct {
	// Updated holds existing matches that changed, the recorded match first.
	Updated []*models.Match
	// Created holds matches materialized by this result. Today that is only
	// the grand-final reset.
	Created []*models.Match
	// ChampionID is set when the result decided the tournament.
	ChampionID *int
}

type changeSet struct {
	seen map[*models.Match]bool
	list []*models.Match
}

func newChangeSet() *changeSet {
	return &changeSet{seen: make(map[*models.Match]bool)}
}

func (c *changeSet) add(m *models.Match) {
	if c.seen[m] {
		return
	}
	c.seen[m] = true
	c.list = append(c.list, m)
}

func indexByKey(matches []*models.Match) map[TemplateKey]*models.Match {
	byKey := make(map[TemplateKey]*models.Match, len(matches))
	for _, m := range matches {
		byKey[TemplateKey(m.TemplateKey)] = m
	}
	return byKey
}

// RecordResult completes a match and advances its winner (and, in double
// elimination, its loser) along the template edges, auto-resolving byes on
// the way. The whole match set is an in-memory snapshot; persistence of the
// returned effects is the caller's concern.
//
// Corrections: re-recording an identical result is a no-op. A changed winner
// is accepted only while every downstream match this one feeds is still
// undecided (bye auto-completions do not count); accepted corrections unwind
// the earlier propagation before re-running it.
func RecordResult(t *BracketTemplate, tournament *models.Tournament, matches []*models.Match, p ResultParams) (*AdvancementEffects, error) {
	if !tournament.RandomizeLocked {
		return nil, ErrBracketNotLocked
	}

	byKey := indexByKey(matches)
	var match *models.Match
	for _, m := range matches {
		if m.ID == p.MatchID {
			match = m
			break
		}
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}
	if match.Status == models.MatchStatusCanceled {
		return nil, ErrMatchCanceled
	}
	if !match.HasTeam(p.WinnerID) {
		return nil, ErrTeamNotInMatch
	}

	node := t.Node(TemplateKey(match.TemplateKey))
	effects := &AdvancementEffects{}
	changed := newChangeSet()

	if match.Status == models.MatchStatusCompleted {
		sameWinner := match.WinnerID != nil && *match.WinnerID == p.WinnerID
		if sameWinner {
			if scoreEqual(match.Team1Score, p.Team1Score) && scoreEqual(match.Team2Score, p.Team2Score) {
				return effects, nil
			}
			// Score-only correction: nothing downstream depends on scores.
			setScores(match, p)
			changed.add(match)
			effects.Updated = changed.list
			return effects, nil
		}

		if err := checkDownstreamUndecided(t, byKey, node, match); err != nil {
			return nil, err
		}
		if node != nil {
			clearPropagation(t, byKey, node, changed)
		}
	}

	match.WinnerID = &p.WinnerID
	setScores(match, p)
	match.Status = models.MatchStatusCompleted
	changed.add(match)

	if node == nil {
		// The grand-final reset has no template node; winning it always
		// decides the tournament.
		effects.ChampionID = &p.WinnerID
		effects.Updated = changed.list
		return effects, nil
	}

	if node.NextKey != nil {
		if err := applyIncoming(t, byKey, *node.NextKey, node.NextPosition, p.WinnerID, changed); err != nil {
			return nil, err
		}
	}
	if loserID := match.LoserID(); loserID != nil && node.LoserNextKey != nil {
		if err := applyIncoming(t, byKey, *node.LoserNextKey, node.LoserNextPosition, *loserID, changed); err != nil {
			return nil, err
		}
	}

	if node.Key == t.ChampionshipKey() && !node.IsThirdPlace {
		resolveChampionship(t, tournament, match, p.WinnerID, effects)
	}

	effects.Updated = changed.list
	return effects, nil
}

// resolveChampionship decides the tournament or, for a double-elimination
// grand final won from the losers route, materializes the bracket-reset
// rematch instead.
func resolveChampionship(t *BracketTemplate, tournament *models.Tournament, match *models.Match, winnerID int, effects *AdvancementEffects) {
	losersRouteWon := t.Type == models.BracketDoubleElimination &&
		match.Team2ID != nil && *match.Team2ID == winnerID

	if losersRouteWon && tournament.GrandFinalReset {
		team1 := *match.Team1ID
		team2 := *match.Team2ID
		reset := &models.Match{
			TournamentID: match.TournamentID,
			TemplateKey:  string(grandFinalResetKey),
			BracketStage: models.StageGrandFinal,
			StageRound:   2,
			Round:        match.Round,
			MatchNumber:  1,
			DisplayLabel: "Grand Final Reset",
			Team1ID:      &team1,
			Team2ID:      &team2,
			Status:       models.MatchStatusScheduled,
		}
		effects.Created = append(effects.Created, reset)
		return
	}

	id := winnerID
	effects.ChampionID = &id
}

func setScores(m *models.Match, p ResultParams) {
	s1, s2 := p.Team1Score, p.Team2Score
	m.Team1Score = &s1
	m.Team2Score = &s2
}

func scoreEqual(have *int, want int) bool {
	return have != nil && *have == want
}

func slotsFilled(n *TemplateNode, m *models.Match) bool {
	slot1 := m.Team1ID != nil || n.Slot1.Kind == SlotBye
	slot2 := m.Team2ID != nil || n.Slot2.Kind == SlotBye
	return slot1 && slot2
}

// applyIncoming writes a team into slot position of the target match. Bye
// targets complete immediately and cascade onward; byes never require human
// input. Non-bye targets flip to scheduled the moment both slots are
// resolved, regardless of which side arrived first.
func applyIncoming(t *BracketTemplate, byKey map[TemplateKey]*models.Match, key TemplateKey, position int, teamID int, changed *changeSet) error {
	target := byKey[key]
	node := t.Node(key)
	if target == nil || node == nil {
		return ErrMatchNotFound
	}

	id := teamID
	if position == 1 {
		target.Team1ID = &id
	} else {
		target.Team2ID = &id
	}
	changed.add(target)

	if node.IsBye {
		if target.Status != models.MatchStatusCompleted {
			completeBye(t, byKey, node, target, teamID, changed)
		}
		return nil
	}
	if target.Status == models.MatchStatusPending && slotsFilled(node, target) {
		target.Status = models.MatchStatusScheduled
	}
	return nil
}

// completeBye finishes a bye match with its sole occupant as winner and
// cascades the survivor into the next match.
func completeBye(t *BracketTemplate, byKey map[TemplateKey]*models.Match, node *TemplateNode, match *models.Match, survivorID int, changed *changeSet) {
	id := survivorID
	match.WinnerID = &id
	match.Status = models.MatchStatusCompleted
	changed.add(match)
	if node.NextKey != nil {
		// Bye nodes carry no loser edge, so only the winner moves on.
		_ = applyIncoming(t, byKey, *node.NextKey, node.NextPosition, survivorID, changed)
	}
}

// checkDownstreamUndecided rejects a winner correction once any decisive
// match downstream of this one has completed, including a played grand-final
// reset.
func checkDownstreamUndecided(t *BracketTemplate, byKey map[TemplateKey]*models.Match, node *TemplateNode, match *models.Match) error {
	if node == nil {
		// Grand-final reset: terminal, nothing downstream.
		return nil
	}
	if node.Key == t.ChampionshipKey() {
		if _, exists := byKey[grandFinalResetKey]; exists {
			return ErrDownstreamCompleted
		}
	}

	visited := make(map[TemplateKey]bool)
	var walk func(key TemplateKey) error
	walk = func(key TemplateKey) error {
		if visited[key] {
			return nil
		}
		visited[key] = true
		n := t.Node(key)
		m := byKey[key]
		if n == nil || m == nil {
			return nil
		}
		if m.Status == models.MatchStatusCompleted && !n.IsBye {
			return ErrDownstreamCompleted
		}
		if n.NextKey != nil {
			if err := walk(*n.NextKey); err != nil {
				return err
			}
		}
		if n.LoserNextKey != nil {
			if err := walk(*n.LoserNextKey); err != nil {
				return err
			}
		}
		return nil
	}

	if node.NextKey != nil {
		if err := walk(*node.NextKey); err != nil {
			return err
		}
	}
	if node.LoserNextKey != nil {
		if err := walk(*node.LoserNextKey); err != nil {
			return err
		}
	}
	return nil
}

// clearPropagation unwinds what an earlier result wrote downstream: the fed
// slots are emptied, bye auto-completions are reopened and recursively
// unwound, and statuses fall back to pending.
func clearPropagation(t *BracketTemplate, byKey map[TemplateKey]*models.Match, node *TemplateNode, changed *changeSet) {
	clearEdge := func(key TemplateKey, position int) {
		target := byKey[key]
		n := t.Node(key)
		if target == nil || n == nil {
			return
		}
		if position == 1 {
			target.Team1ID = nil
		} else {
			target.Team2ID = nil
		}
		if n.IsBye && target.Status == models.MatchStatusCompleted {
			target.WinnerID = nil
			target.Team1Score = nil
			target.Team2Score = nil
			target.Status = models.MatchStatusPending
			clearPropagation(t, byKey, n, changed)
		} else if target.Status == models.MatchStatusScheduled {
			target.Status = models.MatchStatusPending
		}
		changed.add(target)
	}

	if node.NextKey != nil {
		clearEdge(*node.NextKey, node.NextPosition)
	}
	if node.LoserNextKey != nil {
		clearEdge(*node.LoserNextKey, node.LoserNextPosition)
	}
}
