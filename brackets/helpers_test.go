package brackets

import (
	"testing"

	"github.com/Khyle1o1/student-management-system-sub000/models"
	"github.com/stretchr/testify/require"
)

// buildFixture builds a template, instantiates its matches with sequential
// IDs, links them and seeds teams 101..100+teamCount in order.
func buildFixture(t *testing.T, teamCount int, bracketType models.BracketType, withThirdPlace bool) (*BracketTemplate, []*models.Match) {
	t.Helper()

	tpl, err := BuildTemplate(TemplateParams{
		TeamCount:      teamCount,
		Type:           bracketType,
		WithThirdPlace: withThirdPlace,
	})
	require.NoError(t, err)

	matches := InstantiateMatches(tpl, 1)
	for i, m := range matches {
		m.ID = i + 1
	}
	require.NoError(t, LinkMatches(tpl, matches))

	_, err = AssignSeeds(tpl, matches, fixtureTeamIDs(teamCount))
	require.NoError(t, err)

	return tpl, matches
}

func fixtureTeamIDs(teamCount int) []int {
	ids := make([]int, teamCount)
	for i := range ids {
		ids[i] = 101 + i
	}
	return ids
}

func lockedTournament(bracketType models.BracketType, grandFinalReset bool) *models.Tournament {
	return &models.Tournament{
		ID:              1,
		BracketType:     bracketType,
		Status:          models.TournamentStatusOngoing,
		RandomizeLocked: true,
		GrandFinalReset: grandFinalReset,
	}
}

func matchByKey(t *testing.T, matches []*models.Match, key string) *models.Match {
	t.Helper()
	for _, m := range matches {
		if m.TemplateKey == key {
			return m
		}
	}
	t.Fatalf("no match bound to template key %q", key)
	return nil
}

// recordWin completes the match bound to key with winnerID and default
// scores, failing the test on any engine error.
func recordWin(t *testing.T, tpl *BracketTemplate, tournament *models.Tournament, matches []*models.Match, key string, winnerID int) *AdvancementEffects {
	t.Helper()
	match := matchByKey(t, matches, key)
	effects, err := RecordResult(tpl, tournament, matches, ResultParams{
		MatchID:    match.ID,
		WinnerID:   winnerID,
		Team1Score: 21,
		Team2Score: 10,
	})
	require.NoError(t, err)
	return effects
}
