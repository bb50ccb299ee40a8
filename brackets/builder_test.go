package brackets

import (
	"testing"

	"github.com/Khyle1o1/student-management-system-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTemplateRejectsTooFewTeams(t *testing.T) {
	for _, teamCount := range []int{-1, 0, 1} {
		for _, bracketType := range []models.BracketType{models.BracketSingleElimination, models.BracketDoubleElimination} {
			_, err := BuildTemplate(TemplateParams{TeamCount: teamCount, Type: bracketType})
			assert.ErrorIs(t, err, ErrInvalidTeamCount, "teamCount=%d type=%s", teamCount, bracketType)
		}
	}
}

func TestBuildTemplateRejectsUnknownType(t *testing.T) {
	_, err := BuildTemplate(TemplateParams{TeamCount: 4, Type: "round_robin"})
	require.Error(t, err)
}

func TestSingleEliminationDecisiveMatchCount(t *testing.T) {
	for teamCount := 2; teamCount <= 33; teamCount++ {
		tpl, err := BuildTemplate(TemplateParams{
			TeamCount: teamCount,
			Type:      models.BracketSingleElimination,
		})
		require.NoError(t, err, "teamCount=%d", teamCount)
		assert.Equal(t, teamCount-1, tpl.DecisiveMatchCount(), "teamCount=%d", teamCount)
	}
}

func TestDoubleEliminationDecisiveMatchCount(t *testing.T) {
	// Everyone but the champion is eliminated twice, so 2n-2 decisive
	// matches before any bracket reset.
	for teamCount := 2; teamCount <= 17; teamCount++ {
		tpl, err := BuildTemplate(TemplateParams{
			TeamCount: teamCount,
			Type:      models.BracketDoubleElimination,
		})
		require.NoError(t, err, "teamCount=%d", teamCount)
		assert.Equal(t, 2*teamCount-2, tpl.DecisiveMatchCount(), "teamCount=%d", teamCount)
	}
}

func TestBuildTemplateIsDeterministic(t *testing.T) {
	params := TemplateParams{TeamCount: 13, Type: models.BracketDoubleElimination}

	first, err := BuildTemplate(params)
	require.NoError(t, err)
	second, err := BuildTemplate(params)
	require.NoError(t, err)

	require.Equal(t, len(first.Nodes), len(second.Nodes))
	for i := range first.Nodes {
		assert.Equal(t, *first.Nodes[i], *second.Nodes[i])
	}
}

func TestSingleEliminationFiveTeams(t *testing.T) {
	tpl, err := BuildTemplate(TemplateParams{
		TeamCount: 5,
		Type:      models.BracketSingleElimination,
	})
	require.NoError(t, err)

	assert.Equal(t, 8, tpl.Size)
	assert.Equal(t, 4, tpl.DecisiveMatchCount())

	// Byes land on the top three seeds' first matches.
	m1 := tpl.Node("W1M1")
	require.NotNil(t, m1)
	assert.True(t, m1.IsBye)
	assert.Equal(t, SeedSlot(1), m1.Slot1)

	m3 := tpl.Node("W1M3")
	require.NotNil(t, m3)
	assert.True(t, m3.IsBye)
	assert.Equal(t, SeedSlot(2), m3.Slot1)

	m4 := tpl.Node("W1M4")
	require.NotNil(t, m4)
	assert.True(t, m4.IsBye)
	assert.Equal(t, SeedSlot(3), m4.Slot1)

	// The only decisive round-1 match pits the two bottom seeds.
	m2 := tpl.Node("W1M2")
	require.NotNil(t, m2)
	assert.False(t, m2.IsBye)
	assert.Equal(t, SeedSlot(4), m2.Slot1)
	assert.Equal(t, SeedSlot(5), m2.Slot2)
}

func TestSingleEliminationSeedSeparation(t *testing.T) {
	// Seeds 1 and 2 start in opposite halves of a full bracket.
	tpl, err := BuildTemplate(TemplateParams{
		TeamCount: 8,
		Type:      models.BracketSingleElimination,
	})
	require.NoError(t, err)

	assert.Equal(t, SeedSlot(1), tpl.Node("W1M1").Slot1)
	assert.Equal(t, SeedSlot(8), tpl.Node("W1M1").Slot2)
	assert.Equal(t, SeedSlot(2), tpl.Node("W1M3").Slot1)
	assert.Equal(t, SeedSlot(7), tpl.Node("W1M3").Slot2)
}

func TestSingleEliminationFinalIsTerminal(t *testing.T) {
	tpl, err := BuildTemplate(TemplateParams{
		TeamCount: 8,
		Type:      models.BracketSingleElimination,
	})
	require.NoError(t, err)

	final := tpl.Node("F1")
	require.NotNil(t, final)
	assert.True(t, final.Terminal())
	assert.Equal(t, models.StageFinal, final.Stage)
	assert.Equal(t, TemplateKey("F1"), tpl.ChampionshipKey())

	semi := tpl.Node("W2M1")
	require.NotNil(t, semi)
	require.NotNil(t, semi.NextKey)
	assert.Equal(t, TemplateKey("F1"), *semi.NextKey)
	assert.Equal(t, 1, semi.NextPosition)
}

func TestSingleEliminationThirdPlace(t *testing.T) {
	tpl, err := BuildTemplate(TemplateParams{
		TeamCount:      8,
		Type:           models.BracketSingleElimination,
		WithThirdPlace: true,
	})
	require.NoError(t, err)

	tp := tpl.Node("TP1")
	require.NotNil(t, tp)
	assert.True(t, tp.IsThirdPlace)
	assert.True(t, tp.Terminal())
	assert.Equal(t, LoserOf("W2M1"), tp.Slot1)
	assert.Equal(t, LoserOf("W2M2"), tp.Slot2)

	// Semifinal losers drop into the third-place match.
	semi1 := tpl.Node("W2M1")
	require.NotNil(t, semi1.LoserNextKey)
	assert.Equal(t, TemplateKey("TP1"), *semi1.LoserNextKey)
	assert.Equal(t, 1, semi1.LoserNextPosition)
	semi2 := tpl.Node("W2M2")
	require.NotNil(t, semi2.LoserNextKey)
	assert.Equal(t, TemplateKey("TP1"), *semi2.LoserNextKey)
	assert.Equal(t, 2, semi2.LoserNextPosition)

	// Decisive count ignores the third-place match.
	assert.Equal(t, 7, tpl.DecisiveMatchCount())
}

func TestSingleEliminationThirdPlaceWithByeSemifinal(t *testing.T) {
	// With three teams one semifinal is a bye, so the third-place match has
	// a permanent bye on that side.
	tpl, err := BuildTemplate(TemplateParams{
		TeamCount:      3,
		Type:           models.BracketSingleElimination,
		WithThirdPlace: true,
	})
	require.NoError(t, err)

	tp := tpl.Node("TP1")
	require.NotNil(t, tp)
	assert.Equal(t, ByeSlot(), tp.Slot1)
	assert.Equal(t, LoserOf("W1M2"), tp.Slot2)
	assert.True(t, tp.IsBye)

	// The bye semifinal has no loser to drop; the played one feeds TP1.
	assert.Nil(t, tpl.Node("W1M1").LoserNextKey)
	w1m2 := tpl.Node("W1M2")
	require.NotNil(t, w1m2.LoserNextKey)
	assert.Equal(t, TemplateKey("TP1"), *w1m2.LoserNextKey)
}

func TestDoubleEliminationTwoTeams(t *testing.T) {
	tpl, err := BuildTemplate(TemplateParams{
		TeamCount: 2,
		Type:      models.BracketDoubleElimination,
	})
	require.NoError(t, err)

	require.Len(t, tpl.Nodes, 2)

	wf := tpl.Node("W1M1")
	require.NotNil(t, wf)
	require.NotNil(t, wf.LoserNextKey)
	assert.Equal(t, TemplateKey("GF1"), *wf.LoserNextKey)
	assert.Equal(t, 2, wf.LoserNextPosition)

	gf := tpl.Node("GF1")
	require.NotNil(t, gf)
	assert.Equal(t, WinnerOf("W1M1"), gf.Slot1)
	assert.Equal(t, LoserOf("W1M1"), gf.Slot2)
}

func TestDoubleEliminationFourTeams(t *testing.T) {
	tpl, err := BuildTemplate(TemplateParams{
		TeamCount: 4,
		Type:      models.BracketDoubleElimination,
	})
	require.NoError(t, err)

	require.Len(t, tpl.Nodes, 6)
	for _, key := range []TemplateKey{"W1M1", "W1M2", "W2M1", "L1M1", "F1", "GF1"} {
		assert.NotNil(t, tpl.Node(key), "missing node %s", key)
	}

	// Round-1 losers pair up in the losers bracket.
	l1 := tpl.Node("L1M1")
	assert.Equal(t, LoserOf("W1M1"), l1.Slot1)
	assert.Equal(t, LoserOf("W1M2"), l1.Slot2)

	// The winners-final loser drops into the losers final.
	final := tpl.Node("F1")
	assert.Equal(t, WinnerOf("L1M1"), final.Slot1)
	assert.Equal(t, LoserOf("W2M1"), final.Slot2)
	require.NotNil(t, final.NextKey)
	assert.Equal(t, TemplateKey("GF1"), *final.NextKey)
	assert.Equal(t, 2, final.NextPosition)

	gf := tpl.Node("GF1")
	assert.Equal(t, WinnerOf("W2M1"), gf.Slot1)
	assert.Equal(t, WinnerOf("F1"), gf.Slot2)
	assert.Equal(t, TemplateKey("GF1"), tpl.ChampionshipKey())
}

func TestDoubleEliminationEightTeamsLosersStructure(t *testing.T) {
	tpl, err := BuildTemplate(TemplateParams{
		TeamCount: 8,
		Type:      models.BracketDoubleElimination,
	})
	require.NoError(t, err)

	// 7 winners nodes, 5 losers nodes, losers final, grand final.
	require.Len(t, tpl.Nodes, 14)

	losersByRound := map[int]int{}
	for _, n := range tpl.Nodes {
		if n.Stage == models.StageLosers {
			losersByRound[n.StageRound]++
		}
	}
	assert.Equal(t, map[int]int{1: 2, 2: 2, 3: 1}, losersByRound)

	// Drop order reverses on even winners rounds to delay rematches.
	w2m1 := tpl.Node("W2M1")
	require.NotNil(t, w2m1.LoserNextKey)
	assert.Equal(t, TemplateKey("L2M2"), *w2m1.LoserNextKey)
	w2m2 := tpl.Node("W2M2")
	require.NotNil(t, w2m2.LoserNextKey)
	assert.Equal(t, TemplateKey("L2M1"), *w2m2.LoserNextKey)

	// Losers-bracket survivors feed slot 2 of the drop-in matches.
	l1m1 := tpl.Node("L1M1")
	require.NotNil(t, l1m1.NextKey)
	assert.Equal(t, TemplateKey("L2M1"), *l1m1.NextKey)
	assert.Equal(t, 2, l1m1.NextPosition)
}

func TestDoubleEliminationFiveTeamsPrunesDeadLosersNodes(t *testing.T) {
	tpl, err := BuildTemplate(TemplateParams{
		TeamCount: 5,
		Type:      models.BracketDoubleElimination,
	})
	require.NoError(t, err)

	// Both feeders of L1M2 are round-1 byes; the node can never host a team
	// and must not exist.
	assert.Nil(t, tpl.Node("L1M2"))

	l1m1 := tpl.Node("L1M1")
	require.NotNil(t, l1m1)
	assert.True(t, l1m1.IsBye)
	assert.Equal(t, ByeSlot(), l1m1.Slot1)
	assert.Equal(t, LoserOf("W1M2"), l1m1.Slot2)

	// The pruned node's outlet became a permanent bye.
	l2m2 := tpl.Node("L2M2")
	require.NotNil(t, l2m2)
	assert.Equal(t, ByeSlot(), l2m2.Slot2)
	assert.True(t, l2m2.IsBye)

	assert.Equal(t, 8, tpl.DecisiveMatchCount())
}

func TestValidateDetectsCycle(t *testing.T) {
	tpl, err := BuildTemplate(TemplateParams{
		TeamCount: 4,
		Type:      models.BracketSingleElimination,
	})
	require.NoError(t, err)

	// Point the final back at a semifinal.
	tpl.Node("F1").NextKey = keyPtr("W1M1")
	tpl.Node("F1").NextPosition = 1

	assert.Error(t, tpl.Validate())
}
