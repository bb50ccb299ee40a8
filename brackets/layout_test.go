package brackets

import (
	"testing"

	"github.com/Khyle1o1/student-management-system-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findEdge(t *testing.T, layout *BracketLayout, from, to string) LayoutEdge {
	t.Helper()
	for _, e := range layout.Edges {
		if e.From == from && e.To == to {
			return e
		}
	}
	t.Fatalf("no edge %s -> %s in layout", from, to)
	return LayoutEdge{}
}

func hasEdge(layout *BracketLayout, from, to string) bool {
	for _, e := range layout.Edges {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

func TestProjectSingleEliminationGrid(t *testing.T) {
	tpl, matches := buildFixture(t, 4, models.BracketSingleElimination, false)

	layout := Project(tpl, matches)

	w1m1, ok := layout.Nodes["W1M1"]
	require.True(t, ok)
	assert.Equal(t, LayoutMargin, w1m1.X)
	assert.Equal(t, LayoutMargin+LayoutBaseSpacing/2-LayoutNodeHeight/2, w1m1.Y)
	assert.Equal(t, LayoutNodeWidth, w1m1.Width)
	assert.Equal(t, LayoutNodeHeight, w1m1.Height)

	w1m2, ok := layout.Nodes["W1M2"]
	require.True(t, ok)
	assert.Equal(t, LayoutBaseSpacing, w1m2.Y-w1m1.Y)

	// The final has no team yet so it is not drawn, and neither are its
	// feeder edges.
	_, ok = layout.Nodes["F1"]
	assert.False(t, ok)
	assert.False(t, hasEdge(layout, "W1M1", "F1"))

	assert.Greater(t, layout.Width, 0.0)
	assert.Greater(t, layout.Height, 0.0)
}

func TestProjectFinalCenteredOverFeeders(t *testing.T) {
	tpl, matches := buildFixture(t, 4, models.BracketSingleElimination, false)
	tournament := lockedTournament(models.BracketSingleElimination, false)
	recordWin(t, tpl, tournament, matches, "W1M1", 101)

	layout := Project(tpl, matches)

	final, ok := layout.Nodes["F1"]
	require.True(t, ok)
	assert.Equal(t, LayoutMargin+LayoutColumnWidth, final.X)

	w1m1 := layout.Nodes["W1M1"]
	w1m2 := layout.Nodes["W1M2"]
	feederMid := (w1m1.Y + w1m2.Y) / 2
	assert.Equal(t, feederMid, final.Y)

	assert.True(t, hasEdge(layout, "W1M1", "F1"))
	assert.True(t, hasEdge(layout, "W1M2", "F1"))
	assert.Equal(t, EdgeWinner, findEdge(t, layout, "W1M1", "F1").Kind)
}

func TestProjectSuppressesUnreachedRounds(t *testing.T) {
	tpl, matches := buildFixture(t, 8, models.BracketSingleElimination, false)

	layout := Project(tpl, matches)

	for _, key := range []string{"W1M1", "W1M2", "W1M3", "W1M4"} {
		_, ok := layout.Nodes[key]
		assert.True(t, ok, "round one match %s should be drawn", key)
	}
	for _, key := range []string{"W2M1", "W2M2", "F1"} {
		_, ok := layout.Nodes[key]
		assert.False(t, ok, "unreached match %s should be suppressed", key)
	}
}

func TestProjectByeMatchesAlwaysDrawn(t *testing.T) {
	tpl, matches := buildFixture(t, 5, models.BracketSingleElimination, false)

	layout := Project(tpl, matches)

	_, ok := layout.Nodes["W1M1"]
	assert.True(t, ok, "bye matches stay visible")
}

func TestProjectDoubleEliminationGrids(t *testing.T) {
	tpl, matches := buildFixture(t, 4, models.BracketDoubleElimination, false)
	tournament := lockedTournament(models.BracketDoubleElimination, false)
	playToGrandFinal(t, tpl, tournament, matches)

	layout := Project(tpl, matches)

	w1m2 := layout.Nodes["W1M2"]
	w2m1 := layout.Nodes["W2M1"]
	winnersBottom := w1m2.Y + w1m2.Height

	l1m1, ok := layout.Nodes["L1M1"]
	require.True(t, ok)
	losersTop := winnersBottom + 2.5*LayoutBaseSpacing
	assert.Equal(t, losersTop+LayoutBaseSpacing/2-LayoutNodeHeight/2, l1m1.Y)
	assert.Equal(t, LayoutMargin, l1m1.X)

	// Finals columns continue to the right of the winners bracket, level
	// with the last winners match.
	final, ok := layout.Nodes["F1"]
	require.True(t, ok)
	assert.Equal(t, LayoutMargin+2*LayoutColumnWidth, final.X)
	assert.Equal(t, w2m1.Y, final.Y)

	gf, ok := layout.Nodes["GF1"]
	require.True(t, ok)
	assert.Equal(t, LayoutMargin+3*LayoutColumnWidth, gf.X)
	assert.Equal(t, w2m1.Y, gf.Y)

	assert.Equal(t, EdgeLoser, findEdge(t, layout, "W1M1", "L1M1").Kind)
	assert.Equal(t, EdgeLoser, findEdge(t, layout, "W2M1", "F1").Kind)
	assert.Equal(t, EdgeWinner, findEdge(t, layout, "L1M1", "F1").Kind)
	assert.Equal(t, EdgeGrandFinal, findEdge(t, layout, "W2M1", "GF1").Kind)
	assert.Equal(t, EdgeGrandFinal, findEdge(t, layout, "F1", "GF1").Kind)
}

func TestProjectGrandFinalResetColumn(t *testing.T) {
	tpl, matches := buildFixture(t, 4, models.BracketDoubleElimination, false)
	tournament := lockedTournament(models.BracketDoubleElimination, true)
	playToGrandFinal(t, tpl, tournament, matches)

	effects := recordWin(t, tpl, tournament, matches, "GF1", 102)
	require.Len(t, effects.Created, 1)
	reset := effects.Created[0]
	reset.ID = len(matches) + 1
	matches = append(matches, reset)

	layout := Project(tpl, matches)

	gf2, ok := layout.Nodes["GF2"]
	require.True(t, ok)
	assert.Equal(t, LayoutMargin+4*LayoutColumnWidth, gf2.X)
	assert.Equal(t, layout.Nodes["GF1"].Y, gf2.Y)
	assert.Equal(t, EdgeGrandFinal, findEdge(t, layout, "GF1", "GF2").Kind)
}

func TestProjectEdgePathsAreOrthogonal(t *testing.T) {
	tpl, matches := buildFixture(t, 8, models.BracketDoubleElimination, false)
	tournament := lockedTournament(models.BracketDoubleElimination, false)
	recordWin(t, tpl, tournament, matches, "W1M1", 101)
	recordWin(t, tpl, tournament, matches, "W1M2", 104)

	layout := Project(tpl, matches)
	require.NotEmpty(t, layout.Edges)

	for _, e := range layout.Edges {
		require.Len(t, e.Path, 4, "edge %s -> %s", e.From, e.To)
		assert.Equal(t, e.Path[0].Y, e.Path[1].Y)
		assert.Equal(t, e.Path[1].X, e.Path[2].X)
		assert.Equal(t, e.Path[2].Y, e.Path[3].Y)

		src := layout.Nodes[e.From]
		dst := layout.Nodes[e.To]
		assert.Equal(t, src.X+src.Width, e.Path[0].X)
		assert.Equal(t, dst.X, e.Path[3].X)
	}
}
