package brackets

import (
	"sort"

	"github.com/Khyle1o1/student-management-system-sub000/models"
)

// Layout geometry. The numbers are canvas units; the caller scales them
// however it likes, only the ratios matter to the bracket shape.
const (
	LayoutNodeWidth   = 180.0
	LayoutNodeHeight  = 64.0
	LayoutColumnWidth = 240.0
	LayoutBaseSpacing = 96.0
	LayoutMargin      = 40.0

	// Gap between the winners grid and the losers grid, in base spacings.
	losersGapFactor = 2.5
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type LayoutNode struct {
	Key     string              `json:"key"`
	Stage   models.BracketStage `json:"stage"`
	MatchID int                 `json:"match_id"`
	X       float64             `json:"x"`
	Y       float64             `json:"y"`
	Width   float64             `json:"width"`
	Height  float64             `json:"height"`
}

type EdgeKind string

const (
	EdgeWinner     EdgeKind = "winner"
	EdgeLoser      EdgeKind = "loser"
	EdgeGrandFinal EdgeKind = "grand_final"
)

// LayoutEdge is an orthogonal connector between two drawn nodes. Kind is a
// rendering hint (solid vs dashed is the caller's policy).
type LayoutEdge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
	Path []Point  `json:"path"`
}

type BracketLayout struct {
	Nodes  map[string]LayoutNode `json:"nodes"`
	Edges  []LayoutEdge          `json:"edges"`
	Width  float64               `json:"width"`
	Height float64               `json:"height"`
}

// Project maps the template graph plus live match states to drawable
// coordinates. Pure: no mutation, no I/O, safe to call on every render.
//
// Winners rounds double their vertical spacing each column, which keeps a
// match centered over its two feeders. Losers rounds grow linearly and sit
// in a second grid below the winners grid. Nodes with no team yet and no bye
// are suppressed so half-empty brackets do not render walls of "TBD vs TBD".
func Project(t *BracketTemplate, matches []*models.Match) *BracketLayout {
	layout := &BracketLayout{Nodes: make(map[string]LayoutNode)}
	byKey := indexByKey(matches)

	winnersRounds := t.WinnersRounds()
	singleElim := t.Type == models.BracketSingleElimination

	var winnersBottom, lastWinnersY float64
	haveWinners := false

	// Winners grid (for single elimination the final and third place are
	// just the last chain columns, so they share the power-law grid).
	for _, n := range t.Nodes {
		m := byKey[n.Key]
		if m == nil || !visible(m) {
			continue
		}

		var col int
		switch {
		case n.Stage == models.StageWinners:
			col = n.StageRound - 1
		case singleElim && n.Stage == models.StageFinal:
			col = winnersRounds
		default:
			continue
		}

		// Match numbers place the third-place match below the final.
		spacing := LayoutBaseSpacing * float64(int(1)<<uint(col))
		y := LayoutMargin + spacing/2 - LayoutNodeHeight/2 + float64(n.MatchNumber-1)*spacing
		node := LayoutNode{
			Key:     string(n.Key),
			Stage:   n.Stage,
			MatchID: m.ID,
			X:       LayoutMargin + float64(col)*LayoutColumnWidth,
			Y:       y,
			Width:   LayoutNodeWidth,
			Height:  LayoutNodeHeight,
		}
		layout.Nodes[node.Key] = node

		if bottom := node.Y + node.Height; bottom > winnersBottom {
			winnersBottom = bottom
		}
		if n.Stage == models.StageWinners && n.StageRound == winnersRounds {
			lastWinnersY = node.Y
			haveWinners = true
		}
	}

	// Losers grid: linear spacing, offset below the winners grid. The
	// power-law doubling would overlap here because losers rounds shrink at
	// half the rate of winners rounds.
	losersTop := winnersBottom + losersGapFactor*LayoutBaseSpacing
	var losersBottom float64
	for _, n := range t.Nodes {
		if n.Stage != models.StageLosers {
			continue
		}
		m := byKey[n.Key]
		if m == nil || !visible(m) {
			continue
		}
		col := n.StageRound - 1
		spacing := LayoutBaseSpacing * float64(col+1)
		node := LayoutNode{
			Key:     string(n.Key),
			Stage:   n.Stage,
			MatchID: m.ID,
			X:       LayoutMargin + float64(col)*LayoutColumnWidth,
			Y:       losersTop + spacing/2 - LayoutNodeHeight/2 + float64(n.MatchNumber-1)*spacing,
			Width:   LayoutNodeWidth,
			Height:  LayoutNodeHeight,
		}
		layout.Nodes[node.Key] = node
		if bottom := node.Y + node.Height; bottom > losersBottom {
			losersBottom = bottom
		}
	}

	// Finals column(s) for double elimination: right of the winners bracket,
	// anchored to the last winners match, with a fixed fallback when the
	// winners grid rendered nothing.
	if !singleElim {
		anchorY := LayoutMargin + LayoutBaseSpacing
		if haveWinners {
			anchorY = lastWinnersY
		}
		finalsCol := winnersRounds
		for _, key := range []TemplateKey{finalKey, grandFinalKey, grandFinalResetKey} {
			m := byKey[key]
			if m == nil || !visible(m) {
				continue
			}
			stage := models.StageFinal
			if key != finalKey {
				stage = models.StageGrandFinal
			}
			node := LayoutNode{
				Key:     string(key),
				Stage:   stage,
				MatchID: m.ID,
				X:       LayoutMargin + float64(finalsCol)*LayoutColumnWidth,
				Y:       anchorY,
				Width:   LayoutNodeWidth,
				Height:  LayoutNodeHeight,
			}
			layout.Nodes[node.Key] = node
			finalsCol++
		}
	}

	layout.Edges = buildEdges(t, layout.Nodes)

	for _, n := range layout.Nodes {
		if right := n.X + n.Width + LayoutMargin; right > layout.Width {
			layout.Width = right
		}
		if bottom := n.Y + n.Height + LayoutMargin; bottom > layout.Height {
			layout.Height = bottom
		}
	}
	return layout
}

// visible suppresses placeholder matches nothing has reached yet. A node is
// drawn once it has at least one team, or permanently for byes.
func visible(m *models.Match) bool {
	return m.Team1ID != nil || m.Team2ID != nil || m.IsBye
}

func buildEdges(t *BracketTemplate, nodes map[string]LayoutNode) []LayoutEdge {
	var edges []LayoutEdge

	addEdge := func(from, to TemplateKey, kind EdgeKind) {
		src, okSrc := nodes[string(from)]
		dst, okDst := nodes[string(to)]
		if !okSrc || !okDst {
			return
		}
		edges = append(edges, LayoutEdge{
			From: string(from),
			To:   string(to),
			Kind: kind,
			Path: orthogonalPath(src, dst),
		})
	}

	for _, n := range t.Nodes {
		if n.NextKey != nil {
			kind := EdgeWinner
			if t.Node(*n.NextKey).Stage == models.StageGrandFinal {
				kind = EdgeGrandFinal
			}
			addEdge(n.Key, *n.NextKey, kind)
		}
		if n.LoserNextKey != nil {
			addEdge(n.Key, *n.LoserNextKey, EdgeLoser)
		}
	}
	// The materialized reset match has no template node; connect it by hand.
	if _, ok := nodes[string(grandFinalResetKey)]; ok {
		addEdge(grandFinalKey, grandFinalResetKey, EdgeGrandFinal)
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// orthogonalPath routes from the right edge of src to the left edge of dst
// as horizontal-vertical-horizontal segments.
func orthogonalPath(src, dst LayoutNode) []Point {
	startX := src.X + src.Width
	startY := src.Y + src.Height/2
	endX := dst.X
	endY := dst.Y + dst.Height/2
	midX := (startX + endX) / 2
	return []Point{
		{X: startX, Y: startY},
		{X: midX, Y: startY},
		{X: midX, Y: endY},
		{X: endX, Y: endY},
	}
}
