package brackets

import (
	"fmt"

	"github.com/Khyle1o1/student-management-system-sub000/models"
)

// TemplateKey identifies a slot in the static bracket graph, independent of
// which teams end up playing there. Keys are structural: "W2M3" is winners
// round 2 match 3, "L1M1" losers round 1 match 1, "F1" the final, "GF1" the
// grand final, "TP1" the third-place match.
type TemplateKey string

type SlotKind int

const (
	SlotSeed SlotKind = iota
	SlotWinnerOf
	SlotLoserOf
	SlotBye
)

// SlotSource says where a template slot gets its team from. It is resolved
// once at build time and never re-interpreted as a string at runtime.
type SlotSource struct {
	Kind SlotKind
	Seed int         // 1-based, valid for SlotSeed
	From TemplateKey // valid for SlotWinnerOf / SlotLoserOf
}

func SeedSlot(seed int) SlotSource        { return SlotSource{Kind: SlotSeed, Seed: seed} }
func WinnerOf(key TemplateKey) SlotSource { return SlotSource{Kind: SlotWinnerOf, From: key} }
func LoserOf(key TemplateKey) SlotSource  { return SlotSource{Kind: SlotLoserOf, From: key} }
func ByeSlot() SlotSource                 { return SlotSource{Kind: SlotBye} }

// TemplateNode is one match slot of the static bracket graph.
type TemplateNode struct {
	Key         TemplateKey
	Stage       models.BracketStage
	StageRound  int // 1-based round within the stage
	MatchNumber int // unique within stage+round

	Slot1 SlotSource
	Slot2 SlotSource

	NextKey      *TemplateKey
	NextPosition int // 1 or 2, meaningful when NextKey is set

	LoserNextKey      *TemplateKey
	LoserNextPosition int

	IsBye        bool
	IsThirdPlace bool
}

// ByeSlotPosition returns which slot (1 or 2) is the permanent bye, or 0.
func (n *TemplateNode) ByeSlotPosition() int {
	if n.Slot1.Kind == SlotBye {
		return 1
	}
	if n.Slot2.Kind == SlotBye {
		return 2
	}
	return 0
}

// Terminal reports whether the node has no winner-advancement edge. Only the
// championship node and the third-place match are terminal in a valid
// template.
func (n *TemplateNode) Terminal() bool {
	return n.NextKey == nil
}

// BracketTemplate is the static, acyclic graph a tournament's matches are
// instantiated from. Identical build inputs always produce an identical
// template.
type BracketTemplate struct {
	Type      models.BracketType
	TeamCount int
	Size      int // smallest power of two >= TeamCount
	Nodes     []*TemplateNode

	index map[TemplateKey]*TemplateNode
}

func newTemplate(bracketType models.BracketType, teamCount, size int) *BracketTemplate {
	return &BracketTemplate{
		Type:      bracketType,
		TeamCount: teamCount,
		Size:      size,
		index:     make(map[TemplateKey]*TemplateNode),
	}
}

func (t *BracketTemplate) add(n *TemplateNode) *TemplateNode {
	t.Nodes = append(t.Nodes, n)
	t.index[n.Key] = n
	return n
}

func (t *BracketTemplate) remove(key TemplateKey) {
	delete(t.index, key)
	for i, n := range t.Nodes {
		if n.Key == key {
			t.Nodes = append(t.Nodes[:i], t.Nodes[i+1:]...)
			return
		}
	}
}

// Node looks a template node up by key, nil if absent.
func (t *BracketTemplate) Node(key TemplateKey) *TemplateNode {
	return t.index[key]
}

// WinnersRounds returns the number of rounds in the winners stage. Zero for
// a two-team single elimination, where the only node is the final.
func (t *BracketTemplate) WinnersRounds() int {
	max := 0
	for _, n := range t.Nodes {
		if n.Stage == models.StageWinners && n.StageRound > max {
			max = n.StageRound
		}
	}
	return max
}

// ChampionshipKey returns the key of the node whose winner takes the
// tournament: the final for single elimination, the grand final otherwise.
func (t *BracketTemplate) ChampionshipKey() TemplateKey {
	if t.Type == models.BracketDoubleElimination {
		return grandFinalKey
	}
	return finalKey
}

// DecisiveMatchCount counts non-bye nodes. Every elimination bracket has
// exactly teamCount-1 of them, ignoring the third-place match.
func (t *BracketTemplate) DecisiveMatchCount() int {
	count := 0
	for _, n := range t.Nodes {
		if !n.IsBye && !n.IsThirdPlace {
			count++
		}
	}
	return count
}

// Validate checks the structural invariants of the graph: unique keys,
// resolvable edges, acyclicity, exactly one advancement edge on every
// non-terminal node, and loser edges confined to winners-stage nodes that
// feed a losers bracket or the third-place match.
func (t *BracketTemplate) Validate() error {
	seen := make(map[TemplateKey]bool, len(t.Nodes))
	for _, n := range t.Nodes {
		if seen[n.Key] {
			return fmt.Errorf("duplicate template key %q", n.Key)
		}
		seen[n.Key] = true
	}

	for _, n := range t.Nodes {
		if n.NextKey == nil {
			if n.Key != t.ChampionshipKey() && !n.IsThirdPlace {
				return fmt.Errorf("non-terminal node %q has no advancement edge", n.Key)
			}
		} else {
			if t.Node(*n.NextKey) == nil {
				return fmt.Errorf("node %q advances into unknown key %q", n.Key, *n.NextKey)
			}
			if n.NextPosition != 1 && n.NextPosition != 2 {
				return fmt.Errorf("node %q has invalid advancement position %d", n.Key, n.NextPosition)
			}
		}
		if n.LoserNextKey != nil {
			target := t.Node(*n.LoserNextKey)
			if target == nil {
				return fmt.Errorf("node %q drops losers into unknown key %q", n.Key, *n.LoserNextKey)
			}
			if t.Type != models.BracketDoubleElimination && !target.IsThirdPlace {
				return fmt.Errorf("node %q carries a loser edge in a single-elimination template", n.Key)
			}
			if n.Stage != models.StageWinners {
				return fmt.Errorf("loser edge on non-winners node %q", n.Key)
			}
		}
		for _, slot := range []SlotSource{n.Slot1, n.Slot2} {
			if (slot.Kind == SlotWinnerOf || slot.Kind == SlotLoserOf) && t.Node(slot.From) == nil {
				return fmt.Errorf("node %q references unknown feeder %q", n.Key, slot.From)
			}
		}
	}

	return t.checkAcyclic()
}

func (t *BracketTemplate) checkAcyclic() error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[TemplateKey]int, len(t.Nodes))

	var visit func(key TemplateKey) error
	visit = func(key TemplateKey) error {
		switch state[key] {
		case visiting:
			return fmt.Errorf("advancement cycle through node %q", key)
		case done:
			return nil
		}
		state[key] = visiting
		n := t.Node(key)
		if n.NextKey != nil {
			if err := visit(*n.NextKey); err != nil {
				return err
			}
		}
		if n.LoserNextKey != nil {
			if err := visit(*n.LoserNextKey); err != nil {
				return err
			}
		}
		state[key] = done
		return nil
	}

	for _, n := range t.Nodes {
		if err := visit(n.Key); err != nil {
			return err
		}
	}
	return nil
}

func keyPtr(k TemplateKey) *TemplateKey { return &k }
