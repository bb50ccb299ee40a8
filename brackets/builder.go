package brackets

import (
	"fmt"

	"github.com/Khyle1o1/student-management-system-sub000/models"
)

const (
	finalKey           TemplateKey = "F1"
	grandFinalKey      TemplateKey = "GF1"
	grandFinalResetKey TemplateKey = "GF2"
	thirdPlaceKey      TemplateKey = "TP1"
)

// TemplateParams carries everything template construction needs. Seeds are
// abstract at this point; teams are bound later by the seeding controller.
type TemplateParams struct {
	TeamCount      int
	Type           models.BracketType
	WithThirdPlace bool
}

// BuildTemplate maps (team count, bracket type) to a static bracket graph.
// The construction is deterministic: identical params always yield an
// identical template.
func BuildTemplate(p TemplateParams) (*BracketTemplate, error) {
	if p.TeamCount < 2 {
		return nil, ErrInvalidTeamCount
	}
	switch p.Type {
	case models.BracketSingleElimination:
		return buildSingleElimination(p)
	case models.BracketDoubleElimination:
		return buildDoubleElimination(p)
	default:
		return nil, fmt.Errorf("unsupported bracket type %q", p.Type)
	}
}

func bracketSize(teamCount int) int {
	size := 1
	for size < teamCount {
		size <<= 1
	}
	return size
}

func bracketRounds(size int) int {
	rounds := 0
	for s := size; s > 1; s >>= 1 {
		rounds++
	}
	return rounds
}

// seedOrder produces the standard seed pairing for a full bracket: seed 1
// meets the lowest-ranked opponent, and the top seeds cannot meet before the
// last rounds. Seeds are 0-based here; seeds >= teamCount become byes, which
// lands every bye on a top seed's first match.
func seedOrder(size int) [][2]int {
	order := []int{0}
	for len(order) < size {
		grown := make([]int, 0, len(order)*2)
		count := len(order) * 2
		for _, seed := range order {
			grown = append(grown, seed, count-1-seed)
		}
		order = grown
	}

	pairs := make([][2]int, 0, size/2)
	for i := 0; i < len(order); i += 2 {
		pairs = append(pairs, [2]int{order[i], order[i+1]})
	}
	return pairs
}

func winnersKey(round, match int) TemplateKey {
	return TemplateKey(fmt.Sprintf("W%dM%d", round, match))
}

func losersKey(round, match int) TemplateKey {
	return TemplateKey(fmt.Sprintf("L%dM%d", round, match))
}

func seedOrByeSlot(seed, teamCount int) SlotSource {
	if seed >= teamCount {
		return ByeSlot()
	}
	return SeedSlot(seed + 1)
}

// buildMainRounds constructs the full winners-side bracket round by round.
// When relabelFinal is set (single elimination) the last node becomes the
// final stage node instead of the last winners round.
func buildMainRounds(t *BracketTemplate, relabelFinal bool) [][]*TemplateNode {
	rounds := bracketRounds(t.Size)
	pairs := seedOrder(t.Size)
	byRound := make([][]*TemplateNode, rounds)

	for r := 1; r <= rounds; r++ {
		matchCount := t.Size >> uint(r)
		nodes := make([]*TemplateNode, matchCount)

		for m := 1; m <= matchCount; m++ {
			node := &TemplateNode{
				Key:         winnersKey(r, m),
				Stage:       models.StageWinners,
				StageRound:  r,
				MatchNumber: m,
			}
			if relabelFinal && r == rounds {
				node.Key = finalKey
				node.Stage = models.StageFinal
				node.StageRound = 1
			}

			if r == 1 {
				pair := pairs[m-1]
				node.Slot1 = seedOrByeSlot(pair[0], t.TeamCount)
				node.Slot2 = seedOrByeSlot(pair[1], t.TeamCount)
				node.IsBye = node.ByeSlotPosition() != 0
			} else {
				feeder1 := byRound[r-2][2*m-2]
				feeder2 := byRound[r-2][2*m-1]
				node.Slot1 = WinnerOf(feeder1.Key)
				node.Slot2 = WinnerOf(feeder2.Key)
				feeder1.NextKey = keyPtr(node.Key)
				feeder1.NextPosition = 1
				feeder2.NextKey = keyPtr(node.Key)
				feeder2.NextPosition = 2
			}

			t.add(node)
			nodes[m-1] = node
		}
		byRound[r-1] = nodes
	}
	return byRound
}

func buildSingleElimination(p TemplateParams) (*BracketTemplate, error) {
	size := bracketSize(p.TeamCount)
	t := newTemplate(models.BracketSingleElimination, p.TeamCount, size)
	byRound := buildMainRounds(t, true)

	if p.WithThirdPlace && len(byRound) >= 2 {
		semis := byRound[len(byRound)-2]
		tp := &TemplateNode{
			Key:          thirdPlaceKey,
			Stage:        models.StageFinal,
			StageRound:   1,
			MatchNumber:  2,
			IsThirdPlace: true,
		}
		// A bye semifinal produces no loser, so that side of the
		// third-place match is a permanent bye.
		tp.Slot1 = dropLoser(semis[0], thirdPlaceKey, 1)
		tp.Slot2 = dropLoser(semis[1], thirdPlaceKey, 2)
		tp.IsBye = tp.ByeSlotPosition() != 0
		t.add(tp)
	}

	return t, t.Validate()
}

// dropLoser wires a winners node's loser edge into target/position and
// returns the matching slot source. Byes produce no loser.
func dropLoser(feeder *TemplateNode, target TemplateKey, position int) SlotSource {
	if feeder.IsBye {
		return ByeSlot()
	}
	feeder.LoserNextKey = keyPtr(target)
	feeder.LoserNextPosition = position
	return LoserOf(feeder.Key)
}

// buildDoubleElimination builds the winners bracket, a losers bracket using
// the standard drop-down pattern (winners round 1 losers pair up in losers
// round 1, each later winners round drops into the following even losers
// round, survivors pair up in the odd rounds), a losers final where the
// winners-final loser drops in, and the grand final. The bracket-reset
// rematch is not part of the template; the progression engine materializes
// it when the losers-route finalist wins the grand final.
func buildDoubleElimination(p TemplateParams) (*BracketTemplate, error) {
	size := bracketSize(p.TeamCount)
	t := newTemplate(models.BracketDoubleElimination, p.TeamCount, size)
	byRound := buildMainRounds(t, false)
	totalRounds := len(byRound)
	winnersFinal := byRound[totalRounds-1][0]

	gf := &TemplateNode{
		Key:         grandFinalKey,
		Stage:       models.StageGrandFinal,
		StageRound:  1,
		MatchNumber: 1,
		Slot1:       WinnerOf(winnersFinal.Key),
	}
	winnersFinal.NextKey = keyPtr(grandFinalKey)
	winnersFinal.NextPosition = 1

	if totalRounds == 1 {
		// Two teams: the grand final is an immediate rematch.
		gf.Slot2 = LoserOf(winnersFinal.Key)
		winnersFinal.LoserNextKey = keyPtr(grandFinalKey)
		winnersFinal.LoserNextPosition = 2
		t.add(gf)
		return t, t.Validate()
	}

	// Losers round 1: winners round 1 losers pair up.
	round1 := byRound[0]
	survivors := make([]*TemplateNode, 0, len(round1)/2)
	for m := 1; m <= len(round1)/2; m++ {
		key := losersKey(1, m)
		node := &TemplateNode{
			Key:         key,
			Stage:       models.StageLosers,
			StageRound:  1,
			MatchNumber: m,
		}
		node.Slot1 = dropLoser(round1[2*m-2], key, 1)
		node.Slot2 = dropLoser(round1[2*m-1], key, 2)
		node.IsBye = node.ByeSlotPosition() != 0
		t.add(node)
		survivors = append(survivors, node)
	}

	lbRound := 1
	for k := 2; k <= totalRounds-1; k++ {
		droppers := byRound[k-1]

		// Drop-in round: survivors meet the losers of winners round k.
		// Drop order reverses on even rounds so early rematches are rare.
		lbRound++
		merged := make([]*TemplateNode, len(survivors))
		for m := 1; m <= len(survivors); m++ {
			dropper := droppers[m-1]
			if k%2 == 0 {
				dropper = droppers[len(droppers)-m]
			}
			key := losersKey(lbRound, m)
			node := &TemplateNode{
				Key:         key,
				Stage:       models.StageLosers,
				StageRound:  lbRound,
				MatchNumber: m,
			}
			node.Slot1 = dropLoser(dropper, key, 1)
			node.Slot2 = WinnerOf(survivors[m-1].Key)
			survivors[m-1].NextKey = keyPtr(key)
			survivors[m-1].NextPosition = 2
			t.add(node)
			merged[m-1] = node
		}

		// Pairing round: drop-in winners play each other.
		lbRound++
		survivors = make([]*TemplateNode, len(merged)/2)
		for m := 1; m <= len(merged)/2; m++ {
			feeder1 := merged[2*m-2]
			feeder2 := merged[2*m-1]
			key := losersKey(lbRound, m)
			node := &TemplateNode{
				Key:         key,
				Stage:       models.StageLosers,
				StageRound:  lbRound,
				MatchNumber: m,
				Slot1:       WinnerOf(feeder1.Key),
				Slot2:       WinnerOf(feeder2.Key),
			}
			feeder1.NextKey = keyPtr(key)
			feeder1.NextPosition = 1
			feeder2.NextKey = keyPtr(key)
			feeder2.NextPosition = 2
			t.add(node)
			survivors[m-1] = node
		}
	}

	// Losers final: the losers-bracket survivor meets the winners-final
	// loser. Its winner is the losers-route grand finalist.
	lbChampion := survivors[0]
	final := &TemplateNode{
		Key:         finalKey,
		Stage:       models.StageFinal,
		StageRound:  1,
		MatchNumber: 1,
		Slot1:       WinnerOf(lbChampion.Key),
		Slot2:       dropLoser(winnersFinal, finalKey, 2),
	}
	lbChampion.NextKey = keyPtr(finalKey)
	lbChampion.NextPosition = 1
	final.NextKey = keyPtr(grandFinalKey)
	final.NextPosition = 2
	t.add(final)

	gf.Slot2 = WinnerOf(finalKey)
	t.add(gf)

	pruneDeadLoserNodes(t)
	return t, t.Validate()
}

// pruneDeadLoserNodes removes losers-stage nodes both of whose slots are
// permanent byes (possible when round-1 byes are dense). Such a node can
// never host a team, so it is dropped and its outlet becomes a bye slot of
// the downstream node. Runs to a fixpoint since removal can create new
// double-bye nodes.
func pruneDeadLoserNodes(t *BracketTemplate) {
	for {
		var dead *TemplateNode
		for _, n := range t.Nodes {
			if n.Stage == models.StageLosers && n.Slot1.Kind == SlotBye && n.Slot2.Kind == SlotBye {
				dead = n
				break
			}
		}
		if dead == nil {
			return
		}
		if dead.NextKey != nil {
			target := t.Node(*dead.NextKey)
			if dead.NextPosition == 1 {
				target.Slot1 = ByeSlot()
			} else {
				target.Slot2 = ByeSlot()
			}
			target.IsBye = target.ByeSlotPosition() != 0 && !(target.Slot1.Kind == SlotBye && target.Slot2.Kind == SlotBye)
		}
		t.remove(dead.Key)
	}
}
