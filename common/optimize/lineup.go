// Package optimize computes optimal auction acquisitions: the set of free
// agents maximizing projected points subject to a salary budget and the
// league's positional lineup constraints.
//
// The problem is a 0/1 integer program; pools are small (tens of players),
// so an exact branch-and-bound search over lineup slots is used instead of
// an external solver. The bound is the sum of the best remaining projected
// points, which keeps the search well under the full combinatorial space.
package optimize

import (
	"errors"
	"math"
	"sort"
)

// ErrInfeasible is returned when no lineup satisfies the constraints, e.g.
// the budget cannot cover mandatory positions. Callers treat it as "no
// recommendation", not a fatal error.
var ErrInfeasible = errors.New("optimize: constraints are infeasible")

// Player is one candidate in the pool. Active players are already rostered:
// they are forced into the lineup, count against positional constraints, and
// cost nothing since they are not re-purchased.
type Player struct {
	ID              string  `json:"id"`
	Position        string  `json:"position"`
	Cost            float64 `json:"cost"`
	ProjectedPoints float64 `json:"projected_points"`
	Active          bool    `json:"active"`
}

// Constraint is one positional requirement. Min == Max expresses an exact
// count; a flex constraint lists several eligible positions and may span a
// range.
type Constraint struct {
	Name      string   `json:"name"`
	Positions []string `json:"positions"`
	Min       int      `json:"min"`
	Max       int      `json:"max"`
}

// Input carries the pool, the spendable budget and the slot constraints.
type Input struct {
	Pool        []Player     `json:"players"`
	Budget      int64        `json:"cap_budget"`
	Constraints []Constraint `json:"position_constraints"`
}

// Result is the optimal acquisition set. ObjectiveValue is the summed
// rounded projected points of every selected player, active ones included.
type Result struct {
	Selected       []Player `json:"selected_players"`
	ObjectiveValue int64    `json:"objective_value"`
	TotalCost      int64    `json:"total_cost"`
}

// candidate is a pool player with integer cost and points. Rounding before
// the search avoids floating-point infeasibility at budget boundaries.
type candidate struct {
	player Player
	cost   int64
	points int64
}

// slot is one expanded lineup opening. Optional slots come from Max > Min
// and may be left empty.
type slot struct {
	eligible map[string]bool
	key      string
	optional bool
}

// Lineup solves the acquisition problem exactly for the given inputs.
// The returned objective is optimal for this one-shot formulation; it does
// not model bye weeks or week-to-week correlation between players.
func Lineup(in Input) (*Result, error) {
	for _, c := range in.Constraints {
		if c.Min < 0 || c.Max < c.Min || len(c.Positions) == 0 {
			return nil, ErrInfeasible
		}
	}

	slots := expandSlots(in.Constraints)
	if len(slots) == 0 {
		return &Result{Selected: []Player{}}, nil
	}

	candidates := make([]candidate, 0, len(in.Pool))
	for _, p := range in.Pool {
		cost := int64(math.Round(p.Cost))
		if p.Active {
			cost = 0
		}
		candidates = append(candidates, candidate{
			player: p,
			cost:   cost,
			points: int64(math.Round(p.ProjectedPoints)),
		})
	}

	// Highest points first: good solutions surface early, which tightens
	// the branch-and-bound pruning.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].points != candidates[j].points {
			return candidates[i].points > candidates[j].points
		}
		return candidates[i].player.ID < candidates[j].player.ID
	})

	s := &search{
		slots:      slots,
		candidates: candidates,
		budget:     in.Budget,
		used:       make([]bool, len(candidates)),
		assignment: make([]int, len(slots)),
		bestValue:  -1,
	}

	// Remaining-points prefix sums for the upper bound.
	s.pointsSuffix = make([]int64, len(candidates)+1)
	for i := len(candidates) - 1; i >= 0; i-- {
		s.pointsSuffix[i] = s.pointsSuffix[i+1] + candidates[i].points
	}

	if !s.placeActives() {
		return nil, ErrInfeasible
	}

	s.explore(0, 0, 0)

	if s.bestValue < 0 {
		return nil, ErrInfeasible
	}

	result := &Result{
		Selected:       make([]Player, 0, len(s.best)),
		ObjectiveValue: s.bestValue,
		TotalCost:      s.bestCost,
	}
	for _, idx := range s.best {
		result.Selected = append(result.Selected, s.candidates[idx].player)
	}
	sort.Slice(result.Selected, func(i, j int) bool {
		return result.Selected[i].ID < result.Selected[j].ID
	})

	return result, nil
}

type search struct {
	slots        []slot
	candidates   []candidate
	budget       int64
	used         []bool
	assignment   []int // candidate index per slot, -1 = empty
	pointsSuffix []int64

	activePoints int64 // contributed by forced-in active players

	best      []int
	bestValue int64
	bestCost  int64
}

// placeActives force-assigns every already-rostered player to a compatible
// slot via backtracking matching. Failure means the lineup configuration
// cannot even hold the current roster.
func (s *search) placeActives() bool {
	for i := range s.assignment {
		s.assignment[i] = -1
	}

	var match func(ci int) bool
	tried := make([]bool, len(s.slots))

	match = func(ci int) bool {
		c := s.candidates[ci]
		for si := range s.slots {
			if tried[si] || !s.slots[si].eligible[c.player.Position] {
				continue
			}
			tried[si] = true
			if s.assignment[si] == -1 || match(s.assignment[si]) {
				s.assignment[si] = ci
				return true
			}
		}
		return false
	}

	for ci := range s.candidates {
		if !s.candidates[ci].player.Active {
			continue
		}
		for i := range tried {
			tried[i] = false
		}
		if !match(ci) {
			return false
		}
		s.used[ci] = true
		s.activePoints += s.candidates[ci].points
	}
	return true
}

// explore fills open slots in order, tracking spent budget and accumulated
// free-agent points. Identical adjacent slots only consider candidates at or
// after the previous slot's pick, so permutations are not revisited.
func (s *search) explore(si int, spent int64, points int64) {
	// Upper bound: everything gained so far plus the best remaining points
	// regardless of eligibility or budget.
	openSlots := 0
	for i := si; i < len(s.slots); i++ {
		if s.assignment[i] == -1 {
			openSlots++
		}
	}
	bound := points + s.activePoints + s.boundFor(openSlots)
	if bound <= s.bestValue {
		return
	}

	if si == len(s.slots) {
		s.record(spent, points)
		return
	}

	if s.assignment[si] != -1 { // taken by an active player
		s.explore(si+1, spent, points)
		return
	}

	start := 0
	if si > 0 && s.slots[si].key == s.slots[si-1].key && s.assignment[si-1] != -1 && !s.candidates[s.assignment[si-1]].player.Active {
		start = s.assignment[si-1] + 1
	}

	for ci := start; ci < len(s.candidates); ci++ {
		c := s.candidates[ci]
		if s.used[ci] || c.player.Active || !s.slots[si].eligible[c.player.Position] {
			continue
		}
		if spent+c.cost > s.budget {
			continue
		}

		s.used[ci] = true
		s.assignment[si] = ci
		s.explore(si+1, spent+c.cost, points+c.points)
		s.assignment[si] = -1
		s.used[ci] = false
	}

	if s.slots[si].optional {
		s.explore(si+1, spent, points)
	}
}

func (s *search) record(spent int64, points int64) {
	total := points + s.activePoints
	if total <= s.bestValue {
		return
	}

	s.bestValue = total
	s.bestCost = spent
	s.best = s.best[:0]
	for _, ci := range s.assignment {
		if ci != -1 {
			s.best = append(s.best, ci)
		}
	}
}

// boundFor returns the sum of the n highest remaining candidate points.
func (s *search) boundFor(n int) int64 {
	var sum int64
	count := 0
	for ci := range s.candidates {
		if count == n {
			break
		}
		if s.used[ci] {
			continue
		}
		sum += s.candidates[ci].points
		count++
	}
	return sum
}

// expandSlots turns constraints into individual openings: Min required slots
// per constraint plus Max-Min optional ones, required slots first so active
// players land in mandatory openings before flex ones.
func expandSlots(constraints []Constraint) []slot {
	var required, optional []slot
	for _, c := range constraints {
		eligible := make(map[string]bool, len(c.Positions))
		key := c.Name
		for _, p := range c.Positions {
			eligible[p] = true
		}
		for i := 0; i < c.Min; i++ {
			required = append(required, slot{eligible: eligible, key: key})
		}
		for i := 0; i < c.Max-c.Min; i++ {
			optional = append(optional, slot{eligible: eligible, key: key, optional: true})
		}
	}
	return append(required, optional...)
}
