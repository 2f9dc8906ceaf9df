// Package rules evaluates league-configurable claim eligibility expressions.
// Commissioners may attach a CEL expression to a league, e.g.
//
//	bid.amount >= 1 && size(bid.releases) <= 2
//
// A bid failing the rule is excluded from the winner pool at selection time.
package rules

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/leaguehq/frontoffice/common/models"
)

// Evaluator evaluates eligibility rules using CEL, caching compiled programs
// so a rule is compiled once per process.
type Evaluator struct {
	cache map[string]cel.Program
	mu    sync.RWMutex
}

// NewEvaluator creates a new rule evaluator
func NewEvaluator() *Evaluator {
	return &Evaluator{
		cache: make(map[string]cel.Program),
	}
}

// Check evaluates the league's rule against a bid. An empty rule allows
// everything. A malformed rule is a league configuration error and aborts
// the batch rather than silently admitting bids.
func (e *Evaluator) Check(rule string, bid *models.Bid, league *models.League) (bool, error) {
	if rule == "" {
		return true, nil
	}

	prg, err := e.program(rule)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]interface{}{
		"bid": map[string]interface{}{
			"amount":     bid.BidAmount,
			"claim_type": string(bid.ClaimType),
			"team_id":    bid.ClaimantTeamID,
			"player_id":  bid.SubjectPlayerID,
			"releases":   bid.ReleasePlayerIDs,
		},
		"league": map[string]interface{}{
			"league_id":  league.LeagueID,
			"salary_cap": league.SalaryCap,
			"period":     league.CurrentPeriod,
		},
	})
	if err != nil {
		return false, fmt.Errorf("rule evaluation error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule did not return boolean, got %T", out.Value())
	}

	return result, nil
}

func (e *Evaluator) program(rule string) (cel.Program, error) {
	e.mu.RLock()
	prg, exists := e.cache[rule]
	e.mu.RUnlock()

	if exists {
		return prg, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("bid", cel.DynType),
		cel.Variable("league", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rule env: %w", err)
	}

	ast, issues := env.Compile(rule)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile rule %q: %w", rule, issues.Err())
	}

	prg, err = env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule program: %w", err)
	}

	e.mu.Lock()
	e.cache[rule] = prg
	e.mu.Unlock()

	return prg, nil
}
