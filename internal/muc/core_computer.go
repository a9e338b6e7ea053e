// Package muc computes minimal unsatisfiable cores: minimal subsets
// of an assumption set under which a program has no model.
package muc

import (
	"context"
	"errors"

	"github.com/krr-up/clingo-explaid/internal/asp"
	"github.com/krr-up/clingo-explaid/internal/logging"
	"github.com/krr-up/clingo-explaid/internal/solver"
)

// ErrEmptyAssumptionSet is returned when a core is requested for an
// empty assumption set.
var ErrEmptyAssumptionSet = errors.New("a minimal unsatisfiable core cannot be computed on an empty assumption set")

// Oracle is the satisfiability check the computer relies on.
type Oracle interface {
	Solve(ctx context.Context, assumptions asp.AssumptionSet) (solver.Result, error)
}

// CoreComputer minimizes unsatisfiable cores over a fixed program and
// assumption set.
type CoreComputer struct {
	oracle      Oracle
	assumptions asp.AssumptionSet

	// Minimal holds the core found by the last Shrink call. It stays
	// nil until Shrink runs; an empty set means the program is
	// unsatisfiable independently of the assumptions.
	Minimal asp.AssumptionSet
}

// New creates a computer for the given oracle and assumption set.
func New(oracle Oracle, assumptions asp.AssumptionSet) *CoreComputer {
	return &CoreComputer{oracle: oracle, assumptions: assumptions}
}

func (c *CoreComputer) satisfiable(ctx context.Context, assumptions asp.AssumptionSet) (bool, error) {
	result, err := c.oracle.Solve(ctx, assumptions)
	if err != nil {
		return false, err
	}
	return result.Satisfiable, nil
}

// computeSingleMinimal finds one minimal unsatisfiable core of the
// given assumptions by iterative deletion. If the program is
// satisfiable under the full set the returned core is empty.
func (c *CoreComputer) computeSingleMinimal(ctx context.Context, assumptions asp.AssumptionSet) (asp.AssumptionSet, error) {
	if len(assumptions) == 0 {
		return nil, ErrEmptyAssumptionSet
	}

	sat, err := c.satisfiable(ctx, assumptions)
	if err != nil {
		return nil, err
	}
	if sat {
		return asp.AssumptionSet{}, nil
	}

	log := logging.Get(logging.CategoryMUC)
	var members asp.AssumptionSet
	working := append(asp.AssumptionSet{}, assumptions...)

	for _, assumption := range assumptions {
		working = working.Without(assumption)

		sat, err := c.satisfiable(ctx, working.Union(members))
		if err != nil {
			return nil, err
		}
		if !sat {
			continue
		}
		// Removing the assumption made the program satisfiable, so it
		// belongs to the core.
		members = append(members, assumption)
		log.Debug("core member found: %s", assumption)

		// If the members found so far are already unsatisfiable on
		// their own the core is complete.
		sat, err = c.satisfiable(ctx, members)
		if err != nil {
			return nil, err
		}
		if !sat {
			break
		}
	}
	return members, nil
}

// Shrink minimizes the given assumptions (the computer's full set
// when nil) and stores the result in Minimal.
func (c *CoreComputer) Shrink(ctx context.Context, assumptions asp.AssumptionSet) error {
	if assumptions == nil {
		assumptions = c.assumptions
	}
	minimal, err := c.computeSingleMinimal(ctx, assumptions)
	if err != nil {
		return err
	}
	c.Minimal = minimal
	return nil
}

// AllMinimal enumerates distinct minimal unsatisfiable cores of the
// computer's assumption set, calling fn for each. Enumeration stops
// when fn returns false or after maxCores cores (0 means unbounded).
// The number of cores reported is returned. The search walks subsets
// largest-first, skipping subsets of known satisfiable sets and
// supersets of cores already found; it is exponential in the size of
// the assumption set.
func (c *CoreComputer) AllMinimal(ctx context.Context, maxCores int, fn func(asp.AssumptionSet) bool) (int, error) {
	var (
		foundSat  []asp.AssumptionSet
		foundMUCs []asp.AssumptionSet
	)

	n := len(c.assumptions)
	for size := n; size >= 1; size-- {
		stop, err := c.walkSubsets(ctx, size, func(subset asp.AssumptionSet) (bool, error) {
			for _, sat := range foundSat {
				if subset.SubsetOf(sat) {
					return false, nil
				}
			}
			for _, muc := range foundMUCs {
				if muc.SubsetOf(subset) {
					return false, nil
				}
			}

			core, err := c.computeSingleMinimal(ctx, subset)
			if err != nil {
				return false, err
			}
			if len(core) == 0 {
				foundSat = append(foundSat, subset)
				return false, nil
			}
			for _, known := range foundMUCs {
				if known.Equal(core) {
					return false, nil
				}
			}
			foundMUCs = append(foundMUCs, core)
			if !fn(core) {
				return true, nil
			}
			if maxCores > 0 && len(foundMUCs) == maxCores {
				return true, nil
			}
			return false, nil
		})
		if err != nil {
			return len(foundMUCs), err
		}
		if stop {
			break
		}
	}
	return len(foundMUCs), nil
}

// walkSubsets visits all subsets of the assumption set with the given
// size. The visitor returns true to stop the whole enumeration.
func (c *CoreComputer) walkSubsets(ctx context.Context, size int, visit func(asp.AssumptionSet) (bool, error)) (bool, error) {
	subset := make(asp.AssumptionSet, 0, size)
	var walk func(start int) (bool, error)
	walk = func(start int) (bool, error) {
		if err := ctx.Err(); err != nil {
			return true, err
		}
		if len(subset) == size {
			return visit(append(asp.AssumptionSet{}, subset...))
		}
		for i := start; i <= len(c.assumptions)-(size-len(subset)); i++ {
			subset = append(subset, c.assumptions[i])
			stop, err := walk(i + 1)
			subset = subset[:len(subset)-1]
			if err != nil || stop {
				return stop, err
			}
		}
		return false, nil
	}
	return walk(0)
}
