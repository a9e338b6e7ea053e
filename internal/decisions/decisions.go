// Package decisions traces how assumptions drive a program towards
// its model, reporting each decision together with the consequences
// it entails.
package decisions

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/krr-up/clingo-explaid/internal/asp"
	"github.com/krr-up/clingo-explaid/internal/logging"
	"github.com/krr-up/clingo-explaid/internal/solver"
)

// Decision is a single signed atom: a choice made for or against it.
type Decision struct {
	Positive bool
	Atom     asp.Atom
}

func (d Decision) String() string {
	sign := "+"
	if !d.Positive {
		sign = "-"
	}
	return fmt.Sprintf("(%s) %s", sign, d.Atom.String())
}

// Step couples a decision with the consequences first derived once it
// was taken.
type Step struct {
	Decision    Decision
	Entailments []Decision
}

// Tracer replays a sequence of assumptions one at a time and records
// what each of them entails.
type Tracer struct {
	// Signatures restricts the reported entailments; nil or empty
	// reports everything. Decisions themselves are always reported.
	Signatures map[asp.Signature]bool

	// OnDecision, when set, is called for every completed step.
	OnDecision func(Step)

	// OnUndo, when set, is called with the decision that made the
	// accumulated assumptions unsatisfiable.
	OnUndo func(Decision)
}

// Trace applies the assumptions in order against the solver. After
// each assumption it solves the accumulated prefix and diffs the model
// against the previous one; atoms appearing for the first time are the
// entailments of that decision. It stops early when a prefix becomes
// unsatisfiable and reports the steps taken so far along with the
// unsatisfiable result.
func (t *Tracer) Trace(ctx context.Context, s *solver.Solver, assumptions asp.AssumptionSet) ([]Step, solver.Result, error) {
	log := logging.Get(logging.CategorySolve)

	seen := make(map[string]bool)
	result, err := s.Solve(ctx, nil)
	if err != nil {
		return nil, solver.Result{}, err
	}
	for _, atom := range result.Model {
		seen[atom.String()] = true
	}

	var steps []Step
	var prefix asp.AssumptionSet
	for _, assumption := range assumptions {
		prefix = append(prefix, assumption)
		result, err = s.Solve(ctx, prefix)
		if err != nil {
			return steps, solver.Result{}, err
		}

		step := Step{Decision: Decision{Positive: assumption.Sign, Atom: assumption.Atom}}
		seen[assumption.Atom.String()] = true
		if result.Satisfiable {
			for _, atom := range result.Model {
				key := atom.String()
				if seen[key] {
					continue
				}
				seen[key] = true
				if !t.wanted(atom) {
					continue
				}
				step.Entailments = append(step.Entailments, Decision{Positive: true, Atom: atom})
			}
			sort.Slice(step.Entailments, func(i, j int) bool {
				return step.Entailments[i].Atom.String() < step.Entailments[j].Atom.String()
			})
		}
		steps = append(steps, step)
		if t.OnDecision != nil {
			t.OnDecision(step)
		}
		if !result.Satisfiable {
			log.Info("unsatisfiable after %d decisions", len(steps))
			if t.OnUndo != nil {
				t.OnUndo(step.Decision)
			}
			break
		}
	}
	return steps, result, nil
}

func (t *Tracer) wanted(atom asp.Atom) bool {
	if len(t.Signatures) == 0 {
		return true
	}
	return t.Signatures[atom.Signature()]
}

// Render formats the steps, one decision per line with its
// entailments indented below it.
func Render(steps []Step) string {
	var sb strings.Builder
	for _, step := range steps {
		sb.WriteString(step.Decision.String())
		sb.WriteString("\n")
		for _, e := range step.Entailments {
			sb.WriteString("    ")
			sb.WriteString(e.String())
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
