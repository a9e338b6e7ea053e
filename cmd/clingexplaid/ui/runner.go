package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/krr-up/clingo-explaid/internal/asp"
	"github.com/krr-up/clingo-explaid/internal/decisions"
	"github.com/krr-up/clingo-explaid/internal/muc"
	"github.com/krr-up/clingo-explaid/internal/solver"
	"github.com/krr-up/clingo-explaid/internal/transform"
	"github.com/krr-up/clingo-explaid/internal/unsatconstraints"
)

// Options configures the computations behind the interface.
type Options struct {
	// Files are the program files to explain.
	Files []string
	// AssumptionSignatures restricts which facts become assumptions;
	// nil means all facts.
	AssumptionSignatures map[asp.Signature]bool
	// MaxCores limits core enumeration; 0 means all.
	MaxCores int
	// EvalTimeout bounds a single solve.
	EvalTimeout time.Duration
	// WatchFiles re-runs the computation when an input file changes.
	WatchFiles bool
}

func (o Options) newSolver() (*solver.Solver, asp.AssumptionSet, error) {
	at := transform.NewAssumptionTransformer(o.AssumptionSignatures)
	prog, err := asp.ParseFiles(o.Files)
	if err != nil {
		return nil, nil, err
	}
	at.Apply(prog)
	assumptions, err := at.Assumptions()
	if err != nil {
		return nil, nil, err
	}
	s, err := solver.New(prog, nil, solver.Options{EvalTimeout: o.EvalTimeout})
	if err != nil {
		return nil, nil, err
	}
	return s, assumptions, nil
}

// ComputeMUC enumerates minimal unsatisfiable cores and renders them.
func ComputeMUC(ctx context.Context, opts Options) (string, error) {
	s, assumptions, err := opts.newSolver()
	if err != nil {
		return "", err
	}

	base, err := s.Solve(ctx, nil)
	if err != nil {
		return "", err
	}
	if !base.Satisfiable {
		return "NO MUCS CONTAINED: The program is unsatisfiable without any assumptions\n", nil
	}
	full, err := s.Solve(ctx, assumptions)
	if err != nil {
		return "", err
	}
	if full.Satisfiable {
		return "SATISFIABLE: Instance has no MUCs\n", nil
	}

	var sb strings.Builder
	count := 0
	computer := muc.New(s, assumptions)
	_, err = computer.AllMinimal(ctx, opts.MaxCores, func(core asp.AssumptionSet) bool {
		count++
		fmt.Fprintf(&sb, "%s\n%s\n", NewStyles().Banner.Render(fmt.Sprintf("MUC %d", count)), core.String())
		return true
	})
	if err != nil {
		return "", err
	}
	if count == 0 {
		return "SATISFIABLE: Instance has no MUCs\n", nil
	}
	return sb.String(), nil
}

// ComputeUnsatConstraints reports the violated constraints with their
// source locations.
func ComputeUnsatConstraints(ctx context.Context, opts Options) (string, error) {
	computer := unsatconstraints.New()
	if err := computer.ParseFiles(opts.Files); err != nil {
		return "", err
	}
	violated, err := computer.UnsatConstraints(ctx, "")
	if err != nil {
		return "", err
	}
	if len(violated) == 0 {
		return "SATISFIABLE: No constraints violated\n", nil
	}

	ids := make([]int, 0, len(violated))
	for id := range violated {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var sb strings.Builder
	for _, id := range ids {
		if loc, ok := computer.ConstraintLocation(id); ok {
			fmt.Fprintf(&sb, "%s  %% %s:%d\n", violated[id], loc.File, loc.Line)
		} else {
			fmt.Fprintln(&sb, violated[id])
		}
	}
	return sb.String(), nil
}

// ComputeDecisions traces the assumptions and renders each decision
// with its entailments.
func ComputeDecisions(ctx context.Context, opts Options) (string, error) {
	s, assumptions, err := opts.newSolver()
	if err != nil {
		return "", err
	}
	tracer := &decisions.Tracer{}
	steps, result, err := tracer.Trace(ctx, s, assumptions)
	if err != nil {
		return "", err
	}
	out := decisions.Render(steps)
	if !result.Satisfiable {
		out += "UNSATISFIABLE\n"
	}
	return out, nil
}
