package solver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"github.com/krr-up/clingo-explaid/internal/asp"
	"github.com/krr-up/clingo-explaid/internal/logging"
	"github.com/krr-up/clingo-explaid/internal/transform"
)

// ErrUnstratified is reported when a program cannot be evaluated
// because its negation is not stratified.
var ErrUnstratified = errors.New("program is not stratified")

// Options configures a Solver.
type Options struct {
	// Constants maps #const names to replacement terms, overriding
	// #const directives of the program.
	Constants map[string]asp.Term
	// EvalTimeout bounds a single evaluation when the caller's context
	// carries no deadline. Zero means a 30 second default.
	EvalTimeout time.Duration
}

// Result is the outcome of a single oracle call.
type Result struct {
	// Satisfiable reports whether the program has a model under the
	// given assumptions.
	Satisfiable bool
	// Model holds the derived atoms (the least model restricted to
	// derivable atoms) when satisfiable.
	Model []asp.Atom
	// Core holds the assumptions in play when unsatisfiable.
	Core asp.AssumptionSet
}

// Solver decides satisfiability of a ground program under
// assumptions. It is built once per program; Solve may be called many
// times with different assumption sets.
type Solver struct {
	ground      *GroundProgram
	baseClauses []ast.Clause
	markerName  string
	terms       *termTable
	opts        Options
}

// New parses nothing itself: it takes an already parsed program,
// strips optimization statements, substitutes constants, relaxes
// integrity constraints into marker rules, and grounds the result.
// The candidates are atoms that may later be assumed; they take part
// in grounding like choice elements.
func New(prog *asp.Program, candidates []asp.Atom, opts Options) (*Solver, error) {
	transform.OptimizationRemover{}.Apply(prog)
	applyConstants(prog, opts.Constants)

	ct := transform.NewConstraintTransformer(transform.UnsatConstraintSignature, true)
	before := countConstraints(prog)
	ct.Apply(prog)

	ground, err := Ground(prog, candidates)
	if err != nil {
		return nil, err
	}

	s := &Solver{
		ground: ground,
		terms:  newTermTable(),
		opts:   opts,
	}
	if before > 0 {
		s.markerName = transform.UnsatConstraintSignature
	}
	if err := s.buildBaseClauses(); err != nil {
		return nil, err
	}
	return s, nil
}

// GroundProgram exposes the grounding result, mainly for inspection.
func (s *Solver) GroundProgram() *GroundProgram { return s.ground }

func countConstraints(prog *asp.Program) int {
	n := 0
	for _, stmt := range prog.Statements {
		if _, ok := stmt.(*asp.Constraint); ok {
			n++
		}
	}
	return n
}

func (s *Solver) buildBaseClauses() error {
	heads := make(map[string]bool)

	for _, fact := range s.ground.Facts {
		atom, err := s.terms.atomToMangle(fact)
		if err != nil {
			return err
		}
		s.baseClauses = append(s.baseClauses, ast.Clause{Head: atom})
		heads[fact.String()] = true
	}
	for _, rule := range s.ground.Rules {
		head, err := s.terms.atomToMangle(rule.Head)
		if err != nil {
			return err
		}
		clause := ast.Clause{Head: head}
		for _, pos := range rule.Pos {
			atom, err := s.terms.atomToMangle(pos)
			if err != nil {
				return err
			}
			clause.Premises = append(clause.Premises, atom)
		}
		for _, neg := range rule.Neg {
			atom, err := s.terms.atomToMangle(neg)
			if err != nil {
				return err
			}
			clause.Premises = append(clause.Premises, ast.NegAtom{Atom: atom})
		}
		s.baseClauses = append(s.baseClauses, clause)
		heads[rule.Head.String()] = true
	}

	// Choice atoms that never occur as a head get a vacuous identity
	// clause, so every predicate reaching the evaluator is defined.
	for _, choice := range s.ground.ChoiceAtoms.Sorted() {
		if heads[choice.String()] {
			continue
		}
		atom, err := s.terms.atomToMangle(choice)
		if err != nil {
			return err
		}
		s.baseClauses = append(s.baseClauses, ast.Clause{Head: atom, Premises: []ast.Term{atom}})
	}
	return nil
}

// Solve evaluates the program with the given assumptions. Positive
// assumptions become facts; atoms of negative assumptions must not be
// derivable, otherwise the result is unsatisfiable. An unsatisfiable
// result carries the assumption set as its core.
func (s *Solver) Solve(ctx context.Context, assumptions asp.AssumptionSet) (Result, error) {
	log := logging.Get(logging.CategorySolve)
	timer := logging.StartTimer(logging.CategorySolve, "solve")
	defer timer.Stop()

	clauses := make([]ast.Clause, len(s.baseClauses), len(s.baseClauses)+len(assumptions))
	copy(clauses, s.baseClauses)
	for _, a := range assumptions {
		if !a.Sign {
			continue
		}
		atom, err := s.terms.atomToMangle(a.Atom)
		if err != nil {
			return Result{}, err
		}
		clauses = append(clauses, ast.Clause{Head: atom})
	}

	model, err := s.eval(ctx, clauses)
	if err != nil {
		return Result{}, err
	}

	derived := make(asp.AtomSet)
	for _, atom := range model {
		derived.Add(atom)
	}

	satisfiable := true
	if s.markerName != "" {
		for _, atom := range model {
			if atom.Name == s.markerName {
				satisfiable = false
				break
			}
		}
	}
	for _, a := range assumptions {
		if !a.Sign && derived.Contains(a.Atom) {
			satisfiable = false
			break
		}
	}
	if satisfiable {
		for key, guards := range s.ground.Guards {
			if _, ok := derived[key]; !ok {
				continue
			}
			supported := false
			for _, guard := range guards {
				if derived.Contains(guard) {
					supported = true
					break
				}
			}
			if !supported {
				satisfiable = false
				break
			}
		}
	}

	result := Result{Satisfiable: satisfiable}
	if satisfiable {
		for _, atom := range model {
			if atom.Name == ChoiceGuardName {
				continue
			}
			result.Model = append(result.Model, atom)
		}
	} else {
		result.Core = append(asp.AssumptionSet{}, assumptions...)
	}
	log.Debug("solve with %d assumptions: satisfiable=%v, model=%d atoms",
		len(assumptions), satisfiable, len(model))
	return result, nil
}

func (s *Solver) eval(ctx context.Context, clauses []ast.Clause) ([]asp.Atom, error) {
	unit := parse.SourceUnit{Clauses: clauses}
	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		if strings.Contains(err.Error(), "strat") {
			return nil, fmt.Errorf("%w: %v", ErrUnstratified, err)
		}
		return nil, fmt.Errorf("analyze ground program: %w", err)
	}

	timeout := s.opts.EvalTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	store := factstore.NewSimpleInMemoryStore()
	errCh := make(chan error, 1)
	go func() {
		_, err := mengine.EvalProgramWithStats(programInfo, store)
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return nil, fmt.Errorf("evaluate ground program: %w", err)
		}
	case <-ctx.Done():
		return nil, fmt.Errorf("evaluation aborted: %w", ctx.Err())
	}

	var model []asp.Atom
	for _, sym := range store.ListPredicates() {
		err := store.GetFacts(ast.NewQuery(sym), func(fact ast.Atom) error {
			atom, err := s.terms.atomFromMangle(fact)
			if err != nil {
				return err
			}
			model = append(model, atom)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("read model: %w", err)
		}
	}
	return model, nil
}

func applyConstants(prog *asp.Program, overrides map[string]asp.Term) {
	consts := make(map[string]asp.Term)
	kept := prog.Statements[:0]
	for _, stmt := range prog.Statements {
		if c, ok := stmt.(*asp.Const); ok {
			consts[c.Name] = c.Value
			continue
		}
		kept = append(kept, stmt)
	}
	prog.Statements = kept
	for name, value := range overrides {
		consts[name] = value
	}
	if len(consts) == 0 {
		return
	}

	var substTerm func(t asp.Term) asp.Term
	substTerm = func(t asp.Term) asp.Term {
		switch term := t.(type) {
		case asp.Constant:
			if v, ok := consts[string(term)]; ok {
				return v
			}
			return term
		case asp.Function:
			args := make([]asp.Term, len(term.Args))
			for i, arg := range term.Args {
				args[i] = substTerm(arg)
			}
			return asp.Function{Name: term.Name, Args: args}
		default:
			return term
		}
	}
	substAtom := func(a asp.Atom) asp.Atom {
		args := make([]asp.Term, len(a.Args))
		for i, arg := range a.Args {
			args[i] = substTerm(arg)
		}
		return asp.Atom{Name: a.Name, Args: args}
	}
	substBody := func(body []asp.BodyElement) {
		for i, elem := range body {
			switch e := elem.(type) {
			case asp.Literal:
				e.Atom = substAtom(e.Atom)
				body[i] = e
			case asp.Comparison:
				e.Left = substTerm(e.Left)
				e.Right = substTerm(e.Right)
				body[i] = e
			}
		}
	}

	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *asp.Fact:
			s.Head = substAtom(s.Head)
		case *asp.Rule:
			s.Head = substAtom(s.Head)
			substBody(s.Body)
		case *asp.Constraint:
			substBody(s.Body)
		case *asp.Choice:
			for i, e := range s.Elements {
				s.Elements[i] = substAtom(e)
			}
			substBody(s.Body)
		}
	}
}
