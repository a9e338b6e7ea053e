package solver

import (
	"context"
	"testing"

	"go.uber.org/goleak"

	"github.com/krr-up/clingo-explaid/internal/asp"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newSolver(t *testing.T, src string, candidates []asp.Atom) *Solver {
	t.Helper()
	s, err := New(mustParse(t, src), candidates, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func modelContains(model []asp.Atom, atom string) bool {
	for _, a := range model {
		if a.String() == atom {
			return true
		}
	}
	return false
}

func atom(name string, args ...asp.Term) asp.Atom {
	return asp.Atom{Name: name, Args: args}
}

func assume(atoms ...asp.Atom) asp.AssumptionSet {
	out := make(asp.AssumptionSet, len(atoms))
	for i, a := range atoms {
		out[i] = asp.Assumption{Atom: a, Sign: true}
	}
	return out
}

func TestSolveSatisfiable(t *testing.T) {
	s := newSolver(t, "a(1). b(X) :- a(X).", nil)
	result, err := s.Solve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !result.Satisfiable {
		t.Fatal("expected satisfiable")
	}
	for _, want := range []string{"a(1)", "b(1)"} {
		if !modelContains(result.Model, want) {
			t.Errorf("model missing %s: %v", want, result.Model)
		}
	}
}

func TestSolveConstraintViolated(t *testing.T) {
	s := newSolver(t, "a. :- a.", nil)
	result, err := s.Solve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if result.Satisfiable {
		t.Error("expected unsatisfiable: the constraint fires")
	}
}

func TestSolveConstraintNotFiring(t *testing.T) {
	s := newSolver(t, "a. :- b.", nil)
	result, err := s.Solve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !result.Satisfiable {
		t.Error("expected satisfiable: constraint body never holds")
	}
}

func TestSolveWithAssumptions(t *testing.T) {
	s := newSolver(t, "{a}. :- a.", nil)
	ctx := context.Background()

	result, err := s.Solve(ctx, nil)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !result.Satisfiable {
		t.Fatal("without assumptions the choice stays false, expected satisfiable")
	}

	result, err = s.Solve(ctx, assume(atom("a")))
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if result.Satisfiable {
		t.Fatal("assuming a should violate the constraint")
	}
	if len(result.Core) != 1 || result.Core[0].Atom.Name != "a" {
		t.Errorf("core = %v, want [a]", result.Core)
	}
}

func TestSolveNegativeAssumption(t *testing.T) {
	s := newSolver(t, "a.", nil)
	result, err := s.Solve(context.Background(), asp.AssumptionSet{
		{Atom: atom("a"), Sign: false},
	})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if result.Satisfiable {
		t.Error("a is derived, assuming not a must be unsatisfiable")
	}
}

func TestSolveRepeated(t *testing.T) {
	// The solver is built once and queried with varying assumptions.
	s := newSolver(t, "{a(1); a(2)}. :- a(1), a(2).", nil)
	ctx := context.Background()

	cases := []struct {
		assumptions asp.AssumptionSet
		satisfiable bool
	}{
		{nil, true},
		{assume(atom("a", asp.Number(1))), true},
		{assume(atom("a", asp.Number(2))), true},
		{assume(atom("a", asp.Number(1)), atom("a", asp.Number(2))), false},
	}
	for i, tc := range cases {
		result, err := s.Solve(ctx, tc.assumptions)
		if err != nil {
			t.Fatalf("case %d: Solve failed: %v", i, err)
		}
		if result.Satisfiable != tc.satisfiable {
			t.Errorf("case %d: satisfiable = %v, want %v", i, result.Satisfiable, tc.satisfiable)
		}
	}
}

func TestSolveConstSubstitution(t *testing.T) {
	s := newSolver(t, "#const n = 2. a(n).", nil)
	result, err := s.Solve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !modelContains(result.Model, "a(2)") {
		t.Errorf("constant not substituted: %v", result.Model)
	}
}

func TestSolveConstOverride(t *testing.T) {
	prog := mustParse(t, "#const n = 2. a(n).")
	s, err := New(prog, nil, Options{Constants: map[string]asp.Term{"n": asp.Number(5)}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	result, err := s.Solve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !modelContains(result.Model, "a(5)") {
		t.Errorf("constant override not applied: %v", result.Model)
	}
}

func TestSolveSymbolicTerms(t *testing.T) {
	s := newSolver(t, `a(b). c("text"). d(f(b,1)). e(X) :- a(X).`, nil)
	result, err := s.Solve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	for _, want := range []string{"a(b)", `c("text")`, "d(f(b,1))", "e(b)"} {
		if !modelContains(result.Model, want) {
			t.Errorf("model missing %s: %v", want, result.Model)
		}
	}
}

func TestSolveContextCancelled(t *testing.T) {
	s := newSolver(t, "a.", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// A cancelled context either aborts the evaluation or the solve
	// finishes before the cancellation is observed; both are fine, the
	// call must just not hang.
	_, _ = s.Solve(ctx, nil)
}

func TestSolveGuardedChoiceUnsupported(t *testing.T) {
	// The guard b is underivable, so a may not be assumed true.
	s := newSolver(t, "{a} :- b.", nil)
	result, err := s.Solve(context.Background(), assume(atom("a")))
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if result.Satisfiable {
		t.Errorf("expected unsatisfiable: the choice guard never holds, model %v", result.Model)
	}
}

func TestSolveGuardedChoiceSupported(t *testing.T) {
	s := newSolver(t, "b. {a} :- b.", nil)
	result, err := s.Solve(context.Background(), assume(atom("a")))
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !result.Satisfiable {
		t.Fatal("expected satisfiable: the guard is derived")
	}
	for _, want := range []string{"a", "b"} {
		if !modelContains(result.Model, want) {
			t.Errorf("model missing %s: %v", want, result.Model)
		}
	}
	for _, a := range result.Model {
		if a.Name == ChoiceGuardName {
			t.Errorf("guard atom leaked into the model: %v", result.Model)
		}
	}
}

func TestSolveGuardedChoiceUnassumed(t *testing.T) {
	s := newSolver(t, "{a} :- b.", nil)
	result, err := s.Solve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !result.Satisfiable {
		t.Fatal("expected satisfiable without assumptions")
	}
	if modelContains(result.Model, "a") {
		t.Errorf("unassumed choice atom in model: %v", result.Model)
	}
}

func TestSolveBodilessChoiceOverridesGuard(t *testing.T) {
	s := newSolver(t, "{a}. {a} :- b.", nil)
	result, err := s.Solve(context.Background(), assume(atom("a")))
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !result.Satisfiable {
		t.Error("expected satisfiable: a bodiless choice also offers a")
	}
}
