package decisions

import (
	"context"
	"strings"
	"testing"

	"github.com/krr-up/clingo-explaid/internal/asp"
	"github.com/krr-up/clingo-explaid/internal/solver"
)

func newSolver(t *testing.T, src string) *solver.Solver {
	t.Helper()
	prog, err := asp.Parse("test", src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	s, err := solver.New(prog, nil, solver.Options{})
	if err != nil {
		t.Fatalf("solver.New failed: %v", err)
	}
	return s
}

func assumption(name string, arg int64) asp.Assumption {
	return asp.Assumption{
		Atom: asp.Atom{Name: name, Args: []asp.Term{asp.Number(arg)}},
		Sign: true,
	}
}

func TestTraceEntailments(t *testing.T) {
	s := newSolver(t, "{a(1); a(2)}. b(X) :- a(X).")
	tracer := &Tracer{}
	steps, result, err := tracer.Trace(context.Background(), s,
		asp.AssumptionSet{assumption("a", 1), assumption("a", 2)})
	if err != nil {
		t.Fatalf("Trace failed: %v", err)
	}
	if !result.Satisfiable {
		t.Fatal("expected satisfiable")
	}
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}

	if got := steps[0].Decision.String(); got != "(+) a(1)" {
		t.Errorf("first decision = %q", got)
	}
	if len(steps[0].Entailments) != 1 || steps[0].Entailments[0].Atom.String() != "b(1)" {
		t.Errorf("first step entailments = %v, want [b(1)]", steps[0].Entailments)
	}
	if len(steps[1].Entailments) != 1 || steps[1].Entailments[0].Atom.String() != "b(2)" {
		t.Errorf("second step entailments = %v, want [b(2)]", steps[1].Entailments)
	}
}

func TestTraceSignatureFilter(t *testing.T) {
	s := newSolver(t, "{a(1)}. b(X) :- a(X). c(X) :- a(X).")
	tracer := &Tracer{Signatures: map[asp.Signature]bool{
		{Name: "c", Arity: 1}: true,
	}}
	steps, _, err := tracer.Trace(context.Background(), s,
		asp.AssumptionSet{assumption("a", 1)})
	if err != nil {
		t.Fatalf("Trace failed: %v", err)
	}
	if len(steps[0].Entailments) != 1 || steps[0].Entailments[0].Atom.Name != "c" {
		t.Errorf("entailments = %v, want only c/1 atoms", steps[0].Entailments)
	}
}

func TestTraceUnsatisfiableStops(t *testing.T) {
	s := newSolver(t, "{a(1); a(2); a(3)}. :- a(1), a(2).")
	tracer := &Tracer{}
	steps, result, err := tracer.Trace(context.Background(), s,
		asp.AssumptionSet{assumption("a", 1), assumption("a", 2), assumption("a", 3)})
	if err != nil {
		t.Fatalf("Trace failed: %v", err)
	}
	if result.Satisfiable {
		t.Fatal("expected unsatisfiable result")
	}
	if len(steps) != 2 {
		t.Errorf("expected trace to stop after the violating decision, got %d steps", len(steps))
	}
}

func TestTraceCallback(t *testing.T) {
	s := newSolver(t, "{a(1)}.")
	var seen []Step
	tracer := &Tracer{OnDecision: func(step Step) { seen = append(seen, step) }}
	steps, _, err := tracer.Trace(context.Background(), s,
		asp.AssumptionSet{assumption("a", 1)})
	if err != nil {
		t.Fatalf("Trace failed: %v", err)
	}
	if len(seen) != len(steps) {
		t.Errorf("callback saw %d steps, trace returned %d", len(seen), len(steps))
	}
}

func TestTraceUndoCallback(t *testing.T) {
	s := newSolver(t, "{a(1); a(2)}. :- a(1), a(2).")
	var undone []Decision
	tracer := &Tracer{OnUndo: func(d Decision) { undone = append(undone, d) }}
	_, result, err := tracer.Trace(context.Background(), s,
		asp.AssumptionSet{assumption("a", 1), assumption("a", 2)})
	if err != nil {
		t.Fatalf("Trace failed: %v", err)
	}
	if result.Satisfiable {
		t.Fatal("expected unsatisfiable")
	}
	if len(undone) != 1 || undone[0].Atom.String() != "a(2)" {
		t.Errorf("undone = %v, want the conflicting decision a(2)", undone)
	}
}

func TestRender(t *testing.T) {
	steps := []Step{
		{
			Decision: Decision{Positive: true, Atom: asp.Atom{Name: "a"}},
			Entailments: []Decision{
				{Positive: true, Atom: asp.Atom{Name: "b"}},
			},
		},
		{
			Decision: Decision{Positive: false, Atom: asp.Atom{Name: "c"}},
		},
	}
	got := Render(steps)
	want := "(+) a\n    (+) b\n(-) c\n"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Error("render output must end with a newline")
	}
}
