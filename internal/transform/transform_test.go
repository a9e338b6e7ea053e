package transform

import (
	"strings"
	"testing"

	"github.com/krr-up/clingo-explaid/internal/asp"
)

func mustParse(t *testing.T, src string) *asp.Program {
	t.Helper()
	prog, err := asp.Parse("test", src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return prog
}

func signatures(t *testing.T, specs ...string) map[asp.Signature]bool {
	t.Helper()
	out := make(map[asp.Signature]bool, len(specs))
	for _, spec := range specs {
		sig, err := asp.ParseSignature(spec)
		if err != nil {
			t.Fatalf("ParseSignature(%q): %v", spec, err)
		}
		out[sig] = true
	}
	return out
}

func TestAssumptionTransformerAllFacts(t *testing.T) {
	tr := NewAssumptionTransformer(nil)
	prog := mustParse(t, "a(1). a(2). b(X) :- a(X).")
	tr.Apply(prog)

	got := prog.String()
	for _, want := range []string{"{a(1)}.", "{a(2)}."} {
		if !strings.Contains(got, want) {
			t.Errorf("transformed program missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "a(1).") {
		t.Errorf("fact a(1). survived transformation:\n%s", got)
	}

	assumptions, err := tr.Assumptions()
	if err != nil {
		t.Fatalf("Assumptions failed: %v", err)
	}
	if got := assumptions.String(); got != "a(1) a(2)" {
		t.Errorf("assumptions = %q, want %q", got, "a(1) a(2)")
	}
}

func TestAssumptionTransformerFiltered(t *testing.T) {
	tr := NewAssumptionTransformer(signatures(t, "a/1"))
	prog := mustParse(t, "a(1). b(1). c.")
	tr.Apply(prog)

	got := prog.String()
	if !strings.Contains(got, "{a(1)}.") {
		t.Errorf("a(1) not converted:\n%s", got)
	}
	if !strings.Contains(got, "b(1).") || !strings.Contains(got, "c.") {
		t.Errorf("non-matching facts should survive untouched:\n%s", got)
	}
}

func TestAssumptionTransformerIntervalFacts(t *testing.T) {
	tr := NewAssumptionTransformer(nil)
	tr.Apply(mustParse(t, "p(1..3)."))

	assumptions, err := tr.Assumptions()
	if err != nil {
		t.Fatalf("Assumptions failed: %v", err)
	}
	if got := assumptions.String(); got != "p(1) p(2) p(3)" {
		t.Errorf("assumptions = %q, want expanded interval", got)
	}
}

func TestAssumptionTransformerUntransformed(t *testing.T) {
	tr := NewAssumptionTransformer(nil)
	if _, err := tr.Assumptions(); err != ErrUntransformed {
		t.Errorf("expected ErrUntransformed, got %v", err)
	}
}

func TestRuleIDTransformer(t *testing.T) {
	tr := NewRuleIDTransformer("")
	got, err := tr.ParseString("test", "a. b :- a. :- b.")
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}

	if tr.Count() != 3 {
		t.Fatalf("Count = %d, want 3", tr.Count())
	}
	for _, want := range []string{
		"a :- _rule(1).",
		"b :- a, _rule(2).",
		":- b, _rule(3).",
		"{_rule(1..3)}.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}

	assumptions := tr.Assumptions()
	if got := assumptions.String(); got != "_rule(1) _rule(2) _rule(3)" {
		t.Errorf("assumptions = %q", got)
	}
	if got := tr.RuleByID(2); got != "_rule(2)" {
		t.Errorf("RuleByID(2) = %q", got)
	}
}

func TestRuleIDTransformerCustomSignature(t *testing.T) {
	tr := NewRuleIDTransformer("my_id")
	got, err := tr.ParseString("test", "a.")
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	if !strings.Contains(got, "a :- my_id(1).") {
		t.Errorf("custom signature not used:\n%s", got)
	}
}

func TestConstraintTransformer(t *testing.T) {
	tr := NewConstraintTransformer("unsat", true)
	got, err := tr.ParseString("test", "a.\n:- a.\n:- a, b.\n")
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	for _, want := range []string{
		"unsat(1) :- a.",
		"unsat(2) :- a, b.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}

	text, ok := tr.Constraint(2)
	if !ok || text != ":- a, b." {
		t.Errorf("Constraint(2) = %q, %v", text, ok)
	}
	loc, ok := tr.Location(2)
	if !ok || loc.Line != 3 {
		t.Errorf("Location(2) = %v, %v, want line 3", loc, ok)
	}
	if _, ok := tr.Constraint(99); ok {
		t.Error("Constraint(99) should not exist")
	}
}

func TestConstraintTransformerWithoutID(t *testing.T) {
	tr := NewConstraintTransformer("unsat", false)
	got, err := tr.ParseString("test", ":- a.")
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	if !strings.Contains(got, "unsat :- a.") {
		t.Errorf("missing bare marker head:\n%s", got)
	}
}

func TestFactTransformer(t *testing.T) {
	tr := NewFactTransformer(signatures(t, "a/1", "c/0"))
	got, err := tr.ParseString("test", "a(1). b(1). c. {a(2); b(2)}.")
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	for _, gone := range []string{"a(1).", "c.", "a(2)"} {
		if strings.Contains(got, gone) {
			t.Errorf("%q should have been removed:\n%s", gone, got)
		}
	}
	if !strings.Contains(got, "b(1).") || !strings.Contains(got, "{b(2)}.") {
		t.Errorf("non-matching statements should survive:\n%s", got)
	}
}

func TestFactTransformerDropsEmptiedChoice(t *testing.T) {
	tr := NewFactTransformer(signatures(t, "a/1"))
	got, err := tr.ParseString("test", "{a(1); a(2)}.")
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	if strings.Contains(got, "{") {
		t.Errorf("emptied choice should be dropped entirely:\n%s", got)
	}
}

func TestOptimizationRemover(t *testing.T) {
	got, err := OptimizationRemover{}.ParseString("test", "a.\n#minimize { X : cost(X) }.\n#maximize { 1 : a }.\n")
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	if strings.Contains(got, "minimize") || strings.Contains(got, "maximize") {
		t.Errorf("optimization statements should be removed:\n%s", got)
	}
	if !strings.Contains(got, "a.") {
		t.Errorf("fact should survive:\n%s", got)
	}
}
