package asp

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFact(t *testing.T) {
	prog, err := Parse("test", "a(1,b).")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	fact, ok := prog.Statements[0].(*Fact)
	if !ok {
		t.Fatalf("expected *Fact, got %T", prog.Statements[0])
	}
	want := Atom{Name: "a", Args: []Term{Number(1), Constant("b")}}
	if diff := cmp.Diff(want, fact.Head); diff != "" {
		t.Errorf("fact head mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRule(t *testing.T) {
	prog, err := Parse("test", "b(X) :- a(X), not c(X), X > 1.")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	rule, ok := prog.Statements[0].(*Rule)
	if !ok {
		t.Fatalf("expected *Rule, got %T", prog.Statements[0])
	}
	if len(rule.Body) != 3 {
		t.Fatalf("expected 3 body elements, got %d", len(rule.Body))
	}
	lit, ok := rule.Body[1].(Literal)
	if !ok || !lit.Negated {
		t.Errorf("expected negated literal, got %#v", rule.Body[1])
	}
	comp, ok := rule.Body[2].(Comparison)
	if !ok || comp.Op != OpGt {
		t.Errorf("expected > comparison, got %#v", rule.Body[2])
	}
}

func TestParseConstraint(t *testing.T) {
	prog, err := Parse("test", ":- a, b.")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	constraint, ok := prog.Statements[0].(*Constraint)
	if !ok {
		t.Fatalf("expected *Constraint, got %T", prog.Statements[0])
	}
	if got := constraint.String(); got != ":- a, b." {
		t.Errorf("constraint rendered as %q", got)
	}
}

func TestParseChoice(t *testing.T) {
	prog, err := Parse("test", "{a(1); b(2)}.")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	choice, ok := prog.Statements[0].(*Choice)
	if !ok {
		t.Fatalf("expected *Choice, got %T", prog.Statements[0])
	}
	if len(choice.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(choice.Elements))
	}
	if got := choice.String(); got != "{a(1); b(2)}." {
		t.Errorf("choice rendered as %q", got)
	}
}

func TestParseInterval(t *testing.T) {
	prog, err := Parse("test", "p(1..3).")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	fact := prog.Statements[0].(*Fact)
	expanded := fact.Head.ExpandIntervals()
	if len(expanded) != 3 {
		t.Fatalf("expected 3 instances, got %d", len(expanded))
	}
	want := []string{"p(1)", "p(2)", "p(3)"}
	for i, atom := range expanded {
		if atom.String() != want[i] {
			t.Errorf("instance %d: got %s, want %s", i, atom, want[i])
		}
	}
}

func TestParseNegativeNumbers(t *testing.T) {
	prog, err := Parse("test", "p(-3). q(-2..-1).")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	fact := prog.Statements[0].(*Fact)
	if got := fact.Head.Args[0]; got != Number(-3) {
		t.Errorf("expected -3, got %v", got)
	}
	interval := prog.Statements[1].(*Fact).Head.Args[0].(Interval)
	if interval.Lo != -2 || interval.Hi != -1 {
		t.Errorf("expected -2..-1, got %v", interval)
	}
	expanded := prog.Statements[1].(*Fact).Head.ExpandIntervals()
	want := []string{"q(-2)", "q(-1)"}
	if len(expanded) != len(want) {
		t.Fatalf("expected %d instances, got %d", len(want), len(expanded))
	}
	for i, atom := range expanded {
		if atom.String() != want[i] {
			t.Errorf("instance %d: got %s, want %s", i, atom, want[i])
		}
	}
}

func TestParseDirectives(t *testing.T) {
	src := `#const n = 3.
#include "other.lp".
#minimize { X : cost(X) }.
#show a/1.
`
	prog, err := Parse("test", src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, ok := prog.Statements[0].(*Const); !ok {
		t.Errorf("expected *Const, got %T", prog.Statements[0])
	}
	if _, ok := prog.Statements[1].(*Include); !ok {
		t.Errorf("expected *Include, got %T", prog.Statements[1])
	}
	if _, ok := prog.Statements[2].(*Optimize); !ok {
		t.Errorf("expected *Optimize, got %T", prog.Statements[2])
	}
	if _, ok := prog.Statements[3].(*Show); !ok {
		t.Errorf("expected *Show, got %T", prog.Statements[3])
	}
	includes := prog.Includes()
	if len(includes) != 1 || includes[0] != "other.lp" {
		t.Errorf("includes = %v", includes)
	}
}

func TestParseComments(t *testing.T) {
	src := `a. % a line comment
%* a block
   comment *% b.
`
	prog, err := Parse("test", src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
}

func TestParseLocations(t *testing.T) {
	src := "a.\n\n:- a.\n"
	prog, err := Parse("prog.lp", src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	loc := prog.Statements[1].Pos()
	if loc.File != "prog.lp" || loc.Line != 3 {
		t.Errorf("constraint location = %v, want prog.lp:3", loc)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"a",        // missing dot
		"a(.",      // malformed term
		":- .",     // empty constraint body
		"a :- b",   // missing dot after body
		"{a; b",    // unterminated choice
		`#include x.`, // include without string
	}
	for _, src := range cases {
		if _, err := Parse("test", src); err == nil {
			t.Errorf("Parse(%q) should have failed", src)
		}
	}
}

func TestProgramRoundtrip(t *testing.T) {
	src := strings.Join([]string{
		"a(1).",
		"b(X) :- a(X).",
		"{c(1); c(2)}.",
		":- b(1), c(1).",
	}, "\n") + "\n"

	prog, err := Parse("test", src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	reparsed, err := Parse("test", prog.String())
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if prog.String() != reparsed.String() {
		t.Errorf("roundtrip mismatch:\n%s\nvs\n%s", prog.String(), reparsed.String())
	}
}

func TestAnonymousVariable(t *testing.T) {
	prog, err := Parse("test", "b :- a(_).")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	rule := prog.Statements[0].(*Rule)
	lit := rule.Body[0].(Literal)
	v, ok := lit.Atom.Args[0].(Variable)
	if !ok || !v.Anonymous() {
		t.Errorf("expected anonymous variable, got %#v", lit.Atom.Args[0])
	}
}
