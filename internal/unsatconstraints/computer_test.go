package unsatconstraints

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNotInitialized(t *testing.T) {
	_, err := New().UnsatConstraints(context.Background(), "")
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestUnsatConstraints(t *testing.T) {
	computer := New()
	err := computer.ParseString("test", `a.
b.
:- a.
:- a, c.
:- b.
`)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}

	violated, err := computer.UnsatConstraints(context.Background(), "")
	if err != nil {
		t.Fatalf("UnsatConstraints failed: %v", err)
	}
	want := map[int]string{
		1: ":- a.",
		3: ":- b.",
	}
	if len(violated) != len(want) {
		t.Fatalf("violated = %v, want %v", violated, want)
	}
	for id, text := range want {
		if violated[id] != text {
			t.Errorf("constraint %d = %q, want %q", id, violated[id], text)
		}
	}
}

func TestConstraintLocation(t *testing.T) {
	computer := New()
	if err := computer.ParseString("prog.lp", "a.\n:- a.\n"); err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	loc, ok := computer.ConstraintLocation(1)
	if !ok {
		t.Fatal("location for constraint 1 missing")
	}
	if loc.File != "prog.lp" || loc.Line != 2 {
		t.Errorf("location = %v, want prog.lp:2", loc)
	}
}

func TestAssumptionString(t *testing.T) {
	computer := New()
	err := computer.ParseString("test", `p(1).
q(X) :- p(X).
:- q(1).
:- q(2).
`)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}

	// Replacing p(1) by p(2) moves the violation to the other
	// constraint.
	violated, err := computer.UnsatConstraints(context.Background(), "p(2)")
	if err != nil {
		t.Fatalf("UnsatConstraints failed: %v", err)
	}
	if len(violated) != 1 || violated[2] != ":- q(2)." {
		t.Errorf("violated = %v, want only constraint 2", violated)
	}
}

func TestRepeatedCalls(t *testing.T) {
	computer := New()
	if err := computer.ParseString("test", "a.\n:- a.\n"); err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		violated, err := computer.UnsatConstraints(context.Background(), "")
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
		if len(violated) != 1 {
			t.Errorf("call %d: violated = %v", i, violated)
		}
	}
}

func TestParseFilesWithIncludes(t *testing.T) {
	dir := t.TempDir()
	included := filepath.Join(dir, "facts.lp")
	if err := os.WriteFile(included, []byte("a.\n"), 0644); err != nil {
		t.Fatal(err)
	}
	main := filepath.Join(dir, "main.lp")
	if err := os.WriteFile(main, []byte("#include \"facts.lp\".\n:- a.\n"), 0644); err != nil {
		t.Fatal(err)
	}

	computer := New()
	if err := computer.ParseFiles([]string{main}); err != nil {
		t.Fatalf("ParseFiles failed: %v", err)
	}
	violated, err := computer.UnsatConstraints(context.Background(), "")
	if err != nil {
		t.Fatalf("UnsatConstraints failed: %v", err)
	}
	if len(violated) != 1 || violated[1] != ":- a." {
		t.Errorf("violated = %v, want constraint over included fact", violated)
	}
}
