package asp

import (
	"testing"
)

func TestParseSignature(t *testing.T) {
	cases := []struct {
		in    string
		want  Signature
		valid bool
	}{
		{"a/1", Signature{"a", 1}, true},
		{"my_pred/3", Signature{"my_pred", 3}, true},
		{"_rule/1", Signature{"_rule", 1}, true},
		{" a/1 ", Signature{"a", 1}, true},
		{"a", Signature{}, false},
		{"A/1", Signature{}, false},
		{"a/x", Signature{}, false},
		{"a/-1", Signature{}, false},
		{"", Signature{}, false},
	}
	for _, tc := range cases {
		got, err := ParseSignature(tc.in)
		if tc.valid {
			if err != nil {
				t.Errorf("ParseSignature(%q) failed: %v", tc.in, err)
			} else if got != tc.want {
				t.Errorf("ParseSignature(%q) = %v, want %v", tc.in, got, tc.want)
			}
		} else if err == nil {
			t.Errorf("ParseSignature(%q) should have failed", tc.in)
		}
	}
}

func TestSignaturesFromModelString(t *testing.T) {
	got := SignaturesFromModelString("a(1) b(1,2) c d(f(x,y),3)")
	want := []Signature{
		{"a", 1},
		{"b", 2},
		{"c", 0},
		{"d", 2},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %d signatures", got, len(want))
	}
	for _, sig := range want {
		if !got[sig] {
			t.Errorf("missing signature %v in %v", sig, got)
		}
	}
}

func TestAssumptionString(t *testing.T) {
	pos := Assumption{Atom: Atom{Name: "a", Args: []Term{Number(1)}}, Sign: true}
	neg := Assumption{Atom: Atom{Name: "b"}, Sign: false}
	if got := pos.String(); got != "a(1)" {
		t.Errorf("positive assumption = %q", got)
	}
	if got := neg.String(); got != "not b" {
		t.Errorf("negative assumption = %q", got)
	}
}

func TestAssumptionSetOperations(t *testing.T) {
	a := Assumption{Atom: Atom{Name: "a"}, Sign: true}
	b := Assumption{Atom: Atom{Name: "b"}, Sign: true}
	c := Assumption{Atom: Atom{Name: "c"}, Sign: true}

	set := AssumptionSet{b, a}
	if got := set.String(); got != "a b" {
		t.Errorf("String = %q, want sorted %q", got, "a b")
	}
	if !set.Contains(a) || set.Contains(c) {
		t.Error("Contains misbehaves")
	}

	without := set.Without(a)
	if without.Contains(a) || len(without) != 1 {
		t.Errorf("Without = %v", without)
	}
	if !set.Contains(a) {
		t.Error("Without must not mutate the receiver")
	}

	union := set.Union(AssumptionSet{c, a})
	if len(union) != 3 {
		t.Errorf("Union = %v, want 3 distinct members", union)
	}

	if !(AssumptionSet{a, b}).Equal(AssumptionSet{b, a}) {
		t.Error("Equal should ignore order")
	}
	if (AssumptionSet{a, b}).Equal(AssumptionSet{a}) {
		t.Error("Equal with different sizes")
	}
	if !(AssumptionSet{a}).SubsetOf(set) {
		t.Error("SubsetOf failed")
	}
	if (AssumptionSet{c}).SubsetOf(set) {
		t.Error("SubsetOf false positive")
	}
}
