// Package asp provides the surface representation of logic programs:
// terms, atoms, literals and statements, together with a parser and
// round-trip printers. The grammar covers the fragment the explanation
// tools operate on: facts, normal rules, integrity constraints, choice
// rules and a handful of directives.
package asp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Term is a term of the input language: a number, a symbolic constant,
// a quoted string, a variable, a function term or a numeric interval.
type Term interface {
	fmt.Stringer
	// Ground reports whether the term contains no variables.
	Ground() bool
}

// Number is an integer constant.
type Number int64

func (n Number) String() string { return strconv.FormatInt(int64(n), 10) }
func (n Number) Ground() bool   { return true }

// Constant is a symbolic constant (lowercase identifier).
type Constant string

func (c Constant) String() string { return string(c) }
func (c Constant) Ground() bool   { return true }

// Str is a quoted string constant.
type Str string

func (s Str) String() string { return strconv.Quote(string(s)) }
func (s Str) Ground() bool   { return true }

// Variable is a first-order variable (uppercase identifier or "_").
type Variable string

func (v Variable) String() string { return string(v) }
func (v Variable) Ground() bool   { return false }

// Anonymous reports whether the variable is the anonymous "_".
func (v Variable) Anonymous() bool { return v == "_" }

// Function is a compound term f(t1, ..., tn).
type Function struct {
	Name string
	Args []Term
}

func (f Function) String() string {
	if len(f.Args) == 0 {
		return f.Name
	}
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(parts, ","))
}

func (f Function) Ground() bool {
	for _, a := range f.Args {
		if !a.Ground() {
			return false
		}
	}
	return true
}

// Interval is the numeric range term lo..hi. It is only meaningful in
// fact heads and choice elements, where it stands for one instance per
// value of the range.
type Interval struct {
	Lo, Hi int64
}

func (iv Interval) String() string { return fmt.Sprintf("%d..%d", iv.Lo, iv.Hi) }
func (iv Interval) Ground() bool   { return true }

// Expand returns the numbers covered by the interval, in order.
func (iv Interval) Expand() []Term {
	if iv.Hi < iv.Lo {
		return nil
	}
	out := make([]Term, 0, iv.Hi-iv.Lo+1)
	for n := iv.Lo; n <= iv.Hi; n++ {
		out = append(out, Number(n))
	}
	return out
}

// Atom is a predicate applied to terms. A propositional atom has no
// arguments.
type Atom struct {
	Name string
	Args []Term
}

func (a Atom) String() string {
	if len(a.Args) == 0 {
		return a.Name
	}
	parts := make([]string, len(a.Args))
	for i, t := range a.Args {
		parts[i] = t.String()
	}
	return fmt.Sprintf("%s(%s)", a.Name, strings.Join(parts, ","))
}

// Ground reports whether all arguments of the atom are ground.
func (a Atom) Ground() bool {
	for _, t := range a.Args {
		if !t.Ground() {
			return false
		}
	}
	return true
}

// Match reports whether the atom has the given name and arity.
func (a Atom) Match(name string, arity int) bool {
	return a.Name == name && len(a.Args) == arity
}

// Signature returns the name/arity signature of the atom.
func (a Atom) Signature() Signature {
	return Signature{Name: a.Name, Arity: len(a.Args)}
}

// ExpandIntervals returns the ground instances of an atom whose
// arguments may contain interval terms. An atom without intervals
// expands to itself.
func (a Atom) ExpandIntervals() []Atom {
	expanded := []Atom{{Name: a.Name}}
	for _, arg := range a.Args {
		var choices []Term
		if iv, ok := arg.(Interval); ok {
			choices = iv.Expand()
		} else {
			choices = []Term{arg}
		}
		next := make([]Atom, 0, len(expanded)*len(choices))
		for _, partial := range expanded {
			for _, c := range choices {
				args := make([]Term, len(partial.Args), len(partial.Args)+1)
				copy(args, partial.Args)
				next = append(next, Atom{Name: a.Name, Args: append(args, c)})
			}
		}
		expanded = next
	}
	return expanded
}

// BodyElement is an element of a rule body: a (possibly negated)
// literal or a comparison between terms.
type BodyElement interface {
	fmt.Stringer
	bodyElement()
}

// Literal is an atom with optional default negation.
type Literal struct {
	Negated bool
	Atom    Atom
}

func (l Literal) String() string {
	if l.Negated {
		return "not " + l.Atom.String()
	}
	return l.Atom.String()
}

func (Literal) bodyElement() {}

// CompareOp is a comparison operator in a rule body.
type CompareOp string

// Comparison operators of the input language.
const (
	OpEq  CompareOp = "="
	OpNeq CompareOp = "!="
	OpLt  CompareOp = "<"
	OpLeq CompareOp = "<="
	OpGt  CompareOp = ">"
	OpGeq CompareOp = ">="
)

// Comparison is a built-in comparison literal.
type Comparison struct {
	Op          CompareOp
	Left, Right Term
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.Left, c.Op, c.Right)
}

func (Comparison) bodyElement() {}

// AtomSet is a set of ground atoms keyed by their textual form.
type AtomSet map[string]Atom

// Add inserts an atom, reporting whether it was new.
func (s AtomSet) Add(a Atom) bool {
	key := a.String()
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = a
	return true
}

// Contains reports membership.
func (s AtomSet) Contains(a Atom) bool {
	_, ok := s[a.String()]
	return ok
}

// Sorted returns the atoms ordered by their textual form.
func (s AtomSet) Sorted() []Atom {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Atom, len(keys))
	for i, k := range keys {
		out[i] = s[k]
	}
	return out
}
