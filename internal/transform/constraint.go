package transform

import (
	"github.com/krr-up/clingo-explaid/internal/asp"
)

// ConstraintTransformer relaxes integrity constraints: instead of
// deriving falsity, each constraint derives a marker atom, so a solve
// succeeds and the fired constraints remain observable. With IncludeID
// every marker carries the constraint's sequence number, and the
// original constraint text and source location are recorded per id.
type ConstraintTransformer struct {
	HeadName  string
	IncludeID bool

	nextID      int
	constraints map[int]string
	locations   map[int]asp.Location
}

// NewConstraintTransformer creates a transformer deriving headName
// atoms from constraints.
func NewConstraintTransformer(headName string, includeID bool) *ConstraintTransformer {
	return &ConstraintTransformer{
		HeadName:    headName,
		IncludeID:   includeID,
		constraints: make(map[int]string),
		locations:   make(map[int]asp.Location),
	}
}

// Apply rewrites the program in place and returns it.
func (t *ConstraintTransformer) Apply(prog *asp.Program) *asp.Program {
	for i, stmt := range prog.Statements {
		constraint, ok := stmt.(*asp.Constraint)
		if !ok {
			continue
		}
		t.nextID++
		head := asp.Atom{Name: t.HeadName}
		if t.IncludeID {
			head.Args = []asp.Term{asp.Number(t.nextID)}
		}
		t.constraints[t.nextID] = constraint.String()
		t.locations[t.nextID] = constraint.Pos()
		rule := &asp.Rule{Head: head, Body: constraint.Body}
		prog.Statements[i] = rule
	}
	return prog
}

// ParseString parses and rewrites a program, returning the transformed
// program text.
func (t *ConstraintTransformer) ParseString(name, src string) (string, error) {
	prog, err := asp.Parse(name, src)
	if err != nil {
		return "", err
	}
	return t.Apply(prog).String(), nil
}

// ParseFiles parses and rewrites the given files.
func (t *ConstraintTransformer) ParseFiles(paths []string) (string, error) {
	prog, err := asp.ParseFiles(paths)
	if err != nil {
		return "", err
	}
	return t.Apply(prog).String(), nil
}

// Constraint returns the original text of the constraint with the
// given id.
func (t *ConstraintTransformer) Constraint(id int) (string, bool) {
	s, ok := t.constraints[id]
	return s, ok
}

// Location returns the source location of the constraint with the
// given id.
func (t *ConstraintTransformer) Location(id int) (asp.Location, bool) {
	loc, ok := t.locations[id]
	return loc, ok
}
