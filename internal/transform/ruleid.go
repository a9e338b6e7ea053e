package transform

import (
	"fmt"

	"github.com/krr-up/clingo-explaid/internal/asp"
)

// RuleIDTransformer tags every rule of a program with an identifying
// body atom so the originating rule stays recognizable after solving.
// A closing choice rule over all identifiers makes them assumable
// without changing the program's reasoning when all are assumed true.
type RuleIDTransformer struct {
	Signature string

	count int
}

// NewRuleIDTransformer creates a transformer using the given
// identifier predicate, or RuleIDSignature when empty.
func NewRuleIDTransformer(signature string) *RuleIDTransformer {
	if signature == "" {
		signature = RuleIDSignature
	}
	return &RuleIDTransformer{Signature: signature}
}

func (t *RuleIDTransformer) idAtom(id int) asp.Atom {
	return asp.Atom{Name: t.Signature, Args: []asp.Term{asp.Number(id)}}
}

// Apply rewrites the program in place, appending the choice rule over
// all generated identifiers, and returns it.
func (t *RuleIDTransformer) Apply(prog *asp.Program) *asp.Program {
	t.count = 0
	for i, stmt := range prog.Statements {
		var rewritten asp.Statement
		switch s := stmt.(type) {
		case *asp.Fact:
			t.count++
			rewritten = &asp.Rule{Head: s.Head, Body: []asp.BodyElement{asp.Literal{Atom: t.idAtom(t.count)}}}
		case *asp.Rule:
			t.count++
			s.Body = append(s.Body, asp.Literal{Atom: t.idAtom(t.count)})
			rewritten = s
		case *asp.Constraint:
			t.count++
			s.Body = append(s.Body, asp.Literal{Atom: t.idAtom(t.count)})
			rewritten = s
		case *asp.Choice:
			t.count++
			s.Body = append(s.Body, asp.Literal{Atom: t.idAtom(t.count)})
			rewritten = s
		default:
			continue
		}
		prog.Statements[i] = rewritten
	}
	if t.count > 0 {
		prog.Statements = append(prog.Statements, &asp.Choice{
			Elements: []asp.Atom{{
				Name: t.Signature,
				Args: []asp.Term{asp.Interval{Lo: 1, Hi: int64(t.count)}},
			}},
		})
	}
	return prog
}

// ParseString parses and rewrites a program, returning the transformed
// program text.
func (t *RuleIDTransformer) ParseString(name, src string) (string, error) {
	prog, err := asp.Parse(name, src)
	if err != nil {
		return "", err
	}
	return t.Apply(prog).String(), nil
}

// ParseFiles parses and rewrites the given files.
func (t *RuleIDTransformer) ParseFiles(paths []string) (string, error) {
	prog, err := asp.ParseFiles(paths)
	if err != nil {
		return "", err
	}
	return t.Apply(prog).String(), nil
}

// Count returns how many rules were tagged by the last Apply.
func (t *RuleIDTransformer) Count() int { return t.count }

// Assumptions returns one positive assumption per tagged rule.
func (t *RuleIDTransformer) Assumptions() asp.AssumptionSet {
	out := make(asp.AssumptionSet, 0, t.count)
	for id := 1; id <= t.count; id++ {
		out = append(out, asp.Assumption{Atom: t.idAtom(id), Sign: true})
	}
	return out
}

// RuleByID formats the identifier atom for an id, e.g. "_rule(3)".
func (t *RuleIDTransformer) RuleByID(id int) string {
	return fmt.Sprintf("%s(%d)", t.Signature, id)
}
