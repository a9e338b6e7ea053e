package transform

import (
	"github.com/krr-up/clingo-explaid/internal/asp"
	"github.com/krr-up/clingo-explaid/internal/logging"
)

// AssumptionTransformer rewrites facts into choice rules so that their
// atoms become optional, and records the atoms as candidate
// assumptions. When signatures are given only matching facts are
// rewritten; otherwise every fact is.
type AssumptionTransformer struct {
	Signatures map[asp.Signature]bool

	factAtoms   []asp.Atom
	transformed bool
}

// NewAssumptionTransformer creates a transformer for the given
// signatures (nil or empty means all facts).
func NewAssumptionTransformer(signatures map[asp.Signature]bool) *AssumptionTransformer {
	return &AssumptionTransformer{Signatures: signatures}
}

// Apply rewrites the program in place and returns it.
func (t *AssumptionTransformer) Apply(prog *asp.Program) *asp.Program {
	log := logging.Get(logging.CategoryTransform)
	for i, stmt := range prog.Statements {
		fact, ok := stmt.(*asp.Fact)
		if !ok {
			continue
		}
		if len(t.Signatures) > 0 && !matchesAny(fact.Head, t.Signatures) {
			continue
		}
		t.factAtoms = append(t.factAtoms, fact.Head)
		choice := &asp.Choice{Elements: []asp.Atom{fact.Head}}
		prog.Statements[i] = choice
		log.Debug("fact %s converted to choice rule", fact.Head)
	}
	t.transformed = true
	return prog
}

// ParseString parses and rewrites a program, returning the transformed
// program text.
func (t *AssumptionTransformer) ParseString(name, src string) (string, error) {
	prog, err := asp.Parse(name, src)
	if err != nil {
		return "", err
	}
	return t.Apply(prog).String(), nil
}

// ParseFiles parses and rewrites the given files. The path "-" reads
// from stdin.
func (t *AssumptionTransformer) ParseFiles(paths []string) (string, error) {
	prog, err := asp.ParseFiles(paths)
	if err != nil {
		return "", err
	}
	return t.Apply(prog).String(), nil
}

// Assumptions returns the collected fact atoms as positive
// assumptions, with interval facts expanded to one assumption per
// instance. It fails if no program has been transformed.
func (t *AssumptionTransformer) Assumptions() (asp.AssumptionSet, error) {
	if !t.transformed {
		return nil, ErrUntransformed
	}
	var out asp.AssumptionSet
	seen := make(map[string]bool)
	for _, atom := range t.factAtoms {
		for _, instance := range atom.ExpandIntervals() {
			key := instance.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, asp.Assumption{Atom: instance, Sign: true})
		}
	}
	return out, nil
}
