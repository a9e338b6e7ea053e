package transform

import (
	"github.com/krr-up/clingo-explaid/internal/asp"
)

// FactTransformer removes facts matching a set of signatures. It is
// used to clear facts that would shadow an assumed partial model
// before that model is re-added as the only remaining facts.
type FactTransformer struct {
	Signatures map[asp.Signature]bool
}

// NewFactTransformer creates a transformer removing facts that match
// the given signatures.
func NewFactTransformer(signatures map[asp.Signature]bool) *FactTransformer {
	return &FactTransformer{Signatures: signatures}
}

// Apply rewrites the program in place and returns it.
func (t *FactTransformer) Apply(prog *asp.Program) *asp.Program {
	if len(t.Signatures) == 0 {
		return prog
	}
	kept := prog.Statements[:0]
	for _, stmt := range prog.Statements {
		if fact, ok := stmt.(*asp.Fact); ok && matchesAny(fact.Head, t.Signatures) {
			continue
		}
		if choice, ok := stmt.(*asp.Choice); ok && len(choice.Body) == 0 {
			elements := choice.Elements[:0]
			for _, e := range choice.Elements {
				if !matchesAny(e, t.Signatures) {
					elements = append(elements, e)
				}
			}
			choice.Elements = elements
			if len(elements) == 0 {
				continue
			}
		}
		kept = append(kept, stmt)
	}
	prog.Statements = kept
	return prog
}

// ParseString parses and rewrites a program, returning the transformed
// program text.
func (t *FactTransformer) ParseString(name, src string) (string, error) {
	prog, err := asp.Parse(name, src)
	if err != nil {
		return "", err
	}
	return t.Apply(prog).String(), nil
}

// OptimizationRemover strips #minimize and #maximize statements, which
// would otherwise interfere with satisfiability-only solving.
type OptimizationRemover struct{}

// Apply rewrites the program in place and returns it.
func (OptimizationRemover) Apply(prog *asp.Program) *asp.Program {
	kept := prog.Statements[:0]
	for _, stmt := range prog.Statements {
		if _, ok := stmt.(*asp.Optimize); ok {
			continue
		}
		kept = append(kept, stmt)
	}
	prog.Statements = kept
	return prog
}

// ParseString parses and rewrites a program, returning the transformed
// program text.
func (r OptimizationRemover) ParseString(name, src string) (string, error) {
	prog, err := asp.Parse(name, src)
	if err != nil {
		return "", err
	}
	return r.Apply(prog).String(), nil
}
