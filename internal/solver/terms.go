package solver

import (
	"fmt"
	"sync"

	"github.com/google/mangle/ast"

	"github.com/krr-up/clingo-explaid/internal/asp"
)

// termTable converts ground atoms between the surface representation
// and Mangle terms. Numbers map to Mangle numbers; everything else
// maps to Mangle strings, with the original term recorded so derived
// facts convert back losslessly.
type termTable struct {
	mu      sync.Mutex
	reverse map[string]asp.Term
}

func newTermTable() *termTable {
	return &termTable{reverse: make(map[string]asp.Term)}
}

func (t *termTable) termToMangle(term asp.Term) (ast.BaseTerm, error) {
	switch v := term.(type) {
	case asp.Number:
		return ast.Number(int64(v)), nil
	case asp.Constant:
		t.record(string(v), v)
		return ast.String(string(v)), nil
	case asp.Str:
		t.record(string(v), v)
		return ast.String(string(v)), nil
	case asp.Function:
		key := v.String()
		t.record(key, v)
		return ast.String(key), nil
	default:
		return nil, fmt.Errorf("cannot convert term %s to a ground constant", term)
	}
}

func (t *termTable) record(key string, term asp.Term) {
	t.mu.Lock()
	if _, ok := t.reverse[key]; !ok {
		t.reverse[key] = term
	}
	t.mu.Unlock()
}

func (t *termTable) termFromMangle(c ast.Constant) (asp.Term, error) {
	switch c.Type {
	case ast.NumberType:
		return asp.Number(c.NumValue), nil
	case ast.StringType:
		t.mu.Lock()
		term, ok := t.reverse[c.Symbol]
		t.mu.Unlock()
		if ok {
			return term, nil
		}
		return asp.Str(c.Symbol), nil
	default:
		return nil, fmt.Errorf("unexpected constant type %v in derived fact", c.Type)
	}
}

func (t *termTable) atomToMangle(atom asp.Atom) (ast.Atom, error) {
	sym := ast.PredicateSym{Symbol: atom.Name, Arity: len(atom.Args)}
	args := make([]ast.BaseTerm, len(atom.Args))
	for i, arg := range atom.Args {
		term, err := t.termToMangle(arg)
		if err != nil {
			return ast.Atom{}, fmt.Errorf("atom %s: %w", atom, err)
		}
		args[i] = term
	}
	return ast.Atom{Predicate: sym, Args: args}, nil
}

func (t *termTable) atomFromMangle(atom ast.Atom) (asp.Atom, error) {
	out := asp.Atom{Name: atom.Predicate.Symbol}
	for _, arg := range atom.Args {
		c, ok := arg.(ast.Constant)
		if !ok {
			return asp.Atom{}, fmt.Errorf("derived fact %v has non-constant argument", atom)
		}
		term, err := t.termFromMangle(c)
		if err != nil {
			return asp.Atom{}, err
		}
		out.Args = append(out.Args, term)
	}
	return out, nil
}
