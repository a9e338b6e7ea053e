// Package solver grounds logic programs and decides satisfiability
// under assumptions. Grounding instantiates rules bottom-up over the
// atoms derivable from the program's facts and choice elements; the
// ground program is then evaluated with the Mangle Datalog engine,
// with integrity constraints relaxed into rules deriving a reserved
// marker predicate.
package solver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/krr-up/clingo-explaid/internal/asp"
	"github.com/krr-up/clingo-explaid/internal/logging"
)

// GroundRule is a fully instantiated rule. Comparisons are already
// evaluated away during instantiation.
type GroundRule struct {
	Head asp.Atom
	Pos  []asp.Atom
	Neg  []asp.Atom
}

func (r GroundRule) String() string {
	if len(r.Pos) == 0 && len(r.Neg) == 0 {
		return r.Head.String() + "."
	}
	parts := make([]string, 0, len(r.Pos)+len(r.Neg))
	for _, a := range r.Pos {
		parts = append(parts, a.String())
	}
	for _, a := range r.Neg {
		parts = append(parts, "not "+a.String())
	}
	return fmt.Sprintf("%s :- %s.", r.Head, strings.Join(parts, ", "))
}

// ChoiceGuardName is the reserved predicate deriving the body of a
// guarded choice rule. A choice atom that only occurs in guarded
// choices may not be true in a model unless one of its guards is
// derived.
const ChoiceGuardName = "__choice__"

// GroundProgram is the result of grounding.
type GroundProgram struct {
	// Facts holds the unconditional ground atoms.
	Facts []asp.Atom
	// ChoiceAtoms holds the atoms whose truth is left open; they only
	// become true when assumed.
	ChoiceAtoms asp.AtomSet
	// Rules holds the instantiated rules, constraint-derived marker
	// rules included.
	Rules []GroundRule
	// Guards maps a choice atom's textual form to the guard atoms of
	// the guarded choice statements it appeared in. Atoms that also
	// occur in a bodiless choice carry no entry.
	Guards map[string][]asp.Atom
}

// String renders the ground program, facts first, then choice atoms,
// then rules.
func (g *GroundProgram) String() string {
	var sb strings.Builder
	for _, f := range g.Facts {
		sb.WriteString(f.String())
		sb.WriteString(".\n")
	}
	choices := g.ChoiceAtoms.Sorted()
	if len(choices) > 0 {
		parts := make([]string, len(choices))
		for i, a := range choices {
			parts[i] = a.String()
		}
		sb.WriteString("{" + strings.Join(parts, "; ") + "}.\n")
	}
	for _, r := range g.Rules {
		sb.WriteString(r.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// SafetyError reports a rule whose head or negative body uses a
// variable not bound by any positive body literal.
type SafetyError struct {
	Loc      asp.Location
	Variable asp.Variable
}

func (e *SafetyError) Error() string {
	return fmt.Sprintf("%s: unsafe variable %s: not bound by a positive body literal", e.Loc, e.Variable)
}

type ruleTemplate struct {
	loc  asp.Location
	head asp.Atom
	pos  []asp.Literal
	neg  []asp.Literal
	cmp  []asp.Comparison
}

// Ground instantiates the program. The extra atoms are added to the
// choice atoms so that rules mentioning them are instantiated even
// when the program itself never derives them.
func Ground(prog *asp.Program, extra []asp.Atom) (*GroundProgram, error) {
	timer := logging.StartTimer(logging.CategoryGround, "grounding")
	defer timer.Stop()

	g := &GroundProgram{ChoiceAtoms: make(asp.AtomSet), Guards: make(map[string][]asp.Atom)}
	possible := make(asp.AtomSet)
	open := make(map[string]bool)
	guardCount := 0
	var templates []ruleTemplate

	addFact := func(atom asp.Atom) {
		for _, instance := range atom.ExpandIntervals() {
			if possible.Add(instance) {
				g.Facts = append(g.Facts, instance)
			}
		}
	}
	addChoice := func(atom asp.Atom) error {
		for _, instance := range atom.ExpandIntervals() {
			if !instance.Ground() {
				return fmt.Errorf("non-ground choice element %s", instance)
			}
			possible.Add(instance)
			g.ChoiceAtoms.Add(instance)
		}
		return nil
	}

	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *asp.Fact:
			if !s.Head.Ground() {
				return nil, fmt.Errorf("%s: non-ground fact %s", s.Pos(), s.Head)
			}
			addFact(s.Head)
		case *asp.Choice:
			for _, e := range s.Elements {
				if err := addChoice(e); err != nil {
					return nil, fmt.Errorf("%s: %w", s.Pos(), err)
				}
			}
			if len(s.Body) == 0 {
				for _, e := range s.Elements {
					for _, instance := range e.ExpandIntervals() {
						open[instance.String()] = true
					}
				}
				continue
			}
			// Guarded choice: its body becomes a rule deriving a
			// guard atom, and every element is admitted only in
			// models where one of its guards is derived.
			guardCount++
			guard := asp.Atom{Name: ChoiceGuardName, Args: []asp.Term{asp.Number(guardCount)}}
			tpl, err := newTemplate(s.Pos(), guard, s.Body)
			if err != nil {
				return nil, err
			}
			templates = append(templates, tpl)
			for _, e := range s.Elements {
				for _, instance := range e.ExpandIntervals() {
					key := instance.String()
					g.Guards[key] = append(g.Guards[key], guard)
				}
			}
		case *asp.Rule:
			tpl, err := newTemplate(s.Pos(), s.Head, s.Body)
			if err != nil {
				return nil, err
			}
			templates = append(templates, tpl)
		case *asp.Constraint:
			// Constraints must be relaxed into marker rules before
			// grounding; reject them here so misuse fails loudly.
			return nil, fmt.Errorf("%s: integrity constraint not relaxed before grounding", s.Pos())
		case *asp.Const, *asp.Include, *asp.Optimize, *asp.Show:
			// Handled (or deliberately ignored) by earlier passes.
		default:
			return nil, fmt.Errorf("%s: cannot ground statement %s", stmt.Pos(), stmt)
		}
	}

	for _, atom := range extra {
		if err := addChoice(atom); err != nil {
			return nil, err
		}
	}

	// An atom offered by a bodiless choice is admissible regardless
	// of any guarded choice it also appears in.
	for key := range open {
		delete(g.Guards, key)
	}

	// Bottom-up instantiation to fixpoint. Negated literals are
	// treated as satisfiable here; the evaluator decides their truth.
	seenRules := make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for _, tpl := range templates {
			instances, err := instantiate(tpl, possible)
			if err != nil {
				return nil, err
			}
			for _, inst := range instances {
				key := inst.String()
				if seenRules[key] {
					continue
				}
				seenRules[key] = true
				g.Rules = append(g.Rules, inst)
				if possible.Add(inst.Head) {
					changed = true
				}
			}
		}
	}

	sort.Slice(g.Rules, func(i, j int) bool { return g.Rules[i].String() < g.Rules[j].String() })
	logging.Get(logging.CategoryGround).Debug("ground program: %d facts, %d choice atoms, %d rules",
		len(g.Facts), len(g.ChoiceAtoms), len(g.Rules))
	return g, nil
}

func newTemplate(loc asp.Location, head asp.Atom, body []asp.BodyElement) (ruleTemplate, error) {
	tpl := ruleTemplate{loc: loc, head: head}
	if containsInterval(head) {
		return ruleTemplate{}, fmt.Errorf("%s: interval in rule head %s: intervals are only allowed in facts and choice elements", loc, head)
	}
	for _, elem := range body {
		switch e := elem.(type) {
		case asp.Literal:
			if containsInterval(e.Atom) {
				return ruleTemplate{}, fmt.Errorf("%s: interval in body literal %s: intervals are only allowed in facts and choice elements", loc, e.Atom)
			}
			if e.Negated {
				tpl.neg = append(tpl.neg, e)
			} else {
				tpl.pos = append(tpl.pos, e)
			}
		case asp.Comparison:
			tpl.cmp = append(tpl.cmp, e)
		default:
			return ruleTemplate{}, fmt.Errorf("%s: unsupported body element %s", loc, elem)
		}
	}
	if v, ok := unsafeVariable(tpl); ok {
		return ruleTemplate{}, &SafetyError{Loc: loc, Variable: v}
	}
	return tpl, nil
}

func containsInterval(a asp.Atom) bool {
	var walk func(t asp.Term) bool
	walk = func(t asp.Term) bool {
		switch term := t.(type) {
		case asp.Interval:
			return true
		case asp.Function:
			for _, arg := range term.Args {
				if walk(arg) {
					return true
				}
			}
		}
		return false
	}
	for _, arg := range a.Args {
		if walk(arg) {
			return true
		}
	}
	return false
}

func collectVariables(t asp.Term, into map[asp.Variable]bool) {
	switch term := t.(type) {
	case asp.Variable:
		if !term.Anonymous() {
			into[term] = true
		}
	case asp.Function:
		for _, arg := range term.Args {
			collectVariables(arg, into)
		}
	}
}

func atomVariables(a asp.Atom, into map[asp.Variable]bool) {
	for _, arg := range a.Args {
		collectVariables(arg, into)
	}
}

// unsafeVariable returns a head, negative-body or comparison variable
// that no positive body literal binds.
func unsafeVariable(tpl ruleTemplate) (asp.Variable, bool) {
	bound := make(map[asp.Variable]bool)
	for _, lit := range tpl.pos {
		atomVariables(lit.Atom, bound)
	}
	need := make(map[asp.Variable]bool)
	atomVariables(tpl.head, need)
	for _, lit := range tpl.neg {
		atomVariables(lit.Atom, need)
	}
	for _, cmp := range tpl.cmp {
		collectVariables(cmp.Left, need)
		collectVariables(cmp.Right, need)
	}
	vars := make([]asp.Variable, 0, len(need))
	for v := range need {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
	for _, v := range vars {
		if !bound[v] {
			return v, true
		}
	}
	return "", false
}

type binding map[asp.Variable]asp.Term

func (b binding) clone() binding {
	out := make(binding, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// instantiate enumerates all ground instances of a template whose
// positive body atoms all occur in the possible set and whose
// comparisons hold.
func instantiate(tpl ruleTemplate, possible asp.AtomSet) ([]GroundRule, error) {
	candidates := possible.Sorted()
	var out []GroundRule

	var match func(i int, b binding) error
	match = func(i int, b binding) error {
		if i == len(tpl.pos) {
			for _, cmp := range tpl.cmp {
				hold, err := evalComparison(cmp, b)
				if err != nil {
					return fmt.Errorf("%s: %w", tpl.loc, err)
				}
				if !hold {
					return nil
				}
			}
			rule := GroundRule{Head: substituteAtom(tpl.head, b)}
			for _, lit := range tpl.pos {
				rule.Pos = append(rule.Pos, substituteAtom(lit.Atom, b))
			}
			for _, lit := range tpl.neg {
				rule.Neg = append(rule.Neg, substituteAtom(lit.Atom, b))
			}
			out = append(out, rule)
			return nil
		}
		pattern := tpl.pos[i].Atom
		for _, candidate := range candidates {
			if candidate.Name != pattern.Name || len(candidate.Args) != len(pattern.Args) {
				continue
			}
			next := b.clone()
			if unifyAtom(pattern, candidate, next) {
				if err := match(i+1, next); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := match(0, binding{}); err != nil {
		return nil, err
	}
	return out, nil
}

func substituteTerm(t asp.Term, b binding) asp.Term {
	switch term := t.(type) {
	case asp.Variable:
		if bound, ok := b[term]; ok {
			return bound
		}
		return term
	case asp.Function:
		args := make([]asp.Term, len(term.Args))
		for i, arg := range term.Args {
			args[i] = substituteTerm(arg, b)
		}
		return asp.Function{Name: term.Name, Args: args}
	default:
		return term
	}
}

func substituteAtom(a asp.Atom, b binding) asp.Atom {
	args := make([]asp.Term, len(a.Args))
	for i, arg := range a.Args {
		args[i] = substituteTerm(arg, b)
	}
	return asp.Atom{Name: a.Name, Args: args}
}

func unifyAtom(pattern, ground asp.Atom, b binding) bool {
	for i, arg := range pattern.Args {
		if !unifyTerm(arg, ground.Args[i], b) {
			return false
		}
	}
	return true
}

func unifyTerm(pattern, ground asp.Term, b binding) bool {
	switch p := pattern.(type) {
	case asp.Variable:
		if p.Anonymous() {
			return true
		}
		if bound, ok := b[p]; ok {
			return bound.String() == ground.String()
		}
		b[p] = ground
		return true
	case asp.Function:
		g, ok := ground.(asp.Function)
		if !ok || g.Name != p.Name || len(g.Args) != len(p.Args) {
			return false
		}
		for i, arg := range p.Args {
			if !unifyTerm(arg, g.Args[i], b) {
				return false
			}
		}
		return true
	default:
		return pattern.String() == ground.String()
	}
}

func evalComparison(cmp asp.Comparison, b binding) (bool, error) {
	left := substituteTerm(cmp.Left, b)
	right := substituteTerm(cmp.Right, b)
	if !left.Ground() || !right.Ground() {
		return false, fmt.Errorf("comparison %s not ground after binding", cmp)
	}

	ln, lok := left.(asp.Number)
	rn, rok := right.(asp.Number)
	if lok && rok {
		switch cmp.Op {
		case asp.OpEq:
			return ln == rn, nil
		case asp.OpNeq:
			return ln != rn, nil
		case asp.OpLt:
			return ln < rn, nil
		case asp.OpLeq:
			return ln <= rn, nil
		case asp.OpGt:
			return ln > rn, nil
		case asp.OpGeq:
			return ln >= rn, nil
		}
	}

	// Non-numeric terms compare by their textual order.
	ls, rs := left.String(), right.String()
	switch cmp.Op {
	case asp.OpEq:
		return ls == rs, nil
	case asp.OpNeq:
		return ls != rs, nil
	case asp.OpLt:
		return ls < rs, nil
	case asp.OpLeq:
		return ls <= rs, nil
	case asp.OpGt:
		return ls > rs, nil
	case asp.OpGeq:
		return ls >= rs, nil
	}
	return false, fmt.Errorf("unknown comparison operator %q", cmp.Op)
}
