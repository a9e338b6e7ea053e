// Package transform implements the program rewrites behind the
// explanation workflows: turning facts into assumptions, tagging rules
// with identifiers, relaxing integrity constraints and stripping
// statements that would interfere with a solve.
package transform

import (
	"errors"

	"github.com/krr-up/clingo-explaid/internal/asp"
)

// ErrUntransformed is returned when assumptions are requested from a
// transformer that has not processed any program yet.
var ErrUntransformed = errors.New("no program has been transformed yet")

// RuleIDSignature is the default predicate name used to tag rules.
const RuleIDSignature = "_rule"

// UnsatConstraintSignature is the reserved predicate derived by
// relaxed integrity constraints.
const UnsatConstraintSignature = "__unsat__"

func matchesAny(atom asp.Atom, signatures map[asp.Signature]bool) bool {
	return signatures[atom.Signature()]
}
