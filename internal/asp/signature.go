package asp

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Signature identifies a predicate by name and arity.
type Signature struct {
	Name  string
	Arity int
}

func (s Signature) String() string {
	return fmt.Sprintf("%s/%d", s.Name, s.Arity)
}

var signatureRe = regexp.MustCompile(`^([a-z_][a-zA-Z0-9_]*)/([0-9]+)$`)

// ParseSignature parses a "name/arity" string.
func ParseSignature(s string) (Signature, error) {
	m := signatureRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Signature{}, fmt.Errorf("invalid signature %q: expected format name/arity", s)
	}
	arity, err := strconv.Atoi(m[2])
	if err != nil {
		return Signature{}, fmt.Errorf("invalid signature arity %q: %w", m[2], err)
	}
	return Signature{Name: m[1], Arity: arity}, nil
}

// SignaturesFromModelString extracts the signatures of all atoms in a
// model string, a space-separated list of ground atoms such as
// "a(1) b(1,2) c".
func SignaturesFromModelString(model string) map[Signature]bool {
	signatures := make(map[Signature]bool)
	for _, atomString := range strings.Fields(model) {
		open := strings.IndexByte(atomString, '(')
		if open < 0 {
			signatures[Signature{Name: atomString}] = true
			continue
		}
		name := atomString[:open]
		arity := 1
		depth := 0
		for _, c := range atomString[open:] {
			switch c {
			case '(':
				depth++
			case ')':
				depth--
			case ',':
				if depth == 1 {
					arity++
				}
			}
		}
		signatures[Signature{Name: name, Arity: arity}] = true
	}
	return signatures
}

// Assumption is a truth assignment for a single ground atom.
type Assumption struct {
	Atom Atom
	Sign bool
}

func (a Assumption) String() string {
	if a.Sign {
		return a.Atom.String()
	}
	return "not " + a.Atom.String()
}

// AssumptionSet is an ordered collection of assumptions with set
// semantics keyed by the assumption's textual form.
type AssumptionSet []Assumption

// Contains reports whether the set holds the given assumption.
func (s AssumptionSet) Contains(a Assumption) bool {
	key := a.String()
	for _, member := range s {
		if member.String() == key {
			return true
		}
	}
	return false
}

// Without returns a copy of the set with the given assumption removed.
func (s AssumptionSet) Without(a Assumption) AssumptionSet {
	key := a.String()
	out := make(AssumptionSet, 0, len(s))
	for _, member := range s {
		if member.String() != key {
			out = append(out, member)
		}
	}
	return out
}

// Union returns the set union of s and other, preserving the order of
// first occurrence.
func (s AssumptionSet) Union(other AssumptionSet) AssumptionSet {
	out := make(AssumptionSet, 0, len(s)+len(other))
	seen := make(map[string]bool, len(s)+len(other))
	for _, member := range append(append(AssumptionSet{}, s...), other...) {
		key := member.String()
		if !seen[key] {
			seen[key] = true
			out = append(out, member)
		}
	}
	return out
}

// Equal reports whether two sets hold the same assumptions.
func (s AssumptionSet) Equal(other AssumptionSet) bool {
	if len(s) != len(other) {
		return false
	}
	for _, member := range s {
		if !other.Contains(member) {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every assumption of s is in other.
func (s AssumptionSet) SubsetOf(other AssumptionSet) bool {
	for _, member := range s {
		if !other.Contains(member) {
			return false
		}
	}
	return true
}

// String renders the assumption atoms sorted and space-joined.
func (s AssumptionSet) String() string {
	parts := make([]string, len(s))
	for i, a := range s {
		parts[i] = a.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
