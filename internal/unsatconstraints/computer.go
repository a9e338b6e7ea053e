// Package unsatconstraints identifies the integrity constraints that
// fire in an unsatisfiable program, with their source locations.
package unsatconstraints

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/krr-up/clingo-explaid/internal/asp"
	"github.com/krr-up/clingo-explaid/internal/logging"
	"github.com/krr-up/clingo-explaid/internal/solver"
	"github.com/krr-up/clingo-explaid/internal/transform"
)

// ErrNotInitialized is returned when constraints are requested before
// a program has been parsed.
var ErrNotInitialized = errors.New("no program parsed: call ParseFiles or ParseString first")

// Computer finds the constraints responsible for unsatisfiability.
type Computer struct {
	transformer *transform.ConstraintTransformer
	program     *asp.Program
	initialized bool
}

// New creates an empty computer.
func New() *Computer {
	return &Computer{
		transformer: transform.NewConstraintTransformer(transform.UnsatConstraintSignature, true),
	}
}

// ParseString parses a program from a string and relaxes its
// constraints.
func (c *Computer) ParseString(name, src string) error {
	prog, err := asp.Parse(name, src)
	if err != nil {
		return err
	}
	c.program = c.transformer.Apply(prog)
	c.initialized = true
	return nil
}

// ParseFiles parses the given files, following #include directives
// relative to the including file, and relaxes all constraints. The
// path "-" reads from stdin.
func (c *Computer) ParseFiles(files []string) error {
	prog := &asp.Program{}
	visited := make(map[string]bool)
	if len(files) == 0 {
		files = []string{"-"}
	}
	for _, file := range files {
		if err := loadRecursive(file, visited, prog); err != nil {
			return err
		}
	}
	c.program = c.transformer.Apply(prog)
	c.initialized = true
	return nil
}

func loadRecursive(file string, visited map[string]bool, into *asp.Program) error {
	key := file
	if file != "-" {
		abs, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", file, err)
		}
		key = abs
	}
	if visited[key] {
		return nil
	}
	visited[key] = true

	part, err := asp.ParseFiles([]string{file})
	if err != nil {
		return err
	}
	for _, include := range part.Includes() {
		path := include
		if file != "-" && !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(file), path)
		}
		if err := loadRecursive(path, visited, into); err != nil {
			return err
		}
	}
	into.Statements = append(into.Statements, part.Statements...)
	return nil
}

// UnsatConstraints computes the violated constraints. When an
// assumption string (a space-separated list of ground atoms) is
// given, facts matching the assumptions' signatures are removed first
// and the assumed atoms are added as the only remaining such facts.
// The result maps constraint ids to the original constraint text.
func (c *Computer) UnsatConstraints(ctx context.Context, assumptionString string) (map[int]string, error) {
	if !c.initialized {
		return nil, ErrNotInitialized
	}
	log := logging.Get(logging.CategoryConstraints)

	// Work on a reparse so repeated calls see the untouched program.
	prog, err := asp.Parse("<relaxed>", c.program.String())
	if err != nil {
		return nil, fmt.Errorf("reparse relaxed program: %w", err)
	}

	assumptionString = strings.TrimSpace(assumptionString)
	if assumptionString != "" {
		signatures := asp.SignaturesFromModelString(assumptionString)
		transform.NewFactTransformer(signatures).Apply(prog)

		var sb strings.Builder
		for _, atomString := range strings.Fields(assumptionString) {
			sb.WriteString(atomString)
			sb.WriteString(".\n")
		}
		assumed, err := asp.Parse("<assumptions>", sb.String())
		if err != nil {
			return nil, fmt.Errorf("parse assumption string: %w", err)
		}
		prog.Statements = append(prog.Statements, assumed.Statements...)
	}

	s, err := solver.New(prog, nil, solver.Options{})
	if err != nil {
		return nil, err
	}
	result, err := s.Solve(ctx, nil)
	if err != nil {
		return nil, err
	}

	violated := make(map[int]string)
	for _, atom := range result.Model {
		if atom.Name != transform.UnsatConstraintSignature || len(atom.Args) != 1 {
			continue
		}
		id, ok := atom.Args[0].(asp.Number)
		if !ok {
			continue
		}
		text, ok := c.transformer.Constraint(int(id))
		if !ok {
			log.Warn("no source constraint recorded for id %d", int(id))
			continue
		}
		violated[int(id)] = text
	}
	log.Info("%d violated constraints", len(violated))
	return violated, nil
}

// ConstraintLocation returns the source location of a constraint id.
func (c *Computer) ConstraintLocation(id int) (asp.Location, bool) {
	return c.transformer.Location(id)
}
