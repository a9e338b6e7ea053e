package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/krr-up/clingo-explaid/internal/asp"
	"github.com/krr-up/clingo-explaid/internal/solver"
	"github.com/krr-up/clingo-explaid/internal/transform"
)

var groundCmd = &cobra.Command{
	Use:   "ground [files...]",
	Short: "Print the instantiated ground program",
	Long: `Instantiates the program's rules over its facts and prints the
result: facts, a choice over the optional atoms, then the ground rules.
Integrity constraints are printed back in constraint form.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGround,
}

func runGround(cmd *cobra.Command, args []string) error {
	prog, err := asp.ParseFiles(args)
	if err != nil {
		return err
	}
	transform.OptimizationRemover{}.Apply(prog)

	// Constraints have to be relaxed before instantiation; their
	// grounded marker rules are rendered back as constraints below.
	ct := transform.NewConstraintTransformer(transform.UnsatConstraintSignature, true)
	ct.Apply(prog)

	ground, err := solver.Ground(prog, nil)
	if err != nil {
		return err
	}

	// Atoms of guarded choices are printed with their guard's body
	// instead of in the unconditional choice.
	guardElements := make(map[string][]string)
	for element, guards := range ground.Guards {
		for _, guard := range guards {
			guardElements[guard.String()] = append(guardElements[guard.String()], element)
		}
	}

	out := cmd.OutOrStdout()
	for _, fact := range ground.Facts {
		fmt.Fprintf(out, "%s.\n", fact)
	}
	var parts []string
	for _, atom := range ground.ChoiceAtoms.Sorted() {
		if _, guarded := ground.Guards[atom.String()]; guarded {
			continue
		}
		parts = append(parts, atom.String())
	}
	if len(parts) > 0 {
		fmt.Fprintf(out, "{%s}.\n", strings.Join(parts, "; "))
	}
	for _, rule := range ground.Rules {
		text := rule.String()
		switch rule.Head.Name {
		case transform.UnsatConstraintSignature:
			if idx := strings.Index(text, ":-"); idx >= 0 {
				fmt.Fprintf(out, ":%s\n", text[idx+1:])
				continue
			}
		case solver.ChoiceGuardName:
			if idx := strings.Index(text, ":-"); idx >= 0 {
				elements := guardElements[rule.Head.String()]
				sort.Strings(elements)
				fmt.Fprintf(out, "{%s} %s\n", strings.Join(elements, "; "), text[idx:])
				continue
			}
		}
		fmt.Fprintln(out, text)
	}
	return nil
}
