package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/krr-up/clingo-explaid/internal/unsatconstraints"
)

var unsatAssumptionString string

var unsatConstraintsCmd = &cobra.Command{
	Use:   "unsat-constraints [files...]",
	Short: "Report the integrity constraints causing unsatisfiability",
	Long: `Relaxes every integrity constraint and solves the resulting program;
the constraints whose bodies still hold in the model are the ones
responsible for unsatisfiability. Each is reported with its source
location.

With --assumption-string, facts matching the given atoms' signatures
are replaced by exactly those atoms before solving.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUnsatConstraints,
}

func init() {
	unsatConstraintsCmd.Flags().StringVar(&unsatAssumptionString, "assumption-string", "",
		"space-separated ground atoms assumed to hold")
}

func runUnsatConstraints(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	computer := unsatconstraints.New()
	if err := computer.ParseFiles(args); err != nil {
		return err
	}
	violated, err := computer.UnsatConstraints(ctx, unsatAssumptionString)
	if err != nil {
		return err
	}
	if len(violated) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "SATISFIABLE: No constraints violated")
		return nil
	}

	ids := make([]int, 0, len(violated))
	for id := range violated {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if loc, ok := computer.ConstraintLocation(id); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %% %s:%d\n", violated[id], loc.File, loc.Line)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), violated[id])
		}
	}
	return nil
}
