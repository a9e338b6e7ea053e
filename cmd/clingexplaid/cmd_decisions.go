package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krr-up/clingo-explaid/internal/asp"
	"github.com/krr-up/clingo-explaid/internal/decisions"
	"github.com/krr-up/clingo-explaid/internal/solver"
	"github.com/krr-up/clingo-explaid/internal/transform"
)

var (
	decisionSignatures          []string
	decisionAssumptionSignature []string
)

var showDecisionsCmd = &cobra.Command{
	Use:   "show-decisions [files...]",
	Short: "Trace decisions and the consequences they entail",
	Long: `Replays the program's assumptions one at a time and prints each
decision together with the atoms it newly entails. Entailments can be
restricted with --decision-signature.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShowDecisions,
}

func init() {
	showDecisionsCmd.Flags().StringArrayVar(&decisionSignatures, "decision-signature", nil,
		"signature (name/arity) of entailed atoms to report (repeatable)")
	showDecisionsCmd.Flags().StringArrayVarP(&decisionAssumptionSignature, "assumption-signature", "a", nil,
		"signature (name/arity) of facts to treat as assumptions (repeatable)")
}

func runShowDecisions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	assumptionSigs, err := parseSignatureFlags(decisionAssumptionSignature)
	if err != nil {
		return err
	}
	entailmentSigs, err := parseSignatureFlags(decisionSignatures)
	if err != nil {
		return err
	}

	at := transform.NewAssumptionTransformer(assumptionSigs)
	prog, err := asp.ParseFiles(args)
	if err != nil {
		return err
	}
	at.Apply(prog)
	assumptions, err := at.Assumptions()
	if err != nil {
		return err
	}

	s, err := solver.New(prog, nil, solver.Options{EvalTimeout: cfg.EvalTimeout()})
	if err != nil {
		return err
	}

	tracer := &decisions.Tracer{Signatures: entailmentSigs}
	steps, result, err := tracer.Trace(ctx, s, assumptions)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), decisions.Render(steps))
	if !result.Satisfiable {
		fmt.Fprintln(cmd.OutOrStdout(), "UNSATISFIABLE")
	}
	return nil
}
