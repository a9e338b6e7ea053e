package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/krr-up/clingo-explaid/cmd/clingexplaid/ui"
	"github.com/krr-up/clingo-explaid/internal/asp"
	"github.com/krr-up/clingo-explaid/internal/decisions"
	"github.com/krr-up/clingo-explaid/internal/muc"
	"github.com/krr-up/clingo-explaid/internal/solver"
	"github.com/krr-up/clingo-explaid/internal/transform"
	"github.com/krr-up/clingo-explaid/internal/unsatconstraints"
)

var (
	mucAssumptionSignatures []string
	mucMaxCores             int
	mucWithConstraints      bool
	mucShowDecisions        bool
)

// mucBanner styles the per-core headlines the same way the
// interactive interface does.
func mucBanner(format string, args ...interface{}) string {
	return ui.NewStyles().Banner.Render(fmt.Sprintf(format, args...))
}

var mucCmd = &cobra.Command{
	Use:   "muc [files...]",
	Short: "Compute minimal unsatisfiable cores over assumptions",
	Long: `Converts facts into assumptions and computes minimal unsatisfiable
cores: minimal subsets of the assumptions that keep the program
unsatisfiable.

With --assumption-signature only facts matching the given name/arity
become assumptions; without it every fact does. By default all minimal
cores are enumerated; --max-mucs limits how many.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMUC,
}

func init() {
	mucCmd.Flags().StringArrayVarP(&mucAssumptionSignatures, "assumption-signature", "a", nil,
		"signature (name/arity) of facts to treat as assumptions (repeatable)")
	mucCmd.Flags().IntVarP(&mucMaxCores, "max-mucs", "n", 0,
		"maximum number of cores to enumerate (0 = all)")
	mucCmd.Flags().BoolVar(&mucWithConstraints, "unsat-constraints", false,
		"also report the violated constraints under each core")
	mucCmd.Flags().BoolVar(&mucShowDecisions, "show-decisions", false,
		"also trace the decisions leading into each core")
}

func parseSignatureFlags(flags []string) (map[asp.Signature]bool, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	signatures := make(map[asp.Signature]bool, len(flags))
	for _, flag := range flags {
		sig, err := asp.ParseSignature(flag)
		if err != nil {
			return nil, err
		}
		signatures[sig] = true
	}
	return signatures, nil
}

func runMUC(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	signatures, err := parseSignatureFlags(mucAssumptionSignatures)
	if err != nil {
		return err
	}

	at := transform.NewAssumptionTransformer(signatures)
	prog, err := asp.ParseFiles(args)
	if err != nil {
		return err
	}
	at.Apply(prog)
	assumptions, err := at.Assumptions()
	if err != nil {
		return err
	}
	logger.Debug("assumption set built", zap.Int("assumptions", len(assumptions)))

	s, err := solver.New(prog, nil, solver.Options{EvalTimeout: cfg.EvalTimeout()})
	if err != nil {
		return err
	}

	base, err := s.Solve(ctx, nil)
	if err != nil {
		return err
	}
	if !base.Satisfiable {
		fmt.Fprintln(cmd.OutOrStdout(), "NO MUCS CONTAINED: The program is unsatisfiable without any assumptions")
		return nil
	}
	full, err := s.Solve(ctx, assumptions)
	if err != nil {
		return err
	}
	if full.Satisfiable {
		fmt.Fprintln(cmd.OutOrStdout(), "SATISFIABLE: Instance has no MUCs")
		return nil
	}

	computer := muc.New(s, assumptions)
	var cores []asp.AssumptionSet
	found, err := computer.AllMinimal(ctx, mucMaxCores, func(core asp.AssumptionSet) bool {
		cores = append(cores, core)
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", mucBanner("MUC %d", len(cores)), core.String())
		return true
	})
	if err != nil {
		return err
	}
	if found == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "SATISFIABLE: Instance has no MUCs")
		return nil
	}

	if mucShowDecisions {
		if err := reportCoreDecisions(ctx, cmd, s, cores); err != nil {
			return err
		}
	}
	if mucWithConstraints {
		return reportCoreConstraints(ctx, cmd, args, cores)
	}
	return nil
}

// reportCoreDecisions replays each core's assumptions and prints the
// entailments leading into the conflict.
func reportCoreDecisions(ctx context.Context, cmd *cobra.Command, s *solver.Solver, cores []asp.AssumptionSet) error {
	for i, core := range cores {
		tracer := &decisions.Tracer{}
		steps, _, err := tracer.Trace(ctx, s, core)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s", mucBanner("MUC %d decisions", i+1), decisions.Render(steps))
	}
	return nil
}

// reportCoreConstraints resolves, for every core, the integrity
// constraints violated when exactly the core's atoms hold. The cores
// are processed concurrently since each solve is independent.
func reportCoreConstraints(ctx context.Context, cmd *cobra.Command, files []string, cores []asp.AssumptionSet) error {
	results := make([]map[int]string, len(cores))
	locations := make([]map[int]asp.Location, len(cores))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, core := range cores {
		i, core := i, core
		g.Go(func() error {
			computer := unsatconstraints.New()
			if err := computer.ParseFiles(files); err != nil {
				return err
			}
			var atoms []string
			for _, a := range core {
				atoms = append(atoms, a.Atom.String())
			}
			violated, err := computer.UnsatConstraints(gctx, strings.Join(atoms, " "))
			if err != nil {
				return err
			}
			locs := make(map[int]asp.Location, len(violated))
			for id := range violated {
				if loc, ok := computer.ConstraintLocation(id); ok {
					locs[id] = loc
				}
			}
			mu.Lock()
			results[i] = violated
			locations[i] = locs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, violated := range results {
		fmt.Fprintln(cmd.OutOrStdout(), mucBanner("MUC %d constraints", i+1))
		ids := make([]int, 0, len(violated))
		for id := range violated {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			if loc, ok := locations[i][id]; ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %% %s:%d\n", violated[id], loc.File, loc.Line)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), violated[id])
			}
		}
	}
	return nil
}
