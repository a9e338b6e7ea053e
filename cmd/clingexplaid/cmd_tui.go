package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/krr-up/clingo-explaid/cmd/clingexplaid/ui"
)

var (
	tuiAssumptionSignatures []string
	tuiNoWatch              bool
)

var tuiCmd = &cobra.Command{
	Use:   "tui [files...]",
	Short: "Interactive interface over all explanation modes",
	Long: `Starts a terminal interface that shows minimal unsatisfiable cores,
violated constraints and decision traces for the given files, switching
between them with tab. Input files are watched and the view refreshes
when they change.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringArrayVarP(&tuiAssumptionSignatures, "assumption-signature", "a", nil,
		"signature (name/arity) of facts to treat as assumptions (repeatable)")
	tuiCmd.Flags().BoolVar(&tuiNoWatch, "no-watch", false, "disable input file watching")
}

func runTUI(cmd *cobra.Command, args []string) error {
	signatures, err := parseSignatureFlags(tuiAssumptionSignatures)
	if err != nil {
		return err
	}

	app, err := ui.NewApp(ui.Options{
		Files:                args,
		AssumptionSignatures: signatures,
		MaxCores:             cfg.MUC.MaxCores,
		EvalTimeout:          cfg.EvalTimeout(),
		WatchFiles:           cfg.TUI.WatchFiles && !tuiNoWatch,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("interface error: %w", err)
	}
	return nil
}
