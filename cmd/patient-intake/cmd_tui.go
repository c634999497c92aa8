package main

import (
	"context"

	"patient-intake-service/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the intake form in the terminal",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	comps, err := buildComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer comps.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if err := comps.consumer.Start(ctx); err != nil {
		return err
	}

	model := tui.New(comps.newForm(logger), comps.timeout)
	_, err = tea.NewProgram(model, tea.WithContext(ctx)).Run()
	return err
}
