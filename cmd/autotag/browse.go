package main

import (
	"fmt"

	"autotag/internal/tui"

	"github.com/spf13/cobra"
)

// NewBrowseCmd creates the browse command
func NewBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [directory]",
		Short: "Start the interactive tag browser",
		Long: `Start the terminal browser. Without a directory it opens the directory
picker first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) > 0 {
				dir = args[0]
			}
			if err := tui.Run(cmd.Context(), newService(), cfg, dir); err != nil {
				return fmt.Errorf("error running browser: %w", err)
			}
			return nil
		},
	}
}

// NewSelectCmd creates the select command
func NewSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select",
		Short: "Pick a directory and print its path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, ok, err := newService().SelectDirectory(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no directory selected")
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
