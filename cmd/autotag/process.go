package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// NewProcessCmd creates the process command
func NewProcessCmd() *cobra.Command {
	var (
		detail     string
		timeout    time.Duration
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "process [directory]",
		Short: "Run the classification worker on a directory",
		Long: `Run the external classification worker on a directory and wait for it.
The worker writes tags into the images' metadata; list them afterwards
with 'autotag images'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := targetDir(args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("detail-level") {
				cfg.Worker.DetailLevel = detail
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Worker.Timeout = timeout
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !jsonOutput {
				fmt.Fprintf(out, "Classifying %s (detail: %s)\n", dir, cfg.Worker.DetailLevel)
			}

			res := newService().ProcessDirectory(cmd.Context(), dir)

			if jsonOutput {
				data, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			} else {
				if res.Output != "" {
					fmt.Fprint(out, res.Output)
				}
				if res.Success {
					fmt.Fprintln(out, successText("Classification finished"))
				} else if details := strings.TrimSpace(res.Details); details != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), mutedText(details))
				}
			}

			if !res.Success {
				return fmt.Errorf("classification failed: %s", res.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&detail, "detail-level", "d", "low", "Detail level passed to the worker (low or high)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Stop the worker after this long, 0 for no limit")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output the result in JSON format")

	return cmd
}
