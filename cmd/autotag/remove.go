package main

import (
	"bufio"
	"fmt"
	"strings"

	"autotag/pkg/types"

	"github.com/spf13/cobra"
)

// NewRemoveTagsCmd creates the remove-tags command
func NewRemoveTagsCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove-tags [directory]",
		Short: "Remove the tags of every image in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := targetDir(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !yes {
				fmt.Fprintf(out, "Remove the tags of every image in %s? [y/N] ", dir)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(out, warningText("Operation cancelled"))
					return nil
				}
			}

			results, err := newService().RemoveTags(cmd.Context(), dir)
			if err != nil {
				return err
			}

			var removed, failed int
			for _, res := range results {
				switch res.Outcome {
				case types.RemoveRemoved:
					removed++
					fmt.Fprintf(out, "  %s %s\n", res.Path, mutedText(strings.Join(res.Tags, ", ")))
				case types.RemoveError:
					failed++
					fmt.Fprintf(out, "  %s %s\n", res.Path, errorText(res.Error))
				}
			}

			fmt.Fprintf(out, "\nRemoved tags from %d of %d images\n", removed, len(results))
			if failed > 0 {
				return fmt.Errorf("%d images could not be updated", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Don't ask for confirmation")

	return cmd
}
