package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"autotag/internal/index"
	"autotag/pkg/types"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewImagesCmd creates the images command
func NewImagesCmd() *cobra.Command {
	var (
		jsonOutput bool
		search     string
		tags       []string
	)

	cmd := &cobra.Command{
		Use:   "images [directory]",
		Short: "List the images of a directory with their tags",
		Long: `List every image in a directory together with the tags resolved from
its file metadata. --search and --tag narrow the listing the same way the
browser filters do.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := targetDir(args)
			if err != nil {
				return err
			}
			svc := newService()
			q := index.Query{Search: search, Tags: tags}

			if jsonOutput {
				res := svc.FindImages(cmd.Context(), dir, q)
				data, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				if !res.Success {
					return fmt.Errorf("%s: %s", res.Error, res.Details)
				}
				return nil
			}

			snap, err := svc.Engine().Snapshot(cmd.Context(), dir)
			if err != nil {
				return err
			}
			records := index.Filter(snap.Images(), q)
			printImages(cmd, snap.Directory(), records, snap.Len())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output results in JSON format")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only images with a tag containing this text")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Only images carrying this tag (repeatable)")

	return cmd
}

func printImages(cmd *cobra.Command, dir string, records []types.ImageRecord, total int) {
	out := cmd.OutOrStdout()

	var size int64
	for _, rec := range records {
		size += rec.Size
	}
	fmt.Fprintln(out, primaryText(fmt.Sprintf("== %s ==", dir)))
	fmt.Fprintf(out, "%d of %d images, %s\n\n", len(records), total, humanize.Bytes(uint64(size)))

	for _, rec := range records {
		tags := mutedText("(no tags)")
		if len(rec.Tags) > 0 {
			tags = tagText(strings.Join(rec.Tags, ", "))
		}
		fmt.Fprintf(out, "  %-40s %8s  %s\n", rec.Name, humanize.Bytes(uint64(rec.Size)), tags)
	}
}

// NewTagsCmd creates the tags command
func NewTagsCmd() *cobra.Command {
	var (
		top   int
		files int
	)

	cmd := &cobra.Command{
		Use:   "tags [directory]",
		Short: "Show the most used tags of a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := targetDir(args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("top") {
				cfg.Index.TopLimit = top
			}
			if cmd.Flags().Changed("files") {
				cfg.Index.FilesPerTag = files
			}

			summary, err := newService().Summary(cmd.Context(), dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(summary) == 0 {
				fmt.Fprintln(out, warningText("No tags found. Run 'autotag process' to classify the images."))
				return nil
			}
			fmt.Fprintln(out, primaryText("Top tags:"))
			for _, tc := range summary {
				fmt.Fprintf(out, "  %s %s\n", tagText(tc.Name), mutedText(fmt.Sprintf("(%d)", tc.Count)))
				if len(tc.Files) > 0 {
					fmt.Fprintf(out, "      %s\n", strings.Join(tc.Files, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", 10, "Number of tags to show")
	cmd.Flags().IntVarP(&files, "files", "f", 5, "Example files listed per tag, 0 for none")

	return cmd
}
