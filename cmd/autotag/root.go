package main

import (
	"fmt"
	"os"

	"autotag/internal/config"
	"autotag/internal/gallery"
	log "autotag/internal/log"
	"autotag/internal/tui"
	"autotag/internal/tui/styles"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	debug    bool
	jsonLogs bool
	cfg      *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfgFile, debug, jsonLogs, cfg = "", false, false, nil

	rootCmd := &cobra.Command{
		Use:   "autotag",
		Short: "Browse and classify tagged images",
		Long: `autotag lists the images of a directory together with the tags stored
in their file metadata, filters them by tag, and runs an external
classification worker that writes new tags.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfgFile != "" {
				cfg, err = config.LoadConfigFile(cfgFile)
				if err != nil {
					return err
				}
			} else {
				cfg, err = config.LoadConfig()
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), warningText(fmt.Sprintf("Warning: %v", err)))
					fmt.Fprintln(cmd.ErrOrStderr(), mutedText("Using default settings. Run 'autotag config init' to create a config file."))
					cfg = config.New()
				}
			}

			configureLogging(cmd)
			styles.ApplyConfig(cfg)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/autotag/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "write logs as JSON lines")

	rootCmd.AddCommand(NewImagesCmd())
	rootCmd.AddCommand(NewTagsCmd())
	rootCmd.AddCommand(NewProcessCmd())
	rootCmd.AddCommand(NewRemoveTagsCmd())
	rootCmd.AddCommand(NewBrowseCmd())
	rootCmd.AddCommand(NewSelectCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}

func configureLogging(cmd *cobra.Command) {
	opts := []log.Option{log.WithOutput(cmd.ErrOrStderr()), log.WithLevel(cfg.Logging.Level)}
	if debug {
		opts = append(opts, log.WithLevel("debug"))
	}
	if jsonLogs || cfg.Logging.JSON {
		opts = append(opts, log.WithJSON())
	}
	if cfg.Logging.File != "" {
		opts = append(opts, log.WithFile(config.ExpandHome(cfg.Logging.File)))
	}
	log.Configure(opts...)
}

// newService builds the gallery service from the loaded config. Commands
// call it after applying their flag overrides to cfg.
func newService() *gallery.Service {
	return gallery.New(cfg, gallery.WithChooser(tui.Chooser{Config: cfg}))
}

// targetDir returns the directory argument or the working directory.
func targetDir(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("error getting current directory: %w", err)
	}
	return dir, nil
}
