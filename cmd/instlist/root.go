package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/evanschultz/instlist/pkg/config"
	"github.com/evanschultz/instlist/pkg/logging"
	"github.com/evanschultz/instlist/pkg/tui"
)

// app carries state shared by every command of one invocation
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "instlist [file.xml]",
		Short: "Curate an institution tree into a CSV list",
		Long: `instlist loads an institution tree from XML, lets you deselect institutions
with a checkbox tree or an editable exclusion list, applies ordered
s/FIND/REPLACE/ substitutions to the labels and saves the result as CSV.

Run with an XML file to load it straight away, or paste the XML into the
first screen.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// The TUI owns the terminal, so it only logs to a file
			return a.setup(cmd, cmd.Name() == "instlist")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: a.runTUI,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default .instlist.yaml in the working or home directory)")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.String("log-file", "", "write logs to this file")
	flags.String("output-dir", "", "directory for saved files")
	flags.String("csv-file", "", "file name for the saved list")
	flags.String("exclusions-file", "", "file name for the saved exclusion list")
	flags.String("style", "", "glamour standard style (dark, light, notty, ...) instead of the built-in one")
	flags.String("style-url", "", "fetch the glamour JSON style from this URL")
	flags.Int("word-wrap", 0, "wrap rendered text at this width")

	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newDefaultsCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, interactive bool) error {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	logger, err := logging.New(logging.Options{
		Verbose: cfg.Verbose,
		File:    cfg.LogFile,
		Quiet:   interactive,
	})
	if err != nil {
		return err
	}
	a.logger = logger

	if cfg.File != "" {
		logger.Debug("Loaded config", zap.String("path", cfg.File))
	}
	return nil
}

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	var xml string
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		xml = string(data)
	}

	a.logger.Info("Starting interactive session", zap.Bool("xml_from_file", xml != ""))
	if err := tui.Run(tui.Options{Config: a.cfg, Logger: a.logger, XML: xml}); err != nil {
		return fmt.Errorf("error running instlist: %w", err)
	}
	return nil
}
