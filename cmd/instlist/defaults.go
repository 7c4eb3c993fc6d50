package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evanschultz/instlist/pkg/curation"
	"github.com/evanschultz/instlist/pkg/institution"
)

func newDefaultsCmd(a *app) *cobra.Command {
	var (
		xmlFile  string
		patterns bool
	)

	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print the default exclusion list for an XML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if patterns {
				for _, p := range curation.DefaultMatcher().Patterns() {
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.Name, p.Pattern); err != nil {
						return err
					}
				}
				return nil
			}
			if xmlFile == "" {
				return errors.New(`required flag "xml" not set`)
			}

			insts, err := institution.ParseFile(xmlFile)
			if err != nil {
				return err
			}
			text := curation.BuildDefault(insts).String()
			if text == "" {
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}

	cmd.Flags().StringVar(&xmlFile, "xml", "", "institution XML file")
	cmd.Flags().BoolVar(&patterns, "patterns", false, "list the patterns that mark an institution as excluded by default")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "instlist %s\n", version)
		},
	}
}
