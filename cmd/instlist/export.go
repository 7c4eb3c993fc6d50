package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/evanschultz/instlist/pkg/curation"
	"github.com/evanschultz/instlist/pkg/export"
	"github.com/evanschultz/instlist/pkg/institution"
	"github.com/evanschultz/instlist/pkg/render"
)

type exportOptions struct {
	xmlFile           string
	exclusionsFile    string
	substitutionsFile string
	output            string
	exclusionsOut     string
	summary           bool
}

func newExportCmd(a *app) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Generate the CSV list without the interactive UI",
		Long: `Load the institution XML, apply the exclusion list and substitutions, and
write the CSV. Without --exclusions the default exclusions are used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.xmlFile, "xml", "", "institution XML file (required)")
	cmd.Flags().StringVar(&opts.exclusionsFile, "exclusions", "", "exclusion list file (ID - LABEL lines)")
	cmd.Flags().StringVar(&opts.substitutionsFile, "substitutions", "", "substitutions file (s/FIND/REPLACE/ lines)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the CSV here instead of stdout")
	cmd.Flags().StringVar(&opts.exclusionsOut, "exclusions-out", "", "also write the normalized exclusion list here")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print a rendered summary with substitution counts to stderr")
	_ = cmd.MarkFlagRequired("xml")

	return cmd
}

func (a *app) runExport(cmd *cobra.Command, opts *exportOptions) error {
	insts, err := institution.ParseFile(opts.xmlFile)
	if err != nil {
		return err
	}

	exclusions := a.cfg.Exclusions
	if opts.exclusionsFile != "" {
		if exclusions, err = readText(opts.exclusionsFile); err != nil {
			return err
		}
	}
	substitutions := a.cfg.Substitutions
	if opts.substitutionsFile != "" {
		if substitutions, err = readText(opts.substitutionsFile); err != nil {
			return err
		}
	}

	session := curation.NewSession(a.logger)
	session.Dispatch(curation.EditExclusions{Text: exclusions})
	session.Dispatch(curation.SetSubstitutions{Text: substitutions})
	session.Dispatch(curation.LoadTree{Institutions: insts})

	a.logger.Info("List generated",
		zap.Int("institutions", len(insts)),
		zap.Int("excluded", len(session.Excluded())),
		zap.Int("rows", len(session.Rows())),
		zap.Int("rules", len(session.Rules())))

	if opts.summary {
		if err := a.printSummary(cmd, session); err != nil {
			return err
		}
	}

	if opts.output == "" {
		if _, err := io.WriteString(cmd.OutOrStdout(), session.CSV()); err != nil {
			return err
		}
	} else if err := a.saveTo(opts.output, export.CSV(filepath.Base(opts.output), session.CSV())); err != nil {
		return err
	}

	if opts.exclusionsOut != "" {
		doc := export.Exclusions(filepath.Base(opts.exclusionsOut), session.ExclusionText())
		if err := a.saveTo(opts.exclusionsOut, doc); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) printSummary(cmd *cobra.Command, session *curation.Session) error {
	preparer := render.Select(a.cfg)
	r, err := preparer.Prepare(cmd.Context())
	if err != nil {
		return err
	}

	summary, err := r.RenderSummary(session.Rows(), session.Excluded(), session.Rules())
	if err != nil {
		return err
	}
	rules, err := r.RenderRules(session.Rules(), session.Counts())
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(cmd.ErrOrStderr(), summary+rules)
	return err
}

func (a *app) saveTo(path string, doc export.Document) error {
	sink := export.FileSink{Dir: filepath.Dir(path)}
	if err := sink.Save(doc); err != nil {
		return err
	}
	a.logger.Info("Document written", zap.String("path", sink.Path(doc.Name)), zap.String("content_type", doc.ContentType))
	return nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
