package main

import (
	"encoding/json"
	"fmt"
	"io"

	"obsidiana-backend/internal/content"

	"github.com/spf13/cobra"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var (
		failOnWarn bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the frontmatter of every collection",
		Long: `Parses the frontmatter of each markdown file and checks it against the
blog or project schema. Exits non-zero when any file is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := content.NewChecker(opts.checkerOptions()).Check(opts.root)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printReport(out, report)
			}

			errs, warns := report.Counts()
			if errs > 0 || (failOnWarn && warns > 0) {
				return errValidation
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&failOnWarn, "fail-on-warn", false, "treat warnings as errors")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func (o *rootOptions) checkerOptions() content.Options {
	return content.Options{
		AllowUnknownKeys: o.allowKeys,
		AssetsDir:        o.assets,
		Collections:      o.collections,
	}
}

func printReport(w io.Writer, r *content.Report) {
	for _, it := range r.Issues {
		fmt.Fprintln(w, it.String())
	}
	errs, warns := r.Counts()
	status := "OK"
	if errs > 0 {
		status = "FAILED"
	}
	fmt.Fprintf(w, "%s: %d files, %d entries, %d errors, %d warnings\n", status, r.Files, len(r.Entries), errs, warns)
}
