// Command content validates the site's markdown collections, exports their
// frontmatter JSON Schema and syncs them into the content index.
//
// Usage:
//
//	content validate --root ./src/content --assets ./src/assets/projects
//	content schema --kind blog
//	content sync
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"obsidiana-backend/config"

	"github.com/spf13/cobra"
)

// errValidation marks a run that printed its own report.
var errValidation = errors.New("content validation failed")

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errValidation) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

type rootOptions struct {
	cfg         *config.Config
	root        string
	assets      string
	allowKeys   bool
	collections []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "content",
		Short:         "Content collection tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			if !cmd.Flags().Changed("root") {
				opts.root = cfg.ContentRoot
			}
			if !cmd.Flags().Changed("assets") {
				opts.assets = cfg.ContentAssetsDir
			}
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.root, "root", "./src/content", "content root directory (default from CONTENT_ROOT)")
	pf.StringVar(&opts.assets, "assets", "", "directory holding project cover images (default from CONTENT_ASSETS_DIR)")
	pf.BoolVar(&opts.allowKeys, "allow-unknown-keys", false, "accept frontmatter keys outside the schema")
	pf.StringSliceVar(&opts.collections, "collection", nil, "limit to these collections (repeatable)")

	cmd.AddCommand(newValidateCmd(opts), newSchemaCmd(), newSyncCmd(opts))
	return cmd
}
