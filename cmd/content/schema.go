package main

import (
	"encoding/json"
	"fmt"

	"obsidiana-backend/internal/content"
	"obsidiana-backend/internal/domain"

	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of a collection kind",
		Args:  cobra.NoArgs,
		// schema needs no configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := content.JSONSchema(kind)
			if err != nil {
				return err
			}
			raw, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return err
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(domain.KindBlog), "collection kind (blog or projects)")
	return cmd
}
