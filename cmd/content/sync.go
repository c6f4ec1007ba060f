package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"obsidiana-backend/internal/repository/postgres"
	"obsidiana-backend/internal/usecase"
	"obsidiana-backend/pkg/database"

	"github.com/spf13/cobra"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Validate the collections and upsert them into the content index",
		Long: `Runs the same checks as validate and, when every file passes, writes the
entries to the content_entries table and removes rows whose file is gone.
Requires DATABASE_URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if cfg == nil || cfg.DBUrl == "" {
				return errors.New("DATABASE_URL is required for sync")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			uc := usecase.NewContentUsecase(postgres.NewContentRepository(pool))
			res, err := usecase.NewContentIndexer(uc, opts.root, opts.checkerOptions()).Reindex(ctx)
			if res != nil && res.Report != nil {
				printReport(cmd.OutOrStdout(), res.Report)
			}
			if errors.Is(err, usecase.ErrContentInvalid) {
				return errValidation
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "synced: %d upserted, %d deleted\n", res.Sync.Upserted, res.Sync.Deleted)
			return nil
		},
	}
}
