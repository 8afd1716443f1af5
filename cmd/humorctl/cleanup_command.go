package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwong2529/humor-study/internal/jobs/cleanup"
	pgrepo "github.com/jwong2529/humor-study/internal/repo/postgres"
)

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete analytics events past the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			pool, err := ctx.openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			job := cleanup.NewEventRetentionJob(pgrepo.NewEventRepo(pool), cfg.Events.Retention, ctx.cliLogger())
			deleted, err := job.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d events older than %s\n", deleted, job.Retention())
			return nil
		},
	}
}
