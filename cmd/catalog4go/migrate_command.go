package main

import (
	"fmt"

	"github.com/ammar0144/catalog4go/pkg/catalog"

	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the catalog tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conns, err := ctx.open()
			if err != nil {
				return err
			}
			defer conns.close()
			defer ctx.writeMetrics()

			if err := catalog.Migrate(conns.db.DB()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "catalog schema is up to date")
			return err
		},
	}
}
