package main

import (
	"fmt"

	"github.com/ammar0144/catalog4go"

	"github.com/spf13/cobra"
)

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "delete <title-id>",
		Short: "Delete a title, its media file and actors left without titles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sess, err := flags.resolve(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			conns, err := ctx.open()
			if err != nil {
				return err
			}
			defer conns.close()
			defer ctx.writeMetrics()

			pipeline, err := catalog4go.NewPipeline(cfg, conns.db, conns.redis, sess)
			if err != nil {
				return err
			}

			result := pipeline.Delete(cmd.Context(), args[0])
			if err := writeJSON(cmd, result); err != nil {
				return err
			}
			if !result.OK() {
				return fmt.Errorf("%w: %w", errResultFailed, result.Err())
			}
			return nil
		},
	}

	addSessionFlags(cmd, &flags)
	return cmd
}

func addSessionFlags(cmd *cobra.Command, flags *sessionFlags) {
	cmd.Flags().StringVar(&flags.token, "token", "", "Bearer token identifying the caller")
	cmd.Flags().StringVar(&flags.identity, "identity", "", "Caller identity")
	cmd.Flags().StringVar(&flags.role, "role", "", "Caller role")
}
