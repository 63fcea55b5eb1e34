package main

import (
	"fmt"

	"github.com/ammar0144/catalog4go"
	"github.com/ammar0144/catalog4go/pkg/logging"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

type sweepOutput struct {
	Scanned []string `json:"scanned"`
	Deleted []string `json:"deleted"`
	Error   string   `json:"error,omitempty"`
}

func newSweepCommand(ctx *commandContext) *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete every actor that no title references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sess, err := flags.resolve(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			lock := flock.New(cfg.Sweep.LockFile)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire sweep lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another sweep holds %s", cfg.Sweep.LockFile)
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					log := logging.WithComponent("cli")
					log.Warn().Err(err).Str("lock", cfg.Sweep.LockFile).Msg("failed to release sweep lock")
				}
			}()

			conns, err := ctx.open()
			if err != nil {
				return err
			}
			defer conns.close()
			defer ctx.writeMetrics()

			sweeper, err := catalog4go.NewSweeper(cfg, conns.db, conns.redis, sess)
			if err != nil {
				return err
			}

			report, sweepErr := sweeper.Sweep(cmd.Context())
			out := sweepOutput{Scanned: report.Scanned, Deleted: report.Deleted}
			if out.Scanned == nil {
				out.Scanned = []string{}
			}
			if out.Deleted == nil {
				out.Deleted = []string{}
			}
			if sweepErr != nil {
				out.Error = sweepErr.Error()
			}

			if err := writeJSON(cmd, out); err != nil {
				return err
			}
			if sweepErr != nil {
				return fmt.Errorf("%w: %w", errResultFailed, sweepErr)
			}
			return nil
		},
	}

	addSessionFlags(cmd, &flags)
	return cmd
}
