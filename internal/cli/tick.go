package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/replwork"
	"github.com/arloliu/replwork/source"
	"github.com/arloliu/replwork/types"
)

// TickOptions holds flags for the tick command.
type TickOptions struct {
	*RootOptions
	WALDir  string
	Targets []string
}

// NewTickCommand creates the tick command.
func NewTickCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TickOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run a single scheduler pass",
		Long: `Rebuild the tracked set from the queue, queue new work from the WAL
directory (if given) and forget work whose completion marker is gone.

Example:
  replwork tick --instance-id prod-1
  replwork tick --instance-id prod-1 --wal-dir /var/wal --target dr/2/1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTick(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.WALDir, "wal-dir", "", "directory holding WAL files to queue")
	cmd.Flags().StringArrayVar(&opts.Targets, "target", nil, "replication target as peer/remote/table (repeatable)")

	return cmd
}

func runTick(cmd *cobra.Command, opts *TickOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	targets, err := parseTargets(opts.Targets)
	if err != nil {
		return err
	}
	if opts.WALDir != "" && len(targets) == 0 {
		return errors.New("--target is required with --wal-dir")
	}

	logger, err := opts.logger()
	if err != nil {
		return err
	}

	var src types.WorkSource = source.NewStatic(nil)
	if opts.WALDir != "" {
		src = source.NewDir(opts.WALDir, targets)
	}

	nc, err := opts.connect()
	if err != nil {
		return err
	}
	defer nc.Close()

	// The periodic loop must not tick on its own.
	cfg.WorkProcessorDelay = 24 * time.Hour

	var queued, finished int
	sched, err := replwork.NewScheduler(cfg, nc, src,
		replwork.WithLogger(logger),
		replwork.WithHooks(&replwork.Hooks{
			OnWorkQueued: func(context.Context, string, types.WorkItem) error {
				queued++
				return nil
			},
			OnWorkFinished: func(_ context.Context, keys []string) error {
				finished += len(keys)
				return nil
			},
		}),
	)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = sched.Stop(context.Background()) }()

	tickErr := sched.RunOnce(ctx)

	fmt.Fprintf(cmd.OutOrStdout(), "queued=%d finished=%d tracked=%d\n", queued, finished, len(sched.QueuedWork()))

	return tickErr
}
