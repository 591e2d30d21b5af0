package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/arloliu/replwork/queue"
	"github.com/arloliu/replwork/types"
	"github.com/arloliu/replwork/workkey"
)

// QueueOptions holds flags for the queue command.
type QueueOptions struct {
	*RootOptions
	Targets []string
}

// NewQueueCommand creates the queue command.
func NewQueueCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueueOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "queue <file>...",
		Short: "Append work items to the queue",
		Long: `Append one queue entry per file and target. Entries that are already
queued are left untouched.

Example:
  replwork queue --instance-id prod-1 --target dr/2/1 /var/wal/wal-000001`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueue(cmd, opts, args)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Targets, "target", nil, "replication target as peer/remote/table (repeatable, required)")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runQueue(cmd *cobra.Command, opts *QueueOptions, files []string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	targets, err := parseTargets(opts.Targets)
	if err != nil {
		return err
	}

	items := make([]types.WorkItem, 0, len(files)*len(targets))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		for _, t := range targets {
			item := types.WorkItem{File: abs, Target: t}
			if err := item.Validate(); err != nil {
				return err
			}
			items = append(items, item)
		}
	}

	nc, err := opts.connect()
	if err != nil {
		return err
	}
	defer nc.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.StartupTimeout)
	defer cancel()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("failed to create jetstream context: %w", err)
	}

	kv, err := openQueueBucket(ctx, js, cfg)
	if err != nil {
		return err
	}

	q := queue.NewKV(kv, cfg.NamespacePath())
	for _, item := range items {
		key := workkey.Encode(item)
		if err := q.AddWork(ctx, key, item.File); err != nil {
			return fmt.Errorf("%w %s: %w", types.ErrQueueWork, key, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
	}

	return nil
}
