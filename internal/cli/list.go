package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/arloliu/replwork/queue"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued work",
		Long: `List the entries currently in the work queue with the file each one
replicates. An entry disappears once a worker has finished it.

Example:
  replwork list --instance-id prod-1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, rootOpts)
		},
	}
}

func runList(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	logger, err := opts.logger()
	if err != nil {
		return err
	}

	nc, err := opts.connect()
	if err != nil {
		return err
	}
	defer nc.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.OperationTimeout)
	defer cancel()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("failed to create jetstream context: %w", err)
	}

	kv, err := openQueueBucket(ctx, js, cfg)
	if err != nil {
		return err
	}

	q := queue.NewKV(kv, cfg.NamespacePath(), queue.WithKVLogger(logger))
	keys, err := q.ListQueued(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tFILE")
	for _, key := range keys {
		file, err := q.Get(ctx, key)
		if err != nil {
			// finished between list and get
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", key, file)
	}

	return tw.Flush()
}
