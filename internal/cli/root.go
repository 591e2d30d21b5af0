// Package cli implements the replwork command line.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/replwork"
	"github.com/arloliu/replwork/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	InstanceID string
	NATSURL    string
	LogLevel   string
	LogFormat  string

	// stderr receives log output. Defaults to os.Stderr.
	stderr io.Writer
}

// NewRootCommand creates the root command for the replwork CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{stderr: os.Stderr}

	cmd := &cobra.Command{
		Use:   "replwork",
		Short: "Replication work assignment over NATS JetStream",
		Long: `replwork queues WAL replication work into a NATS JetStream KV bucket,
processes queued entries with a worker pool and forgets work whose
completion marker has disappeared.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.InstanceID, "instance-id", "", "instance ID (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.NATSURL, "nats-url", nats.DefaultURL, "NATS server URL")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "text", "log format (text|json)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewQueueCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewTickCommand(opts))

	return cmd
}

// loadConfig reads the config file if one was given, applies flag overrides,
// then defaults and validation.
func (o *RootOptions) loadConfig() (*replwork.Config, error) {
	var cfg replwork.Config
	if o.ConfigPath != "" {
		data, err := os.ReadFile(o.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", o.ConfigPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", o.ConfigPath, err)
		}
	}

	if o.InstanceID != "" {
		cfg.InstanceID = o.InstanceID
	}

	replwork.SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", replwork.ErrInvalidConfig, err)
	}

	return &cfg, nil
}

func (o *RootOptions) logger() (*logging.SlogLogger, error) {
	level, err := logging.ParseLevel(o.LogLevel)
	if err != nil {
		return nil, err
	}

	w := o.stderr
	if w == nil {
		w = os.Stderr
	}

	return logging.NewHandlerLogger(w, o.LogFormat, level)
}

func (o *RootOptions) connect() (*nats.Conn, error) {
	nc, err := nats.Connect(o.NATSURL,
		nats.Name("replwork"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", o.NATSURL, err)
	}

	return nc, nil
}
