package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/arloliu/replwork"
	"github.com/arloliu/replwork/coordination"
	"github.com/arloliu/replwork/internal/metrics"
	"github.com/arloliu/replwork/queue"
	"github.com/arloliu/replwork/source"
	"github.com/arloliu/replwork/types"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	WALDir      string
	Targets     []string
	DestDir     string
	NoWorker    bool
	MetricsAddr string
	Embedded    bool
	EmbeddedAt  string
	StoreDir    string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler and the worker pool",
		Long: `Run the scheduler, which queues every file in the WAL directory for every
target, and a worker pool that copies queued files below the destination
directory and clears their completion markers. Files that already have a
complete copy are not queued again.

Example:
  replwork serve --instance-id prod-1 --wal-dir /var/wal --target dr/2/1 --dest-dir /mnt/replica
  replwork serve -c replwork.yaml --wal-dir /var/wal --target dr/2/1 --no-worker`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.WALDir, "wal-dir", "", "directory holding WAL files to replicate (required)")
	cmd.Flags().StringArrayVar(&opts.Targets, "target", nil, "replication target as peer/remote/table (repeatable, required)")
	cmd.Flags().StringVar(&opts.DestDir, "dest-dir", "", "root directory replicated files are copied to")
	cmd.Flags().BoolVar(&opts.NoWorker, "no-worker", false, "run the scheduler only")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", ":9090", "address serving /metrics and /health (empty disables)")
	cmd.Flags().BoolVar(&opts.Embedded, "embedded-nats", false, "run an in-process NATS server with JetStream")
	cmd.Flags().StringVar(&opts.EmbeddedAt, "embedded-listen", "127.0.0.1:4222", "listen address of the embedded NATS server")
	cmd.Flags().StringVar(&opts.StoreDir, "store-dir", "", "JetStream store directory of the embedded NATS server")
	_ = cmd.MarkFlagRequired("wal-dir")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	if !opts.NoWorker && opts.DestDir == "" {
		return errors.New("--dest-dir is required unless --no-worker is set")
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	targets, err := parseTargets(opts.Targets)
	if err != nil {
		return err
	}

	baseLogger, err := opts.logger()
	if err != nil {
		return err
	}
	logger := baseLogger.With("instance_id", cfg.InstanceID)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.Embedded {
		host, portStr, err := net.SplitHostPort(opts.EmbeddedAt)
		if err != nil {
			return fmt.Errorf("invalid --embedded-listen %q: %w", opts.EmbeddedAt, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid --embedded-listen port %q: %w", portStr, err)
		}

		ns, err := startEmbeddedNATS(host, port, opts.StoreDir)
		if err != nil {
			return err
		}
		defer ns.Shutdown()

		opts.NATSURL = ns.ClientURL()
		logger.Info("embedded NATS server started", "url", opts.NATSURL)
	}

	nc, err := opts.connect()
	if err != nil {
		return err
	}
	defer nc.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewPrometheus(reg, "replwork")

	if opts.MetricsAddr != "" {
		srv := newMetricsServer(opts.MetricsAddr, reg)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "addr", opts.MetricsAddr, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	startCtx, cancel := context.WithTimeout(ctx, cfg.StartupTimeout)
	b, err := openBuckets(startCtx, nc, cfg)
	cancel()
	if err != nil {
		return err
	}

	proc := &copyProcessor{root: opts.DestDir}
	var srcOpts []source.DirOption
	if !opts.NoWorker {
		srcOpts = append(srcOpts, source.WithExclude(proc.replicated))
	}

	sched, err := replwork.NewScheduler(cfg, nc, source.NewDir(opts.WALDir, targets, srcOpts...),
		replwork.WithLogger(logger),
		replwork.WithMetrics(collector),
		replwork.WithWorkQueue(queue.NewKV(b.queue, cfg.NamespacePath(), queue.WithKVLogger(logger))),
		replwork.WithCoordinationClient(coordination.NewKV(b.queue)),
		replwork.WithHooks(&replwork.Hooks{
			OnWorkQueued: func(_ context.Context, key string, item types.WorkItem) error {
				logger.Info("work queued", "key", key, "target", item.Target.String())
				return nil
			},
		}),
	)
	if err != nil {
		return err
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}

	var worker *queue.Worker
	if !opts.NoWorker {
		worker, err = queue.NewWorker(b.queue, b.locks, cfg.NamespacePath(), proc,
			queue.WorkerConfig{
				Concurrency:    cfg.Worker.Concurrency,
				RescanInterval: cfg.Worker.RescanInterval,
				LockTTL:        cfg.KVBuckets.LockTTL,
			},
			queue.WithLogger(logger),
			queue.WithMetrics(collector),
		)
		if err == nil {
			err = worker.Start(ctx)
		}
		if err != nil {
			_ = sched.Stop(context.Background())
			return err
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	var errs []error
	if worker != nil {
		errs = append(errs, worker.Stop(shutdownCtx))
	}
	errs = append(errs, sched.Stop(shutdownCtx))

	return errors.Join(errs...)
}

func newMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
