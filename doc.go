// Package replwork assigns WAL replication work through a crash-surviving
// queue kept in NATS JetStream KV.
//
// A Scheduler periodically asks a WorkSource which files must be replicated
// to which peers, turns each (file, target) pair into a unique queue key and
// appends it to the shared work queue. Queue entries double as completion
// markers: a worker that finishes a file removes its entry, and the next
// cleanup pass notices the missing marker and forgets the key. After a
// restart the Scheduler rebuilds its tracked set from the queue, so nothing
// is queued twice and nothing is lost.
//
// # Quick Start
//
//	import "github.com/arloliu/replwork"
//
//	cfg := replwork.DefaultConfig()
//	cfg.InstanceID = "prod-1"
//
//	src := source.NewStatic(items)
//	sched, err := replwork.NewScheduler(&cfg, natsConn, src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := sched.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer sched.Stop(context.Background())
//
// Queue entries are processed by a queue.Worker pool, which can run in the
// same process or elsewhere:
//
//	w, err := queue.NewWorker(queueKV, lockKV, cfg.NamespacePath(), proc, queue.WorkerConfig{})
//
// # Key Format
//
// Queue keys have the form
//
//	<fileBaseName>|<peerName>|<remoteIdentifier>|<sourceTableId>
//
// and the completion marker for a key lives at
//
//	<coordinationRoot>/<instanceId><workQueueNamespace>/<key>
//
// See the workkey package for encoding and decoding.
//
// # Assignment Policies
//
//   - unordered (default): every new key is queued immediately.
//   - ordered: at most one outstanding key per replication target; later
//     files for the same target wait until the previous one finishes.
//
// # Configuration
//
// Config can be built in code or loaded from YAML with LoadConfig. Use
// TestConfig for fast timings in tests.
//
// # Observability
//
// Pass WithLogger, WithMetrics and WithHooks to NewScheduler. The
// internal/metrics package provides a Prometheus collector.
package replwork
