package assigner

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/arloliu/replwork/types"
)

type mockQueue struct {
	mock.Mock
}

var _ types.WorkQueue = (*mockQueue)(nil)

func (m *mockQueue) AddWork(ctx context.Context, key string, payload string) error {
	args := m.Called(ctx, key, payload)
	return args.Error(0)
}

func (m *mockQueue) ListQueued(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	keys, _ := args.Get(0).([]string)

	return keys, args.Error(1)
}

type mockMetrics struct {
	mock.Mock
}

var _ types.AssignerMetrics = (*mockMetrics)(nil)

func (m *mockMetrics) RecordWorkQueued(policy string) { m.Called(policy) }
func (m *mockMetrics) RecordQueueError(policy string) { m.Called(policy) }
func (m *mockMetrics) RecordWorkFinished(count int) { m.Called(count) }
func (m *mockMetrics) RecordCoordinationError() { m.Called() }
func (m *mockMetrics) RecordTrackedWork(count int) { m.Called(count) }

var (
	target1 = types.ReplicationTarget{PeerName: "cluster1", RemoteIdentifier: "table1", SourceTableID: "1"}
	target2 = types.ReplicationTarget{PeerName: "cluster2", RemoteIdentifier: "table9", SourceTableID: "1"}

	wal1 = types.WorkItem{File: "/accumulo/wals/tserver+9997/wal1", Target: target1}
	wal2 = types.WorkItem{File: "/accumulo/wals/tserver+9997/wal2", Target: target1}

	testConfig = Config{
		CoordinationRoot:   "/replwork",
		InstanceID:         "instance-1",
		WorkQueueNamespace: "/replication/workqueue",
	}
)
