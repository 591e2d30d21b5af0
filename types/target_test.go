package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplicationTarget_Validate(t *testing.T) {
	t.Run("accepts complete target", func(t *testing.T) {
		target := ReplicationTarget{PeerName: "cluster1", RemoteIdentifier: "table1", SourceTableID: "1"}
		require.NoError(t, target.Validate())
	})

	t.Run("rejects empty fields", func(t *testing.T) {
		require.ErrorIs(t, ReplicationTarget{RemoteIdentifier: "t", SourceTableID: "1"}.Validate(), ErrInvalidTarget)
		require.ErrorIs(t, ReplicationTarget{PeerName: "p", SourceTableID: "1"}.Validate(), ErrInvalidTarget)
		require.ErrorIs(t, ReplicationTarget{PeerName: "p", RemoteIdentifier: "t"}.Validate(), ErrInvalidTarget)
	})

	t.Run("rejects reserved separator", func(t *testing.T) {
		target := ReplicationTarget{PeerName: "clu|ster", RemoteIdentifier: "table1", SourceTableID: "1"}
		require.ErrorIs(t, target.Validate(), ErrInvalidTarget)
	})

	t.Run("targets compare by value", func(t *testing.T) {
		a := ReplicationTarget{PeerName: "cluster1", RemoteIdentifier: "table1", SourceTableID: "1"}
		b := ReplicationTarget{PeerName: "cluster1", RemoteIdentifier: "table1", SourceTableID: "1"}
		c := ReplicationTarget{PeerName: "cluster1", RemoteIdentifier: "table1", SourceTableID: "2"}
		require.Equal(t, a, b)
		require.True(t, a == b)
		require.False(t, a == c)
	})
}

func TestWorkItem_Validate(t *testing.T) {
	target := ReplicationTarget{PeerName: "cluster1", RemoteIdentifier: "table1", SourceTableID: "1"}

	t.Run("uses base name of the path", func(t *testing.T) {
		item := WorkItem{File: "/accumulo/wal/tserver+port/wal1", Target: target}
		require.NoError(t, item.Validate())
		require.Equal(t, "wal1", item.FileName())
	})

	t.Run("rejects empty path", func(t *testing.T) {
		require.ErrorIs(t, WorkItem{Target: target}.Validate(), ErrInvalidWorkItem)
	})

	t.Run("rejects root path", func(t *testing.T) {
		require.ErrorIs(t, WorkItem{File: "/", Target: target}.Validate(), ErrInvalidWorkItem)
	})

	t.Run("rejects separator in file name", func(t *testing.T) {
		require.ErrorIs(t, WorkItem{File: "/wal/a|b", Target: target}.Validate(), ErrInvalidWorkItem)
	})

	t.Run("separator in directory is allowed", func(t *testing.T) {
		require.NoError(t, WorkItem{File: "/wal/a|b/wal1", Target: target}.Validate())
	})

	t.Run("invalid target is reported as both", func(t *testing.T) {
		err := WorkItem{File: "/wal/wal1"}.Validate()
		require.ErrorIs(t, err, ErrInvalidWorkItem)
		require.ErrorIs(t, err, ErrInvalidTarget)
	})
}
