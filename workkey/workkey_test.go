package workkey

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/replwork/types"
)

func TestEncode(t *testing.T) {
	target := types.ReplicationTarget{PeerName: "cluster1", RemoteIdentifier: "table1", SourceTableID: "1"}

	t.Run("uses file base name and target fields", func(t *testing.T) {
		item := types.WorkItem{File: "/accumulo/wal/tserver+port/wal1", Target: target}
		require.Equal(t, "wal1|cluster1|table1|1", Encode(item))
	})

	t.Run("is deterministic", func(t *testing.T) {
		a := types.WorkItem{File: "/accumulo/wal/tserver+port/wal1", Target: target}
		b := types.WorkItem{File: "/other/dir/wal1", Target: target}
		require.Equal(t, Encode(a), Encode(b))
	})

	t.Run("keys for wal1 and wal2 differ only by file name", func(t *testing.T) {
		k1 := Encode(types.WorkItem{File: "/wal/wal1", Target: target})
		k2 := Encode(types.WorkItem{File: "/wal/wal2", Target: target})
		require.NotEqual(t, k1, k2)
		require.Equal(t, "wal1|cluster1|table1|1", k1)
		require.Equal(t, "wal2|cluster1|table1|1", k2)
	})
}

func TestEncode_Injective(t *testing.T) {
	files := []string{"wal1", "wal2", "wal"}
	names := []string{"a", "b", "ab"}

	seen := make(map[string]types.WorkItem)
	for _, f := range files {
		for _, peer := range names {
			for _, remote := range names {
				for _, table := range names {
					item := types.WorkItem{
						File:   "/wal/" + f,
						Target: types.ReplicationTarget{PeerName: peer, RemoteIdentifier: remote, SourceTableID: table},
					}
					require.NoError(t, item.Validate())

					key := Encode(item)
					prev, dup := seen[key]
					require.False(t, dup, "key %q produced by %v and %v", key, prev, item)
					seen[key] = item
				}
			}
		}
	}

	require.Len(t, seen, len(files)*len(names)*len(names)*len(names))
}

func TestDecode(t *testing.T) {
	t.Run("round trips encoded keys", func(t *testing.T) {
		target := types.ReplicationTarget{PeerName: "peer-a", RemoteIdentifier: "remote.t", SourceTableID: "42"}
		key := EncodeParts("00a1b2c3-wal", target)

		name, got, err := Decode(key)
		require.NoError(t, err)
		require.Equal(t, "00a1b2c3-wal", name)
		require.Equal(t, target, got)
	})

	malformed := []string{"", "wal1", "wal1|cluster1|table1", "wal1|cluster1|table1|1|extra", "wal1||table1|1"}
	for _, key := range malformed {
		t.Run(fmt.Sprintf("rejects %q", key), func(t *testing.T) {
			_, _, err := Decode(key)
			require.ErrorIs(t, err, ErrMalformedKey)
		})
	}
}

func TestValidateComponent(t *testing.T) {
	require.NoError(t, ValidateComponent("cluster1"))
	require.ErrorIs(t, ValidateComponent(""), ErrMalformedKey)
	require.ErrorIs(t, ValidateComponent("a|b"), ErrMalformedKey)
}

func TestMarkerPath(t *testing.T) {
	require.Equal(t, "/replwork/id/replication/workqueue", NamespacePath("/replwork", "id", "/replication/workqueue"))
	require.Equal(t, "/replwork/id/replication/workqueue/wal1", MarkerPath("/replwork", "id", "/replication/workqueue", "wal1"))
	require.Equal(t, "/replwork/id/replication/workqueue/wal1", MarkerPath("/replwork/", "id", "/replication/workqueue", "wal1"))
}
