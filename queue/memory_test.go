package queue

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := t.Context()
	m := NewMemory()

	require.NoError(t, m.AddWork(ctx, "b", "/b"))
	require.NoError(t, m.AddWork(ctx, "a", "/a"))
	require.NoError(t, m.AddWork(ctx, "a", "/a2"))

	keys, err := m.ListQueued(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, keys)
	require.Equal(t, 2, m.Adds("a"))

	payload, ok := m.Payload("a")
	require.True(t, ok)
	require.Equal(t, "/a", payload)

	m.Complete("a")
	keys, err = m.ListQueued(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, keys)
}

func TestMemory_Failures(t *testing.T) {
	ctx := t.Context()
	m := NewMemory()
	boom := errors.New("quorum lost")

	m.FailAdds(boom)
	require.ErrorIs(t, m.AddWork(ctx, "a", "/a"), boom)
	require.Equal(t, 1, m.AddCalls())
	require.Zero(t, m.Adds("a"))

	m.FailList(boom)
	_, err := m.ListQueued(ctx)
	require.ErrorIs(t, err, boom)

	m.FailAdds(nil)
	m.FailList(nil)
	require.NoError(t, m.AddWork(ctx, "a", "/a"))
	keys, err := m.ListQueued(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, keys)
}
