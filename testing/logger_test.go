package testing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordingLogger(t *testing.T) {
	logger := NewRecordingLogger(t)

	logger.Debug("d")
	logger.Info("i", "key", "wal1")
	logger.Warn("w")
	logger.Error("e1", "error", "boom")
	logger.Error("e2")

	require.Len(t, logger.Entries(""), 5)

	errs := logger.Entries("ERROR")
	require.Len(t, errs, 2)
	require.Equal(t, "e1", errs[0].Msg)
	require.Equal(t, []any{"error", "boom"}, errs[0].KeysAndValues)

	info := logger.Entries("INFO")
	require.Len(t, info, 1)
	require.Equal(t, []any{"key", "wal1"}, info[0].KeysAndValues)

	require.Empty(t, logger.Entries("FATAL"))
}
