package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/arloliu/replwork/types"
	"github.com/arloliu/replwork/workkey"
)

// copyProcessor replicates a file by copying it below a destination root.
//
// The copy lands at <root>/<peer>/<remote>/<table>/<file>. It is written to a
// temporary file and renamed, so a repeated attempt overwrites a partial copy.
type copyProcessor struct {
	root string
}

var _ types.Processor = (*copyProcessor)(nil)

func (p *copyProcessor) destination(fileName string, target types.ReplicationTarget) string {
	return filepath.Join(p.root, target.PeerName, target.RemoteIdentifier, target.SourceTableID, fileName)
}

// replicated reports whether item already has a complete copy at its destination.
func (p *copyProcessor) replicated(item types.WorkItem) bool {
	src, err := os.Stat(item.File)
	if err != nil {
		return false
	}
	dst, err := os.Stat(p.destination(item.FileName(), item.Target))
	if err != nil {
		return false
	}

	return src.Size() == dst.Size()
}

func (p *copyProcessor) Process(ctx context.Context, key string, payload string) error {
	fileName, target, err := workkey.Decode(key)
	if err != nil {
		return err
	}

	dst := p.destination(fileName, target)
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := os.Open(payload)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", payload, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dir, "."+fileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to copy %s: %w", payload, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), dst)
}
