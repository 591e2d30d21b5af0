package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/arloliu/replwork/types"
)

// Dir lists regular files in a directory and pairs each with every target.
//
// Hidden files and subdirectories are ignored. Items are returned oldest
// file first (by modification time, then name) and, for each file, in
// target order.
type Dir struct {
	path    string
	targets []types.ReplicationTarget
	exclude func(types.WorkItem) bool
}

// DirOption configures a Dir source.
type DirOption func(*Dir)

// WithExclude drops items for which fn returns true, typically files that
// already reached their target.
func WithExclude(fn func(types.WorkItem) bool) DirOption {
	return func(d *Dir) {
		d.exclude = fn
	}
}

var _ types.WorkSource = (*Dir)(nil)

// NewDir creates a work source over the files in path.
//
// Parameters:
//   - path: Directory holding WAL files
//   - targets: Targets every file must be replicated to
//   - opts: Optional configuration
//
// Returns:
//   - *Dir: Directory-backed work source
func NewDir(path string, targets []types.ReplicationTarget, opts ...DirOption) *Dir {
	d := &Dir{
		path:    path,
		targets: slices.Clone(targets),
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// ListWork reads the directory and returns one item per (file, target).
func (d *Dir) ListWork(ctx context.Context) ([]types.WorkItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read WAL directory %s: %w", d.path, err)
	}

	type file struct {
		name    string
		modTime time.Time
	}

	files := make([]file, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		files = append(files, file{name: e.Name(), modTime: info.ModTime()})
	}

	slices.SortFunc(files, func(a, b file) int {
		if c := a.modTime.Compare(b.modTime); c != 0 {
			return c
		}

		return strings.Compare(a.name, b.name)
	})

	items := make([]types.WorkItem, 0, len(files)*len(d.targets))
	for _, f := range files {
		for _, t := range d.targets {
			item := types.WorkItem{
				File:   filepath.Join(d.path, f.name),
				Target: t,
			}
			if d.exclude != nil && d.exclude(item) {
				continue
			}
			items = append(items, item)
		}
	}

	return items, nil
}
