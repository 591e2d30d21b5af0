package types

import (
	"fmt"
	"path"
	"strings"
)

// KeySeparator is the reserved literal joining the components of a queue key.
//
// It must never appear in a file base name or in any ReplicationTarget field.
const KeySeparator = "|"

// ReplicationTarget identifies where the contents of a file must be sent.
//
// ReplicationTarget is an immutable, comparable value: two targets are equal
// when all three fields are equal.
type ReplicationTarget struct {
	// PeerName is the name of the remote peer cluster.
	PeerName string `json:"peerName" yaml:"peerName"`

	// RemoteIdentifier identifies the table on the peer cluster.
	RemoteIdentifier string `json:"remoteIdentifier" yaml:"remoteIdentifier"`

	// SourceTableID is the ID of the local table the file belongs to.
	SourceTableID string `json:"sourceTableId" yaml:"sourceTableId"`
}

// Validate checks that every field is non-empty and free of the key separator.
//
// Returns:
//   - error: ErrInvalidTarget wrapped with the offending field, nil if valid
func (t ReplicationTarget) Validate() error {
	fields := [...]struct{ name, value string }{
		{"peer name", t.PeerName},
		{"remote identifier", t.RemoteIdentifier},
		{"source table id", t.SourceTableID},
	}

	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%w: empty %s", ErrInvalidTarget, f.name)
		}
		if strings.Contains(f.value, KeySeparator) {
			return fmt.Errorf("%w: %s %q contains reserved separator %q", ErrInvalidTarget, f.name, f.value, KeySeparator)
		}
	}

	return nil
}

// String returns a human-readable representation used in logs.
func (t ReplicationTarget) String() string {
	return fmt.Sprintf("%s/%s(%s)", t.PeerName, t.RemoteIdentifier, t.SourceTableID)
}

// WorkItem is the obligation to replicate one file to one target.
//
// Work items are produced once per file and target combination and never
// mutated: a work item is either outstanding or gone.
type WorkItem struct {
	// File is the full path of the write-ahead log segment.
	File string `json:"file" yaml:"file"`

	// Target is the destination the file must be replicated to.
	Target ReplicationTarget `json:"target" yaml:"target"`
}

// FileName returns the base name of the file path.
//
// File paths use forward slashes regardless of platform, so path.Base is used
// rather than filepath.Base.
func (w WorkItem) FileName() string {
	return path.Base(w.File)
}

// Validate checks the preconditions required to derive a queue key.
//
// Returns:
//   - error: ErrInvalidWorkItem or ErrInvalidTarget wrapped with details, nil if valid
func (w WorkItem) Validate() error {
	if w.File == "" {
		return fmt.Errorf("%w: empty file path", ErrInvalidWorkItem)
	}

	name := w.FileName()
	if name == "" || name == "/" || name == "." {
		return fmt.Errorf("%w: file path %q has no base name", ErrInvalidWorkItem, w.File)
	}
	if strings.Contains(name, KeySeparator) {
		return fmt.Errorf("%w: file name %q contains reserved separator %q", ErrInvalidWorkItem, name, KeySeparator)
	}

	if err := w.Target.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWorkItem, err)
	}

	return nil
}
