// Package workkey derives queue keys and completion marker paths from work items.
//
// A queue key joins the file base name and the three target fields with the
// reserved separator:
//
//	<fileBaseName>|<peerName>|<remoteIdentifier>|<sourceTableId>
//
// The mapping is pure, so any process can recompute the key of a rediscovered
// file, and injective over validated work items, so two distinct items never
// share a key. Decode reverses it.
package workkey

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arloliu/replwork/types"
)

// Separator is the reserved literal joining key components.
const Separator = types.KeySeparator

// keyParts is the number of components in a queue key.
const keyParts = 4

// ErrMalformedKey is returned when a key does not have four non-empty components.
var ErrMalformedKey = errors.New("malformed queue key")

// Encode returns the queue key for a work item.
//
// Encode never fails. Items must have been validated with WorkItem.Validate;
// a separator inside a component would break injectivity.
func Encode(item types.WorkItem) string {
	return EncodeParts(item.FileName(), item.Target)
}

// EncodeParts returns the queue key for a file base name and a target.
func EncodeParts(fileName string, target types.ReplicationTarget) string {
	var b strings.Builder
	b.Grow(len(fileName) + len(target.PeerName) + len(target.RemoteIdentifier) + len(target.SourceTableID) + 3*len(Separator))

	b.WriteString(fileName)
	b.WriteString(Separator)
	b.WriteString(target.PeerName)
	b.WriteString(Separator)
	b.WriteString(target.RemoteIdentifier)
	b.WriteString(Separator)
	b.WriteString(target.SourceTableID)

	return b.String()
}

// Decode splits a queue key back into the file base name and the target.
//
// Returns:
//   - string: File base name
//   - types.ReplicationTarget: Target encoded in the key
//   - error: ErrMalformedKey if the key has the wrong shape
func Decode(key string) (string, types.ReplicationTarget, error) {
	parts := strings.Split(key, Separator)
	if len(parts) != keyParts {
		return "", types.ReplicationTarget{}, fmt.Errorf("%w: %q has %d components, want %d", ErrMalformedKey, key, len(parts), keyParts)
	}

	for _, p := range parts {
		if p == "" {
			return "", types.ReplicationTarget{}, fmt.Errorf("%w: %q has an empty component", ErrMalformedKey, key)
		}
	}

	return parts[0], types.ReplicationTarget{
		PeerName:         parts[1],
		RemoteIdentifier: parts[2],
		SourceTableID:    parts[3],
	}, nil
}

// ValidateComponent rejects empty strings and strings containing the separator.
func ValidateComponent(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty component", ErrMalformedKey)
	}
	if strings.Contains(s, Separator) {
		return fmt.Errorf("%w: component %q contains %q", ErrMalformedKey, s, Separator)
	}

	return nil
}

// NamespacePath returns the coordination path under which queue entries and
// their completion markers live:
//
//	<root>/<instanceID><namespace>
//
// namespace is expected to start with "/" (for example "/replication/workqueue").
func NamespacePath(root, instanceID, namespace string) string {
	return strings.TrimSuffix(root, "/") + "/" + instanceID + namespace
}

// MarkerPath returns the completion marker path for a queue key:
//
//	<root>/<instanceID><namespace>/<key>
func MarkerPath(root, instanceID, namespace, key string) string {
	return NamespacePath(root, instanceID, namespace) + "/" + key
}
