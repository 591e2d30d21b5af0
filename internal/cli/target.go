package cli

import (
	"fmt"
	"strings"

	"github.com/arloliu/replwork/types"
)

// parseTarget parses "peer/remote/table" into a replication target.
func parseTarget(s string) (types.ReplicationTarget, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return types.ReplicationTarget{}, fmt.Errorf("%w: %q, expected peer/remote/table", types.ErrInvalidTarget, s)
	}

	t := types.ReplicationTarget{
		PeerName:         parts[0],
		RemoteIdentifier: parts[1],
		SourceTableID:    parts[2],
	}
	if err := t.Validate(); err != nil {
		return types.ReplicationTarget{}, err
	}

	return t, nil
}

func parseTargets(values []string) ([]types.ReplicationTarget, error) {
	targets := make([]types.ReplicationTarget, 0, len(values))
	seen := make(map[types.ReplicationTarget]struct{}, len(values))

	for _, v := range values {
		t, err := parseTarget(v)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		targets = append(targets, t)
	}

	return targets, nil
}
