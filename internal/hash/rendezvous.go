// Package hash orders queue keys per worker so that concurrent workers start
// their claim attempts on different entries.
package hash

import (
	"slices"

	"github.com/zeebo/xxh3"
)

// Score returns the rendezvous weight of key for workerID.
//
// The worker ID hash seeds the key hash, so the same pair always yields the
// same score without building a concatenated string.
func Score(workerID, key string) uint64 {
	return xxh3.HashStringSeed(key, xxh3.HashString(workerID))
}

// Order returns a copy of keys sorted by descending Score for workerID.
//
// Ties fall back to lexical key order so the result is deterministic.
//
// Example:
//
//	for _, key := range hash.Order(workerID, queued) {
//	    tryClaim(key)
//	}
func Order(workerID string, keys []string) []string {
	type scored struct {
		key   string
		score uint64
	}

	items := make([]scored, len(keys))
	for i, k := range keys {
		items[i] = scored{key: k, score: Score(workerID, k)}
	}

	slices.SortFunc(items, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			if a.key < b.key {
				return -1
			}
			if a.key > b.key {
				return 1
			}

			return 0
		}
	})

	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.key
	}

	return out
}
