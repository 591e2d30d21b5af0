package kvutil

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// escapePrefix marks a path segment stored as base64. It never appears in a
// plain segment, so escaped and plain segments cannot collide.
const escapePrefix = "="

var plainSegment = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// PathToKey maps a slash-separated coordination path onto a NATS KV key.
//
// KV keys only allow a restricted alphabet and use "." as the token
// separator, so each non-empty path segment becomes one token. Segments made
// of [A-Za-z0-9_-] are kept verbatim; any other segment is stored as "=" followed
// by its unpadded base64url encoding. The mapping is injective and
// DecodeToken reverses it token by token.
//
// Example:
//
//	PathToKey("/replwork/id/replication/workqueue/wal1")
//	// "replwork.id.replication.workqueue.wal1"
func PathToKey(path string) string {
	segments := strings.Split(path, "/")
	tokens := make([]string, 0, len(segments))

	for _, seg := range segments {
		if seg == "" {
			continue
		}
		tokens = append(tokens, encodeSegment(seg))
	}

	return strings.Join(tokens, ".")
}

// LastToken returns the decoded final segment of a KV key produced by PathToKey.
func LastToken(key string) (string, error) {
	idx := strings.LastIndex(key, ".")

	return DecodeToken(key[idx+1:])
}

// DecodeToken decodes a single key token back into its path segment.
func DecodeToken(tok string) (string, error) {
	if !strings.HasPrefix(tok, escapePrefix) {
		if !plainSegment.MatchString(tok) {
			return "", fmt.Errorf("invalid key token %q", tok)
		}

		return tok, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(tok, escapePrefix))
	if err != nil {
		return "", fmt.Errorf("invalid escaped key token %q: %w", tok, err)
	}

	return string(raw), nil
}

func encodeSegment(seg string) string {
	if plainSegment.MatchString(seg) {
		return seg
	}

	return escapePrefix + base64.RawURLEncoding.EncodeToString([]byte(seg))
}
