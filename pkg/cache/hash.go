package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Key derives a session cache key by hashing the components.
// The key format is: prefix:hash(parts...)
//
// Sources call this with whatever uniquely identifies one package instance
// (source name, package name, version, canonical description) so that
// identities reached through different spellings of the same description
// share one cache entry.
func Key(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Full SHA-256 (64 hex chars) to prevent collisions
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}
