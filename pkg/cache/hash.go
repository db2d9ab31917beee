package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds a cache key of the form "prefix:hex(sha256(parts))".
// Result and render keys fold their option structs into parts, so toggling
// an optimization flag or the render format yields a distinct key. The full
// 256-bit digest is kept to make collisions across graphs a non-concern.
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the hex SHA-256 digest of data. The pipeline hashes a graph's
// canonical wire form with it, so any change to a node value, precision, or
// edge produces a new graph hash and therefore fresh cache keys.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
