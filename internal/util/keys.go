package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// StorageKey returns the provider key for a carrier stored under key in namespace ns.
func StorageKey(ns, key string) string {
	return "carrier:" + ns + ":" + key
}

// Digest returns the first 8 bytes of the SHA-256 of k as hex. Used to keep
// storage keys out of logs.
func Digest(k string) string {
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}
