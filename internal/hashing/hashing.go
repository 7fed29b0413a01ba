// Package hashing selects the content hash used to address objects.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/xxh3"
)

const (
	SHA256 = "sha256"
	XXH3   = "xxh3"
)

// Func turns content into its hex address.
type Func func(data []byte) string

// Lookup returns the hash function registered under name.
func Lookup(name string) (Func, error) {
	switch name {
	case "", SHA256:
		return Sha256, nil
	case XXH3:
		return Xxh3, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", name)
	}
}

func Sha256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Xxh3 is the 128-bit xxh3 digest. Fast, not collision resistant against an
// adversary.
func Xxh3(data []byte) string {
	sum := xxh3.Hash128(data).Bytes()
	return hex.EncodeToString(sum[:])
}
