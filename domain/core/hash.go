package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	CorpusHash Hash
	ConfigHash Hash
)

// Constructors
func NewCorpusHash(data []byte) CorpusHash { return CorpusHash(NewHash(data)) }
func NewConfigHash(data []byte) ConfigHash { return ConfigHash(NewHash(data)) }

// String conversions
func (h CorpusHash) String() string { return Hash(h).String() }
func (h ConfigHash) String() string { return Hash(h).String() }

// ComputeCorpusHash derives a deterministic hash over a name corpus.
// Names are sorted first so ordering of the input never changes the hash.
func ComputeCorpusHash(names []string) CorpusHash {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	var data strings.Builder
	for _, name := range sorted {
		data.WriteString(name)
		data.WriteByte(0)
	}
	return NewCorpusHash([]byte(data.String()))
}

// ComputeConfigHash derives a deterministic hash over extractor configuration.
func ComputeConfigHash(categories []string, options map[string]string) ConfigHash {
	sortedCats := make([]string, len(categories))
	copy(sortedCats, categories)
	sort.Strings(sortedCats)

	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, c := range sortedCats {
		data.WriteString(c)
		data.WriteByte(0)
	}
	for _, k := range keys {
		data.WriteString(fmt.Sprintf("%s=%s", k, options[k]))
		data.WriteByte(0)
	}
	return NewConfigHash([]byte(data.String()))
}
