package models

import (
	"github.com/cespare/xxhash/v2"
)

// Identifier is a (provider key, provider value) claim, e.g. ("steam", "76561197960287930").
type Identifier struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewIdentifier creates an Identifier from its key and value.
func NewIdentifier(key, value string) Identifier {
	return Identifier{Key: key, Value: value}
}

// Hash returns the content hash of the pair.
func (i Identifier) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(i.Key)
	// separator keeps ("ab","c") and ("a","bc") apart
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(i.Value)
	return d.Sum64()
}

// Fingerprint computes the order-independent 32-bit digest of an identifier set.
// Each distinct pair hash is multiplied by 3 and the results are XOR-combined,
// so any permutation of the same identifiers yields the same value. Repeated
// identifiers count once; otherwise equal terms would cancel out.
func Fingerprint(identifiers []Identifier) uint32 {
	var key uint64
	seen := make(map[Identifier]struct{}, len(identifiers))
	for _, id := range identifiers {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		key ^= 3 * id.Hash()
	}
	return uint32(key & 0xFFFFFFFF)
}

// ContainsIdentifier reports whether any identifier of a equals any identifier of b.
func ContainsIdentifier(a, b []Identifier) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
