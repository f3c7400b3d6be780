// Package fingerprint provides the stable, architecture-independent
// 64-bit content hash used throughout the protocol to identify fonts,
// subsets, and codepoint mappings (spec §4.3).
//
// xxhash is a natural fit: it is allocation-free, has no seed/version
// drift concerns across releases, and is already the hash of choice
// across the retrieved pack's own manifests.
package fingerprint

import "github.com/cespare/xxhash/v2"

// Fingerprint is a stable 64-bit content hash.
type Fingerprint uint64

// Of returns the fingerprint of data.
func Of(data []byte) Fingerprint {
	return Fingerprint(xxhash.Sum64(data))
}

// Hasher accumulates bytes across multiple writes before finalizing a
// Fingerprint, for callers building a hash input piecewise. The result
// equals Of applied to the concatenation of everything written.
type Hasher struct {
	d *xxhash.Digest
}

// New returns a Hasher ready to accept Write calls.
func New() *Hasher {
	return &Hasher{d: xxhash.New()}
}

// Write implements io.Writer; it never returns an error.
func (h *Hasher) Write(p []byte) (int, error) {
	return h.d.Write(p)
}

// Sum returns the fingerprint of everything written so far.
func (h *Hasher) Sum() Fingerprint {
	return Fingerprint(h.d.Sum64())
}
