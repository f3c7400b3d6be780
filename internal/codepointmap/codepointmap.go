// Package codepointmap implements CodepointMap and CodepointMapper
// (spec §4.5): a deterministic bijection between a font's original
// codepoints and the contiguous integers 0..N-1, used to compact the
// wire representation of large codepoint sets.
//
// Ported from codepoint_map.h/.cc, simple_codepoint_mapper.cc, and
// codepoint_mapping_checksum_impl.cc.
package codepointmap

import (
	"encoding/binary"
	"sort"

	"github.com/patchsub/patchsubset/internal/fingerprint"
	"github.com/patchsub/patchsubset/internal/patcherr"
)

// Map is a bijection between original codepoints and 0..N-1.
type Map struct {
	decodeOrder []uint32          // decode(k) for k in [0, N)
	encodeIndex map[uint32]uint32 // original codepoint -> index
}

// ComputeMapping builds a Map by sorting fontCodepoints ascending and
// assigning sequential indices. Deterministic given the input set.
func ComputeMapping(fontCodepoints []uint32) *Map {
	sorted := append([]uint32(nil), fontCodepoints...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	m := &Map{
		decodeOrder: sorted,
		encodeIndex: make(map[uint32]uint32, len(sorted)),
	}
	for i, cp := range sorted {
		m.encodeIndex[cp] = uint32(i)
	}
	return m
}

// Len returns N, the size of the map's domain.
func (m *Map) Len() int { return len(m.decodeOrder) }

// Encode replaces cp with its index. Returns InvalidArgument if cp is
// not in the map's domain.
func (m *Map) Encode(cp uint32) (uint32, error) {
	idx, ok := m.encodeIndex[cp]
	if !ok {
		return 0, patcherr.New(patcherr.InvalidArgument, "codepoint map: value not in domain")
	}
	return idx, nil
}

// EncodeSet replaces every value in set with its index. Returns
// InvalidArgument if any value is outside the map's domain.
func (m *Map) EncodeSet(set []uint32) ([]uint32, error) {
	out := make([]uint32, len(set))
	for i, cp := range set {
		idx, err := m.Encode(cp)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// Decode returns the original codepoint for index.
func (m *Map) Decode(index uint32) (uint32, error) {
	if int(index) >= len(m.decodeOrder) {
		return 0, patcherr.New(patcherr.InvalidArgument, "codepoint map: index out of range")
	}
	return m.decodeOrder[index], nil
}

// DecodeSet returns the original codepoints for a set of indices.
func (m *Map) DecodeSet(set []uint32) ([]uint32, error) {
	out := make([]uint32, len(set))
	for i, idx := range set {
		cp, err := m.Decode(idx)
		if err != nil {
			return nil, err
		}
		out[i] = cp
	}
	return out, nil
}

// IntersectWithDomain filters set down to values present in the map's
// domain, used to sanitize a potentially stale client set before
// encoding it.
func (m *Map) IntersectWithDomain(set []uint32) []uint32 {
	out := set[:0]
	for _, cp := range set {
		if _, ok := m.encodeIndex[cp]; ok {
			out = append(out, cp)
		}
	}
	return out
}

// ToDeltaList emits [decode(0), decode(1)-decode(0), …].
func (m *Map) ToDeltaList() []uint32 {
	deltas := make([]uint32, len(m.decodeOrder))
	prev := uint32(0)
	for i, cp := range m.decodeOrder {
		deltas[i] = cp - prev
		prev = cp
	}
	return deltas
}

// FromDeltaList rebuilds a Map from a delta list produced by
// ToDeltaList.
func FromDeltaList(deltas []uint32) *Map {
	m := &Map{
		decodeOrder: make([]uint32, len(deltas)),
		encodeIndex: make(map[uint32]uint32, len(deltas)),
	}
	cp := uint32(0)
	for i, delta := range deltas {
		cp += delta
		m.decodeOrder[i] = cp
		m.encodeIndex[cp] = uint32(i)
	}
	return m
}

// Fingerprint hashes the canonical little-endian 32-bit encoding
// [N, delta_0, …, delta_{N-1}] per §6.3.
func (m *Map) Fingerprint() fingerprint.Fingerprint {
	deltas := m.ToDeltaList()
	buf := make([]byte, 4*(1+len(deltas)))
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(deltas)))
	for i, d := range deltas {
		binary.LittleEndian.PutUint32(buf[4+4*i:8+4*i], d)
	}
	return fingerprint.Of(buf)
}

// Equal reports whether two maps have identical decode orders.
func (m *Map) Equal(other *Map) bool {
	if m == nil || other == nil {
		return m == other
	}
	if len(m.decodeOrder) != len(other.decodeOrder) {
		return false
	}
	for i, cp := range m.decodeOrder {
		if other.decodeOrder[i] != cp {
			return false
		}
	}
	return true
}
