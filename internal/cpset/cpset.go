// Package cpset implements the CompressedSet codec: a codepoint set
// stored as the union of a SparseBitSet payload and a delta-encoded
// list of ranges, with a per-range size heuristic choosing which
// container holds each run of values.
//
// Ported from the reference compressed_set.cc range/bitset hybrid and
// its StrategyFor cost comparison.
package cpset

import (
	"sort"

	"github.com/patchsub/patchsubset/internal/bitset"
	"github.com/patchsub/patchsubset/internal/patcherr"
)

// Set is the decoded wire form of a CompressedSet record.
type Set struct {
	SparseBitSet []byte
	RangeDeltas  []uint32
}

// Empty reports whether set has no sparse payload and no ranges.
func (s Set) Empty() bool {
	return len(s.SparseBitSet) == 0 && len(s.RangeDeltas) == 0
}

type codepointRange struct {
	start, end uint32 // inclusive
}

// Encode builds a CompressedSet record for the given codepoints,
// choosing per-range between sparse-bit-set and delta-range encoding
// by the §4.2 cost heuristic.
func Encode(codepoints []uint32) Set {
	ranges := toRanges(codepoints)
	if len(ranges) == 0 {
		return Set{}
	}

	var sparseValues []uint32
	var rangeList []codepointRange

	prevEnd := uint32(0)
	havePrev := false
	for i, r := range ranges {
		if r.start == r.end {
			sparseValues = append(sparseValues, r.start)
			continue
		}

		var nextStart uint32
		hasNext := i+1 < len(ranges)
		if hasNext {
			nextStart = ranges[i+1].start
		}

		rangeCost := variableIntegerEncodedSize(rangeGap(r.start, prevEnd, havePrev)) +
			variableIntegerEncodedSize(r.end-r.start)
		sparseCost := bitSetEncodedSize(r, havePrev, prevEnd, hasNext, nextStart)

		if rangeCost <= sparseCost {
			rangeList = append(rangeList, r)
			prevEnd = r.end
			havePrev = true
			continue
		}
		for v := r.start; v <= r.end; v++ {
			sparseValues = append(sparseValues, v)
		}
	}

	out := Set{SparseBitSet: bitset.Encode(sparseValues)}
	prevEnd = 0
	for _, r := range rangeList {
		out.RangeDeltas = append(out.RangeDeltas, r.start-prevEnd, r.end-r.start)
		prevEnd = r.end
	}
	return out
}

func rangeGap(start, prevEnd uint32, havePrev bool) uint32 {
	if !havePrev {
		return start
	}
	return start - prevEnd
}

// toRanges collapses a codepoint slice into sorted, inclusive,
// non-overlapping runs.
func toRanges(codepoints []uint32) []codepointRange {
	if len(codepoints) == 0 {
		return nil
	}
	sorted := append([]uint32(nil), codepoints...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var ranges []codepointRange
	start, end := sorted[0], sorted[0]
	for _, v := range sorted[1:] {
		if v == end {
			continue
		}
		if v == end+1 {
			end = v
			continue
		}
		ranges = append(ranges, codepointRange{start, end})
		start, end = v, v
	}
	ranges = append(ranges, codepointRange{start, end})
	return ranges
}

// variableIntegerEncodedSize returns var(n): the byte cost of encoding
// n as 7-bit groups, little varint style.
func variableIntegerEncodedSize(n uint32) int {
	size := 1
	for n >= 0x80 {
		n >>= 7
		size++
	}
	return size
}

// bitSetEncodedSize is the sparse-bit-set cost for range [r.start,r.end],
// crediting shared boundary bytes with the adjacent previous/next runs
// per §4.2.
func bitSetEncodedSize(r codepointRange, havePrev bool, prevEnd uint32, hasNext bool, nextStart uint32) int {
	cost := int((r.end-r.start)/8) + 1

	if havePrev && prevEnd/8 == r.start/8 {
		cost--
	}
	if hasNext && nextStart/8 == r.end/8 {
		cost--
	}
	if cost < 0 {
		cost = 0
	}
	return cost
}

// Decode reverses Encode: the sparse payload decodes first, then each
// range [lastEnd+delta0, lastEnd+delta0+delta1] (inclusive) is added,
// advancing lastEnd. Appends to out without clearing it.
func Decode(set Set, out *[]uint32) error {
	if out == nil {
		return patcherr.New(patcherr.InvalidArgument, "compressed set decode: out is nil")
	}
	if len(set.RangeDeltas)%2 != 0 {
		return patcherr.New(patcherr.InvalidArgument, "compressed set decode: odd-length range delta list")
	}

	if err := bitset.Decode(set.SparseBitSet, out); err != nil {
		return patcherr.Wrap(patcherr.InvalidArgument, "compressed set decode: sparse payload", err)
	}

	lastEnd := uint32(0)
	for i := 0; i < len(set.RangeDeltas); i += 2 {
		start := lastEnd + set.RangeDeltas[i]
		end := start + set.RangeDeltas[i+1]
		for v := start; v <= end; v++ {
			*out = append(*out, v)
		}
		lastEnd = end
	}
	return nil
}
