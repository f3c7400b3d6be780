// Package bitset implements the SparseBitSet codec: a set of
// non-negative integers packed into a complete 8-ary tree, one byte per
// tree node, laid out breadth-first.
//
// Ported from the reference sparse_bit_set.cc tree-of-bytes encoding:
// each byte is a node; a set bit in an internal node marks a child that
// covers at least one set member, and a set bit in the terminal layer
// marks direct membership of base+bit.
package bitset

import (
	"sort"

	"github.com/patchsub/patchsubset/internal/patcherr"
)

const bitsPerByte = 8

// Encode packs set into a SparseBitSet byte stream. The empty set
// encodes to an empty (nil) slice.
func Encode(set []uint32) []byte {
	if len(set) == 0 {
		return nil
	}

	sorted := make([]uint32, len(set))
	copy(sorted, set)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	depth := treeDepthFor(sorted[len(sorted)-1])

	var out []byte
	byteBases := []uint32{0}
	byteIndex := 0
	for layer := 0; layer < depth; layer++ {
		byteIndex = encodeLayer(sorted, layer, depth, byteIndex, &byteBases, &out)
	}
	return out
}

// treeDepthFor returns the minimum depth d such that 8^d > maxValue.
func treeDepthFor(maxValue uint32) int {
	depth := 1
	value := uint64(bitsPerByte)
	for value-1 < uint64(maxValue) {
		depth++
		value *= bitsPerByte
	}
	return depth
}

// valuesPerBitForLayer returns how many distinct values a single bit at
// the given layer (0 = root) can account for, in a tree of the given
// depth.
func valuesPerBitForLayer(layer, treeDepth int) uint64 {
	treeSize := uint64(1)
	for i := 0; i < treeDepth; i++ {
		treeSize *= bitsPerByte
	}
	for i := 0; i < layer; i++ {
		treeSize /= bitsPerByte
	}
	return treeSize / bitsPerByte
}

func encodeLayer(sorted []uint32, layer, treeDepth, byteIndex int, byteBases *[]uint32, out *[]byte) int {
	valuesPerBit := valuesPerBitForLayer(layer, treeDepth)
	valuesPerByte := valuesPerBit * bitsPerByte

	for _, cp := range sorted {
		if uint64(cp) >= uint64((*byteBases)[byteIndex])+valuesPerByte {
			byteIndex++
		}
		for byteIndex >= len(*out) {
			*out = append(*out, 0)
		}

		bitIndex := (uint64(cp) - uint64((*byteBases)[byteIndex])) / valuesPerBit
		mask := byte(1) << bitIndex
		if (*out)[byteIndex]&mask != 0 {
			continue
		}
		(*out)[byteIndex] |= mask
		if valuesPerBit > 1 {
			base := uint32((uint64(cp) / valuesPerBit) * valuesPerBit)
			*byteBases = append(*byteBases, base)
		}
	}

	return byteIndex + 1
}

// Decode unpacks a SparseBitSet byte stream, appending decoded members
// to out (out is not cleared first). Returns InvalidArgument if the
// stream ends mid-layer with outstanding children still to expand.
func Decode(data []byte, out *[]uint32) error {
	if out == nil {
		return patcherr.New(patcherr.InvalidArgument, "sparse bit set decode: out is nil")
	}
	if len(data) == 0 {
		return nil
	}

	layerIndices := []uint32{0}
	byteIndex := 0

	for byteIndex < len(data) {
		endIndex := len(layerIndices) - 1
		if endIndex >= len(data) {
			return patcherr.New(patcherr.InvalidArgument, "sparse bit set decode: truncated layer")
		}
		var err error
		byteIndex, err = decodeLayer(data, byteIndex, endIndex, &layerIndices, out)
		if err != nil {
			return err
		}
	}

	return nil
}

func decodeLayer(data []byte, startIndex, endIndex int, layerIndices *[]uint32, out *[]uint32) (int, error) {
	hasMoreLayers := len(*layerIndices) < len(data)

	i := startIndex
	for ; i <= endIndex && i < len(data); i++ {
		b := data[i]
		for bit := 0; bit < bitsPerByte; bit++ {
			mask := byte(1) << uint(bit)
			if b&mask == 0 {
				continue
			}

			index := (*layerIndices)[i]*bitsPerByte + uint32(bit)
			if hasMoreLayers {
				*layerIndices = append(*layerIndices, index)
				continue
			}
			*out = append(*out, index)
		}
	}
	return i, nil
}
