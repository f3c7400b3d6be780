package cpset

import (
	"reflect"
	"sort"
	"testing"
)

func roundTrip(t *testing.T, codepoints []uint32) []uint32 {
	t.Helper()
	set := Encode(codepoints)
	var out []uint32
	if err := Decode(set, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestRoundTrip(t *testing.T) {
	cases := [][]uint32{
		nil,
		{5},
		{1, 2, 3, 4, 5},            // dense run -> likely range
		{1, 1000, 1000000},         // sparse, scattered -> likely bitset singles
		{0, 1, 2, 10, 11, 12, 100}, // mixed
	}

	for _, cps := range cases {
		got := roundTrip(t, cps)

		want := append([]uint32(nil), cps...)
		sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
		if want == nil {
			want = []uint32{}
		}
		if got == nil {
			got = []uint32{}
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("round trip %v: got %v", cps, got)
		}
	}
}

func TestEmpty(t *testing.T) {
	if !(Set{}).Empty() {
		t.Error("zero-value Set should be Empty")
	}
	s := Encode([]uint32{1, 2, 3})
	if s.Empty() {
		t.Error("non-empty codepoints should not encode to an Empty Set")
	}
}

func TestDecodeOddDeltaListRejected(t *testing.T) {
	var out []uint32
	err := Decode(Set{RangeDeltas: []uint32{1, 2, 3}}, &out)
	if err == nil {
		t.Error("expected error for odd-length delta list")
	}
}

func TestDecodeNilOut(t *testing.T) {
	if err := Decode(Set{}, nil); err == nil {
		t.Error("expected error for nil out")
	}
}

func TestVariableIntegerEncodedSize(t *testing.T) {
	cases := []struct {
		n    uint32
		size int
	}{
		{0, 1},
		{127, 1},
		{128, 2},
		{16383, 2},
		{16384, 3},
	}
	for _, c := range cases {
		if got := variableIntegerEncodedSize(c.n); got != c.size {
			t.Errorf("variableIntegerEncodedSize(%d) = %d, want %d", c.n, got, c.size)
		}
	}
}

func TestEncodeChoosesSparseBelowRangeCrossover(t *testing.T) {
	// A single dense run of 8 codepoints costs 1 byte as a bitset
	// ((end-start)/8 + 1) against 2 bytes as a range (var(gap) +
	// var(length)), so Encode must pick the bitset.
	cps := []uint32{0, 1, 2, 3, 4, 5, 6, 7}
	set := Encode(cps)
	if len(set.RangeDeltas) != 0 {
		t.Errorf("8-codepoint dense run should encode as a bitset, got RangeDeltas=%v", set.RangeDeltas)
	}
	if len(set.SparseBitSet) == 0 {
		t.Error("expected a non-empty SparseBitSet payload")
	}
}

func TestEncodeChoosesRangeAtCrossover(t *testing.T) {
	// One more codepoint ties the bitset and range costs at 2 bytes
	// apiece; Encode's rangeCost <= sparseCost tie-break picks the
	// range.
	cps := []uint32{0, 1, 2, 3, 4, 5, 6, 7, 8}
	set := Encode(cps)
	if len(set.RangeDeltas) == 0 {
		t.Errorf("9-codepoint dense run should encode as a range, got none (SparseBitSet=%v)", set.SparseBitSet)
	}
	if len(set.SparseBitSet) != 0 {
		t.Errorf("expected no bitset payload when the range wins, got %v", set.SparseBitSet)
	}
}

func TestLargeDenseRangeRoundTrip(t *testing.T) {
	var cps []uint32
	for i := uint32(0x41); i <= 0x5A; i++ { // A-Z
		cps = append(cps, i)
	}
	got := roundTrip(t, cps)
	if !reflect.DeepEqual(got, cps) {
		t.Errorf("A-Z round trip: got %v, want %v", got, cps)
	}
}
