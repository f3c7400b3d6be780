package bitset

import (
	"reflect"
	"sort"
	"testing"
)

func decodeSorted(t *testing.T, data []byte) []uint32 {
	t.Helper()
	var out []uint32
	if err := Decode(data, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestRoundTrip(t *testing.T) {
	cases := [][]uint32{
		nil,
		{0},
		{1, 2, 3},
		{0, 7, 8, 63, 64, 511, 512},
		{100, 200, 300, 400, 5000},
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	}

	for _, set := range cases {
		encoded := Encode(set)
		got := decodeSorted(t, encoded)

		want := append([]uint32(nil), set...)
		sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
		if want == nil {
			want = []uint32{}
		}
		if got == nil {
			got = []uint32{}
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("round trip %v: got %v", set, got)
		}
	}
}

func TestEncodeEmptyIsEmpty(t *testing.T) {
	if got := Encode(nil); got != nil {
		t.Errorf("Encode(nil) = %v, want nil", got)
	}
}

func TestDecodeAppends(t *testing.T) {
	out := []uint32{99}
	if err := Decode(Encode([]uint32{1, 2}), &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out[0] != 99 {
		t.Errorf("Decode should append, not clear: got %v", out)
	}
}

func TestDecodeNilOut(t *testing.T) {
	if err := Decode([]byte{1}, nil); err == nil {
		t.Error("expected error for nil out")
	}
}

func TestTreeDepthFor(t *testing.T) {
	cases := []struct {
		max   uint32
		depth int
	}{
		{0, 1},
		{7, 1},
		{8, 2},
		{63, 2},
		{64, 3},
	}
	for _, c := range cases {
		if got := treeDepthFor(c.max); got != c.depth {
			t.Errorf("treeDepthFor(%d) = %d, want %d", c.max, got, c.depth)
		}
	}
}
