package codepointmap

import "testing"

func TestEncodeDecodeInvolution(t *testing.T) {
	m := ComputeMapping([]uint32{30, 10, 20, 40})

	for i := 0; i < m.Len(); i++ {
		cp, err := m.Decode(uint32(i))
		if err != nil {
			t.Fatalf("Decode(%d): %v", i, err)
		}
		idx, err := m.Encode(cp)
		if err != nil {
			t.Fatalf("Encode(%d): %v", cp, err)
		}
		if idx != uint32(i) {
			t.Errorf("Encode(Decode(%d)) = %d, want %d", i, idx, i)
		}
	}

	// Ascending order: lowest codepoint gets index 0.
	cp0, _ := m.Decode(0)
	if cp0 != 10 {
		t.Errorf("Decode(0) = %d, want 10 (lowest codepoint)", cp0)
	}
}

func TestEncodeOutOfDomain(t *testing.T) {
	m := ComputeMapping([]uint32{1, 2, 3})
	if _, err := m.Encode(99); err == nil {
		t.Error("expected error encoding codepoint outside domain")
	}
}

func TestDecodeOutOfRange(t *testing.T) {
	m := ComputeMapping([]uint32{1, 2, 3})
	if _, err := m.Decode(99); err == nil {
		t.Error("expected error decoding out-of-range index")
	}
}

func TestDeltaListRoundTrip(t *testing.T) {
	m := ComputeMapping([]uint32{5, 100, 101, 9000})
	deltas := m.ToDeltaList()

	rebuilt := FromDeltaList(deltas)
	if !m.Equal(rebuilt) {
		t.Errorf("FromDeltaList(ToDeltaList(m)) != m: got decode order via Decode calls differs")
	}
	if rebuilt.Len() != m.Len() {
		t.Errorf("rebuilt.Len() = %d, want %d", rebuilt.Len(), m.Len())
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := ComputeMapping([]uint32{1, 2, 3})
	b := ComputeMapping([]uint32{3, 2, 1}) // same set, different input order
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("Fingerprint should be order-independent given the same underlying set")
	}

	c := ComputeMapping([]uint32{1, 2, 4})
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("different domains should (overwhelmingly likely) produce different fingerprints")
	}
}

func TestIntersectWithDomain(t *testing.T) {
	m := ComputeMapping([]uint32{1, 2, 3})
	got := m.IntersectWithDomain([]uint32{1, 5, 2, 6, 3})
	want := []uint32{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("IntersectWithDomain: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IntersectWithDomain: got %v, want %v", got, want)
		}
	}
}

func TestEqualNil(t *testing.T) {
	var a, b *Map
	if !a.Equal(b) {
		t.Error("two nil maps should be Equal")
	}
	m := ComputeMapping([]uint32{1})
	if m.Equal(nil) || (*Map)(nil).Equal(m) {
		t.Error("a nil map should not be Equal to a non-nil map")
	}
}
