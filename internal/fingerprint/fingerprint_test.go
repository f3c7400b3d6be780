package fingerprint

import "testing"

func TestOfDeterministic(t *testing.T) {
	data := []byte("hello, patch-subset")
	a := Of(data)
	b := Of(append([]byte(nil), data...))
	if a != b {
		t.Errorf("Of should be deterministic: %v != %v", a, b)
	}
}

func TestOfDistinguishesInputs(t *testing.T) {
	if Of([]byte("a")) == Of([]byte("b")) {
		t.Error("distinct inputs should (overwhelmingly likely) produce distinct fingerprints")
	}
}

func TestOfEmpty(t *testing.T) {
	// Must not panic, and must be stable.
	a := Of(nil)
	b := Of([]byte{})
	if a != b {
		t.Errorf("Of(nil) != Of(empty slice): %v != %v", a, b)
	}
}

func TestHasherMatchesOf(t *testing.T) {
	data := []byte("the quick brown fox")

	h := New()
	if _, err := h.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, want := h.Sum(), Of(data); got != want {
		t.Errorf("Hasher.Sum() = %v, want %v (matching Of)", got, want)
	}
}

func TestHasherAccumulatesAcrossWrites(t *testing.T) {
	h := New()
	h.Write([]byte("abc"))
	h.Write([]byte("def"))

	if got, want := h.Sum(), Of([]byte("abcdef")); got != want {
		t.Errorf("split writes should hash identically to one write: %v != %v", got, want)
	}
}
