package font

import (
	"reflect"
	"testing"

	"github.com/patchsub/patchsubset/internal/testfont"
)

func sampleGlyphs() []testfont.Glyph {
	return []testfont.Glyph{
		{Codepoint: 'a', AdvanceWidth: 500},
		{Codepoint: 'b', AdvanceWidth: 500},
		{Codepoint: 'c', AdvanceWidth: 500},
		{Codepoint: 0x4E2D, AdvanceWidth: 1000}, // 中
	}
}

func TestFontCodepointsFormat4(t *testing.T) {
	data := testfont.Build(sampleGlyphs())

	got, err := FontCodepoints(data)
	if err != nil {
		t.Fatalf("FontCodepoints: %v", err)
	}
	want := []uint32{'a', 'b', 'c', 0x4E2D}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FontCodepoints = %v, want %v", got, want)
	}
}

func TestBuildCmapFormat12RoundTrip(t *testing.T) {
	byCodepoint := map[uint32]uint16{
		'a':    1,
		'b':    2,
		0x4E2D: 3,
		0x10000: 4, // outside the BMP, only representable in format 12
	}

	data := buildCmapFormat12(byCodepoint)

	c, err := parseCmap(wrapAsFont(data))
	if err != nil {
		t.Fatalf("parseCmap(buildCmapFormat12(...)): %v", err)
	}

	for cp, wantGID := range byCodepoint {
		gid, ok := c.glyphID(cp)
		if !ok {
			t.Errorf("codepoint %#x missing from round-tripped cmap", cp)
			continue
		}
		if gid != wantGID {
			t.Errorf("codepoint %#x: got glyph %d, want %d", cp, gid, wantGID)
		}
	}
}

// wrapAsFont builds a minimal single-table sfnt whose only table is
// cmap, so parseCmap (which expects a full font directory) can be
// exercised directly against a hand-built cmap blob.
func wrapAsFont(cmapData []byte) []byte {
	tables := []struct {
		tag  string
		data []byte
	}{{"cmap", cmapData}}

	headerSize := 12 + 16
	var buf []byte
	appendU32 := func(v uint32) { buf = append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v)) }
	appendU16 := func(v uint16) { buf = append(buf, byte(v>>8), byte(v)) }

	appendU32(0x00010000)
	appendU16(1) // numTables
	appendU16(16)
	appendU16(0)
	appendU16(0)

	offset := uint32(headerSize)
	buf = append(buf, tables[0].tag...)
	appendU32(0) // checksum, unused by parseCmap
	appendU32(offset)
	appendU32(uint32(len(tables[0].data)))

	buf = append(buf, tables[0].data...)
	return buf
}
