// Package testfont builds minimal, synthetic TrueType fonts in memory
// for use in tests, standing in for real fonts like Roboto-Regular.ttf
// in the seed scenarios (spec.md §8). It assembles exactly the tables
// font.Subsetter needs, mirroring font/subset.go's buildFont in
// reverse.
package testfont

import (
	"bytes"
	"encoding/binary"
	"sort"
)

// Glyph is one simple (non-composite) glyph: an empty outline is
// sufficient since these fonts are never rendered, only subsetted and
// round-tripped.
type Glyph struct {
	Codepoint    rune
	AdvanceWidth uint16
}

// Build assembles a single-face TrueType font mapping each glyph's
// codepoint to a distinct glyph ID (glyph 0 is always .notdef), with a
// format-4 cmap subtable and empty (zero-contour) outlines.
func Build(glyphs []Glyph) []byte {
	sorted := append([]Glyph(nil), glyphs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Codepoint < sorted[j].Codepoint })

	numGlyphs := uint16(len(sorted) + 1) // + .notdef

	head := buildHead()
	maxp := buildMaxp(numGlyphs)
	hhea, hmtx := buildHorizontalMetrics(sorted)
	loca, glyf := buildLocaAndGlyf(numGlyphs)
	cmap := buildCmapFormat4(sorted)

	tables := []struct {
		tag  string
		data []byte
	}{
		{"head", head},
		{"hhea", hhea},
		{"maxp", maxp},
		{"hmtx", hmtx},
		{"loca", loca},
		{"glyf", glyf},
		{"cmap", cmap},
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].tag < tables[j].tag })

	return buildSfnt(tables)
}

func buildHead() []byte {
	head := make([]byte, 54)
	binary.BigEndian.PutUint32(head[0:4], 0x00010000) // version
	binary.BigEndian.PutUint32(head[12:16], 0x5F0F3CF5) // magic number
	binary.BigEndian.PutUint16(head[18:20], 1000)     // unitsPerEm
	binary.BigEndian.PutUint16(head[50:52], 1)         // indexToLocFormat: long
	return head
}

func buildMaxp(numGlyphs uint16) []byte {
	// font/subset.go only ever reads numGlyphs (bytes 4:6) from maxp, so
	// the rest of the v1.0 glyph-count fields are omitted here.
	maxp := make([]byte, 6)
	binary.BigEndian.PutUint32(maxp[0:4], 0x00010000)
	binary.BigEndian.PutUint16(maxp[4:6], numGlyphs)
	return maxp
}

func buildHorizontalMetrics(glyphs []Glyph) (hhea, hmtx []byte) {
	numberOfHMetrics := uint16(len(glyphs) + 1)

	hhea = make([]byte, 36)
	binary.BigEndian.PutUint32(hhea[0:4], 0x00010000)
	binary.BigEndian.PutUint16(hhea[34:36], numberOfHMetrics)

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(0)) // .notdef advance width
	binary.Write(&buf, binary.BigEndian, int16(0))  // .notdef lsb
	for _, g := range glyphs {
		width := g.AdvanceWidth
		if width == 0 {
			width = 500
		}
		binary.Write(&buf, binary.BigEndian, width)
		binary.Write(&buf, binary.BigEndian, int16(0))
	}
	return hhea, buf.Bytes()
}

func buildLocaAndGlyf(numGlyphs uint16) (loca, glyf []byte) {
	var locaBuf bytes.Buffer
	for i := uint16(0); i <= numGlyphs; i++ {
		binary.Write(&locaBuf, binary.BigEndian, uint32(0))
	}
	return locaBuf.Bytes(), nil
}

func buildCmapFormat4(glyphs []Glyph) []byte {
	segments := make([]struct {
		start, end rune
		glyphID    uint16
	}, len(glyphs)+1)

	for i, g := range glyphs {
		segments[i] = struct {
			start, end rune
			glyphID    uint16
		}{g.Codepoint, g.Codepoint, uint16(i + 1)}
	}
	segments[len(glyphs)] = struct {
		start, end rune
		glyphID    uint16
	}{0xFFFF, 0xFFFF, 0}

	segCount := len(segments)
	segCountX2 := uint16(segCount * 2)

	var body bytes.Buffer
	binary.Write(&body, binary.BigEndian, uint16(4)) // format
	binary.Write(&body, binary.BigEndian, uint16(0)) // length placeholder
	binary.Write(&body, binary.BigEndian, uint16(0)) // language

	searchRange, entrySelector, rangeShift := binarySearchParams(segCount)
	binary.Write(&body, binary.BigEndian, segCountX2)
	binary.Write(&body, binary.BigEndian, searchRange)
	binary.Write(&body, binary.BigEndian, entrySelector)
	binary.Write(&body, binary.BigEndian, rangeShift)

	for _, s := range segments {
		binary.Write(&body, binary.BigEndian, uint16(s.end))
	}
	binary.Write(&body, binary.BigEndian, uint16(0)) // reservedPad
	for _, s := range segments {
		binary.Write(&body, binary.BigEndian, uint16(s.start))
	}
	for _, s := range segments {
		idDelta := int16(0)
		if s.glyphID != 0 {
			idDelta = int16(int32(s.glyphID) - int32(s.start))
		}
		binary.Write(&body, binary.BigEndian, idDelta)
	}
	for range segments {
		binary.Write(&body, binary.BigEndian, uint16(0)) // idRangeOffset
	}

	raw := body.Bytes()
	binary.BigEndian.PutUint16(raw[2:4], uint16(len(raw)))

	var cmapHeader bytes.Buffer
	binary.Write(&cmapHeader, binary.BigEndian, uint16(0)) // version
	binary.Write(&cmapHeader, binary.BigEndian, uint16(1)) // numTables
	binary.Write(&cmapHeader, binary.BigEndian, uint16(3)) // platformID: Windows
	binary.Write(&cmapHeader, binary.BigEndian, uint16(1)) // encodingID: Unicode BMP
	binary.Write(&cmapHeader, binary.BigEndian, uint32(12))

	return append(cmapHeader.Bytes(), raw...)
}

func binarySearchParams(n int) (searchRange, entrySelector, rangeShift uint16) {
	sr := 1
	es := 0
	for sr*2 <= n {
		sr *= 2
		es++
	}
	return uint16(sr * 2), uint16(es), uint16(n*2 - sr*2)
}

func buildSfnt(tables []struct {
	tag  string
	data []byte
}) []byte {
	numTables := len(tables)
	headerSize := 12 + numTables*16

	searchRange := 1
	entrySelector := 0
	for searchRange*2 <= numTables {
		searchRange *= 2
		entrySelector++
	}
	searchRange *= 16
	rangeShift := numTables*16 - searchRange

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(0x00010000))
	binary.Write(&buf, binary.BigEndian, uint16(numTables))
	binary.Write(&buf, binary.BigEndian, uint16(searchRange))
	binary.Write(&buf, binary.BigEndian, uint16(entrySelector))
	binary.Write(&buf, binary.BigEndian, uint16(rangeShift))

	offset := uint32(headerSize)
	offsets := make([]uint32, numTables)
	for i, t := range tables {
		offsets[i] = offset
		offset += uint32((len(t.data) + 3) &^ 3)
	}

	for i, t := range tables {
		buf.WriteString(t.tag)
		binary.Write(&buf, binary.BigEndian, checksum(t.data))
		binary.Write(&buf, binary.BigEndian, offsets[i])
		binary.Write(&buf, binary.BigEndian, uint32(len(t.data)))
	}

	for _, t := range tables {
		buf.Write(t.data)
		for buf.Len()%4 != 0 {
			buf.WriteByte(0)
		}
	}

	return buf.Bytes()
}

func checksum(data []byte) uint32 {
	padded := data
	if len(data)%4 != 0 {
		padded = make([]byte, (len(data)+3)&^3)
		copy(padded, data)
	}
	var sum uint32
	for i := 0; i < len(padded); i += 4 {
		sum += binary.BigEndian.Uint32(padded[i:])
	}
	return sum
}
