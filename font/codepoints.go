package font

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
)

// cmap is a parsed Unicode-to-glyph mapping, good enough to answer
// "what glyph does this codepoint map to" and "what codepoints does
// this font cover" — the two questions the protocol actually needs
// (spec.md's Subsetter.CodepointsInFont and the cmap lookup
// SubsetCodepoints needs internally).
type cmap struct {
	byCodepoint map[uint32]uint16
}

func (c *cmap) glyphID(codepoint uint32) (uint16, bool) {
	gid, ok := c.byCodepoint[codepoint]
	return gid, ok && gid != 0
}

// codepoints returns every codepoint the cmap maps to a non-.notdef
// glyph, sorted ascending.
func (c *cmap) codepoints() []uint32 {
	out := make([]uint32, 0, len(c.byCodepoint))
	for cp, gid := range c.byCodepoint {
		if gid != 0 {
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FontCodepoints returns the sorted set of Unicode codepoints that
// rawData's cmap table maps to a real glyph.
func FontCodepoints(rawData []byte) ([]uint32, error) {
	c, err := parseCmap(rawData)
	if err != nil {
		return nil, err
	}
	return c.codepoints(), nil
}

// CodepointsInFont is a convenience wrapper over FontCodepoints for a
// loaded *Font.
func (f *Font) CodepointsInFont() ([]uint32, error) {
	return FontCodepoints(f.RawData)
}

// parseCmap locates the cmap table and decodes the best available
// Unicode subtable: platform 3/encoding 10 or platform 0 (full
// Unicode, format 12) preferred, falling back to platform 3/encoding 1
// or platform 0 (BMP, format 4), then platform 1/encoding 0 (format 0).
func parseCmap(data []byte) (*cmap, error) {
	tables, err := parseFontDirectory(data)
	if err != nil {
		return nil, fmt.Errorf("parse font directory: %w", err)
	}

	table, ok := tables["cmap"]
	if !ok {
		return nil, fmt.Errorf("missing cmap table")
	}
	if uint32(len(data)) < table.offset+table.length {
		return nil, fmt.Errorf("cmap table truncated")
	}
	cmapData := data[table.offset : table.offset+table.length]
	if len(cmapData) < 4 {
		return nil, fmt.Errorf("cmap table too short")
	}

	numTables := binary.BigEndian.Uint16(cmapData[2:4])

	type encodingRecord struct {
		platformID uint16
		encodingID uint16
		offset     uint32
	}
	records := make([]encodingRecord, 0, numTables)
	for i := 0; i < int(numTables); i++ {
		base := 4 + i*8
		if base+8 > len(cmapData) {
			break
		}
		records = append(records, encodingRecord{
			platformID: binary.BigEndian.Uint16(cmapData[base : base+2]),
			encodingID: binary.BigEndian.Uint16(cmapData[base+2 : base+4]),
			offset:     binary.BigEndian.Uint32(cmapData[base+4 : base+8]),
		})
	}

	score := func(r encodingRecord) int {
		switch {
		case r.platformID == 3 && r.encodingID == 10:
			return 4
		case r.platformID == 0 && (r.encodingID == 4 || r.encodingID == 6):
			return 4
		case r.platformID == 3 && r.encodingID == 1:
			return 3
		case r.platformID == 0:
			return 3
		case r.platformID == 1 && r.encodingID == 0:
			return 1
		default:
			return 0
		}
	}

	var best *encodingRecord
	bestScore := -1
	for i := range records {
		if s := score(records[i]); s > bestScore {
			bestScore = s
			best = &records[i]
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no usable cmap subtable")
	}
	if uint32(len(cmapData)) < best.offset+2 {
		return nil, fmt.Errorf("cmap subtable offset out of range")
	}

	format := binary.BigEndian.Uint16(cmapData[best.offset : best.offset+2])
	subtable := cmapData[best.offset:]

	switch format {
	case 0:
		return parseCmapFormat0(subtable)
	case 4:
		return parseCmapFormat4(subtable)
	case 12:
		return parseCmapFormat12(subtable)
	default:
		return nil, fmt.Errorf("unsupported cmap subtable format: %d", format)
	}
}

func parseCmapFormat0(data []byte) (*cmap, error) {
	if len(data) < 6+256 {
		return nil, fmt.Errorf("cmap format 0 too short")
	}
	glyphIDs := data[6 : 6+256]

	c := &cmap{byCodepoint: make(map[uint32]uint16, 256)}
	for cp := 0; cp < 256; cp++ {
		if gid := glyphIDs[cp]; gid != 0 {
			c.byCodepoint[uint32(cp)] = uint16(gid)
		}
	}
	return c, nil
}

func parseCmapFormat4(data []byte) (*cmap, error) {
	if len(data) < 14 {
		return nil, fmt.Errorf("cmap format 4 too short")
	}
	segCountX2 := binary.BigEndian.Uint16(data[6:8])
	segCount := int(segCountX2 / 2)

	endOffset := 14
	endCodes := data[endOffset : endOffset+int(segCountX2)]

	// reservedPad (2 bytes) sits between endCode[] and startCode[].
	startOffset := endOffset + int(segCountX2) + 2
	startCodes := data[startOffset : startOffset+int(segCountX2)]

	idDeltaOffset := startOffset + int(segCountX2)
	idDeltas := data[idDeltaOffset : idDeltaOffset+int(segCountX2)]

	idRangeOffsetOffset := idDeltaOffset + int(segCountX2)
	idRangeOffsets := data[idRangeOffsetOffset : idRangeOffsetOffset+int(segCountX2)]

	c := &cmap{byCodepoint: make(map[uint32]uint16)}

	for seg := 0; seg < segCount; seg++ {
		endCode := binary.BigEndian.Uint16(endCodes[seg*2 : seg*2+2])
		startCode := binary.BigEndian.Uint16(startCodes[seg*2 : seg*2+2])
		idDelta := int16(binary.BigEndian.Uint16(idDeltas[seg*2 : seg*2+2]))
		idRangeOffset := binary.BigEndian.Uint16(idRangeOffsets[seg*2 : seg*2+2])

		if startCode == 0xFFFF && endCode == 0xFFFF {
			continue
		}

		for cp := uint32(startCode); cp <= uint32(endCode); cp++ {
			var gid uint16
			if idRangeOffset == 0 {
				gid = uint16(int32(cp) + int32(idDelta))
			} else {
				glyphIndexOffset := idRangeOffsetOffset + seg*2 + int(idRangeOffset) + int(cp-uint32(startCode))*2
				if glyphIndexOffset+2 > len(data) {
					continue
				}
				raw := binary.BigEndian.Uint16(data[glyphIndexOffset : glyphIndexOffset+2])
				if raw == 0 {
					continue
				}
				gid = uint16(int32(raw) + int32(idDelta))
			}
			if gid != 0 {
				c.byCodepoint[cp] = gid
			}
			if cp == 0xFFFF {
				break
			}
		}
	}
	return c, nil
}

// buildCmapFormat12 encodes byCodepoint as a single-table cmap with a
// format 12 subtable (platform 3, encoding 10: Windows, full Unicode).
// Each codepoint gets its own one-entry group; this is not maximally
// compact, but it is correct for arbitrary, non-contiguous
// codepoint-to-glyph mappings, which is what subsetting produces.
func buildCmapFormat12(byCodepoint map[uint32]uint16) []byte {
	codepoints := make([]uint32, 0, len(byCodepoint))
	for cp := range byCodepoint {
		codepoints = append(codepoints, cp)
	}
	sort.Slice(codepoints, func(i, j int) bool { return codepoints[i] < codepoints[j] })

	var groups bytes.Buffer
	numGroups := uint32(0)
	for _, cp := range codepoints {
		gid := byCodepoint[cp]
		var group [12]byte
		binary.BigEndian.PutUint32(group[0:4], cp)
		binary.BigEndian.PutUint32(group[4:8], cp)
		binary.BigEndian.PutUint32(group[8:12], uint32(gid))
		groups.Write(group[:])
		numGroups++
	}

	var subtable bytes.Buffer
	binary.Write(&subtable, binary.BigEndian, uint16(12)) // format
	binary.Write(&subtable, binary.BigEndian, uint16(0))  // reserved
	binary.Write(&subtable, binary.BigEndian, uint32(16+groups.Len()))
	binary.Write(&subtable, binary.BigEndian, uint32(0)) // language
	binary.Write(&subtable, binary.BigEndian, numGroups)
	subtable.Write(groups.Bytes())

	var header bytes.Buffer
	binary.Write(&header, binary.BigEndian, uint16(0)) // version
	binary.Write(&header, binary.BigEndian, uint16(1)) // numTables
	binary.Write(&header, binary.BigEndian, uint16(3)) // platformID: Windows
	binary.Write(&header, binary.BigEndian, uint16(10)) // encodingID: full Unicode
	binary.Write(&header, binary.BigEndian, uint32(header.Len()+4))

	return append(header.Bytes(), subtable.Bytes()...)
}

func parseCmapFormat12(data []byte) (*cmap, error) {
	if len(data) < 16 {
		return nil, fmt.Errorf("cmap format 12 too short")
	}
	numGroups := binary.BigEndian.Uint32(data[12:16])

	c := &cmap{byCodepoint: make(map[uint32]uint16)}

	for g := uint32(0); g < numGroups; g++ {
		base := 16 + int(g)*12
		if base+12 > len(data) {
			break
		}
		startChar := binary.BigEndian.Uint32(data[base : base+4])
		endChar := binary.BigEndian.Uint32(data[base+4 : base+8])
		startGlyph := binary.BigEndian.Uint32(data[base+8 : base+12])

		for cp := startChar; cp <= endChar; cp++ {
			gid := startGlyph + (cp - startChar)
			if gid != 0 && gid <= 0xFFFF {
				c.byCodepoint[cp] = uint16(gid)
			}
			if cp == 0xFFFFFFFF {
				break
			}
		}
	}
	return c, nil
}
