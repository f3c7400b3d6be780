// Package font loads font files and provides byte-exact subsetting and
// codepoint inventories for the patch-subset protocol. It handles:
//   - Loading fonts from TTF/OTF/TTC files
//   - Serving fonts by identifier (FontProvider)
//   - Producing the exact codepoint-addressed subsets the server and
//     client cores diff and patch against each other
package font

import (
	"github.com/go-text/typesetting/font"
)

// Font is a loaded font together with the original bytes needed to
// subset it.
type Font struct {
	// ID identifies this font to a FontProvider (spec §4's external
	// Subsetter/FontProvider capability). Typically the source
	// filename, e.g. "Roboto-Regular.ttf".
	ID string

	// face is the parsed font face, used for metadata lookups.
	face *font.Face

	// Path is the filesystem path where the font was loaded from.
	// Empty for in-memory fonts.
	Path string

	// Index is the face index within a font collection (TTC). Zero
	// for single-face fonts (TTF/OTF).
	Index int

	// RawData holds the original font file bytes. Subsetting and
	// codepoint enumeration both operate directly on these bytes.
	RawData []byte
}

// Face returns the underlying parsed font face.
func (f *Font) Face() *font.Face {
	return f.face
}

// CanSubset reports whether the font has raw data available for
// subsetting.
func (f *Font) CanSubset() bool {
	return len(f.RawData) > 0
}

// NewSubsetter creates a subsetter for this font, or nil if the font
// has no raw data to subset.
func (f *Font) NewSubsetter() *Subsetter {
	if !f.CanSubset() {
		return nil
	}
	return NewSubsetter(f, f.RawData)
}
