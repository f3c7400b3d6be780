package font

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-text/typesetting/font"
)

// LoadFromFile loads fonts from a file path.
// Returns multiple fonts for TTC (font collection) files.
func LoadFromFile(path string) ([]*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font file: %w", err)
	}

	return LoadFromBytes(data, path)
}

// LoadFromBytes loads fonts from raw bytes.
// The path parameter is used to derive the font ID (can be empty for
// in-memory fonts, in which case the caller should set Font.ID).
func LoadFromBytes(data []byte, path string) ([]*Font, error) {
	if len(data) < 4 {
		return nil, errors.New("font data too short")
	}

	// Check if it's a font collection (TTC)
	if isTTC(data) {
		return loadTTC(data, path)
	}

	// Single font (TTF/OTF)
	return loadSingle(data, path, 0)
}

// isTTC checks if the data starts with a TTC header.
func isTTC(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "ttcf"
}

// loadTTC loads fonts from a TrueType Collection.
func loadTTC(data []byte, path string) ([]*Font, error) {
	resource := bytes.NewReader(data)
	faces, err := font.ParseTTC(resource)
	if err != nil {
		return nil, fmt.Errorf("parse TTC: %w", err)
	}

	// Keep a copy of the raw TTC data for subsetting.
	// Each font in the collection shares this data.
	rawData := make([]byte, len(data))
	copy(rawData, data)

	fonts := make([]*Font, 0, len(faces))
	for i, face := range faces {
		fonts = append(fonts, &Font{
			ID:      fontID(path, i),
			face:    face,
			Path:    path,
			Index:   i,
			RawData: rawData, // Shared reference for TTC
		})
	}

	return fonts, nil
}

// loadSingle loads a single font (TTF/OTF).
func loadSingle(data []byte, path string, index int) ([]*Font, error) {
	resource := bytes.NewReader(data)
	face, err := font.ParseTTF(resource)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	// Keep a copy of the raw data for subsetting.
	rawData := make([]byte, len(data))
	copy(rawData, data)

	return []*Font{{
		ID:      fontID(path, index),
		face:    face,
		Path:    path,
		Index:   index,
		RawData: rawData,
	}}, nil
}

// fontID derives a stable identifier from a file path and face index.
// Single-face fonts just use the base filename; collection members
// append their index so siblings remain distinct.
func fontID(path string, index int) string {
	base := filepath.Base(path)
	if index == 0 {
		return base
	}
	return base + "#" + strconv.Itoa(index)
}

// IsFontFile checks if a path points to a supported font file.
func IsFontFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".ttf", ".otf", ".ttc", ".otc":
		return true
	default:
		return false
	}
}
