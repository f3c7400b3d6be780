// Package diff implements BinaryDiff/BinaryPatch (spec §4.4): producing
// and applying a patch between two byte sequences using a
// shared-dictionary stream compressor, with the base sequence attached
// as a raw dictionary instead of being embedded in the patch bytes.
//
// The reference implementation (brotli_binary_diff.cc /
// brotli_binary_patch.cc) attaches `base` via
// BrotliEncoderPrepareDictionary(BROTLI_SHARED_DICTIONARY_RAW, ...).
// andybalholm/brotli's Go port exposes the same raw-dictionary
// attachment through WriterOptions.Dictionary / ReaderOptions.Dictionary,
// so Diff/Patch here are a direct port of that shape rather than a new
// compression scheme.
package diff

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"

	"github.com/patchsub/patchsubset/internal/patcherr"
)

// Quality matches the reference encoder's quality level for dictionary
// compression (brotli_binary_diff.cc uses BROTLI_MAX_QUALITY).
const Quality = 11

// Diff compresses derived using base as a raw shared dictionary. An
// empty base degenerates to plain self-compression of derived.
func Diff(base, derived []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterOptions(&buf, brotli.WriterOptions{
		Quality:    Quality,
		Dictionary: base,
	})

	if _, err := w.Write(derived); err != nil {
		return nil, patcherr.Wrap(patcherr.Internal, "binary diff: compress", err)
	}
	if err := w.Close(); err != nil {
		return nil, patcherr.Wrap(patcherr.Internal, "binary diff: finalize", err)
	}
	return buf.Bytes(), nil
}

// Patch decompresses patch with base attached as the same raw shared
// dictionary used by Diff, reproducing the original derived bytes.
func Patch(base, patch []byte) ([]byte, error) {
	r := brotli.NewReaderOptions(bytes.NewReader(patch), brotli.ReaderOptions{
		Dictionary: base,
	})

	derived, err := io.ReadAll(r)
	if err != nil {
		return nil, patcherr.Wrap(patcherr.Internal, "binary patch: decompress", err)
	}
	return derived, nil
}
