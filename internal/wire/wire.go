// Package wire implements the Request/Response record layout of §6:
// a tagged record format where every field is written as
// [tag byte][u32 big-endian length][value bytes], in the same
// bytes.Reader/encoding/binary style font/subset.go uses to parse sfnt
// tables. Omitted request fields (zero fingerprints, empty sets, no
// accept formats) and absent response records (remapping, patch) are
// simply not written, matching "permits omitted/default fields". A
// response always carries its type and original fingerprint.
package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/patchsub/patchsubset/internal/cpset"
	"github.com/patchsub/patchsubset/internal/fingerprint"
	"github.com/patchsub/patchsubset/internal/patcherr"
)

// Format identifies a patch stream's compression scheme. The protocol
// currently defines exactly one.
type Format uint8

const (
	// FormatUnspecified marks an absent accept_format entry.
	FormatUnspecified Format = 0
	// FormatBrotliSharedDict is BROTLI_SHARED_DICT (§6.1).
	FormatBrotliSharedDict Format = 1
)

// ResponseType is the server's disposition for a request.
type ResponseType uint8

const (
	ResponseUnspecified ResponseType = 0
	ResponsePatch       ResponseType = 1
	ResponseRebase      ResponseType = 2
	ResponseReindex     ResponseType = 3
)

func (t ResponseType) String() string {
	switch t {
	case ResponsePatch:
		return "PATCH"
	case ResponseRebase:
		return "REBASE"
	case ResponseReindex:
		return "REINDEX"
	default:
		return "UNSPECIFIED"
	}
}

// CodepointRemapping is the wire form of an active codepoint map.
type CodepointRemapping struct {
	CodepointOrdering []uint32
	Fingerprint       fingerprint.Fingerprint
}

// Patch is the wire form of a diff result.
type Patch struct {
	Format            Format
	Bytes             []byte
	PatchedFingerprint fingerprint.Fingerprint
}

// Request is the client->server message (§6.1).
type Request struct {
	OriginalFingerprint fingerprint.Fingerprint
	BaseFingerprint     fingerprint.Fingerprint
	IndexFingerprint    fingerprint.Fingerprint
	CodepointsHave      cpset.Set
	CodepointsNeeded    cpset.Set
	AcceptFormat        []Format
}

// Response is the server->client message (§6.1).
type Response struct {
	Type                ResponseType
	OriginalFingerprint fingerprint.Fingerprint
	CodepointRemapping  *CodepointRemapping
	Patch               *Patch
}

// record tags. Values are arbitrary but stable; they are never
// interpreted outside this package.
const (
	tagOriginalFingerprint = 0x01
	tagBaseFingerprint     = 0x02
	tagIndexFingerprint    = 0x03
	tagCodepointsHave      = 0x04
	tagCodepointsNeeded    = 0x05
	tagAcceptFormat        = 0x06

	tagResponseType        = 0x10
	tagRemappingOrdering   = 0x11
	tagRemappingFingerprint = 0x12
	tagPatchFormat         = 0x13
	tagPatchBytes          = 0x14
	tagPatchedFingerprint  = 0x15
)

func writeRecord(w *bytes.Buffer, tag byte, value []byte) {
	w.WriteByte(tag)
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(value)))
	w.Write(length[:])
	w.Write(value)
}

func writeUint64(w *bytes.Buffer, tag byte, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	writeRecord(w, tag, buf[:])
}

func writeUint32List(w *bytes.Buffer, tag byte, values []uint32) {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint32(buf[4*i:4*i+4], v)
	}
	writeRecord(w, tag, buf)
}

func writeCompressedSet(w *bytes.Buffer, tag byte, set cpset.Set) {
	var inner bytes.Buffer
	writeRecord(&inner, 0x01, set.SparseBitSet)
	deltaBuf := make([]byte, 4*len(set.RangeDeltas))
	for i, d := range set.RangeDeltas {
		binary.BigEndian.PutUint32(deltaBuf[4*i:4*i+4], d)
	}
	writeRecord(&inner, 0x02, deltaBuf)
	writeRecord(w, tag, inner.Bytes())
}

// EncodeRequest serializes req to the wire format.
func EncodeRequest(req *Request) []byte {
	var buf bytes.Buffer
	if req.OriginalFingerprint != 0 {
		writeUint64(&buf, tagOriginalFingerprint, uint64(req.OriginalFingerprint))
	}
	if req.BaseFingerprint != 0 {
		writeUint64(&buf, tagBaseFingerprint, uint64(req.BaseFingerprint))
	}
	if req.IndexFingerprint != 0 {
		writeUint64(&buf, tagIndexFingerprint, uint64(req.IndexFingerprint))
	}
	if !req.CodepointsHave.Empty() {
		writeCompressedSet(&buf, tagCodepointsHave, req.CodepointsHave)
	}
	if !req.CodepointsNeeded.Empty() {
		writeCompressedSet(&buf, tagCodepointsNeeded, req.CodepointsNeeded)
	}
	if len(req.AcceptFormat) > 0 {
		formats := make([]byte, len(req.AcceptFormat))
		for i, f := range req.AcceptFormat {
			formats[i] = byte(f)
		}
		writeRecord(&buf, tagAcceptFormat, formats)
	}
	return buf.Bytes()
}

type recordReader struct {
	r *bytes.Reader
}

func (rr *recordReader) next() (tag byte, value []byte, ok bool, err error) {
	tag, err = rr.r.ReadByte()
	if err == io.EOF {
		return 0, nil, false, nil
	}
	if err != nil {
		return 0, nil, false, err
	}
	var length uint32
	if err := binary.Read(rr.r, binary.BigEndian, &length); err != nil {
		return 0, nil, false, err
	}
	value = make([]byte, length)
	if _, err := io.ReadFull(rr.r, value); err != nil {
		return 0, nil, false, err
	}
	return tag, value, true, nil
}

func readCompressedSet(value []byte) (cpset.Set, error) {
	rr := &recordReader{r: bytes.NewReader(value)}
	var set cpset.Set
	for {
		tag, v, ok, err := rr.next()
		if err != nil {
			return cpset.Set{}, patcherr.Wrap(patcherr.InvalidArgument, "wire: decode codepoint set", err)
		}
		if !ok {
			break
		}
		switch tag {
		case 0x01:
			set.SparseBitSet = v
		case 0x02:
			if len(v)%4 != 0 {
				return cpset.Set{}, patcherr.New(patcherr.InvalidArgument, "wire: malformed range delta list")
			}
			set.RangeDeltas = make([]uint32, len(v)/4)
			for i := range set.RangeDeltas {
				set.RangeDeltas[i] = binary.BigEndian.Uint32(v[4*i : 4*i+4])
			}
		}
	}
	return set, nil
}

// DecodeRequest parses a wire-format request.
func DecodeRequest(data []byte) (*Request, error) {
	rr := &recordReader{r: bytes.NewReader(data)}
	req := &Request{}
	for {
		tag, value, ok, err := rr.next()
		if err != nil {
			return nil, patcherr.Wrap(patcherr.InvalidArgument, "wire: decode request", err)
		}
		if !ok {
			break
		}
		switch tag {
		case tagOriginalFingerprint:
			req.OriginalFingerprint = fingerprint.Fingerprint(binary.BigEndian.Uint64(value))
		case tagBaseFingerprint:
			req.BaseFingerprint = fingerprint.Fingerprint(binary.BigEndian.Uint64(value))
		case tagIndexFingerprint:
			req.IndexFingerprint = fingerprint.Fingerprint(binary.BigEndian.Uint64(value))
		case tagCodepointsHave:
			set, err := readCompressedSet(value)
			if err != nil {
				return nil, err
			}
			req.CodepointsHave = set
		case tagCodepointsNeeded:
			set, err := readCompressedSet(value)
			if err != nil {
				return nil, err
			}
			req.CodepointsNeeded = set
		case tagAcceptFormat:
			req.AcceptFormat = make([]Format, len(value))
			for i, b := range value {
				req.AcceptFormat[i] = Format(b)
			}
		}
	}
	return req, nil
}

// EncodeResponse serializes resp to the wire format.
func EncodeResponse(resp *Response) []byte {
	var buf bytes.Buffer
	buf.WriteByte(tagResponseType)
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], 1)
	buf.Write(length[:])
	buf.WriteByte(byte(resp.Type))

	writeUint64(&buf, tagOriginalFingerprint, uint64(resp.OriginalFingerprint))

	if resp.CodepointRemapping != nil {
		writeUint32List(&buf, tagRemappingOrdering, resp.CodepointRemapping.CodepointOrdering)
		writeUint64(&buf, tagRemappingFingerprint, uint64(resp.CodepointRemapping.Fingerprint))
	}
	if resp.Patch != nil {
		writeRecord(&buf, tagPatchFormat, []byte{byte(resp.Patch.Format)})
		writeRecord(&buf, tagPatchBytes, resp.Patch.Bytes)
		writeUint64(&buf, tagPatchedFingerprint, uint64(resp.Patch.PatchedFingerprint))
	}
	return buf.Bytes()
}

// DecodeResponse parses a wire-format response.
func DecodeResponse(data []byte) (*Response, error) {
	rr := &recordReader{r: bytes.NewReader(data)}
	resp := &Response{}
	var remapping CodepointRemapping
	haveRemapping := false
	var patch Patch
	havePatch := false

	for {
		tag, value, ok, err := rr.next()
		if err != nil {
			return nil, patcherr.Wrap(patcherr.InvalidArgument, "wire: decode response", err)
		}
		if !ok {
			break
		}
		switch tag {
		case tagResponseType:
			if len(value) != 1 {
				return nil, patcherr.New(patcherr.InvalidArgument, "wire: malformed response type")
			}
			resp.Type = ResponseType(value[0])
		case tagOriginalFingerprint:
			resp.OriginalFingerprint = fingerprint.Fingerprint(binary.BigEndian.Uint64(value))
		case tagRemappingOrdering:
			haveRemapping = true
			if len(value)%4 != 0 {
				return nil, patcherr.New(patcherr.InvalidArgument, "wire: malformed remapping ordering")
			}
			remapping.CodepointOrdering = make([]uint32, len(value)/4)
			for i := range remapping.CodepointOrdering {
				remapping.CodepointOrdering[i] = binary.BigEndian.Uint32(value[4*i : 4*i+4])
			}
		case tagRemappingFingerprint:
			haveRemapping = true
			remapping.Fingerprint = fingerprint.Fingerprint(binary.BigEndian.Uint64(value))
		case tagPatchFormat:
			havePatch = true
			if len(value) != 1 {
				return nil, patcherr.New(patcherr.InvalidArgument, "wire: malformed patch format")
			}
			patch.Format = Format(value[0])
		case tagPatchBytes:
			havePatch = true
			patch.Bytes = value
		case tagPatchedFingerprint:
			havePatch = true
			patch.PatchedFingerprint = fingerprint.Fingerprint(binary.BigEndian.Uint64(value))
		}
	}

	if haveRemapping {
		resp.CodepointRemapping = &remapping
	}
	if havePatch {
		resp.Patch = &patch
	}
	return resp, nil
}
