package wire

import (
	"reflect"
	"testing"

	"github.com/patchsub/patchsubset/internal/cpset"
	"github.com/patchsub/patchsubset/internal/fingerprint"
)

func TestRequestRoundTrip(t *testing.T) {
	req := &Request{
		OriginalFingerprint: 12345,
		BaseFingerprint:     6789,
		CodepointsHave:      cpset.Encode([]uint32{1, 2, 3}),
		CodepointsNeeded:    cpset.Encode([]uint32{4, 5, 6, 100}),
		AcceptFormat:        []Format{FormatBrotliSharedDict},
	}

	got, err := DecodeRequest(EncodeRequest(req))
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}

	if got.OriginalFingerprint != req.OriginalFingerprint {
		t.Errorf("OriginalFingerprint: got %v, want %v", got.OriginalFingerprint, req.OriginalFingerprint)
	}
	if got.BaseFingerprint != req.BaseFingerprint {
		t.Errorf("BaseFingerprint: got %v, want %v", got.BaseFingerprint, req.BaseFingerprint)
	}
	if got.IndexFingerprint != 0 {
		t.Errorf("IndexFingerprint: expected zero value for an omitted field, got %v", got.IndexFingerprint)
	}
	if !reflect.DeepEqual(got.AcceptFormat, req.AcceptFormat) {
		t.Errorf("AcceptFormat: got %v, want %v", got.AcceptFormat, req.AcceptFormat)
	}

	var haveOut, neededOut []uint32
	if err := cpset.Decode(got.CodepointsHave, &haveOut); err != nil {
		t.Fatalf("decode CodepointsHave: %v", err)
	}
	if err := cpset.Decode(got.CodepointsNeeded, &neededOut); err != nil {
		t.Fatalf("decode CodepointsNeeded: %v", err)
	}
}

func TestRequestOmittedFieldsDefault(t *testing.T) {
	req := &Request{}
	got, err := DecodeRequest(EncodeRequest(req))
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if got.OriginalFingerprint != 0 || got.BaseFingerprint != 0 || got.IndexFingerprint != 0 {
		t.Errorf("expected all-zero fingerprints for an empty request, got %+v", got)
	}
	if !got.CodepointsHave.Empty() || !got.CodepointsNeeded.Empty() {
		t.Errorf("expected empty codepoint sets for an empty request, got %+v", got)
	}
	if len(got.AcceptFormat) != 0 {
		t.Errorf("expected no accept formats, got %v", got.AcceptFormat)
	}
}

func TestResponseRoundTripPatch(t *testing.T) {
	resp := &Response{
		Type:                ResponsePatch,
		OriginalFingerprint: fingerprint.Fingerprint(42),
		Patch: &Patch{
			Format:             FormatBrotliSharedDict,
			Bytes:              []byte("patch bytes here"),
			PatchedFingerprint: fingerprint.Fingerprint(999),
		},
	}

	got, err := DecodeResponse(EncodeResponse(resp))
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if got.Type != ResponsePatch {
		t.Errorf("Type: got %v, want PATCH", got.Type)
	}
	if got.OriginalFingerprint != resp.OriginalFingerprint {
		t.Errorf("OriginalFingerprint: got %v, want %v", got.OriginalFingerprint, resp.OriginalFingerprint)
	}
	if got.CodepointRemapping != nil {
		t.Errorf("CodepointRemapping: expected nil, got %+v", got.CodepointRemapping)
	}
	if got.Patch == nil {
		t.Fatal("Patch: expected non-nil")
	}
	if string(got.Patch.Bytes) != string(resp.Patch.Bytes) {
		t.Errorf("Patch.Bytes: got %q, want %q", got.Patch.Bytes, resp.Patch.Bytes)
	}
	if got.Patch.PatchedFingerprint != resp.Patch.PatchedFingerprint {
		t.Errorf("Patch.PatchedFingerprint: got %v, want %v", got.Patch.PatchedFingerprint, resp.Patch.PatchedFingerprint)
	}
}

func TestResponseRoundTripReindex(t *testing.T) {
	resp := &Response{
		Type: ResponseReindex,
		CodepointRemapping: &CodepointRemapping{
			CodepointOrdering: []uint32{10, 20, 5, 7},
			Fingerprint:       fingerprint.Fingerprint(555),
		},
	}

	got, err := DecodeResponse(EncodeResponse(resp))
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if got.Type != ResponseReindex {
		t.Errorf("Type: got %v, want REINDEX", got.Type)
	}
	if got.Patch != nil {
		t.Errorf("Patch: expected nil for a REINDEX-only response, got %+v", got.Patch)
	}
	if got.CodepointRemapping == nil {
		t.Fatal("CodepointRemapping: expected non-nil")
	}
	if !reflect.DeepEqual(got.CodepointRemapping.CodepointOrdering, resp.CodepointRemapping.CodepointOrdering) {
		t.Errorf("CodepointOrdering: got %v, want %v", got.CodepointRemapping.CodepointOrdering, resp.CodepointRemapping.CodepointOrdering)
	}
	if got.CodepointRemapping.Fingerprint != resp.CodepointRemapping.Fingerprint {
		t.Errorf("Fingerprint: got %v, want %v", got.CodepointRemapping.Fingerprint, resp.CodepointRemapping.Fingerprint)
	}
}

func TestResponseTypeString(t *testing.T) {
	cases := map[ResponseType]string{
		ResponseUnspecified: "UNSPECIFIED",
		ResponsePatch:       "PATCH",
		ResponseRebase:      "REBASE",
		ResponseReindex:     "REINDEX",
	}
	for rt, want := range cases {
		if got := rt.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", rt, got, want)
		}
	}
}

func TestDecodeRequestTruncatedFails(t *testing.T) {
	if _, err := DecodeRequest([]byte{0x01, 0x00, 0x00}); err == nil {
		t.Error("expected error decoding a truncated record")
	}
}
