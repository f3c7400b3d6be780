// Package server implements the patch-subset protocol's server-side
// state machine (spec §4.7): decode a request, validate fingerprints,
// decide between PATCH/REBASE/REINDEX, compute both subsets, diff
// them, and emit a response. Fingerprint mismatches are recovered
// locally by downgrading the response type; they are never errors.
package server

import (
	"sort"

	"github.com/patchsub/patchsubset/font"
	"github.com/patchsub/patchsubset/internal/codepointmap"
	"github.com/patchsub/patchsubset/internal/cpset"
	"github.com/patchsub/patchsubset/internal/diff"
	"github.com/patchsub/patchsubset/internal/fingerprint"
	"github.com/patchsub/patchsubset/internal/patcherr"
	"github.com/patchsub/patchsubset/internal/predictor"
	"github.com/patchsub/patchsubset/internal/requestlog"
	"github.com/patchsub/patchsubset/internal/wire"
)

// PredictionBudget bounds how many extra codepoints the predictor may
// bundle into a single response.
const PredictionBudget = 30

// Server orchestrates one request -> response exchange per call. It
// holds no per-request state between calls; the font provider, the
// predictor and the request logger are shared across concurrent calls.
type Server struct {
	Fonts         font.Provider
	Predictor     predictor.Predictor
	UseRemapping  bool
	RequestLogger requestlog.RequestLogger
}

// New creates a Server. predictor may be nil, in which case
// predictor.Noop{} is used. logger may be nil, in which case
// requestlog.NullLogger{} is used.
func New(fonts font.Provider, pred predictor.Predictor, useRemapping bool, logger requestlog.RequestLogger) *Server {
	if pred == nil {
		pred = predictor.Noop{}
	}
	if logger == nil {
		logger = requestlog.NullLogger{}
	}
	return &Server{Fonts: fonts, Predictor: pred, UseRemapping: useRemapping, RequestLogger: logger}
}

// HandleWire decodes a wire-format request, handles it, and encodes
// the wire-format response — the entry point a transport binds to.
func (s *Server) HandleWire(fontID string, requestBytes []byte) ([]byte, error) {
	req, err := wire.DecodeRequest(requestBytes)
	if err != nil {
		return nil, err
	}
	resp, err := s.Handle(fontID, req)
	if err != nil {
		return nil, err
	}
	respBytes := wire.EncodeResponse(resp)
	s.RequestLogger.LogRequest(len(requestBytes), len(respBytes))
	return respBytes, nil
}

// Handle runs the state machine in spec §4.7 for a single request.
func (s *Server) Handle(fontID string, req *wire.Request) (*wire.Response, error) {
	var have, needed []uint32
	if err := cpset.Decode(req.CodepointsHave, &have); err != nil {
		return nil, err
	}
	if err := cpset.Decode(req.CodepointsNeeded, &needed); err != nil {
		return nil, err
	}
	needed = unionUint32(needed, have)

	f, err := s.Fonts.Font(fontID)
	if err != nil {
		return nil, err
	}

	fontCodepoints, err := f.CodepointsInFont()
	if err != nil {
		return nil, patcherr.Wrap(patcherr.Internal, "server: font codepoints", err)
	}

	var cpMap *codepointmap.Map
	if s.UseRemapping {
		cpMap = codepointmap.ComputeMapping(fontCodepoints)

		if len(have) > 0 {
			if cpMap.Fingerprint() != req.IndexFingerprint {
				return &wire.Response{
					Type:                wire.ResponseReindex,
					OriginalFingerprint: fingerprint.Of(f.RawData),
					CodepointRemapping: &wire.CodepointRemapping{
						CodepointOrdering: cpMap.ToDeltaList(),
						Fingerprint:       cpMap.Fingerprint(),
					},
				}, nil
			}
			have, err = cpMap.DecodeSet(have)
			if err != nil {
				return nil, err
			}
			needed, err = cpMap.DecodeSet(needed)
			if err != nil {
				return nil, err
			}
		}
	}

	// The remapping decode above must run before this check clears
	// `have` — otherwise a stale original fingerprint skips the decode
	// and `needed` is left holding remapped indices instead of the
	// codepoints they stand for (spec §4.7 tie-breaks).
	if len(have) > 0 && fingerprint.Of(f.RawData) != req.OriginalFingerprint {
		have = nil // forces rebase
	}

	requestedMinusHave := setDifference(needed, have)
	predicted := s.Predictor.Predict(toRunes(fontCodepoints), toRunes(have), toRunes(requestedMinusHave), PredictionBudget)
	needed = unionUint32(needed, fromRunes(predicted))

	subsetter := f.NewSubsetter()
	if subsetter == nil {
		return nil, patcherr.New(patcherr.Internal, "server: font has no raw data to subset")
	}

	clientSubset, err := subsetter.SubsetCodepoints(have)
	if err != nil {
		return nil, patcherr.Wrap(patcherr.Internal, "server: subset current", err)
	}
	targetSubset, err := subsetter.SubsetCodepoints(needed)
	if err != nil {
		return nil, patcherr.Wrap(patcherr.Internal, "server: subset target", err)
	}

	rebased := false
	if len(have) > 0 && fingerprint.Of(clientSubset.Data) != req.BaseFingerprint {
		clientSubset.Data = nil
		have = nil
		rebased = true
	}

	diffBase := clientSubset.Data
	patchBytes, err := diff.Diff(diffBase, targetSubset.Data)
	if err != nil {
		return nil, err
	}

	respType := wire.ResponsePatch
	if rebased || len(have) == 0 {
		respType = wire.ResponseRebase
	}

	resp := &wire.Response{
		Type:                respType,
		OriginalFingerprint: fingerprint.Of(f.RawData),
		Patch: &wire.Patch{
			Format:             wire.FormatBrotliSharedDict,
			Bytes:              patchBytes,
			PatchedFingerprint: fingerprint.Of(targetSubset.Data),
		},
	}

	if respType == wire.ResponseRebase && cpMap != nil {
		resp.CodepointRemapping = &wire.CodepointRemapping{
			CodepointOrdering: cpMap.ToDeltaList(),
			Fingerprint:       cpMap.Fingerprint(),
		}
	}

	return resp, nil
}

func unionUint32(a, b []uint32) []uint32 {
	set := make(map[uint32]bool, len(a)+len(b))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		set[v] = true
	}
	out := make([]uint32, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func setDifference(a, b []uint32) []uint32 {
	excl := make(map[uint32]bool, len(b))
	for _, v := range b {
		excl[v] = true
	}
	var out []uint32
	for _, v := range a {
		if !excl[v] {
			out = append(out, v)
		}
	}
	return out
}

func toRunes(cps []uint32) []rune {
	out := make([]rune, len(cps))
	for i, cp := range cps {
		out[i] = rune(cp)
	}
	return out
}

func fromRunes(rs []rune) []uint32 {
	out := make([]uint32, len(rs))
	for i, r := range rs {
		out[i] = uint32(r)
	}
	return out
}
