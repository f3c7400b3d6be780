// Package client implements the patch-subset protocol's client-side
// operations (spec §4.8): building a request from the codepoints a
// caller wants plus the client's current state, and applying a
// server's response into a new state. State only ever advances when
// every check passes (spec §4.9); a rejected response leaves State
// untouched.
package client

import (
	"sort"

	"github.com/patchsub/patchsubset/font"
	"github.com/patchsub/patchsubset/internal/codepointmap"
	"github.com/patchsub/patchsubset/internal/cpset"
	"github.com/patchsub/patchsubset/internal/diff"
	"github.com/patchsub/patchsubset/internal/fingerprint"
	"github.com/patchsub/patchsubset/internal/patcherr"
	"github.com/patchsub/patchsubset/internal/wire"
)

// State is the per-font, per-client state spec §3 describes: the
// font identifier, the currently held subset bytes, the last
// confirmed original-font fingerprint, and an optional active
// codepoint remapping.
type State struct {
	FontID              string
	FontData            []byte
	OriginalFingerprint fingerprint.Fingerprint
	Remapping           *codepointmap.Map
	RemappingFingerprint fingerprint.Fingerprint
}

// Empty returns a new State with only a font identifier set.
func Empty(fontID string) *State {
	return &State{FontID: fontID}
}

// Request wraps the request a transport call carries; NoTransport is
// set when createRequest short-circuited because nothing new was
// needed.
type Request struct {
	Wire        *wire.Request
	NoTransport bool
}

// CreateRequest builds a request for additionalCodepoints given the
// client's current state (spec §4.8, createRequest).
func CreateRequest(additionalCodepoints []rune, state *State) (*Request, error) {
	var existing []uint32
	if len(state.FontData) > 0 {
		cps, err := font.FontCodepoints(state.FontData)
		if err != nil {
			return nil, patcherr.Wrap(patcherr.Internal, "client: codepoints in current subset", err)
		}
		existing = cps
	}

	newCps := setDifference(fromRunes(additionalCodepoints), existing)

	if state.Remapping != nil {
		existing = state.Remapping.IntersectWithDomain(existing)
		newCps = state.Remapping.IntersectWithDomain(newCps)

		var err error
		existing, err = state.Remapping.EncodeSet(existing)
		if err != nil {
			return nil, err
		}
		newCps, err = state.Remapping.EncodeSet(newCps)
		if err != nil {
			return nil, err
		}
	}

	if len(newCps) == 0 {
		return &Request{Wire: &wire.Request{}, NoTransport: true}, nil
	}

	req := &wire.Request{
		OriginalFingerprint: state.OriginalFingerprint,
		CodepointsHave:      cpset.Encode(existing),
		CodepointsNeeded:    cpset.Encode(newCps),
		AcceptFormat:        []wire.Format{wire.FormatBrotliSharedDict},
	}
	if len(existing) > 0 {
		req.BaseFingerprint = fingerprint.Of(state.FontData)
	}
	if state.Remapping != nil {
		req.IndexFingerprint = state.RemappingFingerprint
	}

	return &Request{Wire: req}, nil
}

// AmendState applies resp to state, returning the new state on
// success. state itself is never mutated; on error the caller's
// existing state remains valid (spec §4.9: client-side failures never
// partially mutate state).
func AmendState(resp *wire.Response, state *State) (*State, error) {
	if resp.Type == wire.ResponseReindex {
		if resp.CodepointRemapping == nil {
			return nil, patcherr.New(patcherr.InvalidArgument, "client: REINDEX response missing remapping")
		}
		next := *state
		next.Remapping = codepointmap.FromDeltaList(resp.CodepointRemapping.CodepointOrdering)
		next.RemappingFingerprint = resp.CodepointRemapping.Fingerprint
		return &next, nil
	}

	if resp.Patch == nil {
		return nil, patcherr.New(patcherr.InvalidArgument, "client: response missing patch")
	}
	if resp.Patch.Format != wire.FormatBrotliSharedDict {
		return nil, patcherr.New(patcherr.FailedPrecondition, "client: unsupported patch format")
	}

	base := state.FontData
	if resp.Type == wire.ResponseRebase {
		base = nil
	}

	patched, err := diff.Patch(base, resp.Patch.Bytes)
	if err != nil {
		return nil, err
	}
	if fingerprint.Of(patched) != resp.Patch.PatchedFingerprint {
		return nil, patcherr.New(patcherr.FailedPrecondition, "client: patched blob fingerprint mismatch")
	}

	next := *state
	next.FontData = patched
	next.OriginalFingerprint = resp.OriginalFingerprint

	switch resp.Type {
	case wire.ResponseRebase:
		if resp.CodepointRemapping != nil {
			next.Remapping = codepointmap.FromDeltaList(resp.CodepointRemapping.CodepointOrdering)
			next.RemappingFingerprint = resp.CodepointRemapping.Fingerprint
		}
	case wire.ResponsePatch:
		// Client already has the active remapping; nothing to install.
	default:
		return nil, patcherr.New(patcherr.Unimplemented, "client: unhandled response type")
	}

	return &next, nil
}

func setDifference(a, b []uint32) []uint32 {
	excl := make(map[uint32]bool, len(b))
	for _, v := range b {
		excl[v] = true
	}
	out := make([]uint32, 0, len(a))
	for _, v := range a {
		if !excl[v] {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func fromRunes(rs []rune) []uint32 {
	out := make([]uint32, len(rs))
	for i, r := range rs {
		out[i] = uint32(r)
	}
	return out
}
