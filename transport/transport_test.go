package transport_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/patchsub/patchsubset/client"
	"github.com/patchsub/patchsubset/font"
	"github.com/patchsub/patchsubset/internal/patcherr"
	"github.com/patchsub/patchsubset/internal/testfont"
	"github.com/patchsub/patchsubset/internal/wire"
	"github.com/patchsub/patchsubset/server"
	"github.com/patchsub/patchsubset/transport"
)

const testFontID = "test.ttf"

type fakeProvider struct {
	fonts map[string]*font.Font
}

func (p *fakeProvider) Font(id string) (*font.Font, error) {
	f, ok := p.fonts[id]
	if !ok {
		return nil, patcherr.New(patcherr.NotFound, "font not found: "+id)
	}
	return f, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	data := testfont.Build([]testfont.Glyph{{Codepoint: 'a', AdvanceWidth: 500}})
	provider := &fakeProvider{fonts: map[string]*font.Font{testFontID: {ID: testFontID, RawData: data}}}
	srv := server.New(provider, nil, false, nil)
	handler := &transport.Handler{Server: srv}
	return httptest.NewServer(handler)
}

func TestFetchRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	state := client.Empty(testFontID)
	req, err := client.CreateRequest([]rune{'a'}, state)
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	respBytes, err := transport.Fetch(http.DefaultClient, ts.URL, testFontID, wire.EncodeRequest(req.Wire))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	resp, err := wire.DecodeResponse(respBytes)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if resp.Patch == nil {
		t.Fatal("expected a patch in the decoded response")
	}
}

func TestFetchUnknownFontReturnsError(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	_, err := transport.Fetch(http.DefaultClient, ts.URL, "missing.ttf", wire.EncodeRequest(&wire.Request{}))
	if err == nil {
		t.Error("expected an error fetching an unknown font")
	}
}

func TestServeHTTPRejectsNonPost(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "?font_id=" + testFontID)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestServeHTTPMissingFontID(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Post(ts.URL, "application/octet-stream", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing font_id status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}
