// Package transport provides the HTTP glue binding the server core to
// a network listener and the client core to an HTTP round trip. The
// wire format itself (internal/wire) is transport-agnostic; this
// package only carries its bytes over the network and maps transport
// failures onto patcherr kinds (spec §7: "for a transport-layer 4xx,
// the client maps it here" -> NotFound).
package transport

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/patchsub/patchsubset/internal/patcherr"
	"github.com/patchsub/patchsubset/server"
)

// Handler adapts a *server.Server to net/http. Requests are POSTed with
// the font identifier in the font_id query parameter and the
// wire-format request as the body; the request path is not inspected.
// The wire-format response is the body of a 200 reply.
type Handler struct {
	Server *server.Server
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	fontID := r.URL.Query().Get("font_id")
	if fontID == "" {
		http.Error(w, "missing font_id", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read request body", http.StatusBadRequest)
		return
	}

	respBytes, err := h.Server.HandleWire(fontID, body)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(respBytes)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch patcherr.KindOf(err) {
	case patcherr.NotFound:
		status = http.StatusNotFound
	case patcherr.InvalidArgument:
		status = http.StatusBadRequest
	case patcherr.FailedPrecondition:
		status = http.StatusPreconditionFailed
	case patcherr.Unimplemented:
		status = http.StatusNotImplemented
	}
	http.Error(w, err.Error(), status)
}

// Fetch POSTs a wire-format request to a running server and returns
// the wire-format response bytes. Any status other than 200 OK is
// reported as NotFound, which covers the client-side 4xx mapping in
// spec §7.
func Fetch(client *http.Client, baseURL, fontID string, requestBytes []byte) ([]byte, error) {
	reqURL := baseURL + "?" + url.Values{"font_id": {fontID}}.Encode()
	resp, err := client.Post(reqURL, "application/octet-stream", bytes.NewReader(requestBytes))
	if err != nil {
		return nil, patcherr.Wrap(patcherr.Internal, "transport: request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, patcherr.Wrap(patcherr.Internal, "transport: read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, patcherr.New(patcherr.NotFound, fmt.Sprintf("transport: server returned %d: %s", resp.StatusCode, body))
	}
	return body, nil
}
