package ollama

import (
	"io"
	"net/http"
	"regexp"
	"strings"
)

// escapeFixingTransport strips backslashes that are illegal in JSON string
// escapes (e.g. \$ emitted by some local models) before the SDK decodes them.
type escapeFixingTransport struct {
	next http.RoundTripper
}

func (t *escapeFixingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	ct := resp.Header.Get("Content-Type")
	if strings.Contains(ct, "application/json") || strings.Contains(ct, "application/x-ndjson") {
		resp.Body = &escapeFixingBody{body: resp.Body}
	}
	return resp, nil
}

var escapeRegex = regexp.MustCompile(`\\(?s:.)`)

type escapeFixingBody struct {
	body io.ReadCloser
}

func (b *escapeFixingBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	if n > 0 {
		fixed := fixEscapes(p[:n])
		n = copy(p, fixed)
	}
	return n, err
}

func (b *escapeFixingBody) Close() error {
	return b.body.Close()
}

// fixEscapes only ever shortens its input, so the result fits the read buffer.
// Escapes are matched pairwise so an escaped backslash is never mistaken
// for the start of another escape.
func fixEscapes(chunk []byte) []byte {
	return escapeRegex.ReplaceAllFunc(chunk, func(esc []byte) []byte {
		if strings.IndexByte(`"\\/bfnrtu`, esc[1]) >= 0 {
			return esc
		}
		return esc[1:]
	})
}
