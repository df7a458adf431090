package protocol

import (
	"bytes"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Negotiate compresses the response body when the client asked for gzip.
// On any compression failure the plain body is kept, the response stays
// valid either way. Content-Length is computed later over whatever body
// ends up in the response.
func Negotiate(req *Request, res *Response) {
	if !acceptsGzip(req.Header("accept-encoding")) {
		return
	}

	var b bytes.Buffer
	zw := gzip.NewWriter(&b)
	if _, err := zw.Write(res.Body); err != nil {
		zw.Close()
		return
	}
	if err := zw.Close(); err != nil {
		return
	}

	res.Body = b.Bytes()
	res.Encoding = "gzip"
}

// accept-encoding is a comma list, quality params are not honored:
// a gzip token with any q-value counts as acceptance
func acceptsGzip(v string) bool {
	for _, tok := range strings.Split(v, ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(tok), ";")
		if name == "gzip" {
			return true
		}
	}
	return false
}
