// parse raw bytes from one socket read to a Request struct
// only parser logic
package protocol

import (
	"bytes"
	"strconv"
	"strings"
)

// Request is the structured form of one inbound read.
// Header keys are lower-cased, values trimmed, last value wins on duplicates.
type Request struct {
	Method  string
	Target  string
	Headers map[string]string
	Body    []byte
}

// Malformed reports whether parsing failed and this is the sentinel value.
// A sentinel still routes (to 405), it never crashes the worker.
func (r *Request) Malformed() bool {
	return r.Method == "" || r.Target == ""
}

// Header returns the value for a lower-cased name, "" when absent.
func (r *Request) Header(name string) string {
	return r.Headers[name]
}

// Parse turns the raw bytes of exactly one read into a Request.
// There is no reassembly loop: a request bigger than the read buffer is a
// degraded case, not an error. Parse is total, malformed input yields the
// sentinel Request instead of an error so the caller always has a routable
// value.
func Parse(raw []byte) Request {
	req := Request{Headers: make(map[string]string)}
	if len(raw) == 0 {
		return req
	}

	// recv output is treated as text, accept both CRLF and bare LF
	lines := bytes.Split(raw, []byte{'\n'})
	for i, ln := range lines {
		lines[i] = bytes.TrimSuffix(ln, []byte{'\r'})
	}

	// request line: method and target, extra tokens (version) are ignored
	first := bytes.Fields(lines[0])
	if len(first) < 2 {
		return req
	}
	req.Method = string(first[0])
	req.Target = string(first[1])

	// headers run until the first blank line, a line with no colon is skipped
	for _, ln := range lines[1:] {
		if len(ln) == 0 {
			break
		}
		key, val, ok := bytes.Cut(ln, []byte{':'})
		if !ok {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(string(key)))
		req.Headers[name] = strings.TrimSpace(string(val))
	}

	// the declared length is trusted: body is the trailing slice of the raw
	// read, no header/body boundary cursor is tracked
	if cl, err := strconv.Atoi(req.Header("content-length")); err == nil && cl > 0 {
		if cl > len(raw) {
			cl = len(raw)
		}
		req.Body = raw[len(raw)-cl:]
	}

	return req
}
