package protocol

import "strconv"

// Response is what the router produces for one request.
// Encoding stays empty unless content negotiation compressed the body.
type Response struct {
	Status      int
	ContentType string
	Encoding    string
	Body        []byte
}

// lookup table for reason phrases
// flat map instead of net/http because the status set is closed
var reasons = map[int]string{
	200: "OK",
	201: "Created",
	404: "Not Found",
	405: "Method Not Allowed",
	500: "Internal Server Error",
}

// for fast access
var (
	proto      = []byte("HTTP/1.1 ")
	crlf       = []byte("\r\n")
	hdrType    = []byte("Content-Type: ")
	hdrEnc     = []byte("Content-Encoding: ")
	hdrLen     = []byte("Content-Length: ")
	hdrClose   = []byte("Connection: close\r\n")
	unknownRsn = "Unknown"
)

// Build serializes the whole response before any socket write happens.
// Content-Length is the byte length of the body as it goes on the wire,
// Connection: close is always emitted, the server never offers keep-alive.
func Build(res Response) []byte {
	reason, ok := reasons[res.Status]
	if !ok {
		reason = unknownRsn
	}

	buf := make([]byte, 0, 128+len(res.Body))
	buf = append(buf, proto...)
	buf = strconv.AppendInt(buf, int64(res.Status), 10)
	buf = append(buf, ' ')
	buf = append(buf, reason...)
	buf = append(buf, crlf...)

	buf = append(buf, hdrType...)
	buf = append(buf, res.ContentType...)
	buf = append(buf, crlf...)

	if res.Encoding != "" {
		buf = append(buf, hdrEnc...)
		buf = append(buf, res.Encoding...)
		buf = append(buf, crlf...)
	}

	buf = append(buf, hdrLen...)
	buf = strconv.AppendInt(buf, int64(len(res.Body)), 10)
	buf = append(buf, crlf...)

	buf = append(buf, hdrClose...)
	buf = append(buf, crlf...)
	buf = append(buf, res.Body...)
	return buf
}
