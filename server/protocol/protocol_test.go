package protocol

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func Test_parser_all_cases(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantSentinel bool
		checkRequest func(t *testing.T, req Request)
	}{
		{
			name: "valid get request",
			raw:  "GET /index.html HTTP/1.1\r\nHost: localhost\r\nUser-Agent: test\r\n\r\n",
			checkRequest: func(t *testing.T, req Request) {
				if req.Method != "GET" {
					t.Errorf("wrong method %q", req.Method)
				}
				if req.Target != "/index.html" {
					t.Errorf("wrong target %q", req.Target)
				}
				if len(req.Headers) != 2 {
					t.Errorf("expected 2 headers, got %d", len(req.Headers))
				}
			},
		},
		{
			name: "header names lowercased and values trimmed",
			raw:  "GET / HTTP/1.1\r\nUser-Agent:   test-agent/1.0  \r\n\r\n",
			checkRequest: func(t *testing.T, req Request) {
				if got := req.Header("user-agent"); got != "test-agent/1.0" {
					t.Errorf("user-agent = %q", got)
				}
			},
		},
		{
			name: "duplicate header last wins",
			raw:  "GET / HTTP/1.1\r\nX-Tag: one\r\nX-Tag: two\r\n\r\n",
			checkRequest: func(t *testing.T, req Request) {
				if got := req.Header("x-tag"); got != "two" {
					t.Errorf("x-tag = %q", got)
				}
			},
		},
		{
			name: "bare lf line endings accepted",
			raw:  "GET /lf HTTP/1.1\nHost: localhost\n\n",
			checkRequest: func(t *testing.T, req Request) {
				if req.Target != "/lf" {
					t.Errorf("wrong target %q", req.Target)
				}
				if got := req.Header("host"); got != "localhost" {
					t.Errorf("host = %q", got)
				}
			},
		},
		{
			name: "line without colon skipped",
			raw:  "GET / HTTP/1.1\r\nNoColonHeader\r\nHost: x\r\n\r\n",
			checkRequest: func(t *testing.T, req Request) {
				if len(req.Headers) != 1 {
					t.Errorf("expected 1 header, got %d", len(req.Headers))
				}
			},
		},
		{
			name: "post body is trailing content-length slice",
			raw:  "POST /files/a HTTP/1.1\r\nContent-Length: 11\r\n\r\nhello world",
			checkRequest: func(t *testing.T, req Request) {
				if !bytes.Equal(req.Body, []byte("hello world")) {
					t.Errorf("wrong body %q", req.Body)
				}
			},
		},
		{
			name: "content-length larger than read clamps to whole input",
			raw:  "POST / HTTP/1.1\r\nContent-Length: 9999\r\n\r\nabc",
			checkRequest: func(t *testing.T, req Request) {
				if len(req.Body) != len("POST / HTTP/1.1\r\nContent-Length: 9999\r\n\r\nabc") {
					t.Errorf("body len = %d", len(req.Body))
				}
			},
		},
		{
			name: "non numeric content-length means no body",
			raw:  "POST / HTTP/1.1\r\nContent-Length: abc\r\n\r\nbody",
			checkRequest: func(t *testing.T, req Request) {
				if len(req.Body) != 0 {
					t.Errorf("expected empty body, got %q", req.Body)
				}
			},
		},
		{
			name: "negative content-length means no body",
			raw:  "POST / HTTP/1.1\r\nContent-Length: -4\r\n\r\nbody",
			checkRequest: func(t *testing.T, req Request) {
				if len(req.Body) != 0 {
					t.Errorf("expected empty body, got %q", req.Body)
				}
			},
		},
		{
			name:         "empty input yields sentinel",
			raw:          "",
			wantSentinel: true,
		},
		{
			name:         "single token request line yields sentinel",
			raw:          "GET\r\n\r\n",
			wantSentinel: true,
		},
		{
			name: "headers after blank line belong to body region",
			raw:  "GET / HTTP/1.1\r\n\r\nX-Late: ignored\r\n",
			checkRequest: func(t *testing.T, req Request) {
				if got := req.Header("x-late"); got != "" {
					t.Errorf("late header parsed: %q", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Parse([]byte(tt.raw))

			if req.Malformed() != tt.wantSentinel {
				t.Errorf("Malformed() = %v, want %v", req.Malformed(), tt.wantSentinel)
			}
			if tt.checkRequest != nil {
				tt.checkRequest(t, req)
			}
		})
	}
}

func Test_builder_exact_bytes(t *testing.T) {
	tests := []struct {
		name string
		res  Response
		want string
	}{
		{
			name: "ok with text body",
			res:  Response{Status: 200, ContentType: "text/plain", Body: []byte("foo")},
			want: "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 3\r\nConnection: close\r\n\r\nfoo",
		},
		{
			name: "created with empty body",
			res:  Response{Status: 201, ContentType: "application/octet-stream"},
			want: "HTTP/1.1 201 Created\r\nContent-Type: application/octet-stream\r\nContent-Length: 0\r\nConnection: close\r\n\r\n",
		},
		{
			name: "not found",
			res:  Response{Status: 404, ContentType: "text/plain", Body: []byte("404 Not Found")},
			want: "HTTP/1.1 404 Not Found\r\nContent-Type: text/plain\r\nContent-Length: 13\r\nConnection: close\r\n\r\n404 Not Found",
		},
		{
			name: "content-length counts encoded bytes not runes",
			res:  Response{Status: 200, ContentType: "text/plain", Body: []byte("héllo")},
			want: "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 6\r\nConnection: close\r\n\r\nhéllo",
		},
		{
			name: "unknown status gets unknown reason",
			res:  Response{Status: 418, ContentType: "text/plain", Body: []byte("x")},
			want: "HTTP/1.1 418 Unknown\r\nContent-Type: text/plain\r\nContent-Length: 1\r\nConnection: close\r\n\r\nx",
		},
		{
			name: "encoding header sits between type and length",
			res:  Response{Status: 200, ContentType: "text/plain", Encoding: "gzip", Body: []byte("zz")},
			want: "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Encoding: gzip\r\nContent-Length: 2\r\nConnection: close\r\n\r\nzz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.res)
			if string(got) != tt.want {
				t.Errorf("Build() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func Test_negotiate_gzip(t *testing.T) {
	req := Parse([]byte("GET /echo/abc HTTP/1.1\r\nAccept-Encoding: gzip\r\n\r\n"))
	res := Response{Status: 200, ContentType: "text/plain", Body: []byte("abcabcabc")}

	Negotiate(&req, &res)

	if res.Encoding != "gzip" {
		t.Fatalf("encoding = %q, want gzip", res.Encoding)
	}

	zr, err := gzip.NewReader(bytes.NewReader(res.Body))
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	var out bytes.Buffer
	if _, err := out.ReadFrom(zr); err != nil {
		t.Fatalf("gzip read: %v", err)
	}
	if out.String() != "abcabcabc" {
		t.Errorf("round trip = %q", out.String())
	}
}

func Test_negotiate_skips_without_header(t *testing.T) {
	tests := []struct {
		name   string
		accept string
		want   bool
	}{
		{"no header", "", false},
		{"other codec", "br, deflate", false},
		{"gzip in list", "deflate, gzip", true},
		{"gzip with quality", "gzip;q=0.8", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := "GET / HTTP/1.1\r\n\r\n"
			if tt.accept != "" {
				raw = fmt.Sprintf("GET / HTTP/1.1\r\nAccept-Encoding: %s\r\n\r\n", tt.accept)
			}
			req := Parse([]byte(raw))
			res := Response{Status: 200, ContentType: "text/plain", Body: []byte("payload")}

			Negotiate(&req, &res)

			if got := res.Encoding == "gzip"; got != tt.want {
				t.Errorf("gzip applied = %v, want %v", got, tt.want)
			}
			if !tt.want && string(res.Body) != "payload" {
				t.Errorf("body changed without negotiation: %q", res.Body)
			}
		})
	}
}

func BenchmarkParse(b *testing.B) {
	raw := []byte("POST /files/report.txt HTTP/1.1\r\n" +
		"Host: localhost:4221\r\n" +
		"User-Agent: flatserv-benchmark\r\n" +
		"Content-Length: 19\r\n" +
		"Content-Type: application/json\r\n" +
		"\r\n" +
		"{\"key\":\"value_123\"}")

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Parse(raw)
	}
}

func BenchmarkBuild(b *testing.B) {
	res := Response{
		Status:      200,
		ContentType: "text/plain",
		Body:        []byte("{\"status\":\"ok\",\"message\":\"hello world\"}"),
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Build(res)
	}
}
