// route resolution: exact table first, then literal target prefixes
package router

import (
	"errors"
	"strings"

	"github.com/kfcemployee/flatserv/server/filestore"
	"github.com/kfcemployee/flatserv/server/protocol"
)

// Table maps an exact target to a producer of its canned body.
// Built once at startup, read-only afterwards, so workers share it without
// locking.
type Table map[string]func() string

// prefixes are matched literally against the raw target, query string
// included: /echo without the trailing slash falls through to 404
const (
	echoPrefix  = "/echo/"
	agentPrefix = "/user-agent"
	filesPrefix = "/files/"
)

const (
	plainType = "text/plain"
	bytesType = "application/octet-stream"
)

// Router resolves a parsed request to a response. It holds no per-request
// state, Resolve is safe to call from every worker at once.
type Router struct {
	routes Table
	store  *filestore.Store // nil disables /files/
}

func New(routes Table, store *filestore.Store) *Router {
	if routes == nil {
		routes = Table{}
	}
	return &Router{routes: routes, store: store}
}

// Resolve walks the resolution order, first match wins.
// A malformed sentinel request has an empty method and lands on 405 like
// any other unsupported method.
func (r *Router) Resolve(req *protocol.Request) protocol.Response {
	switch req.Method {
	case "GET", "POST":
	default:
		return text(405, "Method Not Allowed")
	}

	// exact table entries answer any allowed method, method filtering
	// beyond the set above is not the table's job
	if produce, ok := r.routes[req.Target]; ok {
		return text(200, produce())
	}

	switch {
	case strings.HasPrefix(req.Target, echoPrefix):
		// raw suffix, no percent-decoding
		return text(200, req.Target[len(echoPrefix):])
	case strings.HasPrefix(req.Target, agentPrefix):
		return text(200, req.Header("user-agent"))
	case strings.HasPrefix(req.Target, filesPrefix):
		return r.files(req)
	}

	return text(404, "404 Not Found")
}

// files handles both /files/ methods. Without a configured store every
// request is a 404, never a crash.
func (r *Router) files(req *protocol.Request) protocol.Response {
	if r.store == nil {
		return text(404, "404 Not Found")
	}
	name := req.Target[len(filesPrefix):]

	if req.Method == "POST" {
		err := r.store.Write(name, req.Body)
		switch {
		case errors.Is(err, filestore.ErrEscapesRoot):
			// indistinguishable from a missing file on purpose
			return text(404, "404 Not Found")
		case err != nil:
			return text(500, "500 Internal Server Error")
		}
		return protocol.Response{Status: 201, ContentType: bytesType}
	}

	body, ctype, err := r.store.Read(name)
	if err != nil {
		return text(404, "404 Not Found")
	}
	return protocol.Response{Status: 200, ContentType: ctype, Body: body}
}

func text(status int, body string) protocol.Response {
	return protocol.Response{Status: status, ContentType: plainType, Body: []byte(body)}
}
