// connection acceptance and worker logic, no HTTP knowledge here:
// the engine moves bytes, the callback owns the protocol
package engine

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/google/uuid"
)

// HandleFunc turns the bytes of one read into the bytes of one response.
// id is the connection id, peer the remote address, both for correlation.
type HandleFunc func(id, peer string, raw []byte) []byte

// Engine owns the listening socket and a fixed pool of workers.
// Every accepted connection is one read, one write, then close. Connections
// beyond the pool's capacity wait in the jobs channel, there is no
// backpressure signal to the client.
type Engine struct {
	addr    string
	workers int
	readBuf int
	jobs    chan net.Conn
	handle  HandleFunc
	log     *slog.Logger
}

func New(addr string, workers, queue, readBuf int, handle HandleFunc, log *slog.Logger) *Engine {
	if workers < 1 {
		workers = 1
	}
	if queue < 0 {
		queue = 0
	}
	if readBuf < 1 {
		readBuf = 1024
	}
	return &Engine{
		addr:    addr,
		workers: workers,
		readBuf: readBuf,
		jobs:    make(chan net.Conn, queue),
		handle:  handle,
		log:     log,
	}
}

// Listen binds the configured address. Split from Serve so callers can
// learn the bound address before traffic starts.
func (e *Engine) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", e.addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", e.addr, err)
	}
	return ln, nil
}

// Serve accepts connections until the listener is closed from outside.
// There is no graceful-shutdown protocol, termination is external.
func (e *Engine) Serve(ln net.Listener) error {
	for i := 0; i < e.workers; i++ {
		go e.worker()
	}
	e.log.Info("listening", "addr", ln.Addr().String(), "workers", e.workers)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		e.jobs <- conn
	}
}

// Run is Listen plus Serve.
func (e *Engine) Run() error {
	ln, err := e.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()
	return e.Serve(ln)
}

// each worker handles one connection start to finish, read and write block
// with no timeout: a silent client occupies the worker until it hangs up
func (e *Engine) worker() {
	buf := make([]byte, e.readBuf)
	for conn := range e.jobs {
		e.serve(conn, buf)
	}
}

// serve runs the single request/response/close cycle.
// connection-level faults are logged with the peer address and the worker
// moves on, nothing here takes down the acceptor
func (e *Engine) serve(conn net.Conn, buf []byte) {
	defer conn.Close()

	id := uuid.New().String()
	peer := conn.RemoteAddr().String()

	n, err := conn.Read(buf)
	if err != nil && n == 0 {
		e.log.Warn("read failed", "id", id, "peer", peer, "err", err)
		return
	}

	out := e.handle(id, peer, buf[:n])
	if _, err := conn.Write(out); err != nil {
		e.log.Warn("write failed", "id", id, "peer", peer, "err", err)
	}
}
