// Package server wires the protocol engine together: config in, a running
// acceptor out. The pipeline per connection is parse -> route -> negotiate
// -> build, all of it synchronous on the worker that owns the connection.
package server

import (
	"log/slog"
	"net"
	"time"

	"github.com/kfcemployee/flatserv/internal/audit"
	"github.com/kfcemployee/flatserv/internal/config"
	"github.com/kfcemployee/flatserv/server/engine"
	"github.com/kfcemployee/flatserv/server/filestore"
	"github.com/kfcemployee/flatserv/server/protocol"
	"github.com/kfcemployee/flatserv/server/router"
)

type Server struct {
	cfg    *config.Config
	log    *slog.Logger
	router *router.Router
	audit  *audit.Log
	eng    *engine.Engine
}

// New builds the server from configuration. The route table, file store
// and audit log are constructed here once; after New returns nothing the
// workers share is ever mutated except files under the store root.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	routes, err := config.LoadRoutes(cfg.Routes.File)
	if err != nil {
		return nil, err
	}
	table := make(router.Table, len(routes))
	for path, body := range routes {
		body := body
		table[path] = func() string { return body }
	}

	var store *filestore.Store
	if cfg.Files.Root != "" {
		store, err = filestore.New(cfg.Files.Root)
		if err != nil {
			return nil, err
		}
		logger.Info("file store enabled", "root", store.Root())
	} else {
		logger.Info("file store disabled, /files/ answers 404")
	}

	var auditLog *audit.Log
	if cfg.Audit.Path != "" {
		auditLog, err = audit.Open(cfg.Audit.Path, logger)
		if err != nil {
			return nil, err
		}
	}

	s := &Server{
		cfg:    cfg,
		log:    logger,
		router: router.New(table, store),
		audit:  auditLog,
	}
	s.eng = engine.New(
		cfg.Addr(),
		cfg.Engine.Workers,
		cfg.Engine.Queue,
		cfg.Engine.ReadBuffer,
		s.handle,
		logger,
	)
	return s, nil
}

// Run serves until the process is terminated from outside.
func (s *Server) Run() error {
	return s.eng.Run()
}

// Listen and Serve are split out for callers that need the bound address,
// tests bind port 0.
func (s *Server) Listen() (net.Listener, error) {
	return s.eng.Listen()
}

func (s *Server) Serve(ln net.Listener) error {
	return s.eng.Serve(ln)
}

func (s *Server) Close() error {
	if s.audit != nil {
		return s.audit.Close()
	}
	return nil
}

// handle is the per-request pipeline the engine calls from its workers.
func (s *Server) handle(id, peer string, raw []byte) []byte {
	req := protocol.Parse(raw)
	res := s.router.Resolve(&req)
	if s.cfg.Gzip.Enabled {
		protocol.Negotiate(&req, &res)
	}

	s.log.Info("request",
		"id", id,
		"peer", peer,
		"method", req.Method,
		"target", req.Target,
		"status", res.Status,
		"bytes", len(res.Body),
	)

	if s.audit != nil {
		entry := audit.Entry{
			ID:     id,
			Peer:   peer,
			Method: req.Method,
			Target: req.Target,
			Status: res.Status,
			Bytes:  len(res.Body),
			At:     time.Now(),
		}
		if err := s.audit.Record(entry); err != nil {
			s.log.Warn("audit record failed", "id", id, "err", err)
		}
	}

	return protocol.Build(res)
}
