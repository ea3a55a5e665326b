package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"
)

// AppQueries is the daemon-side view of the matcher.
// Thread safety is the implementor's responsibility.
type AppQueries interface {
	Find(haystack string, explain bool) (*FindResult, error)
	Health() HealthResult
	Reload() (*ReloadResult, error)
}

// Server is the daemon that listens on a Unix socket and serves match requests.
type Server struct {
	queries  AppQueries
	listener net.Listener
	sockPath string
	log      *slog.Logger

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a daemon server backed by queries. A nil logger discards logs.
func NewServer(queries AppQueries, sockPath string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		queries:    queries,
		sockPath:   sockPath,
		log:        logger,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start binds the Unix socket. A leftover socket file is probed first: if
// nothing answers it is removed, otherwise Start refuses to run a second daemon.
func (s *Server) Start() error {
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("daemon already running at %s", s.sockPath)
		}
		s.log.Debug("removing stale socket", "path", s.sockPath)
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop closes the listener, waits for open connections to finish and removes
// the socket file. Later calls are no-ops.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh is closed once a client sends a shutdown request. The daemon
// waits on it together with OS signals.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr is the socket path.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// Unblock a pending read when the server stops.
	connDone := make(chan struct{})
	defer close(connDone)
	go func() {
		select {
		case <-s.done:
			conn.SetReadDeadline(time.Now())
		case <-connDone:
		}
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), MaxMessageBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		resp := s.handleRequest(req)
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
	if err := scanner.Err(); err != nil {
		select {
		case <-s.done:
		default:
			s.log.Warn("connection read failed", "err", err)
			// Oversized lines land here; tell the client before hanging up.
			s.writeResponse(conn, Response{Error: fmt.Sprintf("read request: %v", err)})
		}
	}
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case MethodFind:
		return s.handleFind(req)
	case MethodHealth:
		return result(req.ID, s.queries.Health())
	case MethodReload:
		return s.handleReload(req)
	case MethodShutdown:
		return result(req.ID, struct{}{})
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

func (s *Server) handleFind(req Request) Response {
	var params FindParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return Response{ID: req.ID, Error: "invalid find params"}
		}
	}
	res, err := s.queries.Find(params.Haystack, params.Explain)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return result(req.ID, res)
}

func (s *Server) handleReload(req Request) Response {
	res, err := s.queries.Reload()
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return result(req.ID, res)
}

// result wraps v as a successful response.
func result(id string, v interface{}) Response {
	data, err := json.Marshal(v)
	if err != nil {
		return Response{ID: id, Error: fmt.Sprintf("marshal result: %v", err)}
	}
	return Response{ID: id, Result: data}
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}
