package localserver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"sync"
	"time"
)

// socketMode is the permission applied to the socket file.
const socketMode fs.FileMode = 0o600

// ErrSocketInUse is returned when another process is serving the path.
var ErrSocketInUse = errors.New("socket in use")

// Server is an HTTP server on a Unix domain socket.
type Server struct {
	path       string
	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// New creates a server for handler on the socket at path.
func New(path string, handler http.Handler) *Server {
	return &Server{
		path: path,
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// Listen creates the socket. A stale socket file left by a previous
// process is replaced; a live one yields ErrSocketInUse.
func (s *Server) Listen() error {
	if err := removeStale(s.path); err != nil {
		return err
	}
	l, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}
	if err := os.Chmod(s.path, socketMode); err != nil {
		l.Close()
		return fmt.Errorf("chmod %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	return nil
}

// Serve serves requests until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) Serve() error {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return errors.New("localserver: Serve called before Listen")
	}

	err := s.httpServer.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ListenAndServe creates the socket and serves on it.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Shutdown drains in-flight requests and removes the socket file.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) && err == nil {
		err = rmErr
	}
	return err
}

// removeStale deletes path if it is a socket nobody answers on.
func removeStale(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("%s exists and is not a socket", path)
	}

	conn, err := net.DialTimeout("unix", path, time.Second)
	if err == nil {
		conn.Close()
		return fmt.Errorf("%w: %s", ErrSocketInUse, path)
	}
	return os.Remove(path)
}
