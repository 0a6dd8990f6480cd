package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"sync"

	"go.uber.org/zap"

	"walletbridge/channel"
)

// Server listens on a unix socket and routes requests to a registry.
// Requests on one connection may complete out of order; clients match
// responses by id.
type Server struct {
	reg      *channel.Registry
	log      *zap.Logger
	listener net.Listener
	sockPath string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Listen binds sockPath, removing a stale socket file first.
func Listen(reg *channel.Registry, sockPath string, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	_ = os.Remove(sockPath)

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		reg:      reg,
		log:      log,
		listener: listener,
		sockPath: sockPath,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Addr returns the socket path.
func (s *Server) Addr() string { return s.sockPath }

// Serve accepts connections until Close is called.
func (s *Server) Serve() error {
	s.log.Info("bridge listening", zap.String("socket", s.sockPath))
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return Error.Wrap(err)
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// Close closes the listener, abandons unresolved calls, waits for
// connections and removes the socket.
func (s *Server) Close() error {
	err := s.listener.Close()
	s.cancel()
	s.wg.Wait()
	_ = os.Remove(s.sockPath)
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return Error.Wrap(err)
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	var (
		writeMu sync.Mutex
		pending sync.WaitGroup
	)
	send := func(resp Response) {
		defer pending.Done()
		data, err := json.Marshal(resp)
		if err != nil {
			data, _ = json.Marshal(errorResponse(resp.ID, channel.CodeInternal, err.Error()))
		}
		data = append(data, '\n')

		writeMu.Lock()
		defer writeMu.Unlock()
		if _, err := conn.Write(data); err != nil {
			s.log.Debug("write response failed", zap.String("id", resp.ID), zap.Error(err))
		}
	}

	stop := context.AfterFunc(s.ctx, func() { _ = conn.Close() })
	defer stop()

	scanner := bufio.NewScanner(conn)
	// Allow up to 10MB lines.
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)

	for scanner.Scan() {
		pending.Add(1)
		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			send(errorResponse("", CodeParseError, "parse error: "+err.Error()))
			continue
		}
		serve(s.ctx, s.reg, req, send)
	}

	done := make(chan struct{})
	go func() {
		pending.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-s.ctx.Done():
	}
}
