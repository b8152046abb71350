package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/multiview/internal/effect"
)

// Overview is the daemon side of the protocol. Implementations serialise
// calls onto their frame loop.
type Overview interface {
	Toggle() (ActiveData, error)
	SetActive(active bool) (ActiveData, error)
	AppendDesktop() (DesktopData, error)
	RemoveDesktop(index int) (DesktopData, error)
	ChangeCurrentDesktop(index int) (DesktopData, error)
	Status() (effect.Status, error)
	Reload() error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	overview     Overview
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a server bound to socketPath once Start is called.
func NewServer(socketPath string, overview Overview, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		overview:   overview,
		logger:     logger.With("component", "ipc"),
		startTime:  time.Now(),
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// A stale socket from a crashed daemon blocks Listen.
	_ = os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isShuttingDown() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) isShuttingDown() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shuttingDown
}

// handleConnection reads one JSON line and answers with one JSON line.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.write(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}
	s.write(conn, s.handleCommand(req))
}

func (s *Server) write(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)

	switch req.Command {
	case CommandToggle:
		return respond(s.overview.Toggle())
	case CommandSetActive:
		var p SetActivePayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return respond(s.overview.SetActive(p.Active))
	case CommandAppendDesktop:
		return respond(s.overview.AppendDesktop())
	case CommandRemoveDesktop:
		var p DesktopPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return respond(s.overview.RemoveDesktop(p.Index))
	case CommandChangeCurrentDesktop:
		var p DesktopPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return respond(s.overview.ChangeCurrentDesktop(p.Index))
	case CommandGetStatus:
		st, err := s.overview.Status()
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		return respond(StatusData{
			Status:        st,
			UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
			DaemonRunning: true,
		}, nil)
	case CommandReload:
		if err := s.overview.Reload(); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
		}
		s.logger.Info("config reloaded")
		return respond[any](nil, nil)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func respond[T any](data T, err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func decodePayload(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	_ = os.Remove(s.socketPath)
}
