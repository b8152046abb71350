package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/multiview/internal/effect"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandToggle               CommandType = "TOGGLE"
	CommandSetActive            CommandType = "SET_ACTIVE"
	CommandAppendDesktop        CommandType = "APPEND_DESKTOP"
	CommandRemoveDesktop        CommandType = "REMOVE_DESKTOP"
	CommandChangeCurrentDesktop CommandType = "CHANGE_CURRENT_DESKTOP"
	CommandGetStatus            CommandType = "GET_STATUS"
	CommandReload               CommandType = "RELOAD"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// SetActivePayload is the payload of SET_ACTIVE.
type SetActivePayload struct {
	Active bool `json:"active"`
}

// DesktopPayload carries a one-based desktop index.
type DesktopPayload struct {
	Index int `json:"index"`
}

// ActiveData answers TOGGLE and SET_ACTIVE.
type ActiveData struct {
	Changed bool   `json:"changed"`
	Phase   string `json:"phase"`
}

// DesktopData answers the desktop commands.
type DesktopData struct {
	DesktopCount   int  `json:"desktop_count"`
	CurrentDesktop int  `json:"current_desktop"`
	Removed        bool `json:"removed,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	effect.Status
	UptimeSeconds int64 `json:"uptime_seconds"`
	DaemonRunning bool  `json:"daemon_running"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
