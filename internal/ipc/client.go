package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/multiview/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default daemon socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for an explicit socket path.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) call(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		req.Payload = raw
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", cmd, err)
	}
	return nil
}

// Toggle opens the overview when closed and closes it otherwise.
func (c *Client) Toggle() (*ActiveData, error) {
	var data ActiveData
	if err := c.call(CommandToggle, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SetActive opens or closes the overview.
func (c *Client) SetActive(active bool) (*ActiveData, error) {
	var data ActiveData
	if err := c.call(CommandSetActive, SetActivePayload{Active: active}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// AppendDesktop adds a desktop at the end.
func (c *Client) AppendDesktop() (*DesktopData, error) {
	var data DesktopData
	if err := c.call(CommandAppendDesktop, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// RemoveDesktop removes the one-based desktop index.
func (c *Client) RemoveDesktop(index int) (*DesktopData, error) {
	var data DesktopData
	if err := c.call(CommandRemoveDesktop, DesktopPayload{Index: index}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ChangeCurrentDesktop switches to the one-based desktop index.
func (c *Client) ChangeCurrentDesktop(index int) (*DesktopData, error) {
	var data DesktopData
	if err := c.call(CommandChangeCurrentDesktop, DesktopPayload{Index: index}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// Ping checks whether the daemon is reachable.
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
