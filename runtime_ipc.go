// runtime_ipc.go - Unix domain control socket for a running synth

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionSynth
License: GPLv3 or later
*/

package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	ipcMaxRequestSize = 64 * 1024
	ipcIdleTimeout    = 30 * time.Second
	ipcSocketName     = "intuition-synth.sock"
)

// ipcRequest is one line of a control session. "script" runs a file on the
// synth, "eval" runs inline Lua and "status" returns the render counters.
type ipcRequest struct {
	Cmd    string `json:"cmd"`
	Path   string `json:"path,omitempty"`
	Source string `json:"source,omitempty"`
}

type ipcResponse struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// IPCHandler serves a validated request. A non-nil result is returned to the
// client as JSON.
type IPCHandler func(ipcRequest) (any, error)

// IPCServer accepts control sessions on a Unix socket. Each connection may
// carry any number of newline-delimited requests.
type IPCServer struct {
	ln      net.Listener
	handler IPCHandler
	path    string

	wg    sync.WaitGroup
	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

func defaultSocketPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, ipcSocketName)
}

func NewIPCServer(handler IPCHandler) (*IPCServer, error) {
	return newIPCServerAt(defaultSocketPath(), handler)
}

func newIPCServerAt(path string, handler IPCHandler) (*IPCServer, error) {
	ln, err := net.Listen("unix", path)
	if err != nil {
		// A socket file nobody answers on is left over from a crash.
		if conn, dialErr := net.DialTimeout("unix", path, time.Second); dialErr == nil {
			conn.Close()
			return nil, fmt.Errorf("another synth is already listening on %s", path)
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return nil, fmt.Errorf("control socket bind failed: %w", err)
		}
		if ln, err = net.Listen("unix", path); err != nil {
			return nil, fmt.Errorf("control socket bind failed: %w", err)
		}
	}
	return &IPCServer{ln: ln, handler: handler, path: path, conns: make(map[net.Conn]struct{})}, nil
}

func (s *IPCServer) Path() string { return s.path }

func (s *IPCServer) Start() {
	s.wg.Go(s.acceptLoop)
}

// Stop closes the listener and every open session, then removes the socket.
func (s *IPCServer) Stop() {
	s.ln.Close()
	s.mu.Lock()
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	os.Remove(s.path)
}

func (s *IPCServer) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()
		s.wg.Go(func() {
			s.serve(conn)
			s.mu.Lock()
			delete(s.conns, conn)
			s.mu.Unlock()
		})
	}
}

func (s *IPCServer) serve(conn net.Conn) {
	defer conn.Close()
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 4096), ipcMaxRequestSize)
	enc := json.NewEncoder(conn)
	for {
		conn.SetDeadline(time.Now().Add(ipcIdleTimeout))
		if !sc.Scan() {
			return
		}
		line := sc.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		if err := enc.Encode(s.dispatch(line)); err != nil {
			return
		}
	}
}

func (s *IPCServer) dispatch(line []byte) ipcResponse {
	var req ipcRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return ipcResponse{Error: "invalid json"}
	}
	if err := validateIPCRequest(req); err != nil {
		return ipcResponse{Error: err.Error()}
	}
	result, err := s.handler(req)
	if err != nil {
		return ipcResponse{Error: err.Error()}
	}
	resp := ipcResponse{OK: true}
	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return ipcResponse{Error: err.Error()}
		}
		resp.Data = data
	}
	return resp
}

func validateIPCRequest(req ipcRequest) error {
	switch req.Cmd {
	case "script":
		return validateScriptPath(req.Path)
	case "eval":
		if strings.TrimSpace(req.Source) == "" {
			return errors.New("empty source")
		}
		return nil
	case "status":
		return nil
	}
	return fmt.Errorf("unknown command %q", req.Cmd)
}

func validateScriptPath(path string) error {
	if !filepath.IsAbs(path) {
		return errors.New("absolute path required")
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".lua" {
		return fmt.Errorf("unsupported extension %q", ext)
	}
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("file not found: %s", path)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", path)
	}
	return nil
}

// IPCClient is one control session with a running synth.
type IPCClient struct {
	conn net.Conn
	rd   *bufio.Reader
	enc  *json.Encoder
}

func DialIPC() (*IPCClient, error) {
	return dialIPCAt(defaultSocketPath())
}

func dialIPCAt(path string) (*IPCClient, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to running synth: %w", err)
	}
	return &IPCClient{conn: conn, rd: bufio.NewReader(conn), enc: json.NewEncoder(conn)}, nil
}

// Do sends req and decodes the reply's data into out when out is non-nil.
func (c *IPCClient) Do(req ipcRequest, out any) error {
	c.conn.SetDeadline(time.Now().Add(ipcIdleTimeout))
	if err := c.enc.Encode(req); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	line, err := c.rd.ReadBytes('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return fmt.Errorf("read response failed: %w", err)
	}
	var resp ipcResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("remote error: %s", resp.Error)
	}
	if out != nil && len(resp.Data) > 0 {
		return json.Unmarshal(resp.Data, out)
	}
	return nil
}

func (c *IPCClient) Close() error { return c.conn.Close() }
