package audio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// mpvEngine drives a headless mpv process over its JSON IPC socket.
type mpvEngine struct {
	cmd      *exec.Cmd
	conn     net.Conn
	log      zerolog.Logger
	finished chan struct{}

	mu      sync.Mutex
	nextID  int
	pending map[int]chan mpvResponse
	closed  bool
}

type mpvRequest struct {
	Command   []any `json:"command"`
	RequestID int   `json:"request_id"`
}

type mpvResponse struct {
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID int             `json:"request_id,omitempty"`
	Event     string          `json:"event,omitempty"`
	Reason    string          `json:"reason,omitempty"`
}

// NewMPV starts an idle mpv process and connects to its IPC socket.
func NewMPV(socketPath string, log zerolog.Logger) (Engine, error) {
	cmd := exec.Command("mpv",
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--pause",
		"--input-ipc-server="+socketPath,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start mpv: %w", err)
	}

	// mpv needs a moment to create the socket.
	var conn net.Conn
	var err error
	for attempt := 0; attempt < 20; attempt++ {
		conn, err = net.Dial("unix", socketPath)
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		cmd.Process.Kill()
		return nil, fmt.Errorf("failed to connect to mpv socket: %w", err)
	}

	e := &mpvEngine{
		cmd:      cmd,
		conn:     conn,
		log:      log,
		finished: make(chan struct{}, 1),
		nextID:   1,
		pending:  make(map[int]chan mpvResponse),
	}
	go e.readLoop()
	return e, nil
}

func (e *mpvEngine) readLoop() {
	scanner := bufio.NewScanner(e.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var resp mpvResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			continue
		}

		if resp.Event != "" {
			if resp.Event == "end-file" && resp.Reason == "eof" {
				select {
				case e.finished <- struct{}{}:
				default:
				}
			}
			continue
		}

		e.mu.Lock()
		ch, ok := e.pending[resp.RequestID]
		if ok {
			delete(e.pending, resp.RequestID)
		}
		e.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

// command sends one IPC command and waits for its reply.
func (e *mpvEngine) command(args ...any) (json.RawMessage, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrUnavailable
	}
	id := e.nextID
	e.nextID++
	ch := make(chan mpvResponse, 1)
	e.pending[id] = ch

	payload, err := json.Marshal(mpvRequest{Command: args, RequestID: id})
	if err != nil {
		delete(e.pending, id)
		e.mu.Unlock()
		return nil, err
	}
	_, err = e.conn.Write(append(payload, '\n'))
	if err != nil {
		delete(e.pending, id)
		e.mu.Unlock()
		return nil, fmt.Errorf("mpv write failed: %w", err)
	}
	e.mu.Unlock()

	select {
	case resp := <-ch:
		if resp.Error != "" && resp.Error != "success" {
			return nil, fmt.Errorf("mpv: %s", resp.Error)
		}
		return resp.Data, nil
	case <-time.After(2 * time.Second):
		e.mu.Lock()
		delete(e.pending, id)
		e.mu.Unlock()
		return nil, fmt.Errorf("mpv command timed out")
	}
}

func (e *mpvEngine) Load(path string) error {
	if _, err := e.command("loadfile", path); err != nil {
		return err
	}
	// loadfile keeps the current pause state; force paused at 0.
	_, err := e.command("set_property", "pause", true)
	return err
}

func (e *mpvEngine) Play() error {
	_, err := e.command("set_property", "pause", false)
	return err
}

func (e *mpvEngine) Pause() error {
	_, err := e.command("set_property", "pause", true)
	return err
}

func (e *mpvEngine) Stop() error {
	_, err := e.command("stop")
	return err
}

func (e *mpvEngine) Seek(seconds float64) error {
	_, err := e.command("seek", seconds, "absolute")
	return err
}

func (e *mpvEngine) SetVolume(v float64) error {
	_, err := e.command("set_property", "volume", v*100)
	return err
}

func (e *mpvEngine) Position() float64 {
	return e.floatProperty("playback-time")
}

func (e *mpvEngine) Duration() float64 {
	return e.floatProperty("duration")
}

func (e *mpvEngine) floatProperty(name string) float64 {
	data, err := e.command("get_property", name)
	if err != nil {
		return 0
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return 0
	}
	return v
}

func (e *mpvEngine) Finished() <-chan struct{} {
	return e.finished
}

func (e *mpvEngine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.conn.Close()
	if e.cmd.Process != nil {
		e.cmd.Process.Kill()
	}
	return e.cmd.Wait()
}
