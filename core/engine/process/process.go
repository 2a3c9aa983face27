// Package process provides an engine backed by a long-running external
// tagger process.
//
// The process reads one JSON request per line on stdin:
//
//	{"text": "Die Bank ist alt."}
//
// and answers each with one JSON line on stdout:
//
//	{"tokens": [{"text": "Die", "lemma": "der", "pos": "DET", "whitespace": " "}, ...]}
//	{"error": "model not loaded"}
//
// Each engine starts its own process, so a bridge with N workers runs N
// taggers. The process receives the language and properties through the
// environment (WIKIWSD_LANGUAGE, WIKIWSD_PROP_<NAME>). A request that exceeds
// the configured timeout kills the process; later calls fail fast.
//
// The engine registers itself under the kind "process".
package process

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/FocuswithJustin/wikiwsd/core/engine"
	"github.com/FocuswithJustin/wikiwsd/core/errors"
)

func init() {
	engine.Register("process", func(cfg engine.Config) (engine.Engine, error) {
		return Start(cfg)
	})
}

// closeGrace is how long Close waits for the process to exit after stdin is closed.
const closeGrace = 5 * time.Second

type request struct {
	Text string `json:"text"`
}

type response struct {
	Tokens []engine.Unit `json:"tokens"`
	Error  string        `json:"error,omitempty"`
}

// Engine talks to one tagger process.
type Engine struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	lines   chan []byte
	stderr  *tailBuffer
	timeout time.Duration
	quit    chan struct{}
	exited  chan struct{}
	exitErr error

	mu     sync.Mutex
	broken error
	closed bool
}

// Start launches cfg.Command with cfg.Args.
func Start(cfg engine.Config) (*Engine, error) {
	if cfg.Command == "" {
		return nil, errors.NewValidation("command", "required for process engine")
	}

	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Env = append(os.Environ(), environ(cfg)...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("process: stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("process: stdout: %w", err)
	}
	stderr := &tailBuffer{limit: 4096}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("process: start %s: %w", cfg.Command, err)
	}

	e := &Engine{
		cmd:     cmd,
		stdin:   stdin,
		lines:   make(chan []byte),
		stderr:  stderr,
		timeout: cfg.EffectiveTimeout(),
		quit:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
	go e.readLoop(stdout)
	return e, nil
}

func environ(cfg engine.Config) []string {
	env := []string{"WIKIWSD_LANGUAGE=" + cfg.Language}
	for k, v := range cfg.Properties {
		env = append(env, "WIKIWSD_PROP_"+strings.ToUpper(k)+"="+v)
	}
	return env
}

// readLoop forwards stdout lines until the process closes its output, then
// reaps the process. exitErr is set before exited is closed.
func (e *Engine) readLoop(stdout io.Reader) {
	r := bufio.NewReader(stdout)
	for {
		data, err := r.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			e.cmd.Wait()
			e.exitErr = err
			close(e.exited)
			return
		}
		select {
		case e.lines <- data:
		case <-e.quit:
		}
	}
}

// Annotate sends text to the process and waits for its answer.
func (e *Engine) Annotate(text string) ([]engine.Unit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, fmt.Errorf("process: engine closed")
	}
	if e.broken != nil {
		return nil, e.broken
	}

	data, err := json.Marshal(request{Text: text})
	if err != nil {
		return nil, fmt.Errorf("process: marshal: %w", err)
	}
	data = append(data, '\n')
	if _, err := e.stdin.Write(data); err != nil {
		return nil, e.fail(fmt.Errorf("process: write: %w", err))
	}

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case data := <-e.lines:
		var resp response
		if err := json.Unmarshal(bytes.TrimSpace(data), &resp); err != nil {
			return nil, fmt.Errorf("process: decode response: %w (output: %s)", err, truncate(data, 200))
		}
		if resp.Error != "" {
			return nil, fmt.Errorf("process: %s", resp.Error)
		}
		return resp.Tokens, nil
	case <-e.exited:
		return nil, e.fail(fmt.Errorf("process: exited: %w (stderr: %s)", e.exitErr, e.stderr.String()))
	case <-timer.C:
		e.cmd.Process.Kill()
		return nil, e.fail(fmt.Errorf("process: timed out after %v", e.timeout))
	}
}

func (e *Engine) fail(err error) error {
	e.broken = err
	return err
}

// Close closes stdin and waits for the process to exit, killing it after a grace period.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	close(e.quit)
	e.stdin.Close()

	select {
	case <-e.exited:
	case <-time.After(closeGrace):
		e.cmd.Process.Kill()
		<-e.exited
	}
	return nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if len(b.buf) > b.limit {
		b.buf = b.buf[len(b.buf)-b.limit:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(string(b.buf))
}

func truncate(data []byte, n int) string {
	s := strings.TrimSpace(string(data))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
