package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// ErrSpawn is returned when the archiver process cannot be started.
var ErrSpawn = errors.New("archive: spawn archiver")

const (
	// stderrTail bounds how much archiver stderr is kept for diagnostics.
	stderrTail = 4 * 1024

	// waitDelay bounds how long Wait blocks on I/O after the archiver
	// has been killed.
	waitDelay = 5 * time.Second
)

// Process is a running archiver. It is owned by a single goroutine.
type Process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *tailBuffer

	waited  bool
	waitErr error
}

// Start spawns command to recursively zip dir to stdout, storing entries
// by basename. The process is killed when ctx is done.
func Start(ctx context.Context, command, dir string) (*Process, error) {
	cmd := exec.CommandContext(ctx, command, "-r", "-j", "-", dir)
	cmd.WaitDelay = waitDelay

	stderr := &tailBuffer{max: stderrTail}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, command, err)
	}

	return &Process{
		cmd:    cmd,
		stdout: stdout,
		stderr: stderr,
	}, nil
}

// Pid returns the operating system process ID.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Read reads archiver output.
func (p *Process) Read(b []byte) (int, error) {
	return p.stdout.Read(b)
}

// Wait reaps the process. It must only be called after all output has
// been read. Subsequent calls return the first result.
func (p *Process) Wait() error {
	if !p.waited {
		p.waited = true
		p.waitErr = p.cmd.Wait()
	}
	return p.waitErr
}

// Reaped reports whether Wait has been called.
func (p *Process) Reaped() bool {
	return p.waited
}

// Stderr returns the tail of what the archiver wrote to stderr.
// Only meaningful after Wait.
func (p *Process) Stderr() string {
	return string(p.stderr.buf)
}

// Close kills the process unless it has already been reaped, then reaps
// it. The exit status is discarded.
func (p *Process) Close() error {
	if p.waited {
		return nil
	}

	var killErr error
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		killErr = fmt.Errorf("kill archiver: %w", err)
	}
	p.Wait()

	return killErr
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if n >= b.max {
		b.buf = append(b.buf[:0], p[n-b.max:]...)
		return n, nil
	}
	if over := len(b.buf) + n - b.max; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	b.buf = append(b.buf, p...)
	return n, nil
}
