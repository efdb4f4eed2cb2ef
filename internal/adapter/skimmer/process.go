// Package skimmer runs the external SKCC skimmer and exposes its standard
// output one line at a time.
package skimmer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// DefaultStopGrace is how long Stop waits after SIGTERM before killing the skimmer.
const DefaultStopGrace = 5 * time.Second

const maxLineBytes = 1024 * 1024

// Options configures the skimmer process.
type Options struct {
	// Command is the program and its arguments.
	Command []string
	// Dir is the working directory; the skimmer reads its config file from there.
	Dir       string
	StopGrace time.Duration
	Logger    *slog.Logger
}

// Process is a running skimmer. It implements pipeline.LineSource.
type Process struct {
	cmd    *exec.Cmd
	logger *slog.Logger
	grace  time.Duration

	lines    chan string
	scanErr  error // set before lines is closed
	stopping chan struct{}
	done     chan struct{}
	exitErr  error // set before done is closed
	stopOnce sync.Once
	stopErr  error
}

// Start launches the skimmer and begins reading its output.
func Start(opts Options) (*Process, error) {
	if len(opts.Command) == 0 {
		return nil, errors.New("skimmer command is empty")
	}
	if opts.StopGrace <= 0 {
		opts.StopGrace = DefaultStopGrace
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	cmd := exec.Command(opts.Command[0], opts.Command[1:]...) //nolint:gosec
	cmd.Dir = opts.Dir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start skimmer: %w", err)
	}

	p := &Process{
		cmd:      cmd,
		logger:   opts.Logger.With("pid", cmd.Process.Pid),
		grace:    opts.StopGrace,
		lines:    make(chan string, 256),
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
	p.logger.Info("skimmer started", "command", opts.Command, "dir", opts.Dir)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.scanStdout(stdout)
	}()
	go func() {
		defer wg.Done()
		p.scanStderr(stderr)
	}()
	go func() {
		// Wait closes the pipes, so it must run after both scanners are done.
		wg.Wait()
		p.exitErr = cmd.Wait()
		p.logger.Info("skimmer exited", "error", p.exitErr)
		close(p.done)
	}()

	return p, nil
}

func (p *Process) scanStdout(r io.Reader) {
	defer close(p.lines)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		select {
		case p.lines <- scanner.Text():
		case <-p.stopping:
			// Nobody is reading any more; keep draining so the child never
			// blocks on a full pipe while shutting down.
		}
	}
	if err := scanner.Err(); err != nil {
		p.scanErr = err
	}
}

func (p *Process) scanStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		p.logger.Warn("skimmer stderr", "line", scanner.Text())
	}
}

// ReadLine returns the next output line without its line terminator. It
// returns io.EOF once the skimmer has closed its output.
func (p *Process) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-p.lines:
		if ok {
			return line, nil
		}
		if p.scanErr != nil {
			return "", fmt.Errorf("scan skimmer output: %w", p.scanErr)
		}
		return "", io.EOF
	}
}

// Done is closed once the skimmer has exited and its output is drained.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// ExitErr returns the result of waiting for the skimmer. It is only
// meaningful after Done is closed.
func (p *Process) ExitErr() error {
	<-p.done
	return p.exitErr
}

// Stop asks the skimmer to terminate, killing it if it is still running after
// the grace period. It is safe to call more than once and after the skimmer
// has exited on its own.
func (p *Process) Stop() error {
	p.stopOnce.Do(func() {
		close(p.stopping)

		select {
		case <-p.done:
			return
		default:
		}

		if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
			// Signals other than Kill are not supported on every platform.
			p.logger.Debug("sigterm failed, killing skimmer", "error", err)
			p.stopErr = p.kill()
			<-p.done
			return
		}

		select {
		case <-p.done:
			p.logger.Info("skimmer exited after SIGTERM")
		case <-time.After(p.grace):
			p.logger.Warn("skimmer did not exit after SIGTERM, killing", "grace", p.grace)
			p.stopErr = p.kill()
			<-p.done
		}
	})
	return p.stopErr
}

func (p *Process) kill() error {
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill skimmer: %w", err)
	}
	return nil
}
