package titletool

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Extractor produces the generated title snapshot for one locale.
type Extractor interface {
	Extract(ctx context.Context, locale, outputPath string, onLine func(string)) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps the external titledb extraction tool.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs an extraction client.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("extraction tool binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Extract runs the tool for locale and waits for outputPath to appear.
// Tool stdout lines are forwarded to onLine when provided.
func (c *Client) Extract(ctx context.Context, locale, outputPath string, onLine func(string)) error {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return errors.New("locale required")
	}
	outputPath = strings.TrimSpace(outputPath)
	if outputPath == "" {
		return errors.New("output path required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{"extract", "--locale", locale, "--output", outputPath}
	if err := c.exec.Run(runCtx, c.binary, args, onLine); err != nil {
		return fmt.Errorf("run %s: %w", c.binary, err)
	}

	if _, err := os.Stat(outputPath); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s exited without producing %s", c.binary, filepath.Base(outputPath))
	} else if err != nil {
		return fmt.Errorf("inspect tool output: %w", err)
	}
	return nil
}

var _ Extractor = (*Client)(nil)

// stderrTailLines bounds how much tool stderr is retained for error reporting.
const stderrTailLines = 5

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once
	var tail []string
	var tailMu sync.Mutex

	record := func(line string) {
		tailMu.Lock()
		tail = append(tail, line)
		if len(tail) > stderrTailLines {
			tail = tail[len(tail)-stderrTailLines:]
		}
		tailMu.Unlock()
	}

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	forward := func(line string) {
		if onStdout != nil {
			onStdout(line)
		}
	}

	wg.Add(2)
	go scan(stdout, forward)
	go scan(stderr, record)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		tailMu.Lock()
		detail := strings.TrimSpace(strings.Join(tail, "; "))
		tailMu.Unlock()
		if detail != "" {
			return fmt.Errorf("wait command: %w (%s)", err, detail)
		}
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
