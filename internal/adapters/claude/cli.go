package claude

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/emiliopalmerini/mkanban/internal/domain"
	"github.com/emiliopalmerini/mkanban/internal/ports"
)

const (
	DefaultModel      = "claude-sonnet-4-20250514"
	DefaultCLITimeout = 30 * time.Second

	imagePlaceholder = "\n[Image attachment provided - see description above]"
	maxOutput        = 1 << 20
	waitDelay        = 500 * time.Millisecond
)

// DefaultCLIPaths lists where the claude binary is looked for, in order.
func DefaultCLIPaths() []string {
	home := os.Getenv("HOME")
	if home == "" {
		home = "~"
	}
	return []string{
		filepath.Join(home, ".claude", "local", "claude"),
		"/usr/local/bin/claude",
		"claude",
	}
}

// CLITransport runs the locally installed claude CLI in print mode.
type CLITransport struct {
	paths   []string
	model   string
	timeout time.Duration
	logger  logrus.FieldLogger
}

func NewCLITransport(paths []string, model string, timeout time.Duration, logger logrus.FieldLogger) *CLITransport {
	if len(paths) == 0 {
		paths = DefaultCLIPaths()
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultCLITimeout
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CLITransport{paths: paths, model: model, timeout: timeout, logger: logger}
}

func (t *CLITransport) Name() string { return "cli" }

// RenderText flattens a request into one text prompt. Images cannot be
// passed to the CLI, so each becomes a placeholder line.
func RenderText(req ports.LLMRequest) string {
	var b strings.Builder
	b.WriteString(req.System)
	b.WriteString("\n\n---\n\n")
	for _, block := range req.Content {
		switch block.Type {
		case domain.ContentText:
			b.WriteString(block.Text)
		case domain.ContentImage:
			b.WriteString(imagePlaceholder)
		}
	}
	return b.String()
}

// Attempt writes the prompt to a temp file and feeds it on stdin to each
// candidate binary until one succeeds. One timeout bounds the whole attempt.
func (t *CLITransport) Attempt(ctx context.Context, req ports.LLMRequest) (string, error) {
	f, err := os.CreateTemp("", "prompt-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create prompt file: %w", err)
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()

	if _, err := f.WriteString(RenderText(req)); err != nil {
		return "", fmt.Errorf("failed to write prompt file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var errs []error
	for _, path := range t.paths {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return "", fmt.Errorf("failed to rewind prompt file: %w", err)
		}

		out, err := t.run(ctx, path, f)
		if err == nil {
			return out, nil
		}

		t.logger.WithFields(logrus.Fields{"path": path, "error": err}).Debug("claude CLI attempt failed")
		errs = append(errs, fmt.Errorf("%s: %w", path, err))
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("claude CLI timed out after %s: %w", t.timeout, ctx.Err()))
			break
		}
	}
	return "", errors.Join(errs...)
}

func (t *CLITransport) run(ctx context.Context, path string, stdin io.Reader) (string, error) {
	cmd := exec.CommandContext(ctx, path, "-p", "--output-format", "text", "--model", t.model)
	cmd.Stdin = stdin
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdout, n: maxOutput}
	cmd.Stderr = &limitedWriter{w: &stderr, n: maxOutput}

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}

// limitedWriter drops everything past n bytes.
type limitedWriter struct {
	w io.Writer
	n int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	total := len(p)
	if l.n <= 0 {
		return total, nil
	}
	if len(p) > l.n {
		p = p[:l.n]
	}
	n, err := l.w.Write(p)
	l.n -= n
	if err != nil {
		return n, err
	}
	return total, nil
}
