package claude

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/mkanban/internal/domain"
	"github.com/emiliopalmerini/mkanban/internal/ports"
)

// fakeCLI writes an executable shell script that records its stdin and
// arguments next to itself and then runs body.
func fakeCLI(t *testing.T, body string) (path, stdinFile, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}

	dir := t.TempDir()
	path = filepath.Join(dir, "claude")
	stdinFile = filepath.Join(dir, "stdin.txt")
	argsFile = filepath.Join(dir, "args.txt")

	script := "#!/bin/sh\ncat > '" + stdinFile + "'\necho \"$@\" > '" + argsFile + "'\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path, stdinFile, argsFile
}

func TestRenderText(t *testing.T) {
	req := ports.LLMRequest{
		System: "SYSTEM",
		Content: []domain.ContentBlock{
			domain.TextBlock("**Task Title:** Fix nav"),
			domain.ImageBlock("image/png", "AAAA"),
		},
	}

	got := RenderText(req)
	assert.Equal(t, "SYSTEM\n\n---\n\n**Task Title:** Fix nav\n[Image attachment provided - see description above]", got)
}

func TestCLITransport_FeedsPromptOnStdin(t *testing.T) {
	path, stdinFile, argsFile := fakeCLI(t, `echo "  generated prompt  "`)
	tr := NewCLITransport([]string{path}, "model-x", time.Second, nil)

	out, err := tr.Attempt(context.Background(), ports.LLMRequest{
		System:  "SYS",
		Content: []domain.ContentBlock{domain.TextBlock("hello")},
	})
	require.NoError(t, err)
	assert.Equal(t, "generated prompt", out)

	stdin, err := os.ReadFile(stdinFile)
	require.NoError(t, err)
	assert.Equal(t, "SYS\n\n---\n\nhello", string(stdin))

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "-p --output-format text --model model-x", strings.TrimSpace(string(args)))
}

func TestCLITransport_FallsThroughCandidatePaths(t *testing.T) {
	good, _, _ := fakeCLI(t, `echo ok`)
	missing := filepath.Join(t.TempDir(), "nope")
	broken, _, _ := fakeCLI(t, `echo "boom" >&2; exit 3`)

	tr := NewCLITransport([]string{missing, broken, good}, "", time.Second, nil)
	out, err := tr.Attempt(context.Background(), ports.LLMRequest{System: "s"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestCLITransport_AllPathsFail(t *testing.T) {
	broken, _, _ := fakeCLI(t, `echo "not logged in" >&2; exit 1`)
	tr := NewCLITransport([]string{broken, filepath.Join(t.TempDir(), "missing")}, "", time.Second, nil)

	_, err := tr.Attempt(context.Background(), ports.LLMRequest{System: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestCLITransport_TimeoutBoundsWholeAttempt(t *testing.T) {
	slow, _, _ := fakeCLI(t, `exec sleep 5`)
	tr := NewCLITransport([]string{slow, slow}, "", 200*time.Millisecond, nil)

	start := time.Now()
	_, err := tr.Attempt(context.Background(), ports.LLMRequest{System: "s"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
	assert.Contains(t, err.Error(), "timed out")
}

func TestCLITransport_RemovesPromptFile(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	good, _, _ := fakeCLI(t, `echo ok`)
	tr := NewCLITransport([]string{good}, "", time.Second, nil)
	_, err := tr.Attempt(context.Background(), ports.LLMRequest{System: "s"})
	require.NoError(t, err)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDefaultCLIPaths(t *testing.T) {
	t.Setenv("HOME", "/home/dev")
	assert.Equal(t, []string{"/home/dev/.claude/local/claude", "/usr/local/bin/claude", "claude"}, DefaultCLIPaths())
}
