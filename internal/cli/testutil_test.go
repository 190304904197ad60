package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// setupEnv points every command at a fresh libsql file and backup
// directory. The working directory moves too, so no .env file is picked up.
func setupEnv(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("KANBAN_STORE_DRIVER", "libsql")
	t.Setenv("KANBAN_DATABASE_URL", "file:"+filepath.Join(dir, "cli.db"))
	t.Setenv("KANBAN_BLOB_DRIVER", "fs")
	t.Setenv("KANBAN_BLOB_DIR", filepath.Join(dir, "backups"))
	t.Setenv("KANBAN_LOG_LEVEL", "error")
	t.Setenv("KANBAN_OTEL_ENABLED", "false")
	unsetenv(t, "KANBAN_BACKUP_RETENTION")
	return dir
}

func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	_ = os.Unsetenv(key)
}

// run executes the root command with args and returns everything written
// to stdout and stderr.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("mkanban %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

// resetFlags puts every flag back to its default between runs, since the
// flag variables are package globals.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

var idPattern = regexp.MustCompile(`\(([0-9a-f-]{36})\)`)

// createdID pulls the id out of "Created project X (id)" style output.
func createdID(t *testing.T, out string) string {
	t.Helper()
	m := idPattern.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("no id in output %q", out)
	}
	return m[1]
}
