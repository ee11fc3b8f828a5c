package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// ShellInterpreter runs helper scripts in tests in place of python.
const ShellInterpreter = "/bin/sh"

// WriteHelperScript writes a shell helper script named name into dir and
// returns its path. The body receives the helper arguments in "$@" and the
// request payload on stdin.
func WriteHelperScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	if _, err := os.Stat(ShellInterpreter); err != nil {
		t.Skipf("%s not available: %v", ShellInterpreter, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("creating helper dir: %v", err)
	}

	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing helper script: %v", err)
	}
	return path
}

// JSONHelper returns a helper body that drains stdin and prints a wire
// response carrying translated.
func JSONHelper(translated string) string {
	return "cat >/dev/null\nprintf '%s' '{\"translated\":\"" + translated + "\"}'"
}

// FailingHelper returns a helper body that drains stdin, writes stderr and
// exits with code.
func FailingHelper(stderr string, code int) string {
	return fmt.Sprintf("cat >/dev/null\nprintf '%%s' '%s' >&2\nexit %d", stderr, code)
}
