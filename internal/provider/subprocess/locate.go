package subprocess

import (
	"os"
	"path/filepath"

	"github.com/costantinoai/evolution-mail-translate/internal/provider"
)

const (
	// HelperEnv overrides the helper script path.
	HelperEnv = "TRANSLATE_HELPER_PATH"

	// InterpreterEnv overrides the interpreter used to run the helper.
	InterpreterEnv = "TRANSLATE_PYTHON_BIN"

	// SystemHelperDir is where packaged installs put the helper scripts.
	SystemHelperDir = "/usr/share/evolution-translate/translate"
)

// Locator resolves the helper script and interpreter from a fixed list of
// known locations. It never searches $PATH.
type Locator struct {
	// HelperOverride and InterpreterOverride come from configuration and
	// take precedence over the environment.
	HelperOverride      string
	InterpreterOverride string

	// SystemDir is the packaged helper directory. Defaults to SystemHelperDir.
	SystemDir string

	// HomeDir roots the user-local install under ~/.local/lib.
	HomeDir string

	// Getenv reads override variables. Defaults to os.Getenv.
	Getenv func(string) string
}

// DefaultLocator returns a locator for the current user with the given
// configured overrides.
func DefaultLocator(helperOverride, interpreterOverride string) Locator {
	home, _ := os.UserHomeDir()
	return Locator{
		HelperOverride:      helperOverride,
		InterpreterOverride: interpreterOverride,
		SystemDir:           SystemHelperDir,
		HomeDir:             home,
		Getenv:              os.Getenv,
	}
}

func (l Locator) getenv(key string) string {
	if l.Getenv == nil {
		return ""
	}
	return l.Getenv(key)
}

func (l Locator) userLibDir() string {
	if l.HomeDir == "" {
		return ""
	}
	return filepath.Join(l.HomeDir, ".local", "lib", "evolution-translate")
}

// Helper returns the path of script, trying the override, the packaged
// location, then the user-local install.
func (l Locator) Helper(providerID, script string) (string, error) {
	override := l.HelperOverride
	if override == "" {
		override = l.getenv(HelperEnv)
	}
	if override != "" {
		if !isFile(override) {
			return "", provider.Errorf(provider.HelperNotFound, providerID,
				"helper override %s does not exist", override)
		}
		return override, nil
	}

	var candidates []string
	systemDir := l.SystemDir
	if systemDir == "" {
		systemDir = SystemHelperDir
	}
	candidates = append(candidates, filepath.Join(systemDir, script))
	if dir := l.userLibDir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, "translate", script))
	}

	for _, c := range candidates {
		if isFile(c) {
			return c, nil
		}
	}

	return "", provider.Errorf(provider.HelperNotFound, providerID,
		"%s not found; set %s or install the helper", script, HelperEnv)
}

// Interpreter returns the interpreter path, trying the override, then the
// user-local virtualenv.
func (l Locator) Interpreter(providerID string) (string, error) {
	override := l.InterpreterOverride
	if override == "" {
		override = l.getenv(InterpreterEnv)
	}
	if override != "" {
		if !isExecutable(override) {
			return "", provider.Errorf(provider.InterpreterNotFound, providerID,
				"interpreter override %s is not executable", override)
		}
		return override, nil
	}

	if dir := l.userLibDir(); dir != "" {
		venv := filepath.Join(dir, "venv", "bin", "python")
		if isExecutable(venv) {
			return venv, nil
		}
	}

	return "", provider.Errorf(provider.InterpreterNotFound, providerID,
		"python environment not found; set %s or install the helper environment", InterpreterEnv)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Mode().Perm()&0o111 != 0
}
