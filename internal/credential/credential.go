// Package credential obtains the API key for the text generation gateway,
// either from the environment or from a key file that is created on first use.
package credential

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Source selects where the key comes from.
type Source string

const (
	SourceEnv  Source = "env"
	SourceFile Source = "file"
)

// ErrMissingKey is returned when no key could be obtained.
var ErrMissingKey = errors.New("API key is required")

// ToolDir is the directory name under ~/.local/share holding the key file.
const ToolDir = "aicommit"

// Prompter asks the user for a key.
type Prompter interface {
	PromptAPIKey() (string, error)
}

func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceEnv:
		return SourceEnv, nil
	case SourceFile:
		return SourceFile, nil
	default:
		return "", fmt.Errorf("unknown credential source %q: must be env or file", s)
	}
}

// DefaultKeyFile returns ~/.local/share/aicommit/key.txt.
func DefaultKeyFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", ToolDir, "key.txt"), nil
}

// Loader resolves the key for a single run.
type Loader struct {
	Source Source
	// EnvVar names the variable read by SourceEnv.
	EnvVar string
	// DotEnvFile supplies EnvVar when the environment leaves it unset or
	// empty. The process environment is never modified. Empty disables it.
	DotEnvFile string
	// KeyFile is read by SourceFile. Empty means DefaultKeyFile.
	KeyFile   string
	Prompter  Prompter
	Getenv    func(string) string
	ErrWriter io.Writer
}

func (l *Loader) Load() (string, error) {
	switch l.Source {
	case SourceEnv:
		return l.loadEnv()
	case SourceFile:
		return l.loadFile()
	default:
		return "", fmt.Errorf("unknown credential source %q", l.Source)
	}
}

func (l *Loader) loadEnv() (string, error) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	key := strings.TrimSpace(getenv(l.EnvVar))
	if key == "" && l.DotEnvFile != "" {
		values, err := godotenv.Read(l.DotEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to read %s: %w", l.DotEnvFile, err)
		}
		key = strings.TrimSpace(values[l.EnvVar])
	}
	if key == "" {
		return "", fmt.Errorf("%w: %s environment variable is not set", ErrMissingKey, l.EnvVar)
	}
	return key, nil
}

func (l *Loader) loadFile() (string, error) {
	path := l.KeyFile
	if path == "" {
		var err error
		path, err = DefaultKeyFile()
		if err != nil {
			return "", err
		}
	}

	if data, err := os.ReadFile(path); err == nil {
		if key := strings.TrimSpace(string(data)); key != "" {
			return key, nil
		}
	}

	if l.Prompter == nil {
		return "", fmt.Errorf("%w: no key found at %s", ErrMissingKey, path)
	}

	key, err := l.Prompter.PromptAPIKey()
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrMissingKey
	}

	if err := Save(path, key); err != nil {
		return "", err
	}
	if l.ErrWriter != nil {
		fmt.Fprintf(l.ErrWriter, "API key saved to %s\n", path)
	}
	return key, nil
}

// Save writes key to path, creating parent directories.
func Save(path, key string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(key+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}
	return nil
}
