// Package workflow provides the commit workflow orchestration logic.
package workflow

import "context"

// GitClient abstracts git operations for testability.
type GitClient interface {
	IsInsideWorkTree() error
	Status(paths ...string) (string, error)
	Diff(paths ...string) (string, error)
	RecentLog(n int) string
	ModifiedFiles() ([]string, error)
	UntrackedFiles() ([]string, error)
	AddAll() error
	Add(paths []string) error
	Commit(message string, args ...string) error
}

// LLMClient abstracts LLM operations for testability.
type LLMClient interface {
	GenerateCommitMessage(ctx context.Context, prompt string, model string) (string, error)
}
