// Package git inspects a working tree and stages and commits changes by
// shelling out to the git command line.
package git

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samzong/aicommit/internal/gitcmd"
	"github.com/samzong/aicommit/internal/stringsutil"
)

// ErrNotRepository is returned when the working directory is not inside a git work tree.
var ErrNotRepository = errors.New("not inside a git repository")

// NoRecentCommits is reported in place of an empty history.
const NoRecentCommits = "No recent commits."

// Options configures a Client.
type Options struct {
	Verbose  bool
	Dir      string
	Executor gitcmd.Executor
}

// Client wraps the git subprocesses the commit workflow needs.
type Client struct {
	exec gitcmd.Executor
}

func NewClient(opts Options) *Client {
	exec := opts.Executor
	if exec == nil {
		exec = gitcmd.Runner{Verbose: opts.Verbose, Dir: opts.Dir}
	}
	return &Client{exec: exec}
}

// IsInsideWorkTree fails with ErrNotRepository when git does not recognise the directory.
func (c *Client) IsInsideWorkTree() error {
	result, err := c.exec.Run("rev-parse", "--is-inside-work-tree")
	if err != nil || result.StdoutString(true) != "true" {
		return ErrNotRepository
	}
	return nil
}

// Status returns porcelain status, optionally limited to paths.
func (c *Client) Status(paths ...string) (string, error) {
	result, err := c.exec.Run(withPaths([]string{"status", "--porcelain"}, paths)...)
	if err != nil {
		return "", gitcmd.WrapError("git status failed", result, err)
	}
	// Leading spaces are significant in porcelain output.
	return strings.TrimRight(result.StdoutString(false), " \t\r\n"), nil
}

// Diff returns the unstaged diff, optionally limited to paths.
func (c *Client) Diff(paths ...string) (string, error) {
	result, err := c.exec.Run(withPaths([]string{"diff"}, paths)...)
	if err != nil {
		return "", gitcmd.WrapError("git diff failed", result, err)
	}
	return result.StdoutString(true), nil
}

// RecentLog returns the last n commits one per line. A repository without
// history yields NoRecentCommits rather than an error.
func (c *Client) RecentLog(n int) string {
	result, err := c.exec.Run("log", "--oneline", fmt.Sprintf("-%d", n))
	log := result.StdoutString(true)
	if err != nil || log == "" {
		return NoRecentCommits
	}
	return log
}

// ModifiedFiles lists tracked files with unstaged modifications under the
// current directory. Paths are relative to it, like UntrackedFiles, so both
// can be passed straight to Add.
func (c *Client) ModifiedFiles() ([]string, error) {
	result, err := c.exec.Run("diff", "--name-only", "--relative")
	if err != nil {
		return nil, gitcmd.WrapError("git diff --name-only failed", result, err)
	}
	return stringsutil.SplitLines(result.StdoutString(false)), nil
}

// UntrackedFiles lists files git does not track and does not ignore.
func (c *Client) UntrackedFiles() ([]string, error) {
	result, err := c.exec.Run("ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, gitcmd.WrapError("git ls-files failed", result, err)
	}
	return stringsutil.SplitLines(result.StdoutString(false)), nil
}

// AddAll stages every change in the working tree.
func (c *Client) AddAll() error {
	result, err := c.exec.Run("add", ".")
	if err != nil {
		return gitcmd.WrapError("git add failed", result, err)
	}
	return nil
}

// Add stages exactly the given paths.
func (c *Client) Add(paths []string) error {
	if len(paths) == 0 {
		return errors.New("no files to add")
	}
	args := append([]string{"add"}, paths...)
	result, err := c.exec.Run(args...)
	if err != nil {
		return gitcmd.WrapError("git add failed", result, err)
	}
	return nil
}

// Commit records the staged changes. Extra args (for example --no-verify)
// follow the message.
func (c *Client) Commit(message string, args ...string) error {
	commitArgs := append([]string{"commit", "-m", message}, args...)
	result, err := c.exec.Run(commitArgs...)
	if err != nil {
		return gitcmd.WrapError("git commit failed", result, err)
	}
	return nil
}

func withPaths(args, paths []string) []string {
	if len(paths) == 0 {
		return args
	}
	args = append(args, "--")
	return append(args, paths...)
}
