package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/samzong/aicommit/internal/gitcmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTempRepo initialises an isolated repository. Global and system git
// config are masked so user settings such as commit signing cannot leak in.
func newTempRepo(t *testing.T) (string, gitcmd.Runner) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	runner := gitcmd.Runner{
		Dir: dir,
		Env: []string{
			"HOME=" + dir,
			"GIT_CONFIG_NOSYSTEM=1",
			"GIT_CONFIG_GLOBAL=" + filepath.Join(dir, ".gitconfig-test"),
			"GIT_AUTHOR_NAME=Test",
			"GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=Test",
			"GIT_COMMITTER_EMAIL=test@example.com",
		},
	}

	if _, err := runner.Run("init", "-q"); err != nil {
		t.Skipf("git init failed: %v", err)
	}
	return dir, runner
}

func TestIntegration_InspectStageCommit(t *testing.T) {
	dir, runner := newTempRepo(t)
	client := NewClient(Options{Executor: runner})

	require.NoError(t, client.IsInsideWorkTree())
	assert.Equal(t, NoRecentCommits, client.RecentLog(5))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ts"), []byte("one\n"), 0o644))
	require.NoError(t, client.AddAll())
	require.NoError(t, client.Commit("Add a.ts"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ts"), []byte("two\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("new\n"), 0o644))

	status, err := client.Status()
	require.NoError(t, err)
	assert.Equal(t, " M a.ts\n?? b.txt", status)

	modified, err := client.ModifiedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ts"}, modified)

	untracked, err := client.UntrackedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt"}, untracked)

	diff, err := client.Diff("a.ts")
	require.NoError(t, err)
	assert.Contains(t, diff, "+two")

	require.NoError(t, client.Add([]string{"a.ts"}))
	require.NoError(t, client.Commit("Update a.ts"))

	assert.Contains(t, client.RecentLog(5), "Update a.ts")

	status, err = client.Status()
	require.NoError(t, err)
	assert.Equal(t, "?? b.txt", status)
}

func TestIntegration_OutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	client := NewClient(Options{Executor: gitcmd.Runner{
		Dir: dir,
		Env: []string{"GIT_CEILING_DIRECTORIES=" + filepath.Dir(dir)},
	}})

	assert.ErrorIs(t, client.IsInsideWorkTree(), ErrNotRepository)
}

func TestIntegration_FileListsFromSubdirectory(t *testing.T) {
	dir, runner := newTempRepo(t)
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "root.txt"), []byte("one\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "a.ts"), []byte("one\n"), 0o644))
	rootClient := NewClient(Options{Executor: runner})
	require.NoError(t, rootClient.AddAll())
	require.NoError(t, rootClient.Commit("Initial"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "root.txt"), []byte("two\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "a.ts"), []byte("two\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.txt"), []byte("new\n"), 0o644))

	subRunner := runner
	subRunner.Dir = sub
	client := NewClient(Options{Executor: subRunner})

	modified, err := client.ModifiedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ts"}, modified)

	untracked, err := client.UntrackedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt"}, untracked)

	require.NoError(t, client.Add(append(modified, untracked...)))

	status, err := rootClient.Status()
	require.NoError(t, err)
	assert.Equal(t, " M root.txt\nM  sub/a.ts\nA  sub/b.txt", status)
}
