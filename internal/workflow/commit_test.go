package workflow

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samzong/aicommit/internal/formatter"
	"github.com/samzong/aicommit/internal/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGit records every call in the order the workflow issues them.
type fakeGit struct {
	notRepo   bool
	status    map[string]string
	diff      map[string]string
	log       string
	modified  []string
	untracked []string
	addErr    error
	commitErr error

	calls      []string
	added      []string
	addedAll   bool
	committed  string
	commitArgs []string
}

func key(paths []string) string { return strings.Join(paths, " ") }

func (g *fakeGit) IsInsideWorkTree() error {
	g.calls = append(g.calls, "rev-parse")
	if g.notRepo {
		return errors.New("not inside a git repository")
	}
	return nil
}

func (g *fakeGit) Status(paths ...string) (string, error) {
	g.calls = append(g.calls, strings.TrimSpace("status "+key(paths)))
	return g.status[key(paths)], nil
}

func (g *fakeGit) Diff(paths ...string) (string, error) {
	g.calls = append(g.calls, strings.TrimSpace("diff "+key(paths)))
	return g.diff[key(paths)], nil
}

func (g *fakeGit) RecentLog(n int) string {
	g.calls = append(g.calls, "log")
	return g.log
}

func (g *fakeGit) ModifiedFiles() ([]string, error) {
	g.calls = append(g.calls, "diff --name-only")
	return g.modified, nil
}

func (g *fakeGit) UntrackedFiles() ([]string, error) {
	g.calls = append(g.calls, "ls-files")
	return g.untracked, nil
}

func (g *fakeGit) AddAll() error {
	g.calls = append(g.calls, "add .")
	g.addedAll = true
	return g.addErr
}

func (g *fakeGit) Add(paths []string) error {
	g.calls = append(g.calls, "add "+key(paths))
	g.added = paths
	return g.addErr
}

func (g *fakeGit) Commit(message string, args ...string) error {
	g.calls = append(g.calls, "commit")
	g.committed = message
	g.commitArgs = args
	return g.commitErr
}

type fakeLLM struct {
	reply   string
	err     error
	prompts []string
	models  []string
}

func (l *fakeLLM) GenerateCommitMessage(_ context.Context, prompt, model string) (string, error) {
	l.prompts = append(l.prompts, prompt)
	l.models = append(l.models, model)
	return l.reply, l.err
}

// fakeSelector returns whatever pick chooses from the offered files.
type fakeSelector struct {
	pick  func(files []string) []string
	err   error
	shown []string
}

func (s *fakeSelector) Select(files []string) ([]string, error) {
	s.shown = files
	if s.err != nil {
		return nil, s.err
	}
	return s.pick(files), nil
}

func dirtyRepo() *fakeGit {
	return &fakeGit{
		status: map[string]string{
			"":     " M a.ts\n?? b.txt",
			"a.ts": " M a.ts",
		},
		diff: map[string]string{
			"":     "diff --git a/a.ts b/a.ts\n+new",
			"a.ts": "diff --git a/a.ts b/a.ts\n+new",
		},
		log:       "abc123 Add parser",
		modified:  []string{"a.ts"},
		untracked: []string{"b.txt"},
	}
}

func newFlow(git *fakeGit, llm *fakeLLM, sel *fakeSelector, opts CommitOptions) (*CommitFlow, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	var selector selection.Selector
	if sel != nil {
		selector = sel
	}
	return newFlowWithSelector(git, llm, selector, opts, &out, &errOut)
}

func newFlowWithSelector(
	git *fakeGit, llm *fakeLLM, selector selection.Selector, opts CommitOptions, out, errOut *bytes.Buffer,
) (*CommitFlow, *bytes.Buffer, *bytes.Buffer) {
	opts.OutWriter = out
	opts.ErrWriter = errOut
	if opts.Model == "" {
		opts.Model = "xai/grok-4-fast-non-reasoning"
	}
	flow := NewCommitFlow(git, llm, selector, opts)
	flow.SetClipboard(func(string) error { return errors.New("no clipboard in tests") })
	return flow, out, errOut
}

func TestRun_CommitsAllChanges(t *testing.T) {
	git := dirtyRepo()
	llm := &fakeLLM{reply: "  Add parser support\n\nextra body"}
	flow, out, _ := newFlow(git, llm, nil, CommitOptions{})

	require.NoError(t, flow.Run(context.Background()))

	assert.Equal(t, []string{"rev-parse", "status", "diff", "log", "add .", "commit"}, git.calls)
	assert.Equal(t, "Add parser support", git.committed)
	assert.Empty(t, git.commitArgs)
	assert.Contains(t, out.String(), "Generated commit message: Add parser support\n")
	assert.Contains(t, out.String(), "Commit successful!\n")
	assert.Equal(t, []string{"xai/grok-4-fast-non-reasoning"}, llm.models)
}

func TestRun_NotARepository(t *testing.T) {
	git := &fakeGit{notRepo: true}
	llm := &fakeLLM{reply: "unused"}
	flow, _, _ := newFlow(git, llm, nil, CommitOptions{})

	err := flow.Run(context.Background())
	require.Error(t, err)
	assert.False(t, IsBenign(err))
	assert.Equal(t, []string{"rev-parse"}, git.calls)
	assert.Empty(t, llm.prompts)
}

func TestRun_NoChanges(t *testing.T) {
	git := &fakeGit{status: map[string]string{"": ""}}
	llm := &fakeLLM{reply: "unused"}
	flow, _, _ := newFlow(git, llm, nil, CommitOptions{})

	err := flow.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoChanges)
	assert.True(t, IsBenign(err))
	assert.Equal(t, []string{"rev-parse", "status"}, git.calls)
	assert.Empty(t, llm.prompts)
}

func TestRun_GenerationErrorStagesNothing(t *testing.T) {
	git := dirtyRepo()
	boom := errors.New("401 unauthorized")
	flow, _, _ := newFlow(git, &fakeLLM{err: boom}, nil, CommitOptions{})

	err := flow.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "generate commit message: 401 unauthorized")
	assert.False(t, IsBenign(err))
	assert.NotContains(t, git.calls, "add .")
	assert.NotContains(t, git.calls, "commit")
}

func TestRun_EmptyReplyIsAnError(t *testing.T) {
	git := dirtyRepo()
	flow, _, _ := newFlow(git, &fakeLLM{reply: "\n  \n"}, nil, CommitOptions{})

	err := flow.Run(context.Background())
	require.Error(t, err)
	assert.NotContains(t, git.calls, "add .")
}

func TestRun_StagingFailureSkipsCommit(t *testing.T) {
	git := dirtyRepo()
	git.addErr = errors.New("index.lock exists")
	flow, _, _ := newFlow(git, &fakeLLM{reply: "Add parser"}, nil, CommitOptions{})

	err := flow.Run(context.Background())
	assert.ErrorIs(t, err, git.addErr)
	assert.Contains(t, err.Error(), "failed to stage changes")
	assert.NotContains(t, git.calls, "commit")
}

func TestRun_CommitFailureLeavesIndexStaged(t *testing.T) {
	git := dirtyRepo()
	git.commitErr = errors.New("git commit failed: hook rejected")
	flow, out, _ := newFlow(git, &fakeLLM{reply: "Add parser"}, nil, CommitOptions{})

	err := flow.Run(context.Background())
	assert.ErrorIs(t, err, git.commitErr)
	assert.Contains(t, err.Error(), "commit failed")
	assert.True(t, git.addedAll)
	assert.Equal(t, "commit", git.calls[len(git.calls)-1])
	assert.NotContains(t, out.String(), "Commit successful!")
}

func TestRun_InteractiveExclusion(t *testing.T) {
	git := dirtyRepo()
	llm := &fakeLLM{reply: "Update a.ts"}
	sel := &fakeSelector{pick: func(files []string) []string {
		return files[:1]
	}}
	flow, _, errOut := newFlow(git, llm, sel, CommitOptions{Interactive: true})

	require.NoError(t, flow.Run(context.Background()))

	assert.Equal(t, []string{"a.ts", "b.txt"}, sel.shown)
	assert.Equal(t, []string{"a.ts"}, git.added)
	assert.False(t, git.addedAll)
	assert.Equal(t, []string{
		"rev-parse", "status", "diff", "log",
		"diff --name-only", "ls-files",
		"status a.ts", "diff a.ts",
		"add a.ts", "commit",
	}, git.calls)
	assert.Contains(t, errOut.String(), "Selected files: a.ts\n")

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Selected files:\na.ts\n")
}

func TestRun_ExclusionSpecStagesRemainder(t *testing.T) {
	git := dirtyRepo()
	var out, errOut, prompt bytes.Buffer
	sel := &selection.ExclusionSelector{In: strings.NewReader("2\n"), Out: &prompt}
	flow, _, _ := newFlowWithSelector(git, &fakeLLM{reply: "Update a.ts"}, sel, CommitOptions{Interactive: true}, &out, &errOut)

	require.NoError(t, flow.Run(context.Background()))

	assert.Contains(t, prompt.String(), "  1. a.ts\n  2. b.txt\n")
	assert.Equal(t, []string{"a.ts"}, git.added)
	assert.Contains(t, git.calls, "add a.ts")
}

func TestRun_ExclusionSpecRemovingEverything(t *testing.T) {
	git := dirtyRepo()
	llm := &fakeLLM{reply: "unused"}
	var out, errOut, prompt bytes.Buffer
	sel := &selection.ExclusionSelector{In: strings.NewReader("1-2\n"), Out: &prompt}
	flow, _, _ := newFlowWithSelector(git, llm, sel, CommitOptions{Interactive: true}, &out, &errOut)

	err := flow.Run(context.Background())
	assert.ErrorIs(t, err, ErrNothingSelected)
	assert.Empty(t, llm.prompts)
	assert.NotContains(t, git.calls, "commit")
	assert.Nil(t, git.added)
	assert.False(t, git.addedAll)
}

func TestRun_InteractiveNothingSelected(t *testing.T) {
	git := dirtyRepo()
	llm := &fakeLLM{reply: "unused"}
	sel := &fakeSelector{pick: func([]string) []string { return nil }}
	flow, _, _ := newFlow(git, llm, sel, CommitOptions{Interactive: true})

	err := flow.Run(context.Background())
	assert.ErrorIs(t, err, ErrNothingSelected)
	assert.True(t, IsBenign(err))
	assert.Empty(t, llm.prompts)
	for _, c := range git.calls {
		assert.False(t, strings.HasPrefix(c, "add"), "unexpected staging call %q", c)
		assert.NotEqual(t, "commit", c)
	}
}

func TestRun_InteractiveSelectorError(t *testing.T) {
	git := dirtyRepo()
	boom := errors.New("user aborted")
	flow, _, _ := newFlow(git, &fakeLLM{reply: "unused"}, &fakeSelector{err: boom}, CommitOptions{Interactive: true})

	err := flow.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsBenign(err))
}

func TestRun_InteractiveOnlyStagedChanges(t *testing.T) {
	git := &fakeGit{status: map[string]string{"": "M  a.ts"}}
	sel := &fakeSelector{pick: func(f []string) []string { return f }}
	flow, _, _ := newFlow(git, &fakeLLM{reply: "unused"}, sel, CommitOptions{Interactive: true})

	err := flow.Run(context.Background())
	assert.ErrorIs(t, err, ErrNothingSelected)
	assert.Nil(t, sel.shown)
}

func TestRun_DryRun(t *testing.T) {
	git := dirtyRepo()
	flow, out, errOut := newFlow(git, &fakeLLM{reply: "Add parser"}, nil, CommitOptions{DryRun: true})

	require.NoError(t, flow.Run(context.Background()))
	assert.Equal(t, []string{"rev-parse", "status", "diff", "log"}, git.calls)
	assert.Contains(t, out.String(), "Generated commit message: Add parser")
	assert.Contains(t, errOut.String(), "Dry run mode")
}

func TestRun_CopyToClipboard(t *testing.T) {
	git := dirtyRepo()
	flow, _, errOut := newFlow(git, &fakeLLM{reply: "Add parser"}, nil, CommitOptions{DryRun: true, Copy: true})

	var copied string
	flow.SetClipboard(func(s string) error {
		copied = s
		return nil
	})

	require.NoError(t, flow.Run(context.Background()))
	assert.Equal(t, "Add parser", copied)
	assert.Contains(t, errOut.String(), "copied to clipboard")
}

func TestRun_ClipboardFailureIsNotFatal(t *testing.T) {
	git := dirtyRepo()
	flow, _, errOut := newFlow(git, &fakeLLM{reply: "Add parser"}, nil, CommitOptions{Copy: true})

	require.NoError(t, flow.Run(context.Background()))
	assert.Contains(t, errOut.String(), "Warning: could not copy to clipboard")
	assert.Equal(t, "Add parser", git.committed)
}

func TestRun_NoVerify(t *testing.T) {
	git := dirtyRepo()
	flow, _, _ := newFlow(git, &fakeLLM{reply: "Add parser"}, nil, CommitOptions{NoVerify: true})

	require.NoError(t, flow.Run(context.Background()))
	assert.Equal(t, []string{"--no-verify"}, git.commitArgs)
}

func TestRun_PromptIsDeterministic(t *testing.T) {
	llm := &fakeLLM{reply: "Add parser"}
	for range 2 {
		flow, _, _ := newFlow(dirtyRepo(), llm, nil, CommitOptions{DryRun: true})
		require.NoError(t, flow.Run(context.Background()))
	}

	require.Len(t, llm.prompts, 2)
	assert.Equal(t, llm.prompts[0], llm.prompts[1])

	want, err := formatter.BuildPrompt(formatter.PromptInput{
		Status: " M a.ts\n?? b.txt",
		Diff:   "diff --git a/a.ts b/a.ts\n+new",
		Log:    "abc123 Add parser",
	}, formatter.PromptOptions{})
	require.NoError(t, err)
	assert.Equal(t, want, llm.prompts[0])
}

func TestIsBenign(t *testing.T) {
	assert.True(t, IsBenign(ErrNoChanges))
	assert.True(t, IsBenign(ErrNothingSelected))
	assert.False(t, IsBenign(errors.New("boom")))
	assert.False(t, IsBenign(nil))
}
