package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/samzong/aicommit/internal/formatter"
	"github.com/samzong/aicommit/internal/selection"
	"github.com/samzong/aicommit/internal/ui"
)

var (
	ErrNoChanges       = errors.New("no changes to commit")
	ErrNothingSelected = errors.New("no files selected")
)

// DefaultLogLimit is how many recent commits the prompt includes.
const DefaultLogLimit = 5

// IsBenign reports whether err ends a run without anything to do.
func IsBenign(err error) bool {
	return errors.Is(err, ErrNoChanges) || errors.Is(err, ErrNothingSelected)
}

type CommitOptions struct {
	Interactive bool
	DryRun      bool
	Copy        bool
	NoVerify    bool
	Model       string
	Prompt      formatter.PromptOptions
	LogLimit    int
	OutWriter   io.Writer
	ErrWriter   io.Writer
}

type CommitFlow struct {
	git       GitClient
	llm       LLMClient
	selector  selection.Selector
	opts      CommitOptions
	printer   *ui.Printer
	clipboard func(string) error
}

func NewCommitFlow(git GitClient, llm LLMClient, selector selection.Selector, opts CommitOptions) *CommitFlow {
	if opts.LogLimit <= 0 {
		opts.LogLimit = DefaultLogLimit
	}
	if opts.OutWriter == nil {
		opts.OutWriter = os.Stdout
	}
	if opts.ErrWriter == nil {
		opts.ErrWriter = os.Stderr
	}
	return &CommitFlow{
		git:       git,
		llm:       llm,
		selector:  selector,
		opts:      opts,
		printer:   ui.NewPrinter(opts.OutWriter, opts.ErrWriter),
		clipboard: clipboard.WriteAll,
	}
}

// SetClipboard replaces the clipboard writer used by --copy.
func (f *CommitFlow) SetClipboard(fn func(string) error) {
	f.clipboard = fn
}

// Run inspects, generates, stages and commits, strictly in that order.
// Every step blocks until the previous one has finished.
func (f *CommitFlow) Run(ctx context.Context) error {
	if err := f.git.IsInsideWorkTree(); err != nil {
		return err
	}

	status, err := f.git.Status()
	if err != nil {
		return err
	}
	if status == "" {
		return ErrNoChanges
	}

	input := formatter.PromptInput{Status: status}
	if input.Diff, err = f.git.Diff(); err != nil {
		return err
	}
	input.Log = f.git.RecentLog(f.opts.LogLimit)

	var selected []string
	if f.opts.Interactive {
		selected, err = f.selectFiles()
		if err != nil {
			return err
		}
		input.Files = selected
		if input.SelectionStatus, err = f.git.Status(selected...); err != nil {
			return err
		}
		if input.SelectionDiff, err = f.git.Diff(selected...); err != nil {
			return err
		}
	}

	message, err := f.generateCommitMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("generate commit message: %w", err)
	}
	f.printer.Successf("Generated commit message: %s", message)

	if f.opts.Copy {
		f.copyMessage(message)
	}

	if f.opts.DryRun {
		fmt.Fprintln(f.opts.ErrWriter, "Dry run mode, no actual commit")
		return nil
	}

	if err := f.stage(selected); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}

	if err := f.git.Commit(message, f.buildCommitArgs()...); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}

	f.printer.Successf("Commit successful!")
	return nil
}

func (f *CommitFlow) selectFiles() ([]string, error) {
	modified, err := f.git.ModifiedFiles()
	if err != nil {
		return nil, err
	}
	untracked, err := f.git.UntrackedFiles()
	if err != nil {
		return nil, err
	}

	candidates := selection.Candidates(modified, untracked)
	if len(candidates) == 0 {
		return nil, ErrNothingSelected
	}

	selected, err := f.selector.Select(candidates)
	if err != nil {
		return nil, fmt.Errorf("file selection failed: %w", err)
	}
	if len(selected) == 0 {
		return nil, ErrNothingSelected
	}
	fmt.Fprintf(f.opts.ErrWriter, "Selected files: %s\n", strings.Join(selected, ", "))
	return selected, nil
}

func (f *CommitFlow) generateCommitMessage(ctx context.Context, input formatter.PromptInput) (string, error) {
	prompt, err := formatter.BuildPrompt(input, f.opts.Prompt)
	if err != nil {
		return "", err
	}

	sp := ui.NewSpinner(f.opts.ErrWriter, "Generating commit message...")
	sp.Start()
	reply, err := f.llm.GenerateCommitMessage(ctx, prompt, f.opts.Model)
	sp.Stop()
	if err != nil {
		return "", err
	}

	message := formatter.FormatCommitMessage(reply)
	if message == "" {
		return "", errors.New("model returned no usable commit message")
	}
	return message, nil
}

func (f *CommitFlow) stage(selected []string) error {
	if len(selected) == 0 {
		return f.git.AddAll()
	}
	return f.git.Add(selected)
}

func (f *CommitFlow) copyMessage(message string) {
	if err := f.clipboard(message); err != nil {
		fmt.Fprintf(f.opts.ErrWriter, "Warning: could not copy to clipboard: %v\n", err)
		return
	}
	fmt.Fprintln(f.opts.ErrWriter, "Commit message copied to clipboard.")
}

func (f *CommitFlow) buildCommitArgs() []string {
	var args []string
	if f.opts.NoVerify {
		args = append(args, "--no-verify")
	}
	return args
}
