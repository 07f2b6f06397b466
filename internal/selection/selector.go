package selection

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

// ExclusionSelector lists the files and reads a free-text exclusion spec.
// A *bufio.Reader passed as In is read directly rather than wrapped.
type ExclusionSelector struct {
	In  io.Reader
	Out io.Writer
}

func (s *ExclusionSelector) Select(files []string) ([]string, error) {
	in := s.In
	if in == nil {
		in = os.Stdin
	}
	out := s.Out
	if out == nil {
		out = os.Stderr
	}

	fmt.Fprintln(out, "Files to commit:")
	for i, f := range files {
		fmt.Fprintf(out, "  %d. %s\n", i+1, f)
	}
	fmt.Fprint(out, "Enter numbers to exclude (e.g. 1,3 or 2-4), or press Enter to keep all: ")

	reader, ok := in.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(in)
	}
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}

	return ApplyExclusions(files, ParseExclusions(strings.TrimSpace(line), len(files))), nil
}

// PickSelector shows a checkbox list with every file pre-selected.
type PickSelector struct{}

func (PickSelector) Select(files []string) ([]string, error) {
	options := make([]huh.Option[string], 0, len(files))
	for _, f := range files {
		options = append(options, huh.NewOption(f, f).Selected(true))
	}

	var selected []string
	err := huh.NewMultiSelect[string]().
		Title("Select files to commit").
		Options(options...).
		Value(&selected).
		Run()
	if err != nil {
		return nil, err
	}
	return selected, nil
}
