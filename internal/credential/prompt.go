package credential

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// TerminalPrompter asks for the key with a masked huh input when TTY is a
// terminal and falls back to reading a plain line from In otherwise.
// A *bufio.Reader passed as In is read directly so later readers sharing it
// see the remaining input.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
	// TTY defaults to In when In is an *os.File.
	TTY *os.File
}

func (p *TerminalPrompter) PromptAPIKey() (string, error) {
	in := p.In
	if in == nil {
		in = os.Stdin
	}
	out := p.Out
	if out == nil {
		out = os.Stderr
	}

	tty := p.TTY
	if tty == nil {
		tty, _ = in.(*os.File)
	}

	if tty != nil && term.IsTerminal(int(tty.Fd())) {
		var key string
		err := huh.NewInput().
			Title("Enter your AI Gateway API key").
			EchoMode(huh.EchoModePassword).
			Value(&key).
			Run()
		return key, err
	}

	fmt.Fprint(out, "Enter your AI Gateway API key: ")
	reader, ok := in.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(in)
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
