// Package formatter builds the generation prompt and normalises the model's reply.
package formatter

import (
	"strings"
	"unicode/utf8"
)

const truncatedMarker = "\n...(diff truncated)"

// PromptInput carries the inspected repository state for one run.
type PromptInput struct {
	Status string
	Diff   string
	Log    string
	// Files is the user's selection; empty means the whole working tree.
	Files           []string
	SelectionStatus string
	SelectionDiff   string
}

// PromptOptions selects the template and diff size limit.
type PromptOptions struct {
	Template     string
	MaxDiffBytes int
}

// BuildPrompt fills the configured template. It is a pure function of its
// inputs. When files were selected and the default template is configured,
// the per-file template is used instead.
func BuildPrompt(in PromptInput, opts PromptOptions) (string, error) {
	name := opts.Template
	if name == "" {
		name = TemplateDefault
	}
	if name == TemplateDefault && len(in.Files) > 0 {
		name = TemplateFiles
	}

	content, err := GetPromptTemplate(name)
	if err != nil {
		return "", err
	}

	data := TemplateData{
		Status:          in.Status,
		Diff:            truncateDiff(in.Diff, opts.MaxDiffBytes),
		Log:             in.Log,
		Files:           strings.Join(in.Files, "\n"),
		SelectionStatus: in.SelectionStatus,
		SelectionDiff:   truncateDiff(in.SelectionDiff, opts.MaxDiffBytes),
	}
	return RenderTemplate(content, data)
}

// FormatCommitMessage reduces a model reply to a single clean line.
func FormatCommitMessage(message string) string {
	for _, line := range strings.Split(message, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, "`\"'")
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

func truncateDiff(diff string, limit int) string {
	if limit <= 0 || len(diff) <= limit {
		return diff
	}
	return truncateToValidUTF8(diff, limit) + truncatedMarker
}

func truncateToValidUTF8(input string, maxBytes int) string {
	if len(input) <= maxBytes {
		return input
	}

	// Back up to the start of the rune straddling the limit, if any. Invalid
	// bytes earlier in the input are left alone.
	end := maxBytes
	for i := 0; i < utf8.UTFMax && end > 0; i++ {
		if utf8.RuneStart(input[end]) {
			break
		}
		end--
	}
	return input[:end]
}
