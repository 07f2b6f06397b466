package formatter

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"text/template"

	"gopkg.in/yaml.v3"
)

// PromptTemplate is the on-disk shape of a custom template file.
type PromptTemplate struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
}

// TemplateData is what a prompt template can reference.
type TemplateData struct {
	Status          string
	Diff            string
	Log             string
	Files           string
	SelectionStatus string
	SelectionDiff   string
}

const (
	TemplateDefault = "default"
	TemplateFiles   = "files"
)

const messageRules = `Focus on the "why" and purpose of the changes, not just "what". Keep it under 72 characters.`

var builtinTemplates = map[string]string{
	TemplateDefault: `Generate a concise, imperative commit message (one line, starting with a verb like "Add", "Fix", "Update") based on the following:

Unstaged changes status:
{{.Status}}

Diff of changes:
{{.Diff}}

Recent commit history:
{{.Log}}

` + messageRules,

	TemplateFiles: `Generate a concise, imperative commit message (one line, starting with a verb like "Add", "Fix", "Update") for a commit containing only the selected files below:

Selected files:
{{.Files}}

Status of selected files:
{{.SelectionStatus}}

Diff of selected files:
{{.SelectionDiff}}

Working tree status:
{{.Status}}

Recent commit history:
{{.Log}}

` + messageRules,
}

// GetPromptTemplate resolves a built-in template name or a template file.
// YAML files use the PromptTemplate layout; any other content is taken verbatim.
func GetPromptTemplate(templateName string) (string, error) {
	if tpl, ok := builtinTemplates[templateName]; ok {
		return tpl, nil
	}

	content, err := os.ReadFile(templateName)
	if err != nil {
		return "", fmt.Errorf("could not find prompt template %q: %w", templateName, err)
	}

	var tpl PromptTemplate
	if err := yaml.Unmarshal(content, &tpl); err != nil || tpl.Template == "" {
		return string(content), nil
	}
	return tpl.Template, nil
}

func RenderTemplate(templateContent string, data TemplateData) (string, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("template parsing error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template rendering error: %w", err)
	}
	return buf.String(), nil
}

// BuiltinTemplateNames returns the built-in template names in sorted order.
func BuiltinTemplateNames() []string {
	names := make([]string, 0, len(builtinTemplates))
	for name := range builtinTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
