package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samzong/aicommit/internal/config"
	"github.com/samzong/aicommit/internal/credential"
	"github.com/samzong/aicommit/internal/formatter"
	"github.com/samzong/aicommit/internal/git"
	"github.com/samzong/aicommit/internal/llm"
	"github.com/samzong/aicommit/internal/selection"
	"github.com/samzong/aicommit/internal/ui"
	"github.com/samzong/aicommit/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	cfgFile          string
	interactive      bool
	selectMode       string
	credentialSource string
	model            string
	dryRun           bool
	copyMessage      bool
	noVerify         bool
	verbose          bool
	configErr        error
	cmdContext       = context.Background()

	rootCmd = &cobra.Command{
		Use:   "aicommit",
		Short: "aicommit - AI commit message helper",
		Long: `aicommit inspects the working tree, asks a language model for a one-line ` +
			`commit message, optionally lets you pick the files to stage, then stages and commits.`,
		Version: fmt.Sprintf("%s (built at %s)", Version, BuildTime),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

// SetContext sets the context used for command execution.
func SetContext(ctx context.Context) {
	cmdContext = ctx
}

func Execute() error {
	return rootCmd.ExecuteContext(cmdContext)
}

// RootCmd exposes the command tree for documentation generation.
func RootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle (RunE -> outWriter/errWriter -> rootCmd).
	rootCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := checkConfigErr(); err != nil {
			return err
		}
		return handleErrors(runCommit(cmd), outWriter())
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Configuration file path (default is $XDG_CONFIG_HOME/aicommit/config.yaml)")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Choose which files to stage before committing")
	rootCmd.Flags().StringVar(&selectMode, "select-mode", "",
		"File selection style with --interactive: exclude (type numbers to drop) or pick (checkbox list)")
	rootCmd.Flags().StringVar(&credentialSource, "credential-source", "",
		"Where to read the API key: env or file")
	rootCmd.Flags().StringVarP(&model, "model", "m", "", "Model identifier sent to the gateway")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Generate message only, do not stage or commit")
	rootCmd.Flags().BoolVar(&copyMessage, "copy", false, "Copy the generated message to the clipboard")
	rootCmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip pre-commit hooks")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "V", false, "Show git commands as they run")

	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	configErr = config.InitConfig(cfgFile)
}

// checkConfigErr reports a config file that failed to load. Commands must
// call it before reading or writing configuration.
func checkConfigErr() error {
	if configErr != nil {
		return fmt.Errorf("configuration error: %w", configErr)
	}
	return nil
}

func outWriter() io.Writer {
	return rootCmd.OutOrStdout()
}

func errWriter() io.Writer {
	return rootCmd.ErrOrStderr()
}

// handleErrors turns the benign "nothing to do" outcomes into a notice and
// a successful exit.
func handleErrors(err error, out io.Writer) error {
	if err == nil {
		return nil
	}

	printer := ui.NewPrinter(out, errWriter())
	switch {
	case errors.Is(err, workflow.ErrNoChanges):
		printer.Noticef("No changes to commit.")
		return nil
	case errors.Is(err, workflow.ErrNothingSelected):
		printer.Noticef("No files selected. Nothing to commit.")
		return nil
	}
	return err
}

// applyFlagOverrides copies explicitly set flags over the loaded configuration.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("interactive") {
		cfg.Interactive = interactive
	}
	if flags.Changed("select-mode") {
		cfg.SelectMode = selectMode
	}
	if flags.Changed("credential-source") {
		cfg.CredentialSource = credentialSource
	}
	if flags.Changed("model") {
		cfg.Model = model
	}
}

func newSelector(cfg *config.Config, in *bufio.Reader) selection.Selector {
	if cfg.SelectMode == config.SelectModePick {
		return selection.PickSelector{}
	}
	return &selection.ExclusionSelector{In: in, Out: errWriter()}
}

// newCredentialLoader reads a piped key from in. The same reader must be
// handed to newSelector.
func newCredentialLoader(cfg *config.Config, in *bufio.Reader) (*credential.Loader, error) {
	source, err := credential.ParseSource(cfg.CredentialSource)
	if err != nil {
		return nil, err
	}

	loader := &credential.Loader{
		Source:    source,
		EnvVar:    cfg.APIKeyEnv,
		KeyFile:   cfg.KeyFile,
		Prompter:  &credential.TerminalPrompter{In: in, Out: errWriter(), TTY: os.Stdin},
		ErrWriter: errWriter(),
	}
	if source == credential.SourceEnv {
		loader.DotEnvFile = ".env"
	}
	return loader, nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !config.IsValidModel(cfg.Model) {
		return nil, errors.New("model must not be empty")
	}
	return cfg, nil
}

func runCommit(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	stdin := bufio.NewReader(os.Stdin)
	loader, err := newCredentialLoader(cfg, stdin)
	if err != nil {
		return err
	}
	apiKey, err := loader.Load()
	if err != nil {
		return err
	}

	gitClient := git.NewClient(git.Options{Verbose: verbose})
	llmClient := llm.NewClient(llm.Options{
		APIKey:  apiKey,
		APIBase: cfg.APIBase,
		Timeout: time.Duration(cfg.Timeout) * time.Second,
	})

	flow := workflow.NewCommitFlow(gitClient, llmClient, newSelector(cfg, stdin), workflow.CommitOptions{
		Interactive: cfg.Interactive,
		DryRun:      dryRun,
		Copy:        copyMessage,
		NoVerify:    noVerify,
		Model:       cfg.Model,
		Prompt: formatter.PromptOptions{
			Template:     cfg.PromptTemplate,
			MaxDiffBytes: cfg.MaxDiffBytes,
		},
		OutWriter: outWriter(),
		ErrWriter: errWriter(),
	})
	return flow.Run(cmd.Context())
}
