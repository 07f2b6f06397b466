package cmd

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/samzong/aicommit/internal/config"
	"github.com/samzong/aicommit/internal/credential"
	"github.com/samzong/aicommit/internal/formatter"
	"github.com/samzong/aicommit/internal/llm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage aicommit configuration",
	}

	configGetCmd = &cobra.Command{
		Use:   "get",
		Short: "Show the current configuration",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := checkConfigErr(); err != nil {
				return err
			}
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			printConfig(cfg)
			return nil
		},
	}

	configSetCmd = &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a configuration value",
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.SettableKeys(),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := checkConfigErr(); err != nil {
				return err
			}
			if err := config.SetFromString(args[0], args[1]); err != nil {
				return err
			}
			if err := config.SaveConfig(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			fmt.Fprintf(outWriter(), "Set %s to %s\n", args[0], args[1])
			return nil
		},
	}

	configCheckCmd = &cobra.Command{
		Use:   "check",
		Short: "Send a test request to the text generation gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkConfigErr(); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			loader, err := newCredentialLoader(cfg, bufio.NewReader(os.Stdin))
			if err != nil {
				return err
			}
			apiKey, err := loader.Load()
			if err != nil {
				return err
			}

			client := llm.NewClient(llm.Options{
				APIKey:  apiKey,
				APIBase: cfg.APIBase,
				Timeout: time.Duration(cfg.Timeout) * time.Second,
			})
			fmt.Fprintf(errWriter(), "Testing %s at %s...\n", cfg.Model, cfg.APIBase)
			if err := client.TestConnection(cmd.Context(), cfg.Model); err != nil {
				return fmt.Errorf("connection test failed: %w", err)
			}
			fmt.Fprintln(outWriter(), "Connection test succeeded.")
			return nil
		},
	}
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configCheckCmd)
}

func printConfig(cfg *config.Config) {
	out := outWriter()

	keyFile := cfg.KeyFile
	if keyFile == "" {
		if path, err := credential.DefaultKeyFile(); err == nil {
			keyFile = path
		}
	}
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = "<none>"
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "Config file: %s\n", configFile)
	fmt.Fprintf(out, "Model: %s\n", cfg.Model)
	fmt.Fprintf(out, "API base URL: %s\n", cfg.APIBase)
	fmt.Fprintf(out, "Credential source: %s\n", cfg.CredentialSource)
	fmt.Fprintf(out, "API key env var: %s\n", cfg.APIKeyEnv)
	fmt.Fprintf(out, "Key file: %s\n", keyFile)
	fmt.Fprintf(out, "Interactive: %t\n", cfg.Interactive)
	fmt.Fprintf(out, "Select mode: %s\n", cfg.SelectMode)
	fmt.Fprintf(out, "Prompt template: %s (built-in: %v)\n", cfg.PromptTemplate, formatter.BuiltinTemplateNames())
	if cfg.Timeout > 0 {
		fmt.Fprintf(out, "Timeout: %ds\n", cfg.Timeout)
	} else {
		fmt.Fprintln(out, "Timeout: <none>")
	}
	if cfg.MaxDiffBytes > 0 {
		fmt.Fprintf(out, "Max diff bytes: %d\n", cfg.MaxDiffBytes)
	} else {
		fmt.Fprintln(out, "Max diff bytes: <unlimited>")
	}
	fmt.Fprintf(out, "Suggested models: %v\n", config.GetSuggestedModels())
}
