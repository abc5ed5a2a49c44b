package cmd

import (
	"fmt"

	"github.com/samzong/autocommit/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration autocommit would run with, after reading
.env, the environment and the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return fmt.Errorf("configuration error: %w", configErr)
		}
		cfg, err := config.GetConfig()
		if err != nil {
			return err
		}

		out := outWriter()
		fmt.Fprintln(out, "Current configuration:")
		fmt.Fprintf(out, "Server URL: %s\n", cfg.ServerURL)
		fmt.Fprintf(out, "Model: %s\n", cfg.Model)
		fmt.Fprintln(out, "API Key: ********")
		fmt.Fprintf(out, "Cutoff: %d\n", cfg.Cutoff)
		fmt.Fprintf(out, "Open editor: %t\n", cfg.Edit)
		if cfg.PromptFile != "" {
			fmt.Fprintf(out, "Prompt file: %s\n", cfg.PromptFile)
		} else {
			fmt.Fprintln(out, "Prompt file: <built-in>")
		}
		if used := config.ConfigFileUsed(); used != "" {
			fmt.Fprintf(out, "Config file: %s\n", used)
		} else {
			fmt.Fprintln(out, "Config file: <none>")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
