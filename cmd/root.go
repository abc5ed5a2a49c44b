package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/samzong/autocommit/internal/config"
	"github.com/samzong/autocommit/internal/formatter"
	"github.com/samzong/autocommit/internal/git"
	"github.com/samzong/autocommit/internal/guidelines"
	"github.com/samzong/autocommit/internal/llm"
	"github.com/samzong/autocommit/internal/summarizer"
	"github.com/samzong/autocommit/internal/ui"
	"github.com/samzong/autocommit/internal/workflow"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfgFile      string
	printMessage bool
	guildPath    string
	modelName    string
	verbose      bool
	configErr    error
	exitCode     int
	rootCmd      = &cobra.Command{
		Use:   "autocommit",
		Short: "autocommit - generate commit messages for staged changes",
		Long: "Generate a commit message for staged files and commit them. " +
			"Git will prompt you to edit the generated commit message.",
		Version: fmt.Sprintf("%s (built at %s)", Version, BuildTime),
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if guildPath == "" {
				return nil
			}
			return guidelines.CheckPath(guildPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}
			code, err := runAutocommit(cmd.Context())
			exitCode = code
			return handleErrors(err)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Seams for tests.
	newGitClient = func(logger io.Writer) workflow.GitClient {
		return git.NewClient(git.Options{Verbose: verbose, Logger: logger})
	}
	newCompleter = func(cfg *config.Config) summarizer.Completer {
		return llm.NewClient(llm.Options{ServerURL: cfg.ServerURL, APIKey: cfg.APIKey, Model: cfg.Model})
	}
	stdinIsTerminal = func() bool {
		return term.IsTerminal(int(os.Stdin.Fd()))
	}
)

// Execute runs the root command and returns the process exit code.
func Execute() (int, error) {
	exitCode = 0
	if err := rootCmd.Execute(); err != nil {
		return 1, err
	}
	return exitCode, nil
}

// SetContext sets the context commands run with.
func SetContext(ctx context.Context) {
	rootCmd.SetContext(ctx)
}

// RootCmd exposes the root command for documentation generation.
func RootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file path (default is $HOME/.autocommit.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Show debug logs and git commands")
	rootCmd.Flags().BoolVarP(&printMessage, "print-message", "p", false, "print message in place of performing commit")
	rootCmd.Flags().StringVarP(&guildPath, "guild-path", "g", "", "path to commit guildlines markdown file")
	rootCmd.Flags().StringVar(&modelName, "model", "", "Model to use (overrides config)")
	_ = rootCmd.MarkFlagFilename("guild-path", "md", "markdown")
}

func initConfig() {
	if cwd, err := os.Getwd(); err == nil {
		if err := config.LoadDotenv(cwd); err != nil {
			configErr = err
			return
		}
	}
	configErr = config.InitConfig(cfgFile)
}

func newLogger(w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{Out: w, NoColor: !ui.IsTerminal(w), TimeFormat: "15:04:05"}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

func handleErrors(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, workflow.ErrNoChanges) {
		fmt.Fprintln(outWriter(), workflow.NoChangesNotice)
		return nil
	}

	return err
}

func runAutocommit(ctx context.Context) (int, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return 1, err
	}
	if modelName != "" {
		cfg.Model = modelName
	}

	logger := newLogger(errWriter())

	rules, err := guidelines.Load(guildPath)
	if err != nil {
		return 1, err
	}
	prompts, err := formatter.LoadPrompts(cfg.PromptFile)
	if err != nil {
		return 1, err
	}
	logger.Debug().
		Str("server_url", cfg.ServerURL).
		Str("model", cfg.Model).
		Int("cutoff", cfg.Cutoff).
		Msg("configuration loaded")

	generator := summarizer.New(newCompleter(cfg), rules, cfg.Cutoff,
		summarizer.WithPrompts(prompts),
		summarizer.WithLogger(logger),
	)
	flow := workflow.NewCommitFlow(newGitClient(errWriter()), generator, workflow.CommitOptions{
		PrintMessage: printMessage,
		Edit:         cfg.Edit,
		Interactive:  stdinIsTerminal(),
		Stdin:        os.Stdin,
		OutWriter:    outWriter(),
		ErrWriter:    errWriter(),
		Logger:       logger,
	})
	return flow.Run(ctx)
}
