package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taskqa",
		Short: "taskqa - quality checks for task-extraction training data",
		Long: `taskqa validates synthetic meeting-transcript training samples.

Each JSON-Lines sample pairs a transcript with the tasks a model should
extract from it. taskqa checks the output schema, task owners, deadlines,
and topical similarity, scores every sample, reports duplicate transcripts,
and splits the corpus into kept and filtered files.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newDedupeCommand())
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newCacheCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
