package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spboyer/taskqa/internal/projectconfig"
	"github.com/spboyer/taskqa/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var (
		yes   bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a .taskqa.yaml project configuration",
		Long: `Create a .taskqa.yaml with thresholds, penalties, encoder, cache, and
report settings.

A guided form collects the encoder and threshold settings. Use --yes to
write the defaults without prompting.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return initCommandE(cmd, dir, yes, force)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Write defaults without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing .taskqa.yaml")

	return cmd
}

func initCommandE(cmd *cobra.Command, dir string, yes, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	target := filepath.Join(dir, projectconfig.FileName)
	if _, err := os.Stat(target); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", target)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", target, err)
	}

	cfg := projectconfig.New()
	if !yes {
		var err error
		cfg, err = wizard.RunConfigWizard(cmd.InOrStdin(), cmd.OutOrStdout(), cfg)
		if err != nil {
			return err
		}
	}

	p, err := projectconfig.Save(dir, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", p) //nolint:errcheck
	return nil
}
