package main

import (
	"fmt"
	"path/filepath"

	"github.com/spboyer/taskqa/internal/cache"
	"github.com/spboyer/taskqa/internal/projectconfig"
	"github.com/spf13/cobra"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the encoder vector cache",
		Long: `Manage the encoder vector cache.

The cache stores text embeddings so that repeated validation runs over the
same corpus do not call the encoder again. Vectors are keyed by encoder model
and text.`,
	}

	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheClearCommand() *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the encoder vector cache",
		Long: `Clear all cached vectors.

The next validation run will encode every text again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := cacheDir
			if !cmd.Flags().Changed("cache-dir") {
				cfg, err := projectconfig.Load(".")
				if err != nil {
					return err
				}
				dir = cfg.Cache.Dir
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving cache directory: %w", err)
			}

			if err := cache.New(absDir).Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", absDir) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&cacheDir, "cache-dir", projectconfig.DefaultCacheDir, "Cache directory to clear")

	return cmd
}
