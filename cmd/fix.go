package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tokpat/internal/cache"
	"github.com/gnolang/tokpat/internal/fixer"
	"github.com/gnolang/tokpat/rewrite"
)

var (
	dryRun   bool
	watch    bool
	progress bool
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Apply rewrite rules to files",
	Long: `Applies the rules of the configured rule files to every matching file.
Example) tokpat fix --rules rules.yaml --ext .rs src/`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := newFixer(cmd)
		if err != nil {
			return err
		}
		if watch {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if f.Cache != nil {
				defer func() {
					if err := f.Cache.Save(); err != nil {
						logger.Warn("Failed to save cache", zap.Error(err))
					}
				}()
			}
			return f.Watch(ctx, args, func(res fixer.Result) {
				fmt.Fprintf(cmd.OutOrStdout(), "fixed %s (%d edits)\n", res.Path, len(res.Edits))
			})
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		summary, err := f.ProcessPaths(ctx, args)
		if err != nil {
			return err
		}
		printSummary(cmd, summary)
		if summary.Failed > 0 {
			return fmt.Errorf("%d files could not be fixed", summary.Failed)
		}
		return nil
	},
}

func newFixer(cmd *cobra.Command) (*fixer.Fixer, error) {
	rules, err := rewrite.LoadFiles(cfg.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	engine, err := rewrite.Compile(rules, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("Compiled rules", zap.Int("rules", engine.Len()), zap.String("hash", engine.Hash()))

	f := fixer.New(engine, logger)
	f.DryRun = dryRun
	f.Concurrency = cfg.Concurrency
	f.Extensions = cfg.Extensions
	f.Exclude = cfg.Exclude
	f.Progress = progress && !watch
	f.Out = cmd.OutOrStdout()

	if !cfg.NoCache {
		c, err := cache.New(cfg.CacheDir)
		if err != nil {
			logger.Warn("Cache disabled", zap.Error(err))
		} else {
			f.Cache = c
		}
	}
	return f, nil
}

func printSummary(cmd *cobra.Command, s *fixer.Summary) {
	verb := "applied"
	if dryRun {
		verb = "would apply"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d edits to %d of %d files (%d cached, %d failed)\n",
		verb, s.Edits, s.Changed, len(s.Results)+s.Failed, s.Cached, s.Failed)
}

func init() {
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the edits without applying them")
	fixCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep running and fix files as they change")
	fixCmd.Flags().BoolVar(&progress, "progress", true, "Show a progress bar")

	// read through the configuration, see internal/config
	fixCmd.Flags().StringSlice("rules", nil, "Rule files (default from config: rules.yaml)")
	fixCmd.Flags().StringSlice("ext", nil, "File extensions to fix when walking directories")
	fixCmd.Flags().StringSlice("exclude", nil, "Glob patterns of file or directory names to skip")
	fixCmd.Flags().Int("concurrency", 0, "Number of files fixed in parallel")
	fixCmd.Flags().String("cache-dir", "", "Directory of the fix cache")
	fixCmd.Flags().Bool("no-cache", false, "Do not skip files that were clean on the last run")
}
