package fixer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Summary aggregates the results of a batch.
type Summary struct {
	Results []Result
	Changed int
	Edits   int
	Cached  int
	Failed  int
}

// Files expands paths into the list of files to fix. Directories are
// walked for files with a wanted extension; excluded directories are
// skipped.
func (f *Fixer) Files(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != path && f.excluded(p) {
					return filepath.SkipDir
				}
				return nil
			}
			if f.wanted(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking %s: %w", path, err)
		}
	}
	sort.Strings(files)
	return slices.Compact(files), nil
}

// ProcessPaths fixes every file under paths using up to f.Concurrency
// workers. A file that fails is logged and counted; the batch goes on.
func (f *Fixer) ProcessPaths(ctx context.Context, paths []string) (*Summary, error) {
	files, err := f.Files(paths)
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if f.Progress {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("fixing"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	var mu sync.Mutex
	summary := &Summary{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(f.Concurrency, 1))
	for _, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := f.Fix(file)

			mu.Lock()
			defer mu.Unlock()
			if bar != nil {
				_ = bar.Add(1)
			}
			if err != nil {
				f.Logger.Error("Error processing file", zap.String("file", file), zap.Error(err))
				summary.Failed++
				return nil
			}
			summary.Results = append(summary.Results, res)
			summary.Edits += len(res.Edits)
			if len(res.Edits) > 0 {
				summary.Changed++
			}
			if res.Cached {
				summary.Cached++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(summary.Results, func(i, j int) bool {
		return summary.Results[i].Path < summary.Results[j].Path
	})

	if f.Cache != nil {
		if err := f.Cache.Save(); err != nil {
			f.Logger.Warn("Failed to save cache", zap.Error(err))
		}
	}
	return summary, nil
}
