// Package fixer applies a compiled rule set to files on disk.
package fixer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/gnolang/tokpat/internal/cache"
	"github.com/gnolang/tokpat/rewrite"
)

type Fixer struct {
	Engine *rewrite.Engine
	Logger *zap.Logger
	// Cache may be nil.
	Cache *cache.Cache

	// DryRun prints the edits to Out instead of writing files.
	DryRun      bool
	Concurrency int
	// Extensions selects files during directory walks. Files named
	// explicitly are always processed.
	Extensions []string
	// Exclude holds glob patterns matched against base names.
	Exclude  []string
	Progress bool
	Out      io.Writer

	outMu sync.Mutex
}

func New(engine *rewrite.Engine, logger *zap.Logger) *Fixer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fixer{
		Engine:      engine,
		Logger:      logger,
		Concurrency: runtime.NumCPU(),
		Extensions:  []string{".rs"},
		Out:         os.Stdout,
	}
}

// Result is the outcome of fixing one file.
type Result struct {
	Path  string
	Edits []rewrite.Edit
	// Cached is set when the file was skipped as already clean.
	Cached bool
}

// Fix rewrites one file.
func (f *Fixer) Fix(path string) (Result, error) {
	res := Result{Path: path}
	if f.Cache != nil && f.Cache.Fresh(path, f.Engine.Hash()) {
		res.Cached = true
		return res, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return res, fmt.Errorf("failed to stat file: %w", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("failed to read file: %w", err)
	}

	src := string(content)
	out, edits, err := f.Engine.RewriteSource(src)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	res.Edits = edits

	if len(edits) == 0 {
		if f.Cache != nil {
			if err := f.Cache.Record(path, f.Engine.Hash()); err != nil {
				f.Logger.Warn("Failed to record file in cache", zap.String("file", path), zap.Error(err))
			}
		}
		return res, nil
	}

	if f.DryRun {
		f.printEdits(path, src, edits)
		return res, nil
	}

	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return res, fmt.Errorf("failed to write file: %w", err)
	}
	f.Logger.Info("Fixed file", zap.String("file", path), zap.Int("edits", len(edits)))
	return res, nil
}

func (f *Fixer) wanted(path string) bool {
	return slices.Contains(f.Extensions, filepath.Ext(path)) && !f.excluded(path)
}

func (f *Fixer) excluded(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range f.Exclude {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
