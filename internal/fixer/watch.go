package fixer

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settleDelay lets a burst of writes to one file finish before it is read.
const settleDelay = 100 * time.Millisecond

// Watch fixes files under dirs as they are written, until ctx is done.
// onFix, if not nil, is called after each fixed file.
func (f *Fixer) Watch(ctx context.Context, dirs []string, onFix func(Result)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := f.addTree(watcher, dir); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	f.Logger.Info("Watching for changes", zap.Strings("dirs", dirs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			f.handleFileEvent(watcher, event, onFix)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.Logger.Error("Watch error", zap.Error(err))
		}
	}
}

func (f *Fixer) addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && f.excluded(path) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func (f *Fixer) handleFileEvent(watcher *fsnotify.Watcher, event fsnotify.Event, onFix func(Result)) {
	if event.Has(fsnotify.Create) {
		// pick up new directories
		if err := f.addTree(watcher, event.Name); err != nil {
			f.Logger.Debug("Failed to watch new path", zap.String("path", event.Name), zap.Error(err))
		}
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !f.wanted(event.Name) {
		return
	}

	time.Sleep(settleDelay)
	res, err := f.Fix(event.Name)
	if err != nil {
		f.Logger.Error("Error processing file", zap.String("file", event.Name), zap.Error(err))
		return
	}
	if len(res.Edits) > 0 && onFix != nil {
		onFix(res)
	}
}
