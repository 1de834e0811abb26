package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/cours-de-latin/cartula"
)

// reloader owns the catalog in service and rebuilds it when the
// configuration file or one of its tables changes on disk.
type reloader struct {
	path   string
	logger *zap.Logger

	// debounce batches the bursts of events editors emit on save.
	debounce time.Duration

	current atomic.Pointer[cartula.Catalog]

	// files and dirs are only touched by reload, which runs before watch
	// starts and afterwards only on the watch goroutine.
	files map[string]bool
	dirs  map[string]bool
}

func newReloader(path string, logger *zap.Logger) (*reloader, error) {
	r := &reloader{
		path:     path,
		logger:   logger,
		debounce: 250 * time.Millisecond,
	}
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Catalog returns the catalog currently in service.
func (r *reloader) Catalog() *cartula.Catalog {
	return r.current.Load()
}

// reload builds a fresh catalog. On failure the previous one stays in
// service.
func (r *reloader) reload() error {
	cfg, err := cartula.LoadConfig(r.path)
	if err != nil {
		return err
	}
	c, err := cartula.Load(cfg, cartula.WithLogger(r.logger))
	if err != nil {
		return err
	}

	files := map[string]bool{absPath(r.path): true}
	for _, t := range cfg.Tables {
		files[absPath(cfg.TablePath(t))] = true
	}
	dirs := make(map[string]bool)
	for f := range files {
		dirs[filepath.Dir(f)] = true
	}
	r.files, r.dirs = files, dirs
	r.current.Store(c)
	return nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// watch reloads on change until ctx is done.
func (r *reloader) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	watched := make(map[string]bool)
	addDirs := func() {
		for d := range r.dirs {
			if watched[d] {
				continue
			}
			if err := w.Add(d); err != nil {
				r.logger.Warn("cannot watch directory", zap.String("dir", d), zap.Error(err))
				continue
			}
			watched[d] = true
		}
	}
	addDirs()
	r.logger.Info("watching catalog sources", zap.Int("files", len(r.files)))

	timer := time.NewTimer(r.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !r.files[absPath(ev.Name)] {
				continue
			}
			r.logger.Debug("source changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			timer.Reset(r.debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			if err := r.reload(); err != nil {
				r.logger.Error("reload failed, keeping previous catalog", zap.Error(err))
				continue
			}
			addDirs()
			r.logger.Info("catalog reloaded", zap.Strings("tables", r.Catalog().Tables()))
		}
	}
}
