package migrator

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/starford/postmigrate/internal/models"
)

// Event kinds passed to an EventCallback.
const (
	EventMigrated = "migrated"
	EventSkipped  = "skipped"
	EventRemoved  = "removed"
)

// EventCallback is called after a watcher-driven change.
type EventCallback func(kind string, o models.Outcome)

// Watch follows the input root with fsnotify and converts posts as they are
// created or edited until ctx is cancelled. Removed or renamed posts have
// their output and journal row deleted.
//
// New directories are added to the watch list. Rename events trigger a
// debounced reconciliation pass against the journal.
func (s *Service) Watch(ctx context.Context, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := s.in.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	s.logger.Info("watcher: started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time
	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			s.logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			s.reconcile(ctx, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						s.logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					s.migrateNewDir(ctx, ev.Name, cb)
					continue
				}
			}

			rel, ok := s.watchedRel(ev.Name)
			if !ok {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				s.migrateAndNotify(ctx, rel, cb)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path only; the new one arrives
				// as a Create if it stays under a watched directory.
				if err := s.Remove(ctx, rel); err != nil {
					s.logger.Warn("watcher: remove failed", slog.String("path", rel), slog.String("error", err.Error()))
					continue
				}
				if cb != nil {
					cb(EventRemoved, models.Outcome{Filename: path.Base(rel)})
				}
				if ev.Op&fsnotify.Rename != 0 {
					scheduleReconcile()
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// watchedRel maps an absolute event path to an input-relative path and
// reports whether it matches the include pattern.
func (s *Service) watchedRel(abs string) (string, bool) {
	rel, err := filepath.Rel(s.in.Root(), abs)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if ok, _ := doublestar.Match(s.opts.Include, rel); !ok {
		return "", false
	}
	return rel, true
}

func (s *Service) migrateAndNotify(ctx context.Context, rel string, cb EventCallback) {
	o, err := s.MigrateFile(ctx, rel)
	if err != nil {
		s.logger.Warn("watcher: migrate failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if cb == nil {
		return
	}
	switch o.Status {
	case models.StatusMigrated:
		cb(EventMigrated, o)
	case models.StatusSkipped:
		cb(EventSkipped, o)
	}
}

// reconcile removes journal rows whose source is gone and converts sources
// the journal does not know about yet.
func (s *Service) reconcile(ctx context.Context, cb EventCallback) {
	metas, err := s.in.List(s.opts.Include)
	if err != nil {
		s.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	known := map[string]string{}
	if s.journal != nil {
		if known, err = s.journal.Checksums(); err != nil {
			s.logger.Warn("reconcile: checksums failed", slog.String("error", err.Error()))
			return
		}
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		name := path.Base(m.Path)
		disk[name] = struct{}{}
		if known[name] == m.Checksum {
			continue
		}
		s.migrateAndNotify(ctx, m.Path, cb)
	}

	for name := range known {
		if _, ok := disk[name]; ok {
			continue
		}
		if err := s.Remove(ctx, name); err == nil {
			s.logger.Debug("reconcile: removed stale", slog.String("filename", name))
			if cb != nil {
				cb(EventRemoved, models.Outcome{Filename: name})
			}
		}
	}
}

// migrateNewDir converts any matching posts already inside a new directory.
func (s *Service) migrateNewDir(ctx context.Context, dir string, cb EventCallback) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if rel, ok := s.watchedRel(p); ok {
			s.migrateAndNotify(ctx, rel, cb)
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
