package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchInbox watches dir and imports markdown files dropped into it until ctx
// is cancelled. A file is only picked up once the inbox has been quiet for
// settle, so half-copied files are not read. Imported files are renamed with
// an ".imported" suffix; content already imported is not imported again.
func (i *Importer) WatchInbox(ctx context.Context, dir string, settle time.Duration) error {
	if settle <= 0 {
		settle = 500 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("importer: watch inbox: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("importer: watch %s: %w", dir, err)
	}

	i.log.Info("importer: inbox started", slog.String("dir", dir))

	// Digests of content already imported this run.
	seen := make(map[string]struct{})

	// Files dropped while nothing was watching.
	i.sweep(ctx, dir, seen)

	pending := make(map[string]struct{})
	var settleTimer *time.Timer
	var settleCh <-chan time.Time

	schedule := func() {
		if settleTimer == nil {
			settleTimer = time.NewTimer(settle)
			settleCh = settleTimer.C
		} else {
			settleTimer.Reset(settle)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			i.log.Info("importer: inbox stopped")
			return nil

		case <-settleCh:
			for path := range pending {
				i.importPath(ctx, path, seen)
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !importable(ev.Name) {
				continue
			}
			pending[ev.Name] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			i.log.Error("importer: watch error", slog.String("error", watchErr.Error()))
		}
	}
}

// sweep imports every importable file already sitting in dir.
func (i *Importer) sweep(ctx context.Context, dir string, seen map[string]struct{}) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		i.log.Warn("importer: inbox scan failed", slog.String("dir", dir), slog.String("error", err.Error()))
		return
	}
	for _, e := range entries {
		if e.IsDir() || !importable(e.Name()) {
			continue
		}
		i.importPath(ctx, filepath.Join(dir, e.Name()), seen)
	}
}

// importPath reads, dedupes, imports, and moves one file aside. On import
// failure the file is left in place so a later drop can retry it.
func (i *Importer) importPath(ctx context.Context, path string, seen map[string]struct{}) {
	raw, err := os.ReadFile(path)
	if err != nil {
		i.log.Warn("importer: read failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}

	sum := digest(raw)
	if _, dup := seen[sum]; dup {
		i.log.Debug("importer: duplicate content skipped", slog.String("path", path))
		i.moveAside(path)
		return
	}

	if _, err := i.FromFile(ctx, path, raw); err != nil {
		i.log.Error("importer: import failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}

	seen[sum] = struct{}{}
	i.moveAside(path)
}

func (i *Importer) moveAside(path string) {
	if err := os.Rename(path, path+".imported"); err != nil {
		i.log.Warn("importer: move aside failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}

// importable reports whether name looks like a markdown drop. Files already
// moved aside end in ".imported" and never match.
func importable(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".txt":
		return true
	}
	return false
}

func digest(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
