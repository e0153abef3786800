// Package inbox watches a drop directory for incoming documents.
package inbox

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ArrivalFunc is called once per document that lands in the inbox.
type ArrivalFunc func(path string)

// settleDelay gives the copying process time to finish before the
// arrival is announced.
const settleDelay = 500 * time.Millisecond

// Watch starts an fsnotify watcher on the inbox directory and calls cb
// for each PDF that appears, until ctx is cancelled. The inbox is flat;
// subdirectories are ignored.
func Watch(ctx context.Context, dir string, logger *slog.Logger, cb ArrivalFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("inbox: watching", slog.String("dir", dir))

	// pending tracks paths seen in Create/Write events; each gets a
	// settle timer so a half-copied file is not announced.
	pending := make(map[string]*time.Timer)
	settled := make(chan string, 16)

	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("inbox: stopped")
			return nil

		case path := <-settled:
			delete(pending, path)
			info, statErr := os.Stat(path)
			if statErr != nil || info.IsDir() {
				continue
			}
			logger.Debug("inbox: document arrived", slog.String("path", path))
			if cb != nil {
				cb(path)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".pdf") {
				continue
			}
			path := ev.Name
			if t, exists := pending[path]; exists {
				t.Reset(settleDelay)
				continue
			}
			pending[path] = time.AfterFunc(settleDelay, func() {
				select {
				case settled <- path:
				case <-ctx.Done():
				}
			})

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("inbox: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
