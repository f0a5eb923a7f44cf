// Package watcher polls a local state-set directory, fingerprints its JSON
// files, and pushes the bundle whenever the fingerprint changes.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sserrors "github.com/stateset/stateset/internal/errors"
	"github.com/stateset/stateset/internal/logger"
)

// emptyFingerprint is the sentinel for a directory with no JSON files.
const emptyFingerprint = "empty"

// PushFunc applies the watched directory's bundle to live state.
// Confirmation is already forced; errors are reported and the loop
// continues.
type PushFunc func(ctx context.Context, sourceDir string) error

// Config holds watcher settings.
type Config struct {
	SourceDir string
	Interval  time.Duration
	Once      bool
	Push      PushFunc
	Logger    logger.Logger
}

// Watcher runs the fingerprint-driven sync loop.
type Watcher struct {
	sourceDir string
	interval  time.Duration
	once      bool
	push      PushFunc
	log       logger.Logger

	lastFingerprint string
}

// NewWatcher validates the configuration and creates a watcher.
func NewWatcher(config Config) (*Watcher, error) {
	if config.Interval < time.Second {
		return nil, fmt.Errorf("minimum watch interval is 1 second")
	}
	if config.Push == nil {
		return nil, fmt.Errorf("watcher requires a push function")
	}

	return &Watcher{
		sourceDir: config.SourceDir,
		interval:  config.Interval,
		once:      config.Once,
		push:      config.Push,
		log:       config.Logger,
	}, nil
}

// Run executes the watch loop until the context is cancelled, or after one
// iteration in single-shot mode. A missing or non-directory source is
// fatal at start; fingerprint read errors afterwards are logged and the
// loop retries on the next interval.
func (w *Watcher) Run(ctx context.Context) error {
	stat, err := os.Stat(w.sourceDir)
	if err != nil {
		return sserrors.Newf(sserrors.ErrorTypeFileSystem, "watch source does not exist: %s", w.sourceDir).
			WithCause(err.Error()).
			WithSolutions("Run 'stateset pull' to materialize a state-set directory first")
	}
	if !stat.IsDir() {
		return sserrors.Newf(sserrors.ErrorTypeFileSystem, "watch source is not a directory: %s", w.sourceDir)
	}

	w.log.WithFields(map[string]any{
		"source":   w.sourceDir,
		"interval": w.interval.String(),
		"once":     w.once,
	}).Info("watch started")

	for {
		w.iterate(ctx)

		if w.once {
			return nil
		}

		select {
		case <-time.After(w.interval):
		case <-ctx.Done():
			w.log.Info("watch stopped")
			return ctx.Err()
		}
	}
}

// iterate performs one fingerprint-compare-push cycle.
func (w *Watcher) iterate(ctx context.Context) {
	fingerprint, err := Fingerprint(w.sourceDir)
	if err != nil {
		w.log.Error("fingerprint read failed", err)
		return
	}

	// The first iteration always counts as changed.
	if w.lastFingerprint != "" && fingerprint == w.lastFingerprint {
		return
	}
	w.lastFingerprint = fingerprint

	w.log.WithField("source", w.sourceDir).Info("change detected, pushing state")
	if err := w.push(ctx, w.sourceDir); err != nil {
		w.log.Error("push failed", err)
	}
}

// Fingerprint digests the metadata of every *.json file directly inside
// dir into one order-independent string: the sorted name:size:mtime
// triples joined together. An empty directory yields the "empty" sentinel.
func Fingerprint(dir string) (string, error) {
	stat, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !stat.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var parts []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		parts = append(parts, fmt.Sprintf("%s:%d:%d", entry.Name(), info.Size(), info.ModTime().UnixNano()))
	}

	if len(parts) == 0 {
		return emptyFingerprint, nil
	}

	sort.Strings(parts)
	return strings.Join(parts, ";"), nil
}
