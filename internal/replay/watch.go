/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package replay

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher calls back when watched files change. Directories are watched
// rather than files so that editors which save by rename still trigger.
type Watcher struct {
	fs        *fsnotify.Watcher
	mu        sync.Mutex
	callbacks map[string]func(string)
	dirs      map[string]int
	debounce  time.Duration
	timers    map[string]*time.Timer
	logger    *slog.Logger
}

func NewWatcher(debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		fs:        fw,
		callbacks: make(map[string]func(string)),
		dirs:      make(map[string]int),
		debounce:  debounce,
		timers:    make(map[string]*time.Timer),
		logger:    logger,
	}, nil
}

// Watch registers callback for every file in files.
func (w *Watcher) Watch(files []string, callback func(string)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", f, err)
		}
		if _, dup := w.callbacks[abs]; !dup {
			dir := filepath.Dir(abs)
			if w.dirs[dir] == 0 {
				if err := w.fs.Add(dir); err != nil {
					return fmt.Errorf("watch %s: %w", dir, err)
				}
			}
			w.dirs[dir]++
		}
		w.callbacks[abs] = callback
	}
	return nil
}

// Start processes events until ctx is done or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.fs.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					w.changed(ev.Name)
				}
			case err, ok := <-w.fs.Errors:
				if !ok {
					return
				}
				if w.logger != nil {
					w.logger.Warn("watcher error", slog.Any("err", err))
				}
			}
		}
	}()
}

func (w *Watcher) changed(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	cb, ok := w.callbacks[abs]
	if !ok {
		return
	}
	if t, ok := w.timers[abs]; ok {
		t.Stop()
	}
	w.timers[abs] = time.AfterFunc(w.debounce, func() { cb(abs) })
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	return w.fs.Close()
}

// RemoveAll drops every watched file.
func (w *Watcher) RemoveAll() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for dir := range w.dirs {
		if err := w.fs.Remove(dir); err != nil {
			return err
		}
	}
	for _, t := range w.timers {
		t.Stop()
	}
	w.callbacks = make(map[string]func(string))
	w.dirs = make(map[string]int)
	w.timers = make(map[string]*time.Timer)
	return nil
}

// DefaultDebounce coalesces the burst of events a single save produces.
const DefaultDebounce = 150 * time.Millisecond

// Watch replays path once, then again whenever the script or its fixture
// changes, until ctx is done. Every run is reported through onReport; a
// script that fails to load reports its error and keeps watching.
func (r *Runner) Watch(ctx context.Context, path string, debounce time.Duration, onReport func(*Report, error)) error {
	w, err := NewWatcher(debounce, r.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	var (
		mu  sync.Mutex
		run func(string)
	)
	run = func(string) {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		files := []string{path}
		sc, err := LoadScript(path)
		if err == nil {
			if fp := sc.FixturePath(); fp != "" {
				files = append(files, fp)
			}
		}
		// re-register, the script may point at another fixture now
		_ = w.RemoveAll()
		if werr := w.Watch(files, run); werr != nil && err == nil {
			err = werr
		}
		if err != nil {
			onReport(nil, err)
			return
		}
		rep, _, err := r.Run(ctx, sc)
		onReport(rep, err)
	}
	run(path)
	w.Start(ctx)
	<-ctx.Done()
	return nil
}
