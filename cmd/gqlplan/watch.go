// Copyright 2019 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/xerrors"
)

const watchDebounce = 100 * time.Millisecond

// watch validates files, then validates them again whenever they or the
// schema change, until ctx is done.
func (a *app) watch(ctx context.Context, w io.Writer, files []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return xerrors.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	// Directories are watched instead of files so that editors that save by
	// renaming a new file into place are noticed.
	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, f := range append([]string{a.schemaPath}, files...) {
		watched[filepath.Clean(f)] = true
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return xerrors.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	run := func() {
		if _, err := a.validateFiles(ctx, w, nil, files); err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
	}
	run()
	a.logger.Info("watching for changes", "files", len(watched))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod || !watched[filepath.Clean(ev.Name)] {
				continue
			}
			a.logger.Debug("file changed", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watch error", "error", err)
		}
	}
}
