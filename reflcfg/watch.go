/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package reflcfg

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/svxreflector/goreflector/logger"
)

// debounce coalesces the write+chmod+rename burst a single `CFG` edit (or
// an editor's save-by-rename) produces into one Reload.
const debounce = 250 * time.Millisecond

// Watch follows the config file's directory (not the file itself: many
// editors replace the file with a rename, which would orphan an inotify
// watch on the old inode) and reloads on any event touching it. Watch
// returns once the watcher is armed; it runs until ctx-independent stop
// is requested by closing the returned stop channel.
func (s *Store) Watch() (stop chan<- struct{}, err error) {
	w, werr := fsnotify.NewWatcher()
	if werr != nil {
		return nil, werr
	}
	dir := filepath.Dir(s.path)
	if werr := w.Add(dir); werr != nil {
		_ = w.Close()
		return nil, werr
	}

	stopCh := make(chan struct{})
	go s.watchLoop(w, stopCh)
	return stopCh, nil
}

func (s *Store) watchLoop(w *fsnotify.Watcher, stop <-chan struct{}) {
	defer w.Close()

	var timer *time.Timer
	target := filepath.Base(s.path)

	for {
		select {
		case <-stop:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				if err := s.Reload(); err != nil {
					logger.ErrorLevel.Logf("config reload failed: %s", err.Error())
				}
			})
		case werr, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.WarnLevel.Logf("config watcher error: %s", werr.Error())
		}
	}
}
