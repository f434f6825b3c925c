//go:build linux

package eviction

import (
	"path/filepath"
	"sync"

	"github.com/hawkingrei/inostream/inotify"
)

// watchPaths maps the watches of one channel back to the directories they
// were added for, so event names can be turned into full paths.
type watchPaths struct {
	mu   sync.RWMutex
	dirs map[inotify.Watch]string
}

func newWatchPaths() *watchPaths {
	return &watchPaths{dirs: make(map[inotify.Watch]string)}
}

func (p *watchPaths) add(w inotify.Watch, dir string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirs[w] = filepath.Clean(dir)
}

func (p *watchPaths) remove(w inotify.Watch) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.dirs, w)
}

// resolve returns the path an event refers to. Events about the watched
// directory itself resolve to the directory.
func (p *watchPaths) resolve(ev inotify.Event) (string, bool) {
	p.mu.RLock()
	dir, ok := p.dirs[ev.Watch]
	p.mu.RUnlock()
	if !ok {
		return "", false
	}
	if ev.Name == "" {
		return dir, true
	}
	return filepath.Join(dir, ev.Name), true
}
