package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/grimhold/oubliette/engine/core"
)

// MappingFileName is the descriptor the override folder must provide to
// map animation-set names to supplemental overlay files.
const MappingFileName = "graphics.toml"

type overrideMapping struct {
	// Animation-set prefix -> overlay files, applied in order.
	Animations map[string][]string `toml:"animations"`
	// Language tag -> .fnt bitmap font descriptor.
	Fonts map[string]string `toml:"fonts"`
}

// OverrideIndex exposes the optional custom-graphics folder. A disabled or
// missing folder behaves as an empty index; a malformed mapping file is
// logged and skipped, never fatal. The folder is watched so that files
// dropped in while the game runs are visible on the next load.
type OverrideIndex struct {
	dir     string
	enabled bool

	mutex   sync.RWMutex
	mapping overrideMapping

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	stopped  chan struct{}
}

func NewOverrideIndex(dir string, enabled bool) (*OverrideIndex, error) {
	oi := &OverrideIndex{
		dir:     dir,
		enabled: enabled,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	if !enabled {
		return oi, nil
	}

	oi.reload()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		core.LogWarn("custom graphics folder '%s' cannot be watched: %s", dir, err.Error())
		watcher.Close()
		return oi, nil
	}
	oi.fsnotify = watcher
	go oi.start(watcher)
	return oi, nil
}

// start owns the watcher for its whole lifetime, including closing it.
func (oi *OverrideIndex) start(watcher *fsnotify.Watcher) {
	defer close(oi.stopped)
	defer watcher.Close()
	for {
		select {
		case e := <-watcher.Events:
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				if filepath.Base(e.Name) == MappingFileName {
					oi.reload()
				}
			}
		case e := <-watcher.Errors:
			core.LogError(e.Error())
		case <-oi.done:
			return
		}
	}
}

func (oi *OverrideIndex) reload() {
	raw, err := os.ReadFile(filepath.Join(oi.dir, MappingFileName))
	if err != nil {
		if !os.IsNotExist(err) {
			core.LogWarn("failed to read custom graphics mapping: %s", err.Error())
		}
		return
	}
	var mapping overrideMapping
	if err := toml.Unmarshal(raw, &mapping); err != nil {
		core.LogWarn("malformed custom graphics mapping '%s': %s", MappingFileName, err.Error())
		return
	}

	oi.mutex.Lock()
	oi.mapping = mapping
	oi.mutex.Unlock()
	core.LogInfo("custom graphics mapping loaded: %d animation set(s), %d font(s)", len(mapping.Animations), len(mapping.Fonts))
}

// Enabled reports whether the override folder is configured at all.
func (oi *OverrideIndex) Enabled() bool {
	return oi.enabled
}

// AnimationOverlays returns the overlay files mapped to an animation-set
// prefix, in application order.
func (oi *OverrideIndex) AnimationOverlays(prefix string) []string {
	if !oi.enabled {
		return nil
	}
	oi.mutex.RLock()
	defer oi.mutex.RUnlock()
	return oi.mapping.Animations[prefix]
}

// FontOverride returns the .fnt descriptor mapped to a language tag.
func (oi *OverrideIndex) FontOverride(lang string) (string, bool) {
	if !oi.enabled {
		return "", false
	}
	oi.mutex.RLock()
	defer oi.mutex.RUnlock()
	name, ok := oi.mapping.Fonts[lang]
	return name, ok
}

// ReadFile reads a file relative to the override folder.
func (oi *OverrideIndex) ReadFile(name string) ([]byte, error) {
	if !oi.enabled {
		return nil, fmt.Errorf("custom graphics folder is disabled")
	}
	return os.ReadFile(filepath.Join(oi.dir, name))
}

// Path resolves a file name to its absolute location in the override folder.
func (oi *OverrideIndex) Path(name string) string {
	return filepath.Join(oi.dir, name)
}

// Close stops the watcher goroutine and waits for it to exit. Safe to
// call more than once.
func (oi *OverrideIndex) Close() error {
	oi.mutex.Lock()
	watcher := oi.fsnotify
	oi.fsnotify = nil
	oi.mutex.Unlock()
	if watcher == nil {
		return nil
	}
	close(oi.done)
	<-oi.stopped
	return nil
}
