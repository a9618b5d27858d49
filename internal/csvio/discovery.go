package csvio

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultPattern matches every CSV file below the import directory.
const DefaultPattern = "**/*.csv"

// File is a discovered CSV file.
type File struct {
	Path    string    `json:"path"` // absolute
	Name    string    `json:"name"` // relative to the import directory
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Discovery lists CSV files under a directory and watches it for changes.
type Discovery struct {
	dir       string
	pattern   string
	files     map[string]*File
	watcher   *fsnotify.Watcher
	watched   map[string]bool
	callbacks []func(added, removed []*File)
	logger    *log.Logger
	stop      chan struct{}
	stopOnce  sync.Once
	mu        sync.RWMutex
}

// NewDiscovery creates a discovery service for dir. An empty pattern means
// DefaultPattern.
func NewDiscovery(dir, pattern string, logger *log.Logger) (*Discovery, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if pattern == "" {
		pattern = DefaultPattern
	}

	return &Discovery{
		dir:     dir,
		pattern: pattern,
		files:   make(map[string]*File),
		watcher: watcher,
		watched: make(map[string]bool),
		logger:  logger,
		stop:    make(chan struct{}),
	}, nil
}

// OnChange registers a callback for when CSV files are added or removed.
func (d *Discovery) OnChange(callback func(added, removed []*File)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callbacks = append(d.callbacks, callback)
}

// Start scans the directory and begins watching it.
func (d *Discovery) Start() error {
	if err := d.scan(); err != nil {
		return err
	}
	go d.watch()
	return nil
}

// Stop stops watching. It is safe to call more than once.
func (d *Discovery) Stop() {
	d.stopOnce.Do(func() {
		close(d.stop)
		d.watcher.Close()
	})
}

// Files returns the discovered files ordered by name.
func (d *Discovery) Files() []*File {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]*File, 0, len(d.files))
	for _, f := range d.files {
		result = append(result, f)
	}
	slices.SortFunc(result, func(a, b *File) int { return strings.Compare(a.Name, b.Name) })
	return result
}

// Dir returns the directory being searched.
func (d *Discovery) Dir() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dir
}

// Refresh forces a rescan.
func (d *Discovery) Refresh() error {
	return d.scan()
}

// SetSource changes the directory and pattern and rescans.
func (d *Discovery) SetSource(dir, pattern string) error {
	if pattern == "" {
		pattern = DefaultPattern
	}
	d.mu.Lock()
	d.dir = dir
	d.pattern = pattern
	d.mu.Unlock()

	return d.scan()
}

func (d *Discovery) scan() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	found, watchDirs, err := findFiles(d.dir, d.pattern)
	if err != nil {
		return err
	}

	var added, removed []*File
	for path, f := range found {
		if _, exists := d.files[path]; !exists {
			added = append(added, f)
		}
	}
	for path, f := range d.files {
		if _, exists := found[path]; !exists {
			removed = append(removed, f)
		}
	}
	d.files = found

	d.updateWatches(watchDirs)

	// Notify callbacks outside the lock
	if len(added) > 0 || len(removed) > 0 {
		go d.notifyCallbacks(added, removed)
	}
	return nil
}

// updateWatches watches dirs and drops watches on anything else, such as the
// previous source after SetSource. Caller holds mu.
func (d *Discovery) updateWatches(dirs []string) {
	want := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		want[dir] = true
		if d.watched[dir] {
			continue
		}
		if err := d.watcher.Add(dir); err != nil {
			d.logger.Debug("watch failed", "dir", dir, "err", err)
			continue
		}
		d.watched[dir] = true
	}
	for dir := range d.watched {
		if want[dir] {
			continue
		}
		// Deleted directories are already gone from the watcher.
		_ = d.watcher.Remove(dir)
		delete(d.watched, dir)
	}
}

// findFiles returns the CSV files under dir matching pattern, keyed by
// absolute path, and every directory below dir so that files in new
// subdirectories are seen.
func findFiles(dir, pattern string) (map[string]*File, []string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, err
	}
	if _, err := os.Stat(absDir); err != nil {
		return nil, nil, err
	}

	matches, err := doublestar.Glob(os.DirFS(absDir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, nil, err
	}

	files := make(map[string]*File, len(matches))
	var watchDirs []string
	err = filepath.WalkDir(absDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == absDir {
				return err
			}
			// Unreadable entries below the root are skipped.
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			watchDirs = append(watchDirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	for _, match := range matches {
		if !isCSVFile(match) {
			continue
		}
		path := filepath.Join(absDir, filepath.FromSlash(match))
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		files[path] = &File{
			Path:    path,
			Name:    match,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
	}
	return files, watchDirs, nil
}

func isCSVFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

func (d *Discovery) watch() {
	for {
		select {
		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Write) {
				if isCSVFile(event.Name) || d.isDirEvent(event) {
					if err := d.scan(); err != nil {
						d.logger.Warn("rescan failed", "dir", d.Dir(), "err", err)
					}
				}
			}

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.logger.Warn("discovery watcher error", "err", err)

		case <-d.stop:
			return
		}
	}
}

func (d *Discovery) isWatched(dir string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.watched[dir]
}

// isDirEvent reports whether event created a directory or removed a watched
// one.
func (d *Discovery) isDirEvent(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		info, err := os.Stat(event.Name)
		return err == nil && info.IsDir()
	}
	return d.isWatched(event.Name)
}

func (d *Discovery) notifyCallbacks(added, removed []*File) {
	d.mu.RLock()
	callbacks := make([]func(added, removed []*File), len(d.callbacks))
	copy(callbacks, d.callbacks)
	d.mu.RUnlock()

	for _, cb := range callbacks {
		cb(added, removed)
	}
}
