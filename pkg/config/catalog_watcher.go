package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// catalogDebounce drops the burst of events editors emit for one save.
const catalogDebounce = 100 * time.Millisecond

// CatalogWatcher reloads a catalog file when it changes on disk.
// Reloaded catalogs arrive on Catalogs; parse failures arrive on Errors
// and leave the previous catalog in place on the consumer side.
type CatalogWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	Catalogs chan *Catalog
	Errors   chan error
	closeCh  chan struct{}
	done     chan struct{}
	once     sync.Once
}

// WatchCatalog starts watching path. The directory is watched rather than
// the file so that atomic rename-on-save is still observed.
func WatchCatalog(path string) (*CatalogWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	cw := &CatalogWatcher{
		path:     filepath.Clean(path),
		watcher:  w,
		Catalogs: make(chan *Catalog, 1),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go cw.run()
	return cw, nil
}

// Close stops the watcher and closes both channels.
func (cw *CatalogWatcher) Close() error {
	var err error
	cw.once.Do(func() {
		close(cw.closeCh)
		err = cw.watcher.Close()
		<-cw.done
		close(cw.Catalogs)
		close(cw.Errors)
	})
	return err
}

func (cw *CatalogWatcher) run() {
	defer close(cw.done)

	// trailing debounce: reload once the file has been quiet for
	// catalogDebounce, so a save split into several writes loads once
	timer := time.NewTimer(catalogDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(catalogDebounce)
		case <-timer.C:
			catalog, err := LoadCatalog(cw.path)
			if err != nil {
				cw.send(nil, err)
				continue
			}
			cw.send(catalog, nil)
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.send(nil, err)
		case <-cw.closeCh:
			return
		}
	}
}

// send delivers without blocking forever: a consumer that is behind only
// ever sees the newest catalog.
func (cw *CatalogWatcher) send(catalog *Catalog, err error) {
	if err != nil {
		select {
		case cw.Errors <- err:
		case <-cw.closeCh:
		default:
		}
		return
	}
	for {
		select {
		case cw.Catalogs <- catalog:
			return
		case <-cw.closeCh:
			return
		default:
			select {
			case <-cw.Catalogs:
			default:
			}
		}
	}
}
