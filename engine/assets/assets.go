package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/tinted/engine/assets/loaders"
	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/resources"
)

type AssetInfo struct {
	Path       string
	Type       resources.ResourceType
	LastLoaded time.Time
}

type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[resources.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	watching bool
	isClosed bool
	changes  chan string
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[resources.ResourceType]Loader),
		fsnotify: fsWatch,
		// one pending notification is enough, the reader reloads everything
		changes: make(chan string, 1),
		done:    make(chan struct{}),
	}

	// Register loaders
	am.registerLoader(resources.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(resources.ResourceTypeImage, &loaders.ImageLoader{})

	return am, nil
}

// Initialize indexes the given directories and starts watching them for
// changes. Without directories nothing is watched.
func (am *AssetManager) Initialize(assetsDirs ...string) error {
	if am.isClosed {
		return errors.New("asset watcher already closed")
	}
	if len(assetsDirs) == 0 {
		return nil
	}
	if !am.watching {
		am.watching = true
		go am.start()
	}
	for _, dir := range assetsDirs {
		if err := am.addRecursive(dir); err != nil {
			return err
		}
	}
	return nil
}

// Changes delivers the path of a shader file that was written or created.
// Bursts of writes are coalesced.
func (am *AssetManager) Changes() <-chan string {
	return am.changes
}

// Shutdown stops the watcher. The manager can still load assets afterwards.
func (am *AssetManager) Shutdown() {
	if am.isClosed {
		return
	}
	am.isClosed = true
	if am.watching {
		close(am.done)
		return
	}
	am.fsnotify.Close()
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset watcher already closed")
	}
	return am.watchRecursive(name)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType resources.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// LoadAsset reads an asset from disk with the loader of its type.
func (am *AssetManager) LoadAsset(path string) (*resources.Resource, error) {
	path = filepath.Clean(path)
	assetType := determineAssetType(path)
	if assetType == resources.ResourceTypeNone {
		return nil, fmt.Errorf("unknown resource type: %s", path)
	}

	loader, loaderExists := am.loaders[assetType]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", assetType)
	}

	res, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	am.mutex.Unlock()
	return res, nil
}

func (am *AssetManager) UnloadAsset(asset *resources.Resource) error {
	loader, exists := am.loaders[asset.Type]
	if !exists {
		return fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Unload(asset)
}

// Info reports what the manager knows about a path.
func (am *AssetManager) Info(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[filepath.Clean(path)]
	return info, ok
}

func (am *AssetManager) start() {
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name); err != nil {
						core.LogWarn("failed to watch %s: %s", e.Name, err)
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if am.handleFileEvent(e.Name) == resources.ResourceTypeShader {
					am.notify(e.Name)
				}
			}
			// Can't stat a deleted path, so try to remove it from the watch list either way.
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
				_ = am.fsnotify.Remove(e.Name)
			}

		case e, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(e.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) notify(path string) {
	select {
	case am.changes <- filepath.Clean(path):
	default:
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files found.
func (am *AssetManager) watchRecursive(path string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	wd = wd + string(filepath.Separator)
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(strings.TrimPrefix(walkPath, wd))
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) resources.ResourceType {
	assetType := determineAssetType(path)
	if assetType == resources.ResourceTypeNone {
		return assetType
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	path = filepath.Clean(path)
	info := am.assets[path]
	info.Path = path
	info.Type = assetType
	am.assets[path] = info
	return assetType
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, filepath.Clean(path))
}

func determineAssetType(path string) resources.ResourceType {
	switch filepath.Ext(path) {
	case ".wgsl":
		return resources.ResourceTypeShader
	case ".png":
		return resources.ResourceTypeImage
	default:
		return resources.ResourceTypeNone
	}
}
