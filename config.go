package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
)

// ServerConfig carries the feature toggles. Discovery and session tracking
// default to on; the heavier features stay opt-in.
type ServerConfig struct {
	AutoDiscover         bool `toml:"auto_discover"`
	SessionManagement    bool `toml:"session_management"`
	EventStreaming       bool `toml:"event_streaming"`
	PerformanceProfiling bool `toml:"performance_profiling"`
	NetworkInterception  bool `toml:"network_interception"`
}

func defaultConfig() ServerConfig {
	return ServerConfig{
		AutoDiscover:      true,
		SessionManagement: true,
	}
}

// ConfigStore holds the active configuration and keeps it current when the
// file changes on disk.
type ConfigStore struct {
	mu      sync.RWMutex
	path    string
	current ServerConfig

	watcher *fsnotify.Watcher
}

func NewConfigStore(path string) *ConfigStore {
	return &ConfigStore{
		path:    path,
		current: defaultConfig(),
	}
}

// Load reads the config file. A missing file is not an error, the defaults
// stand; a present but invalid file is.
func (c *ConfigStore) Load() error {
	cfg := defaultConfig()
	if _, err := toml.DecodeFile(c.path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load config %s: %w", c.path, err)
	}

	c.mu.Lock()
	c.current = cfg
	c.mu.Unlock()
	return nil
}

// Current returns a copy of the active configuration.
func (c *ConfigStore) Current() ServerConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Watch reloads the configuration whenever the file is written or replaced.
// The parent directory is watched so editor save-via-rename still triggers.
func (c *ConfigStore) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	c.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(c.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := c.Load(); err != nil {
					LogWarn("Config", "Reload failed", err.Error())
					continue
				}
				LogInfo("Config", "Configuration reloaded", c.path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				LogWarn("Config", "Watcher error", err.Error())
			}
		}
	}()
	return nil
}

// Close stops the config watcher.
func (c *ConfigStore) Close() {
	if c.watcher != nil {
		c.watcher.Close()
	}
}
