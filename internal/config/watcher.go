package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ConfigWatcher reloads configuration when the file changes
type ConfigWatcher struct {
	config     *Config
	configPath string
	viper      *viper.Viper
	callbacks  []func(*Config)
	mu         sync.RWMutex
	stopped    bool
	stopMu     sync.RWMutex
}

// NewConfigWatcher creates a watcher for the given config file
func NewConfigWatcher(cfg *Config, configPath string) *ConfigWatcher {
	v := viper.New()
	v.SetConfigFile(configPath)

	return &ConfigWatcher{
		config:     cfg,
		configPath: configPath,
		viper:      v,
		callbacks:  make([]func(*Config), 0),
		stopped:    false,
	}
}

// OnConfigChange registers a change callback
func (w *ConfigWatcher) OnConfigChange(callback func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start begins watching the config file
func (w *ConfigWatcher) Start() error {
	if err := w.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	w.viper.WatchConfig()
	w.viper.OnConfigChange(func(e fsnotify.Event) {
		w.stopMu.RLock()
		stopped := w.stopped
		w.stopMu.RUnlock()

		if stopped {
			return
		}

		var newCfg Config
		if err := w.viper.Unmarshal(&newCfg); err != nil {
			fmt.Printf("Failed to unmarshal config: %v\n", err)
			return
		}

		// snapshot callbacks, run them outside the lock
		w.mu.RLock()
		callbacks := make([]func(*Config), len(w.callbacks))
		copy(callbacks, w.callbacks)
		w.mu.RUnlock()

		for _, callback := range callbacks {
			callback(&newCfg)
		}

		w.mu.Lock()
		w.config = &newCfg
		w.mu.Unlock()
	})

	return nil
}

// Stop disables further reload callbacks
func (w *ConfigWatcher) Stop() {
	w.stopMu.Lock()
	defer w.stopMu.Unlock()
	w.stopped = true
}

// GetConfig returns the most recently loaded configuration
func (w *ConfigWatcher) GetConfig() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}
