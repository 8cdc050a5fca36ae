// Package config provides configuration loading and hot reload.
package config

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// debounce coalesces the burst of events editors emit for a single save.
const debounce = 100 * time.Millisecond

// Holder provides thread-safe access to configuration with hot reload support.
type Holder struct {
	mu       sync.RWMutex
	config   *Config
	digest   []byte
	path     string
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []func(*Config)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHolder creates a new config holder and loads the initial configuration.
func NewHolder(path string, logger zerolog.Logger) (*Holder, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	cfg, err := Load(absPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &Holder{
		config: cfg,
		digest: fileDigest(absPath),
		path:   absPath,
		logger: logger,
		stopCh: make(chan struct{}),
	}, nil
}

// SetLogger replaces the logger used for reload events.
func (h *Holder) SetLogger(logger zerolog.Logger) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logger = logger
}

// Get returns the current configuration.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

func (h *Holder) log() *zerolog.Logger {
	h.mu.RLock()
	defer h.mu.RUnlock()
	l := h.logger
	return &l
}

// Reload re-reads the file and notifies listeners. An invalid file leaves
// the current configuration in place and returns the error.
func (h *Holder) Reload() error {
	log := h.log()
	log.Info().Str("path", h.path).Msg("reloading configuration")

	newCfg, err := Load(h.path)
	if err != nil {
		log.Error().Err(err).Msg("config reload failed, keeping old config")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	oldCfg := h.config
	h.config = newCfg
	h.digest = fileDigest(h.path)
	listeners := append([]func(*Config){}, h.onChange...)
	h.mu.Unlock()

	logChanges(log, oldCfg, newCfg)
	for _, fn := range listeners {
		fn(newCfg)
	}

	log.Info().Msg("configuration reloaded")
	return nil
}

// OnChange registers a callback run after every successful reload.
func (h *Holder) OnChange(fn func(*Config)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// WatchFile reloads whenever the file's content changes. The parent
// directory is watched so atomic renames by editors are seen.
func (h *Holder) WatchFile() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	h.watcher = watcher

	go h.watchLoop()

	h.log().Info().Str("path", h.path).Msg("watching config file for changes")
	return nil
}

// WatchSignals reloads on SIGHUP until Stop.
func (h *Holder) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-sigCh:
				h.log().Info().Msg("received SIGHUP")
				if err := h.Reload(); err != nil {
					h.log().Error().Err(err).Msg("SIGHUP reload failed")
				}
			case <-h.stopCh:
				return
			}
		}
	}()
}

// Stop ends file and signal watching. Safe to call twice.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

func (h *Holder) watchLoop() {
	name := filepath.Base(h.path)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			timer.Reset(debounce)

		case <-timer.C:
			if !h.contentChanged() {
				h.log().Debug().Msg("config file touched without changes")
				continue
			}
			if err := h.Reload(); err != nil {
				h.log().Error().Err(err).Msg("file watch reload failed")
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.log().Error().Err(err).Msg("file watcher error")

		case <-h.stopCh:
			return
		}
	}
}

func (h *Holder) contentChanged() bool {
	d := fileDigest(h.path)
	h.mu.RLock()
	defer h.mu.RUnlock()
	return d == nil || !bytes.Equal(d, h.digest)
}

func fileDigest(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	sum := sha256.Sum256(data)
	return sum[:]
}

// fieldRule describes how a change to one top-level field is applied.
type fieldRule struct {
	name       string
	reloadable bool
	changed    func(old, new *Config) bool
}

var fieldRules = []fieldRule{
	{"logging.level", true, func(o, n *Config) bool { return o.Logging.Level != n.Logging.Level }},
	{"subscriptions", true, func(o, n *Config) bool { return !equalSeeds(o.Subscriptions, n.Subscriptions) }},
	{"usage.retention_periods", true, func(o, n *Config) bool { return o.Usage.RetentionPeriods != n.Usage.RetentionPeriods }},
	{"server.host", false, func(o, n *Config) bool { return o.Server.Host != n.Server.Host }},
	{"server.port", false, func(o, n *Config) bool { return o.Server.Port != n.Server.Port }},
	{"storage", false, func(o, n *Config) bool { return o.Storage != n.Storage }},
	{"backend", false, func(o, n *Config) bool { return o.Backend.Kind != n.Backend.Kind || o.Backend.URL != n.Backend.URL }},
	{"auth.admin_key_hash", false, func(o, n *Config) bool { return o.Auth.AdminKeyHash != n.Auth.AdminKeyHash }},
}

func equalSeeds(a, b []SubscriptionSeed) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func logChanges(log *zerolog.Logger, old, new *Config) {
	for _, rule := range fieldRules {
		if !rule.changed(old, new) {
			continue
		}
		if rule.reloadable {
			log.Info().Str("field", rule.name).Msg("config field changed")
		} else {
			log.Warn().Str("field", rule.name).Msg("config change requires restart to take effect")
		}
	}
}

// ReloadableFields returns which fields can be changed without restart.
func ReloadableFields() []string {
	return ruleNames(true)
}

// NonReloadableFields returns which fields require a restart.
func NonReloadableFields() []string {
	return ruleNames(false)
}

func ruleNames(reloadable bool) []string {
	var names []string
	for _, r := range fieldRules {
		if r.reloadable == reloadable {
			names = append(names, r.name)
		}
	}
	return names
}
