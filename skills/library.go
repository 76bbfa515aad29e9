package skills

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/milk9111/actskill/skill"
)

// Library holds decoded machines by name. Machines handed out are shared and
// must be treated as read-only; a reload swaps in a new machine and leaves
// instances already running the old one untouched.
type Library struct {
	mu       sync.RWMutex
	machines map[string]*skill.MachineConfig
	logger   *slog.Logger
}

type LibraryOption func(*Library)

func WithLogger(l *slog.Logger) LibraryOption {
	return func(lib *Library) {
		if l != nil {
			lib.logger = l
		}
	}
}

func NewLibrary(opts ...LibraryOption) *Library {
	lib := &Library{
		machines: map[string]*skill.MachineConfig{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(lib)
	}
	return lib
}

// NameOf is the library name of an asset path: its base name without
// extension.
func NameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (l *Library) Get(name string) (*skill.MachineConfig, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.machines[name]
	return m, ok
}

// Names lists the loaded machines in sorted order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.machines))
	for name := range l.machines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *Library) Put(name string, m *skill.MachineConfig) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.machines[name] = m
}

func (l *Library) Remove(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.machines, name)
}

// Reload reads and decodes the asset at path. On failure the machine already
// loaded under that name stays in place.
func (l *Library) Reload(path string) error {
	name := NameOf(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("skills: reload %s: %w", path, err)
	}
	m, err := DecodeNamed(path, data)
	if err != nil {
		l.logger.Warn("skill reload failed, keeping previous", "name", name, "err", err)
		return err
	}
	for _, w := range skill.Validate(m) {
		l.logger.Warn("skill content warning", "name", name, "warning", w.String())
	}

	l.mu.Lock()
	l.machines[name] = m
	l.mu.Unlock()
	l.logger.Info("skill loaded", "name", name, "states", len(m.States))
	return nil
}

// LoadDir decodes every asset in dir with at most concurrency decoders at a
// time. Every asset is attempted and the ones that decode are kept; the first
// failure is returned. Cancelling ctx skips assets not yet started.
func (l *Library) LoadDir(ctx context.Context, dir string, concurrency int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("skills: read dir %s: %w", dir, err)
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for _, e := range entries {
		if e.IsDir() || !isAssetFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return l.Reload(path)
		})
	}
	return g.Wait()
}

// Watch reloads assets as w reports them until ctx is done or w is closed.
// Removed assets are dropped. Script changes are only logged: scripts are
// compiled on every activation.
func (l *Library) Watch(ctx context.Context, w *Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-w.Events:
			if !ok {
				return nil
			}
			if c.Kind == ScriptChanged {
				l.logger.Info("skill script changed", "path", c.Path)
				continue
			}
			if _, err := os.Stat(c.Path); os.IsNotExist(err) {
				l.Remove(NameOf(c.Path))
				l.logger.Info("skill removed", "name", NameOf(c.Path))
				continue
			}
			_ = l.Reload(c.Path)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.logger.Error("skill watcher", "err", err)
		}
	}
}
