// Package registry manages the lifecycle of plugins: registration,
// dependency validation, initialization, start and stop.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ngipak/infodesa/internal/plugin"
)

// Registry manages the lifecycle of all registered plugins.
type Registry struct {
	mu       sync.RWMutex
	plugins  map[string]plugin.Plugin
	order    []string
	disabled map[string]string // name -> reason
	unsub    []func()
	logger   *zap.Logger
}

// New creates an empty registry.
func New(logger *zap.Logger) *Registry {
	return &Registry{
		plugins:  make(map[string]plugin.Plugin),
		disabled: make(map[string]string),
		logger:   logger,
	}
}

// Register adds a plugin to the registry.
func (r *Registry) Register(p plugin.Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info := p.Info()
	if info.Name == "" {
		return errors.New("plugin name must not be empty")
	}
	if _, exists := r.plugins[info.Name]; exists {
		return fmt.Errorf("plugin %q already registered", info.Name)
	}

	r.plugins[info.Name] = p
	r.order = append(r.order, info.Name)
	r.logger.Info("plugin registered", zap.String("name", info.Name), zap.String("version", info.Version))
	return nil
}

// Validate checks API versions and dependencies and orders plugins so that
// every plugin follows its dependencies. Optional plugins that fail a check
// are disabled together with everything depending on them; a failing
// required plugin is an error.
func (r *Registry) Validate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		info := r.plugins[name].Info()
		if info.APIVersion < plugin.APIVersionMin || info.APIVersion > plugin.APIVersionCurrent {
			reason := fmt.Sprintf("unsupported API version %d (supported %d-%d)",
				info.APIVersion, plugin.APIVersionMin, plugin.APIVersionCurrent)
			if err := r.disable(info, reason); err != nil {
				return err
			}
			continue
		}
		for _, dep := range info.Dependencies {
			if _, ok := r.plugins[dep]; !ok {
				if err := r.disable(info, fmt.Sprintf("missing dependency %q", dep)); err != nil {
					return err
				}
				break
			}
		}
	}

	sorted, err := r.topoSort()
	if err != nil {
		return err
	}
	r.order = sorted

	for _, name := range r.order {
		if _, off := r.disabled[name]; off {
			continue
		}
		info := r.plugins[name].Info()
		for _, dep := range info.Dependencies {
			if _, off := r.disabled[dep]; off {
				if err := r.disable(info, fmt.Sprintf("dependency %q is disabled", dep)); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}

// topoSort orders plugins depth-first, keeping registration order among
// independent plugins.
func (r *Registry) topoSort() ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(r.order))
	out := make([]string, 0, len(r.order))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("plugin dependency cycle: %v", append(path, name))
		case done:
			return nil
		}
		state[name] = visiting
		for _, dep := range r.plugins[name].Info().Dependencies {
			if _, ok := r.plugins[dep]; !ok {
				continue
			}
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = done
		out = append(out, name)
		return nil
	}

	for _, name := range r.order {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Registry) disable(info plugin.PluginInfo, reason string) error {
	if info.Required {
		return fmt.Errorf("required plugin %q: %s", info.Name, reason)
	}
	r.disabled[info.Name] = reason
	r.logger.Warn("plugin disabled", zap.String("name", info.Name), zap.String("reason", reason))
	return nil
}

// InitAll initializes enabled plugins in dependency order. deps returns
// the dependencies for a plugin by name. A plugin whose config sets
// enabled to false is skipped.
func (r *Registry) InitAll(ctx context.Context, deps func(name string) plugin.Dependencies) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		if _, off := r.disabled[name]; off {
			continue
		}
		p := r.plugins[name]
		info := p.Info()

		if dep := r.firstDisabledDep(info); dep != "" {
			if err := r.disable(info, fmt.Sprintf("dependency %q is disabled", dep)); err != nil {
				return err
			}
			continue
		}

		d := deps(name)
		if d.Config != nil && d.Config.IsSet("enabled") && !d.Config.GetBool("enabled") {
			r.disabled[name] = "disabled by config"
			r.logger.Info("plugin disabled, skipping", zap.String("name", name))
			continue
		}

		r.logger.Info("initializing plugin", zap.String("name", name))
		if err := p.Init(ctx, d); err != nil {
			if info.Required {
				return fmt.Errorf("failed to initialize plugin %q: %w", name, err)
			}
			r.disabled[name] = "init failed: " + err.Error()
			r.logger.Error("plugin init failed, disabling", zap.String("name", name), zap.Error(err))
			continue
		}

		if v, ok := p.(plugin.Validator); ok {
			if err := v.ValidateConfig(); err != nil {
				if info.Required {
					return fmt.Errorf("invalid config for plugin %q: %w", name, err)
				}
				r.disabled[name] = "invalid config: " + err.Error()
				r.logger.Error("plugin config invalid, disabling", zap.String("name", name), zap.Error(err))
				continue
			}
		}

		if s, ok := p.(plugin.EventSubscriber); ok && d.Bus != nil {
			for _, sub := range s.Subscriptions() {
				if sub.Topic == "" {
					r.unsub = append(r.unsub, d.Bus.SubscribeAll(sub.Handler))
				} else {
					r.unsub = append(r.unsub, d.Bus.Subscribe(sub.Topic, sub.Handler))
				}
			}
		}
	}
	return nil
}

func (r *Registry) firstDisabledDep(info plugin.PluginInfo) string {
	for _, dep := range info.Dependencies {
		if _, off := r.disabled[dep]; off {
			return dep
		}
	}
	return ""
}

// StartAll starts all enabled plugins.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		if _, off := r.disabled[name]; off {
			continue
		}
		r.logger.Info("starting plugin", zap.String("name", name))
		if err := r.plugins[name].Start(ctx); err != nil {
			return fmt.Errorf("failed to start plugin %q: %w", name, err)
		}
	}
	return nil
}

// StopAll stops all enabled plugins in reverse order and drops their event
// subscriptions.
func (r *Registry) StopAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.unsub {
		u()
	}
	r.unsub = nil

	for i := len(r.order) - 1; i >= 0; i-- {
		name := r.order[i]
		if _, off := r.disabled[name]; off {
			continue
		}
		r.logger.Info("stopping plugin", zap.String("name", name))
		if err := r.plugins[name].Stop(ctx); err != nil {
			r.logger.Error("failed to stop plugin", zap.String("name", name), zap.Error(err))
		}
	}
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) (plugin.Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// IsDisabled reports whether a plugin was disabled during validation or
// initialization.
func (r *Registry) IsDisabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, off := r.disabled[name]
	return off
}

// DisabledReason returns why a plugin was disabled.
func (r *Registry) DisabledReason(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.disabled[name]
}

// All returns all registered plugins in dependency order, disabled ones
// included.
func (r *Registry) All() []plugin.Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]plugin.Plugin, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.plugins[name])
	}
	return result
}

// AllRoutes returns the routes of every enabled HTTPProvider, keyed by
// plugin name.
func (r *Registry) AllRoutes() map[string][]plugin.Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make(map[string][]plugin.Route)
	for _, name := range r.order {
		if _, off := r.disabled[name]; off {
			continue
		}
		hp, ok := r.plugins[name].(plugin.HTTPProvider)
		if !ok {
			continue
		}
		if pr := hp.Routes(); len(pr) > 0 {
			routes[name] = pr
		}
	}
	return routes
}

// Health collects the status of enabled plugins that report one.
func (r *Registry) Health(ctx context.Context) map[string]plugin.HealthStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]plugin.HealthStatus)
	for _, name := range r.order {
		if _, off := r.disabled[name]; off {
			continue
		}
		if hc, ok := r.plugins[name].(plugin.HealthChecker); ok {
			out[name] = hc.Health(ctx)
		}
	}
	return out
}
