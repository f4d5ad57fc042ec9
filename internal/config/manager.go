package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"media-orchestrator/internal/logging"
)

// EnvPrefix is the prefix for environment variable overrides. A setting
// at path "base.max_concurrent_jobs" is overridden by
// MO_BASE_MAX_CONCURRENT_JOBS.
const EnvPrefix = "MO_"

// ValidationError describes a rejected Set call. The prior value is
// always retained when a Set is rejected.
type ValidationError struct {
	Path   string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %v for %q: %s", e.Value, e.Path, e.Reason)
}

// Validator checks a candidate value for a path before it is committed.
type Validator func(value any) error

// Observer is invoked synchronously after a successful change to its path.
type Observer func(path string, value any)

// Manager resolves settings through three layers: compiled defaults, an
// optional YAML file override, and environment variables applied last.
type Manager struct {
	mu         sync.RWMutex
	values     map[string]any
	validators map[string]Validator
	observers  map[string][]Observer
	filePath   string

	watchMu   sync.Mutex
	watchStop chan struct{}
}

// New builds a Manager from the compiled defaults only.
func New() *Manager {
	return &Manager{
		values:     Defaults(),
		validators: make(map[string]Validator),
		observers:  make(map[string][]Observer),
	}
}

// Load builds a Manager from defaults, an optional YAML override file,
// and environment overrides, in that precedence order. A missing file is
// not an error; a malformed file is.
func Load(filePath string) (*Manager, error) {
	m := New()

	if filePath != "" {
		if err := m.mergeFile(filePath); err != nil {
			return nil, err
		}
		m.filePath = filePath
	}

	m.applyEnv()
	return m, nil
}

// mergeFile deep-merges the YAML document at path over the current tree.
func (m *Manager) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("No config file at %s, using defaults", path)
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var overlay map[string]any
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	m.mu.Lock()
	m.values = deepMerge(m.values, overlay)
	m.mu.Unlock()

	logging.Info("Loaded configuration overrides from %s", path)
	return nil
}

// deepMerge merges overlay into base. Maps merge recursively; any other
// value in the overlay replaces the base value.
func deepMerge(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		if ov, ok := v.(map[string]any); ok {
			if bv, ok := out[k].(map[string]any); ok {
				out[k] = deepMerge(bv, ov)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// applyEnv walks every leaf of the resolved tree and applies matching
// environment overrides with type coercion. Invalid values are logged
// and discarded, never fatal.
func (m *Manager) applyEnv() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, path := range leafPaths(m.values, "") {
		envKey := EnvPrefix + strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
		raw, ok := os.LookupEnv(envKey)
		if !ok {
			continue
		}

		current, _ := lookup(m.values, path)
		coerced, err := coerce(raw, current)
		if err != nil {
			logging.Warn("Ignoring %s=%q: %v", envKey, raw, err)
			continue
		}
		if v, ok := m.validators[path]; ok {
			if err := v(coerced); err != nil {
				logging.Warn("Ignoring %s=%q: %v", envKey, raw, err)
				continue
			}
		}

		setPath(m.values, path, coerced)
		logging.Debug("Environment override %s applied to %s", envKey, path)
	}
}

// coerce converts a raw environment string to the type of the current
// value at the path.
func coerce(raw string, current any) (any, error) {
	switch current.(type) {
	case bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("expected bool: %w", err)
		}
		return v, nil
	case int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("expected int: %w", err)
		}
		return v, nil
	case float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("expected float: %w", err)
		}
		return v, nil
	default:
		return raw, nil
	}
}

// leafPaths returns the dot-separated paths of every non-map value.
func leafPaths(tree map[string]any, prefix string) []string {
	var paths []string
	for k, v := range tree {
		p := k
		if prefix != "" {
			p = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			paths = append(paths, leafPaths(sub, p)...)
			continue
		}
		paths = append(paths, p)
	}
	return paths
}

// lookup walks a dot-separated path through nested maps.
func lookup(tree map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = tree
	for _, part := range parts {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// setPath writes value at a dot-separated path, creating intermediate
// maps as needed.
func setPath(tree map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	node := tree
	for _, part := range parts[:len(parts)-1] {
		next, ok := node[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[part] = next
		}
		node = next
	}
	node[parts[len(parts)-1]] = value
}

// Get returns the value at path, or fallback if the path does not exist.
func (m *Manager) Get(path string, fallback any) any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if v, ok := lookup(m.values, path); ok {
		return v
	}
	return fallback
}

// GetString returns the string at path, or fallback.
func (m *Manager) GetString(path, fallback string) string {
	if v, ok := m.Get(path, fallback).(string); ok {
		return v
	}
	return fallback
}

// GetInt returns the int at path, or fallback.
func (m *Manager) GetInt(path string, fallback int) int {
	switch v := m.Get(path, fallback).(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}

// GetBool returns the bool at path, or fallback.
func (m *Manager) GetBool(path string, fallback bool) bool {
	if v, ok := m.Get(path, fallback).(bool); ok {
		return v
	}
	return fallback
}

// GetFloat returns the float64 at path, or fallback. Integer values are
// widened.
func (m *Manager) GetFloat(path string, fallback float64) float64 {
	switch v := m.Get(path, fallback).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}

// GetDuration parses the duration string at path, or returns fallback.
func (m *Manager) GetDuration(path string, fallback time.Duration) time.Duration {
	s, ok := m.Get(path, nil).(string)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		logging.Warn("Invalid duration %q at %s, using %v", s, path, fallback)
		return fallback
	}
	return d
}

// Section returns a deep copy of the map at path, or an empty map.
// Callers may mutate the result freely.
func (m *Manager) Section(path string) map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := lookup(m.values, path)
	if !ok {
		return map[string]any{}
	}
	node, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return copyTree(node)
}

func copyTree(tree map[string]any) map[string]any {
	out := make(map[string]any, len(tree))
	for k, v := range tree {
		if sub, ok := v.(map[string]any); ok {
			out[k] = copyTree(sub)
			continue
		}
		out[k] = v
	}
	return out
}

// RegisterValidator attaches a validator to a path. Subsequent Set calls
// and environment reloads for the path must pass it.
func (m *Manager) RegisterValidator(path string, v Validator) {
	m.mu.Lock()
	m.validators[path] = v
	m.mu.Unlock()
}

// Observe registers an observer invoked synchronously after every
// successful Set on the path.
func (m *Manager) Observe(path string, fn Observer) {
	m.mu.Lock()
	m.observers[path] = append(m.observers[path], fn)
	m.mu.Unlock()
}

// Set commits value at path after running the path's validator, then
// notifies observers synchronously. On validation failure the prior
// value is retained and a ValidationError is returned.
func (m *Manager) Set(path string, value any) error {
	m.mu.Lock()
	if v, ok := m.validators[path]; ok {
		if err := v(value); err != nil {
			m.mu.Unlock()
			return &ValidationError{Path: path, Value: value, Reason: err.Error()}
		}
	}
	setPath(m.values, path, value)
	observers := append([]Observer(nil), m.observers[path]...)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(path, value)
	}
	return nil
}

// Snapshot returns a deep copy of the full resolved tree for status
// reporting.
func (m *Manager) Snapshot() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyTree(m.values)
}
