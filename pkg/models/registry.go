package models

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultModel is the model used when a request leaves the field empty.
const DefaultModel = "gemini-3.0-flash"

// defaultNative is the built-in catalog of backend model identifiers, in
// the order they are advertised.
var defaultNative = []string{
	"gemini-3.0-flash",
	"gemini-3.0-pro",
	"gemini-3.0-flash-thinking",
}

// defaultAliases maps foreign model names onto catalog entries so OpenAI
// SDK defaults keep working without client-side changes.
var defaultAliases = map[string]string{
	"gpt-4o":      "gemini-3.0-flash",
	"gpt-4o-mini": "gemini-3.0-flash",
}

// UnknownModelError is returned when a requested name matches neither a
// catalog entry nor an alias.
type UnknownModelError struct {
	// Name is the name the caller asked for
	Name string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model %q", e.Name)
}

// File is the on-disk shape of a model table override.
type File struct {
	// Models lists the backend model identifiers to advertise, in order.
	Models []string `yaml:"models"`

	// Aliases maps foreign names onto entries of Models.
	Aliases map[string]string `yaml:"aliases"`
}

// Registry is the model name table. It resolves request names to backend
// identifiers and feeds the /v1/models catalog. Reads vastly outnumber
// reloads, so the table sits behind a sync.RWMutex.
type Registry struct {
	logger  *slog.Logger
	created time.Time

	mu      sync.RWMutex
	native  []string
	aliases map[string]string
}

// NewRegistry creates a registry holding the built-in table. The creation
// time is fixed here and stamped on every advertised model for the life of
// the process.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		logger:  logger.With("component", "models"),
		created: time.Now(),
		native:  append([]string(nil), defaultNative...),
		aliases: make(map[string]string, len(defaultAliases)),
	}
	for alias, target := range defaultAliases {
		r.aliases[alias] = target
	}
	return r
}

// Resolve maps a requested model name to a backend identifier. Catalog
// entries resolve to themselves, aliases to their target; anything else
// returns *UnknownModelError.
func (r *Registry) Resolve(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.native {
		if m == name {
			return name, nil
		}
	}
	if target, ok := r.aliases[name]; ok {
		return target, nil
	}
	return "", &UnknownModelError{Name: name}
}

// List returns the advertised model identifiers in catalog order. Aliases
// are resolution-only and never advertised.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.native...)
}

// Created returns the fixed catalog creation time.
func (r *Registry) Created() time.Time {
	return r.created
}

// LoadFile replaces the table with the contents of a YAML file. The old
// table stays in place when the file is missing, malformed, or fails
// validation, so a bad edit never leaves the gateway without models.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model table: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse model table: %w", err)
	}

	if err := r.Apply(&f); err != nil {
		return fmt.Errorf("invalid model table %q: %w", path, err)
	}
	return nil
}

// Apply validates a table and swaps it in atomically.
func (r *Registry) Apply(f *File) error {
	if len(f.Models) == 0 {
		return fmt.Errorf("models list must not be empty")
	}

	listed := make(map[string]bool, len(f.Models))
	for _, m := range f.Models {
		if m == "" {
			return fmt.Errorf("models list contains an empty name")
		}
		if listed[m] {
			return fmt.Errorf("model %q listed twice", m)
		}
		listed[m] = true
	}

	for alias, target := range f.Aliases {
		if alias == "" {
			return fmt.Errorf("alias with empty name")
		}
		if listed[alias] {
			return fmt.Errorf("alias %q shadows a listed model", alias)
		}
		if !listed[target] {
			return fmt.Errorf("alias %q targets unlisted model %q", alias, target)
		}
	}

	aliases := make(map[string]string, len(f.Aliases))
	for alias, target := range f.Aliases {
		aliases[alias] = target
	}

	r.mu.Lock()
	r.native = append([]string(nil), f.Models...)
	r.aliases = aliases
	r.mu.Unlock()

	r.logger.Info("model table replaced",
		"models", len(f.Models),
		"aliases", len(aliases),
	)
	return nil
}
