package core

import (
	"fmt"
	"sort"
	"sync"
)

// Export describes one CSV export over an API resource.
type Export struct {
	Key      string      // URL key: "appointments"
	Label    string      // Display name: "Appointments"
	Resource string      // Client resource name to list
	Columns  []string    // CSV header
	Flatten  FlattenFunc // Collection to rows, in Columns order

	// DateFiltered exports pass a "dates" range to the list endpoint.
	DateFiltered bool
}

var (
	registry   = make(map[string]Export)
	registryMu sync.RWMutex
)

// Register adds an export definition to the registry.
// Panics if an export with the same key is already registered or the
// definition is incomplete.
func Register(def Export) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Key]; exists {
		panic(fmt.Sprintf("export already registered: %s", def.Key))
	}
	if def.Resource == "" || def.Flatten == nil || len(def.Columns) == 0 {
		panic(fmt.Sprintf("export %s: incomplete definition", def.Key))
	}
	if def.Label == "" {
		def.Label = def.Key
	}

	registry[def.Key] = def
}

// Get returns an export definition by key.
// Returns false if not found.
func Get(key string) (Export, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns all registered exports sorted by key.
func All() []Export {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Export, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result
}

// Clear removes all registered exports.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Export)
}
