package dns

import (
	"fmt"
	"sync"

	"github.com/go-logr/logr"
)

// Factory is a constructor function that store packages register to create themselves.
type Factory func(log logr.Logger, settings map[string]string) (Store, error)

var (
	mu        sync.Mutex
	factories = make(map[string]Factory)
)

// Register is called by store packages in their init() to self-register.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("dns: store %q already registered", name))
	}
	factories[name] = f
}

// NewStore looks up the named store in the registry and creates it.
func NewStore(name string, log logr.Logger, settings map[string]string) (Store, error) {
	mu.Lock()
	f, ok := factories[name]
	if !ok {
		names := make([]string, 0, len(factories))
		for n := range factories {
			names = append(names, n)
		}
		mu.Unlock()
		return nil, fmt.Errorf("unsupported DNS store: %q (registered: %v)", name, names)
	}
	mu.Unlock()
	return f(log, settings)
}
