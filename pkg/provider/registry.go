package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/platewise/platewise/pkg/errors"
)

// The registry is a static table populated by provider packages at init
// time, in the manner of database/sql drivers. There is no plugin loading.
var (
	registryMu sync.RWMutex
	factories  = map[string]Factory{}
)

// Register makes a provider available under a two-letter state code.
// Registering the same code twice panics: it is a wiring mistake, not a
// runtime condition.
func Register(stateCode string, factory Factory) {
	code := strings.ToUpper(stateCode)

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := factories[code]; dup {
		panic("provider: duplicate registration for " + code)
	}
	factories[code] = factory
}

// New builds the provider for a state code, case-insensitively. An unknown
// code returns an error naming the supported codes.
func New(stateCode string, deps Deps) (Provider, error) {
	code := strings.ToUpper(stateCode)

	registryMu.RLock()
	factory, ok := factories[code]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("no provider available for %q", stateCode)).
			WithUserMessage(fmt.Sprintf("State %q is not supported.", stateCode)).
			WithRemediation("Supported states: " + strings.Join(List(), ", "))
	}
	return factory(deps), nil
}

// List returns the supported state codes, sorted.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	codes := make([]string, 0, len(factories))
	for code := range factories {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
