package backends

import (
	"fmt"

	"github.com/avissapr/authbox/internal/repository"
)

// Factory builds a backend over the shared user repository.
type Factory func(users *repository.UserRepository) Backend

var registry = map[string]Factory{}

// Register adds a backend factory under the given name. Registrations must
// complete before Build is called; the built-in backends register in init.
// Registering the same name twice panics, it is a wiring bug.
func Register(name string, factory Factory) {
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("authentication backend %q registered twice", name))
	}
	registry[name] = factory
}

// Build resolves the configured backend names into a strategy chain,
// preserving order. The auth service tries the chain front to back.
//
// Returns ErrUnknownBackend when a name was never registered.
func Build(names []string, users *repository.UserRepository) ([]Backend, error) {
	chain := make([]Backend, 0, len(names))
	for _, name := range names {
		factory, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
		}
		chain = append(chain, factory(users))
	}
	return chain, nil
}

func init() {
	Register("credentials", func(users *repository.UserRepository) Backend {
		return NewCredentialsBackend(users)
	})
	Register("email", func(users *repository.UserRepository) Backend {
		return NewEmailBackend(NewCredentialsBackend(users))
	})
}
