// Package provider defines the uniform Adapter contract every upstream
// question-bank or LLM backend must satisfy, plus the process-wide
// registry that resolves a provider name from a request to a singleton
// adapter instance (§4.2).
package provider

import (
	"context"
	"fmt"

	"github.com/howard-nolan/questionrouter/internal/model"
)

// FieldType enumerates the supported configuration-field primitive
// types. Kept as data (not a Go type per field) so the schema can be
// serialized for a generic edit UI without hard-coding per-adapter forms
// (§9 DESIGN NOTES).
type FieldType string

const (
	FieldString FieldType = "string"
	FieldInt    FieldType = "integer"
	FieldBool   FieldType = "boolean"
)

// FieldSchema describes one named configuration field an adapter
// accepts.
type FieldSchema struct {
	Name        string
	Title       string
	Description string
	Type        FieldType
	Required    bool
	Default     any
}

// Descriptor is an adapter's static, process-lifetime metadata.
type Descriptor struct {
	Name      string
	Home      string
	Free      bool
	Pay       bool
	Cacheable bool
	Schema    []FieldSchema
}

// Adapter is the uniform contract every provider plug-in implements.
// Search must never panic out of this boundary; all upstream failures
// map to a model.Answer with Success=false and a populated ErrorKind
// (§4.2, §7). The fan-out engine adds its own recover() as a second line
// of defense, but well-behaved adapters handle their own failure modes
// internally so that failure messages stay specific.
type Adapter interface {
	Descriptor() Descriptor
	Search(ctx context.Context, q model.Query, p model.Provider) model.Answer
}

// Registry is the process-wide, read-only-after-init mapping from
// provider name to adapter instance.
type Registry struct {
	byName map[string]Adapter
}

// NewRegistry builds a Registry from a declarative adapter list. A
// duplicate name across adapters is a fatal startup error, matching the
// "Duplicate names at load time are a fatal startup error" invariant in
// §4.2 — the original's __init_subclass__ hook enforced this implicitly
// by overwriting the dict entry; we make it an explicit, reported error
// instead, since Go has no metaclass-style hook to rely on.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	byName := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		name := a.Descriptor().Name
		if name == "" {
			return nil, fmt.Errorf("provider: adapter %T has an empty name", a)
		}
		if _, exists := byName[name]; exists {
			return nil, fmt.Errorf("provider: duplicate adapter name %q", name)
		}
		byName[name] = a
	}
	return &Registry{byName: byName}, nil
}

// Get resolves a provider name to its adapter. The second return value
// is false when the name is unknown. The fan-out engine reports an
// unknown name as a config_error failure answer for that provider; the
// provider is not omitted from the response.
func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// Descriptors returns every registered adapter's Descriptor, e.g. for a
// configuration-schema discovery endpoint.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.byName))
	for _, a := range r.byName {
		out = append(out, a.Descriptor())
	}
	return out
}
