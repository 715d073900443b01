package components

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// Registry is the read-only catalog consulted by the page service and the
// editor. It is safe for concurrent use; locking is left to the repository.
type Registry struct {
	repo   DefinitionRepository
	logger interfaces.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used by the registry.
func WithLogger(logger interfaces.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry wraps repo as a definition registry.
func NewRegistry(repo DefinitionRepository, opts ...RegistryOption) *Registry {
	r := &Registry{
		repo:   repo,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// ListDefinitions returns every definition, retired ones included, ordered by
// category and display name.
func (r *Registry) ListDefinitions(ctx context.Context) ([]*Definition, error) {
	defs, err := r.repo.List(ctx)
	if err != nil {
		r.logger.Error("components.list.failed", "error", err)
		return nil, err
	}
	out := cloneDefinitions(defs)
	SortDefinitions(out)
	return out, nil
}

// GetDefinition resolves componentType. Retired definitions are returned so
// existing instances keep resolving.
func (r *Registry) GetDefinition(ctx context.Context, componentType string) (*Definition, error) {
	key := NormalizeType(componentType)
	if key == "" {
		return nil, &NotFoundError{Resource: "component_definition", Key: componentType}
	}
	def, err := r.repo.GetByType(ctx, key)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			r.logger.Debug("components.get.not_found", "component_type", key)
			return nil, &NotFoundError{Resource: "component_definition", Key: componentType}
		}
		r.logger.Error("components.get.failed", "component_type", key, "error", err)
		return nil, err
	}
	return cloneDefinition(def), nil
}

// Resolve returns the definition for a new instance of componentType. Retired
// types fail with *RetiredError.
func (r *Registry) Resolve(ctx context.Context, componentType string) (*Definition, error) {
	def, err := r.GetDefinition(ctx, componentType)
	if err != nil {
		return nil, err
	}
	if def.Retired {
		return nil, &RetiredError{Type: def.Type}
	}
	return def, nil
}

// SortDefinitions orders defs by category, display name and type.
func SortDefinitions(defs []*Definition) {
	sort.SliceStable(defs, func(i, j int) bool {
		ci, cj := strings.ToLower(defs[i].Category), strings.ToLower(defs[j].Category)
		if ci != cj {
			return ci < cj
		}
		ni, nj := strings.ToLower(defs[i].DisplayName), strings.ToLower(defs[j].DisplayName)
		if ni != nj {
			return ni < nj
		}
		return defs[i].Type < defs[j].Type
	})
}
