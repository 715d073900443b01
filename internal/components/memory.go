package components

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// NewMemoryDefinitionRepository constructs an in-memory definition repository.
func NewMemoryDefinitionRepository() DefinitionRepository {
	return &memoryDefinitionRepository{
		byID:   make(map[uuid.UUID]*Definition),
		byType: make(map[string]uuid.UUID),
	}
}

type memoryDefinitionRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Definition
	byType map[string]uuid.UUID
}

func (m *memoryDefinitionRepository) Create(_ context.Context, definition *Definition) (*Definition, error) {
	if definition == nil {
		return nil, ErrTypeRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byType[definition.Type]; exists {
		return nil, fmt.Errorf("component_definition %q already exists", definition.Type)
	}
	cloned := cloneDefinition(definition)
	if cloned.ID == uuid.Nil {
		cloned.ID = uuid.New()
	}
	m.byID[cloned.ID] = cloned
	m.byType[cloned.Type] = cloned.ID
	return cloneDefinition(cloned), nil
}

func (m *memoryDefinitionRepository) GetByID(_ context.Context, id uuid.UUID) (*Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "component_definition", Key: id.String()}
	}
	return cloneDefinition(record), nil
}

func (m *memoryDefinitionRepository) GetByType(_ context.Context, componentType string) (*Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byType[componentType]
	if !ok {
		return nil, &NotFoundError{Resource: "component_definition", Key: componentType}
	}
	return cloneDefinition(m.byID[id]), nil
}

func (m *memoryDefinitionRepository) List(_ context.Context) ([]*Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	defs := make([]*Definition, 0, len(m.byID))
	for _, def := range m.byID {
		defs = append(defs, cloneDefinition(def))
	}
	return defs, nil
}

func (m *memoryDefinitionRepository) Update(_ context.Context, definition *Definition) (*Definition, error) {
	if definition == nil {
		return nil, ErrTypeRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[definition.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "component_definition", Key: definition.ID.String()}
	}
	if existing.Type != definition.Type {
		delete(m.byType, existing.Type)
		m.byType[definition.Type] = definition.ID
	}
	cloned := cloneDefinition(definition)
	m.byID[cloned.ID] = cloned
	return cloneDefinition(cloned), nil
}
