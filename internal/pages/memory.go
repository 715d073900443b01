package pages

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// NewMemoryPageRepository constructs an in-memory page repository.
func NewMemoryPageRepository() PageRepository {
	return &memoryPageRepository{
		byID:     make(map[uuid.UUID]*Page),
		bySlug:   make(map[string]uuid.UUID),
		versions: make(map[uuid.UUID][]*PageVersion),
	}
}

type memoryPageRepository struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*Page
	bySlug   map[string]uuid.UUID
	versions map[uuid.UUID][]*PageVersion
}

func (m *memoryPageRepository) Create(_ context.Context, page *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bySlug[page.Slug]; exists {
		return nil, &ConflictError{Resource: "page", Key: page.Slug}
	}
	if _, exists := m.byID[page.ID]; exists {
		return nil, &ConflictError{Resource: "page", Key: page.ID.String()}
	}
	stored := ClonePage(page)
	m.byID[stored.ID] = stored
	m.bySlug[stored.Slug] = stored.ID
	m.versions[stored.ID] = append(m.versions[stored.ID], versionRecord(stored, OperationCreate, stored.CreatedBy))
	return ClonePage(stored), nil
}

func (m *memoryPageRepository) GetByID(_ context.Context, id uuid.UUID) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	page, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: id.String()}
	}
	return ClonePage(page), nil
}

func (m *memoryPageRepository) GetBySlug(_ context.Context, slug string) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.bySlug[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: slug}
	}
	return ClonePage(m.byID[id]), nil
}

func (m *memoryPageRepository) List(_ context.Context) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Page, 0, len(m.byID))
	for _, page := range m.byID {
		out = append(out, ClonePage(page))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

func (m *memoryPageRepository) Replace(_ context.Context, mutation Mutation) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	page := mutation.Page
	current, ok := m.byID[page.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: page.ID.String()}
	}
	if current.Version != mutation.ExpectedVersion {
		return nil, &ConflictError{
			Resource:        "page",
			Key:             page.ID.String(),
			ExpectedVersion: mutation.ExpectedVersion,
			ActualVersion:   current.Version,
		}
	}
	if page.Slug != current.Slug {
		if _, taken := m.bySlug[page.Slug]; taken {
			return nil, &ConflictError{Resource: "page", Key: page.Slug}
		}
	}

	stored := ClonePage(page)
	stored.Version = mutation.ExpectedVersion + 1
	stored.CreatedAt = current.CreatedAt
	stored.CreatedBy = current.CreatedBy
	if stored.Slug != current.Slug {
		delete(m.bySlug, current.Slug)
		m.bySlug[stored.Slug] = stored.ID
	}
	m.byID[stored.ID] = stored
	m.versions[stored.ID] = append(m.versions[stored.ID], versionRecord(stored, mutation.Operation, mutation.Actor))
	return ClonePage(stored), nil
}

func (m *memoryPageRepository) ListVersions(_ context.Context, pageID uuid.UUID) ([]*PageVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.byID[pageID]; !ok {
		return nil, &NotFoundError{Resource: "page", Key: pageID.String()}
	}
	records := m.versions[pageID]
	out := make([]*PageVersion, 0, len(records))
	for _, record := range records {
		out = append(out, cloneVersion(record))
	}
	return out, nil
}

func (m *memoryPageRepository) GetVersion(_ context.Context, pageID uuid.UUID, version int) (*PageVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, record := range m.versions[pageID] {
		if record.Version == version {
			return cloneVersion(record), nil
		}
	}
	return nil, &NotFoundError{Resource: "page_version", Key: pageID.String() + "@" + strconv.Itoa(version)}
}
