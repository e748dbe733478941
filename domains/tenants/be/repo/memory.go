package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/conductor-saas/conductor/domains/tenants/be/service"
)

// MemoryRepository is an in-memory Repository for tests and local development.
type MemoryRepository struct {
	mu   sync.Mutex
	data map[uuid.UUID]service.Tenant
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[uuid.UUID]service.Tenant)}
}

func (r *MemoryRepository) Create(ctx context.Context, t service.Tenant) (service.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[t.ID]; exists {
		return service.Tenant{}, service.ErrConflict
	}
	r.data[t.ID] = t
	return t, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (service.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.data[id]
	if !ok {
		return service.Tenant{}, service.ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepository) List(ctx context.Context, opts service.ListOptions) (service.ListResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]service.Tenant, 0, len(r.data))
	for _, t := range r.data {
		if opts.Status != nil && t.Status != *opts.Status {
			continue
		}
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	page := opts.Page
	if page < 1 {
		page = 1
	}
	size := opts.PageSize
	if size <= 0 {
		size = 20
	}

	start := (page - 1) * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}

	total := len(all)
	return service.ListResult{
		Tenants:    all[start:end],
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: (total + size - 1) / size,
	}, nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status service.Status) (service.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.data[id]
	if !ok {
		return service.Tenant{}, service.ErrNotFound
	}
	t.Status = status
	r.data[id] = t
	return t, nil
}

var _ service.Repository = (*MemoryRepository)(nil)
