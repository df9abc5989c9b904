package posts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository for scaffolding and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]*Post
	now   func() time.Time
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		posts: make(map[uuid.UUID]*Post),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryRepository) Create(_ context.Context, post *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.slugTaken(post.Slug, post.ID) {
		return nil, ErrSlugExists
	}
	stored := clonePost(post)
	now := m.now()
	stored.CreatedAt, stored.UpdatedAt = now, now
	m.posts[stored.ID] = stored
	return clonePost(stored), nil
}

func (m *MemoryRepository) Update(_ context.Context, post *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.posts[post.ID]
	if !ok || stored.IsDeleted() {
		return nil, notFound(post.ID.String())
	}
	if m.slugTaken(post.Slug, post.ID) {
		return nil, ErrSlugExists
	}
	stored.Body = post.Body
	stored.Slug = post.Slug
	stored.UpdatedAt = m.now()
	return clonePost(stored), nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	post, err := m.GetWithDeleted(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.IsDeleted() {
		return nil, notFound(id.String())
	}
	return post, nil
}

func (m *MemoryRepository) GetWithDeleted(_ context.Context, id uuid.UUID) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	post, ok := m.posts[id]
	if !ok {
		return nil, notFound(id.String())
	}
	return clonePost(post), nil
}

func (m *MemoryRepository) GetBySlug(_ context.Context, slug string) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, post := range m.posts {
		if post.Slug == slug && !post.IsDeleted() {
			return clonePost(post), nil
		}
	}
	return nil, notFound(slug)
}

func (m *MemoryRepository) List(context.Context) ([]*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Post, 0, len(m.posts))
	for _, post := range m.posts {
		if !post.IsDeleted() {
			out = append(out, clonePost(post))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	post, ok := m.posts[id]
	if !ok || post.IsDeleted() {
		return notFound(id.String())
	}
	post.DeletedAt = m.now()
	return nil
}

func (m *MemoryRepository) ForceDelete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[id]; !ok {
		return notFound(id.String())
	}
	delete(m.posts, id)
	return nil
}

func (m *MemoryRepository) Restore(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	post, ok := m.posts[id]
	if !ok {
		return notFound(id.String())
	}
	post.DeletedAt = time.Time{}
	return nil
}

func (m *MemoryRepository) slugTaken(slug string, except uuid.UUID) bool {
	for id, post := range m.posts {
		if id != except && post.Slug == slug && !post.IsDeleted() {
			return true
		}
	}
	return false
}
