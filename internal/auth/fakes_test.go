package auth_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/storefront/internal/auth"
	_ "github.com/odyssey-erp/storefront/testing"
)

type memRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]auth.Identity
	creates int
	writes  int
}

func newMemRepo() *memRepo {
	return &memRepo{byID: make(map[uuid.UUID]auth.Identity)}
}

func (m *memRepo) FindByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, identity := range m.byID {
		if identity.Email == email {
			copied := identity
			return &copied, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memRepo) FindByID(ctx context.Context, id uuid.UUID) (*auth.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &identity, nil
}

func (m *memRepo) Create(ctx context.Context, identity auth.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == identity.Email {
			return auth.ErrEmailTaken
		}
	}
	m.byID[identity.ID] = identity
	m.creates++
	return nil
}

func (m *memRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, changedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	identity.PasswordHash = hash
	identity.PasswordChangedAt = &changedAt
	identity.UpdatedAt = changedAt
	m.byID[id] = identity
	m.writes++
	return nil
}

func (m *memRepo) UpdateProfile(ctx context.Context, id uuid.UUID, name, email *string) (*auth.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	if email != nil {
		for otherID, other := range m.byID {
			if otherID != id && other.Email == *email {
				return nil, auth.ErrEmailTaken
			}
		}
		identity.Email = *email
	}
	if name != nil {
		identity.Name = *name
	}
	m.byID[id] = identity
	m.writes++
	return &identity, nil
}

func (m *memRepo) List(ctx context.Context, limit, offset int) ([]auth.Identity, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]auth.Identity, 0, len(m.byID))
	for _, identity := range m.byID {
		all = append(all, identity)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	if offset >= len(all) {
		return nil, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (m *memRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
