package e2e

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/storefront/internal/auth"
	"github.com/odyssey-erp/storefront/internal/products"
)

type identityStore struct {
	mu   sync.Mutex
	byID map[uuid.UUID]auth.Identity
}

func newIdentityStore() *identityStore {
	return &identityStore{byID: make(map[uuid.UUID]auth.Identity)}
}

func (s *identityStore) FindByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, identity := range s.byID {
		if identity.Email == email {
			return &identity, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (s *identityStore) FindByID(ctx context.Context, id uuid.UUID) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &identity, nil
}

func (s *identityStore) Create(ctx context.Context, identity auth.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == identity.Email {
			return auth.ErrEmailTaken
		}
	}
	s.byID[identity.ID] = identity
	return nil
}

func (s *identityStore) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, changedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	identity.PasswordHash = hash
	identity.PasswordChangedAt = &changedAt
	s.byID[id] = identity
	return nil
}

func (s *identityStore) UpdateProfile(ctx context.Context, id uuid.UUID, name, email *string) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	if name != nil {
		identity.Name = *name
	}
	if email != nil {
		identity.Email = *email
	}
	s.byID[id] = identity
	return &identity, nil
}

func (s *identityStore) List(ctx context.Context, limit, offset int) ([]auth.Identity, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auth.Identity, 0, len(s.byID))
	for _, identity := range s.byID {
		out = append(out, identity)
	}
	total := len(out)
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)
	return out[offset:end], total, nil
}

type productStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]products.Product
}

func newProductStore() *productStore {
	return &productStore{items: make(map[uuid.UUID]products.Product)}
}

func (s *productStore) owned(owner uuid.UUID) []products.Product {
	var out []products.Product
	for _, p := range s.items {
		if p.OwnerID == owner {
			out = append(out, p)
		}
	}
	return out
}

func (s *productStore) List(ctx context.Context, owner uuid.UUID, q products.ListQuery) ([]products.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.owned(owner)
	start := q.Offset()
	if start >= len(items) {
		return nil, nil
	}
	return items[start:min(start+q.Limit, len(items))], nil
}

func (s *productStore) Count(ctx context.Context, owner uuid.UUID, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.owned(owner)), nil
}

func (s *productStore) ListByOwner(ctx context.Context, owner uuid.UUID) ([]products.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owned(owner), nil
}

func (s *productStore) Get(ctx context.Context, id uuid.UUID) (*products.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return nil, products.ErrNotFound
	}
	return &p, nil
}

func (s *productStore) InsertMany(ctx context.Context, batch []products.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range batch {
		s.items[p.ID] = p
	}
	return nil
}

func (s *productStore) Update(ctx context.Context, owner, id uuid.UUID, in products.UpdateInput, now time.Time) (*products.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok || p.OwnerID != owner {
		return nil, products.ErrNotFound
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	p.UpdatedAt = now
	s.items[id] = p
	return &p, nil
}

func (s *productStore) Delete(ctx context.Context, owner, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok || p.OwnerID != owner {
		return products.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *productStore) SetThumbnail(ctx context.Context, owner, id uuid.UUID, url string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok || p.OwnerID != owner {
		return products.ErrNotFound
	}
	p.Thumbnail = url
	p.UpdatedAt = now
	s.items[id] = p
	return nil
}

type welcomeRecorder struct {
	mu     sync.Mutex
	emails []string
}

func (w *welcomeRecorder) Welcome(ctx context.Context, identity auth.Identity) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.emails = append(w.emails, identity.Email)
	return nil
}
