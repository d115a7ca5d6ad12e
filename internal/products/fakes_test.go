package products_test

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/storefront/internal/auth"
	"github.com/odyssey-erp/storefront/internal/platform/httpx"
	"github.com/odyssey-erp/storefront/internal/products"
	_ "github.com/odyssey-erp/storefront/testing"
)

type memRepo struct {
	mu       sync.Mutex
	items    map[uuid.UUID]products.Product
	inserts  int
	mutation int
	listErr  error
}

func newMemRepo() *memRepo {
	return &memRepo{items: make(map[uuid.UUID]products.Product)}
}

func (m *memRepo) seed(p products.Product) products.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.items[p.ID] = p
	return p
}

func (m *memRepo) filtered(owner uuid.UUID, name string) []products.Product {
	var out []products.Product
	for _, p := range m.items {
		if p.OwnerID != owner {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(name)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (m *memRepo) List(ctx context.Context, owner uuid.UUID, q products.ListQuery) ([]products.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	items := m.filtered(owner, q.Name)
	sort.SliceStable(items, func(i, j int) bool {
		for _, key := range q.Sort {
			c := compare(items[i], items[j], key.Field)
			if c == 0 {
				continue
			}
			if key.Desc {
				return c > 0
			}
			return c < 0
		}
		return items[i].ID.String() < items[j].ID.String()
	})
	start := q.Offset()
	if start >= len(items) {
		return nil, nil
	}
	end := start + q.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], nil
}

func compare(a, b products.Product, field string) int {
	switch field {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "price":
		switch {
		case a.Price < b.Price:
			return -1
		case a.Price > b.Price:
			return 1
		}
		return 0
	case "quantity":
		return a.Quantity - b.Quantity
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func (m *memRepo) Count(ctx context.Context, owner uuid.UUID, name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.filtered(owner, name)), nil
}

func (m *memRepo) ListByOwner(ctx context.Context, owner uuid.UUID) ([]products.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filtered(owner, ""), nil
}

func (m *memRepo) Get(ctx context.Context, id uuid.UUID) (*products.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, products.ErrNotFound
	}
	return &p, nil
}

func (m *memRepo) InsertMany(ctx context.Context, batch []products.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range batch {
		m.items[p.ID] = p
	}
	m.inserts++
	return nil
}

func (m *memRepo) Update(ctx context.Context, owner, id uuid.UUID, in products.UpdateInput, now time.Time) (*products.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
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
	m.items[id] = p
	m.mutation++
	return &p, nil
}

func (m *memRepo) Delete(ctx context.Context, owner, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok || p.OwnerID != owner {
		return products.ErrNotFound
	}
	delete(m.items, id)
	m.mutation++
	return nil
}

func (m *memRepo) SetThumbnail(ctx context.Context, owner, id uuid.UUID, url string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok || p.OwnerID != owner {
		return products.ErrNotFound
	}
	p.Thumbnail = url
	p.UpdatedAt = now
	m.items[id] = p
	m.mutation++
	return nil
}

func (m *memRepo) get(id uuid.UUID) (products.Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	return p, ok
}

type putCall struct {
	key         string
	contentType string
	body        []byte
}

type fakeAssets struct {
	calls []putCall
}

func (f *fakeAssets) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.calls = append(f.calls, putCall{key: key, contentType: contentType, body: data})
	return "https://cdn.example.test/" + key, nil
}

// tokenAuth resolves bearer tokens from a fixed table.
type tokenAuth map[string]auth.Identity

func (t tokenAuth) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	identity, ok := t[token]
	if !ok {
		return nil, httpx.Authentication("Invalid token. Please log in again.")
	}
	return &identity, nil
}

// pngBytes is a 1x1 transparent PNG.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

func pngUpload() *products.Upload {
	return &products.Upload{Filename: "thumb.png", Size: int64(len(pngBytes)), Body: bytes.NewReader(pngBytes)}
}
