package products

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry owned by exactly one identity.
type Product struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"product_owner_id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	Thumbnail   string    `json:"thumbnail"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// field describes one projectable attribute: its JSON name, column and accessor.
type field struct {
	name   string
	column string
	value  func(Product) any
}

var fieldCatalog = []field{
	{"id", "id", func(p Product) any { return p.ID }},
	{"product_owner_id", "product_owner_id", func(p Product) any { return p.OwnerID }},
	{"name", "name", func(p Product) any { return p.Name }},
	{"price", "price", func(p Product) any { return p.Price }},
	{"description", "description", func(p Product) any { return p.Description }},
	{"quantity", "quantity", func(p Product) any { return p.Quantity }},
	{"thumbnail", "thumbnail", func(p Product) any { return p.Thumbnail }},
	{"createdAt", "created_at", func(p Product) any { return p.CreatedAt }},
	{"updatedAt", "updated_at", func(p Product) any { return p.UpdatedAt }},
}

func lookupField(name string) (field, bool) {
	for _, f := range fieldCatalog {
		if f.name == name {
			return f, true
		}
	}
	return field{}, false
}

// Project renders p as a map holding only the named fields. An empty list selects every field.
func (p Product) Project(fields []string) map[string]any {
	out := make(map[string]any, len(fieldCatalog))
	if len(fields) == 0 {
		for _, f := range fieldCatalog {
			out[f.name] = f.value(p)
		}
		return out
	}
	for _, name := range fields {
		if f, ok := lookupField(name); ok {
			out[f.name] = f.value(p)
		}
	}
	out["id"] = p.ID
	return out
}

// BulkResult reports the outcome of a bulk insert.
type BulkResult struct {
	InsertedCount int         `json:"insertedCount"`
	InsertedIDs   []uuid.UUID `json:"insertedIds"`
}

// ListResult is one page of projected products with the unpaged total.
type ListResult struct {
	Items []map[string]any
	Total int
}
