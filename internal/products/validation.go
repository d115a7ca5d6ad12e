package products

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxPrice is the first value NUMERIC(12,2) cannot hold.
const maxPrice = 1e10

// validPrice reports whether p is still positive and in range once rounded to cents,
// which is how NUMERIC(12,2) stores it.
func validPrice(p float64) bool {
	cents := math.Round(p * 100)
	return cents >= 1 && cents < maxPrice*100
}

// acceptCandidate decodes one bulk-create entry. Entries that fail to decode or lack a
// name, a positive price, or a non-negative integer quantity are rejected.
func acceptCandidate(raw json.RawMessage, owner uuid.UUID, now time.Time) (Product, bool) {
	var c candidate
	if err := json.Unmarshal(raw, &c); err != nil {
		return Product{}, false
	}
	if c.Name == nil || strings.TrimSpace(*c.Name) == "" {
		return Product{}, false
	}
	if c.Price == nil || !validPrice(*c.Price) {
		return Product{}, false
	}
	if c.Quantity == nil || *c.Quantity < 0 || *c.Quantity != math.Trunc(*c.Quantity) || *c.Quantity > math.MaxInt32 {
		return Product{}, false
	}

	product := Product{
		ID:        uuid.New(),
		OwnerID:   owner,
		Name:      strings.TrimSpace(*c.Name),
		Price:     *c.Price,
		Quantity:  int(*c.Quantity),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.Description != nil {
		product.Description = *c.Description
	}
	if c.Thumbnail != nil {
		product.Thumbnail = *c.Thumbnail
	}
	return product, true
}
