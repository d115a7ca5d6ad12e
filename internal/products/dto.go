package products

import (
	"encoding/json"
	"io"
)

// BulkCreateRequest is the body of a bulk create call. Candidates are decoded one by one.
type BulkCreateRequest struct {
	Data []json.RawMessage `json:"data"`
}

// candidate is a loosely typed product submission; nil pointers mean the field was absent.
type candidate struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	Quantity    *float64 `json:"quantity"`
	Thumbnail   *string  `json:"thumbnail"`
}

// UpdateInput carries the editable product fields; nil fields are left untouched.
type UpdateInput struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Price       *float64 `json:"price" validate:"omitempty,price"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Quantity    *int     `json:"quantity" validate:"omitempty,gte=0"`
}

func (in UpdateInput) empty() bool {
	return in.Name == nil && in.Price == nil && in.Description == nil && in.Quantity == nil
}

// Upload is an image submitted for a product thumbnail.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}
