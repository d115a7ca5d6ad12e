package products

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/odyssey-erp/storefront/internal/platform/httpx"
)

const (
	defaultPage  = 1
	defaultLimit = 100
	maxLimit     = 1000
	defaultSort  = "-createdAt"
)

// SortKey orders a listing by one field.
type SortKey struct {
	Field string
	Desc  bool
}

// ListQuery holds the listing options accepted by getAll.
type ListQuery struct {
	Name   string
	Sort   []SortKey
	Fields []string
	Page   int
	Limit  int
}

// Offset returns the number of rows to skip.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ParseListQuery reads name, sort, fields, page and limit from query parameters.
// Unknown sort or projection fields are rejected; bad page or limit values fall back to defaults.
func ParseListQuery(values url.Values) (ListQuery, error) {
	q := ListQuery{
		Name:  strings.TrimSpace(values.Get("name")),
		Page:  positiveInt(values.Get("page"), defaultPage),
		Limit: positiveInt(values.Get("limit"), defaultLimit),
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}

	sortParam := values.Get("sort")
	if strings.TrimSpace(sortParam) == "" {
		sortParam = defaultSort
	}
	for _, raw := range splitList(sortParam) {
		key := SortKey{Field: raw}
		if strings.HasPrefix(raw, "-") {
			key = SortKey{Field: raw[1:], Desc: true}
		}
		if _, ok := lookupField(key.Field); !ok {
			return ListQuery{}, httpx.Validation(fmt.Sprintf("Invalid sort field: %s", key.Field))
		}
		q.Sort = append(q.Sort, key)
	}

	for _, name := range splitList(values.Get("fields")) {
		if _, ok := lookupField(name); !ok {
			return ListQuery{}, httpx.Validation(fmt.Sprintf("Invalid field: %s", name))
		}
		q.Fields = append(q.Fields, name)
	}
	return q, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func positiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

// orderBy renders the ORDER BY clause from whitelisted columns, with id as tiebreaker.
func orderBy(keys []SortKey) string {
	parts := make([]string, 0, len(keys)+1)
	for _, key := range keys {
		f, ok := lookupField(key.Field)
		if !ok {
			continue
		}
		dir := "ASC"
		if key.Desc {
			dir = "DESC"
		}
		parts = append(parts, f.column+" "+dir)
	}
	if len(parts) == 0 {
		parts = append(parts, "created_at DESC")
	}
	parts = append(parts, "id ASC")
	return strings.Join(parts, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching name as a literal substring.
func containsPattern(name string) string {
	return "%" + likeEscaper.Replace(name) + "%"
}
