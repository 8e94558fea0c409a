package engine

import (
	"strings"

	"github.com/roach88/fieldquery/internal/schema"
)

// SortDirection orders the root result set.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// ParseSortDirection accepts asc/desc and their long forms, case-insensitively.
// The empty string is Ascending.
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return "", invalidRequest("direction", "unknown sort direction %q", s)
	}
}

// Request is one page of a search.
type Request struct {
	// Columns are the requested column paths; empty means every attribute.
	Columns []string

	// Filter is filter text; empty means no filter.
	Filter string

	Offset int
	Size   int

	// SortColumn names a root scalar attribute; empty means the identity.
	SortColumn    string
	SortDirection SortDirection
}

// ordering is a validated sort.
type ordering struct {
	attr *schema.Attribute
	desc bool
}

// validate checks pagination and sort before any query runs.
func (r *Repository) validate(req Request) (ordering, error) {
	switch {
	case req.Size <= 0:
		return ordering{}, invalidRequest("size", "page size must be positive, got %d", req.Size)
	case req.Offset < 0:
		return ordering{}, invalidRequest("offset", "offset must not be negative, got %d", req.Offset)
	case r.maxPageSize > 0 && req.Size > r.maxPageSize:
		return ordering{}, invalidRequest("size", "page size %d exceeds the maximum of %d", req.Size, r.maxPageSize)
	}

	dir, err := ParseSortDirection(string(req.SortDirection))
	if err != nil {
		return ordering{}, err
	}

	o := ordering{attr: r.entity.Identity(), desc: dir == Descending}
	if name := strings.TrimSpace(req.SortColumn); name != "" {
		attr, ok := r.entity.Attribute(name)
		if !ok {
			return ordering{}, invalidRequest("sort", "unknown sort column %q", name)
		}
		if attr.IsRelation() {
			return ordering{}, invalidRequest("sort", "cannot sort by relation %q", name)
		}
		o.attr = attr
	}
	return o, nil
}
