package mockapi

import (
	"fmt"
	"net/http"
	"strconv"
)

const (
	DefaultSkip  = 0
	DefaultLimit = 100
	MaxLimit     = 1000
)

type PaginationParams struct {
	Skip  int
	Limit int
}

// ParsePagination reads skip and limit. Unlike a lenient UI default, a
// malformed value is rejected the way the backend rejects it.
func ParsePagination(r *http.Request) (PaginationParams, error) {
	p := PaginationParams{Skip: DefaultSkip, Limit: DefaultLimit}

	if raw := r.URL.Query().Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return p, fmt.Errorf("skip must be a non-negative integer")
		}
		p.Skip = skip
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > MaxLimit {
			return p, fmt.Errorf("limit must be between 1 and %d", MaxLimit)
		}
		p.Limit = limit
	}

	return p, nil
}

func paginate[T any](items []T, p PaginationParams) []T {
	if p.Skip >= len(items) {
		return []T{}
	}
	end := p.Skip + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Skip:end]
}
