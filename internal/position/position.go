// Package position computes page/order assignment for the launcher grid.
// All functions are pure; the collection store decides when to commit.
package position

import (
	"sort"

	"github.com/mklint/speeddial/internal/models"
)

// IconsPerPage returns the page capacity for a grid size.
func IconsPerPage(g models.GridSize) int {
	switch g {
	case models.GridSmall:
		return 9
	case models.GridLarge:
		return 25
	default:
		return 16
	}
}

// Columns returns the column count for a grid size.
func Columns(g models.GridSize) int {
	switch g {
	case models.GridSmall:
		return 3
	case models.GridLarge:
		return 5
	default:
		return 4
	}
}

// TotalPages returns the page count for the given websites. It is never
// below 1, and never below the highest page actually in use (deletions can
// leave later pages under-filled without renumbering them).
func TotalPages(websites []models.Website, perPage int) int {
	pages := (len(websites) + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	for i := range websites {
		if p := websites[i].Position.Page + 1; p > pages {
			pages = p
		}
	}
	return pages
}

// Append returns the position for a newly added website: the next free slot
// on the last page, or the first slot of a fresh page when the last page is
// at capacity.
func Append(websites []models.Website, perPage int) models.Position {
	if len(websites) == 0 {
		return models.Position{Page: 0, Order: 0}
	}
	lastPage := 0
	for i := range websites {
		if websites[i].Position.Page > lastPage {
			lastPage = websites[i].Position.Page
		}
	}
	n := 0
	for i := range websites {
		if websites[i].Position.Page == lastPage {
			n++
		}
	}
	if n >= perPage {
		return models.Position{Page: lastPage + 1, Order: 0}
	}
	return models.Position{Page: lastPage, Order: n}
}

// Compact closes order gaps on a single page after a removal so the
// remaining orders form exactly 0..n-1. Websites on other pages are
// untouched. The slice is modified in place.
func Compact(websites []models.Website, page int) {
	idx := make([]int, 0)
	for i := range websites {
		if websites[i].Position.Page == page {
			idx = append(idx, i)
		}
	}
	sort.Slice(idx, func(a, b int) bool {
		return websites[idx[a]].Position.Order < websites[idx[b]].Position.Order
	})
	for rank, i := range idx {
		websites[i].Position.Order = rank
	}
}

// Redistribute re-chunks the whole collection for a new page capacity:
// websites are flattened into their global (page, order) sequence and dealt
// back out into consecutive full pages. Relative order is preserved; only
// page boundaries move. Returns the new positions keyed by website id
// without touching the input.
func Redistribute(websites []models.Website, perPage int) map[string]models.Position {
	order := make([]int, len(websites))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		wa, wb := websites[order[a]], websites[order[b]]
		if wa.Position.Page != wb.Position.Page {
			return wa.Position.Page < wb.Position.Page
		}
		return wa.Position.Order < wb.Position.Order
	})

	out := make(map[string]models.Position, len(websites))
	for rank, i := range order {
		out[websites[i].ID] = models.Position{
			Page:  rank / perPage,
			Order: rank % perPage,
		}
	}
	return out
}

// PageWebsites returns copies of the websites on the given page sorted by
// order. Used for the current-page derivation and for search input.
func PageWebsites(websites []models.Website, page int) []models.Website {
	out := make([]models.Website, 0)
	for i := range websites {
		if websites[i].Position.Page == page {
			out = append(out, websites[i].Clone())
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].Position.Order < out[b].Position.Order
	})
	return out
}
