// Package models defines the domain types for Speeddial.
package models

import "time"

// Limits enforced at the CRUD and import boundaries.
const (
	MaxNameLength = 50
	MaxExtraLinks = 10
)

// Position locates a website on the launcher grid: which page it lives on
// and its rank within that page. Orders on a page are always a contiguous
// 0..n-1 sequence.
type Position struct {
	Page  int `json:"page"`
	Order int `json:"order"`
}

// ExtraLink is a secondary link attached to a website (e.g. a project's
// issue tracker next to its homepage).
type ExtraLink struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Metadata tracks bookkeeping fields that never influence layout.
type Metadata struct {
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	VisitCount  int        `json:"visitCount"`
	LastVisited *time.Time `json:"lastVisited"`
}

// Website is a single bookmarked entry on the grid.
type Website struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	URL             string      `json:"url"`
	Favicon         string      `json:"favicon"`
	CustomIcon      string      `json:"customIcon,omitempty"`
	Zoom            float64     `json:"zoom,omitempty"`
	OffsetX         float64     `json:"offsetX,omitempty"`
	OffsetY         float64     `json:"offsetY,omitempty"`
	BackgroundColor string      `json:"backgroundColor,omitempty"`
	CategoryID      string      `json:"categoryId,omitempty"`
	TagIDs          []string    `json:"tagIds"`
	ExtraLinks      []ExtraLink `json:"extraLinks"`
	Position        Position    `json:"position"`
	Metadata        Metadata    `json:"metadata"`
}

// HasTag reports whether the website carries the given tag id.
func (w *Website) HasTag(tagID string) bool {
	for _, id := range w.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the website.
func (w Website) Clone() Website {
	out := w
	out.TagIDs = append([]string(nil), w.TagIDs...)
	out.ExtraLinks = append([]ExtraLink(nil), w.ExtraLinks...)
	if w.Metadata.LastVisited != nil {
		t := *w.Metadata.LastVisited
		out.Metadata.LastVisited = &t
	}
	return out
}

// Tag is a named, colored label referenced by websites.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
