package api

import "github.com/mklint/speeddial/internal/collection"

// CreateWebsiteRequest is the request body for adding a website.
type CreateWebsiteRequest = collection.WebsiteInput

// PatchWebsiteRequest is the request body for editing a website.
type PatchWebsiteRequest = collection.WebsitePatch

// ReorderRequest carries the full new id order for one page.
type ReorderRequest struct {
	IDs []string `json:"ids"`
}

// TagRequest is the request body for creating or renaming a tag.
type TagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Query   string `json:"query"`
	Page    int    `json:"page"`
	Results any    `json:"results"`
}
