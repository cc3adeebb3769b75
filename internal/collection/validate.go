package collection

import (
	"fmt"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mklint/speeddial/internal/apperr"
	"github.com/mklint/speeddial/internal/models"
)

// defaultScheme is prepended to scheme-less URLs before parsing.
const defaultScheme = "https"

// WebsiteInput is the payload accepted by AddWebsite.
type WebsiteInput struct {
	Name            string           `json:"name"`
	URL             string           `json:"url"`
	CustomIcon      string           `json:"customIcon"`
	Zoom            float64          `json:"zoom"`
	OffsetX         float64          `json:"offsetX"`
	OffsetY         float64          `json:"offsetY"`
	BackgroundColor string           `json:"backgroundColor"`
	CategoryID      string           `json:"categoryId"`
	TagIDs          []string         `json:"tagIds"`
	ExtraLinks      []ExtraLinkInput `json:"extraLinks"`
}

// ExtraLinkInput is a secondary link in a website payload.
type ExtraLinkInput struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// WebsitePatch is the partial update accepted by EditWebsite. Nil fields are
// left untouched; Position moves the website only when set explicitly.
type WebsitePatch struct {
	Name            *string           `json:"name"`
	URL             *string           `json:"url"`
	CustomIcon      *string           `json:"customIcon"`
	Zoom            *float64          `json:"zoom"`
	OffsetX         *float64          `json:"offsetX"`
	OffsetY         *float64          `json:"offsetY"`
	BackgroundColor *string           `json:"backgroundColor"`
	CategoryID      *string           `json:"categoryId"`
	TagIDs          *[]string         `json:"tagIds"`
	ExtraLinks      *[]ExtraLinkInput `json:"extraLinks"`
	Position        *models.Position  `json:"position"`
}

// Validate implements the field rules for a new website. URL correctness is
// checked separately after normalization.
func (in WebsiteInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, models.MaxNameLength)),
		validation.Field(&in.URL, validation.Required),
		validation.Field(&in.ExtraLinks, validation.Length(0, models.MaxExtraLinks)),
	)
}

// normalizeURL prepends the default scheme when missing and verifies the
// result parses as an absolute URL with a host.
func normalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("is required")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = defaultScheme + "://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("must be a valid absolute URL")
	}
	return u.String(), nil
}

// fieldErrors converts an ozzo validation result into the per-field message
// map carried by apperr.ValidationError.
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	if errs, ok := err.(validation.Errors); ok {
		for field, ferr := range errs {
			out[field] = ferr.Error()
		}
		return out
	}
	if err != nil {
		out["_"] = err.Error()
	}
	return out
}

// buildExtraLinks validates and normalizes extra-link payloads, assigning ids.
func (s *Store) buildExtraLinks(inputs []ExtraLinkInput) ([]models.ExtraLink, map[string]string) {
	if len(inputs) > models.MaxExtraLinks {
		return nil, map[string]string{"extraLinks": fmt.Sprintf("at most %d links allowed", models.MaxExtraLinks)}
	}
	links := make([]models.ExtraLink, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for i, in := range inputs {
		field := fmt.Sprintf("extraLinks.%d", i)
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, map[string]string{field + ".name": "is required"}
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return nil, map[string]string{field + ".name": fmt.Sprintf("duplicate link name %q", name)}
		}
		seen[key] = struct{}{}
		normalized, err := normalizeURL(in.URL)
		if err != nil {
			return nil, map[string]string{field + ".url": err.Error()}
		}
		links = append(links, models.ExtraLink{ID: s.newID(), Name: name, URL: normalized})
	}
	return links, nil
}

// dedupeTagIDs drops repeated tag ids while preserving first-seen order.
// tagIds is a set; duplicates in input payloads are harmless noise.
func dedupeTagIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// checkTagRefs rejects references to tags the registry does not hold.
// Must be called with the store lock held.
func (s *Store) checkTagRefs(categoryID string, tagIDs []string) map[string]string {
	known := make(map[string]struct{}, len(s.tags))
	for _, t := range s.tags {
		known[t.ID] = struct{}{}
	}
	if categoryID != "" {
		if _, ok := known[categoryID]; !ok {
			return map[string]string{"categoryId": fmt.Sprintf("unknown tag %q", categoryID)}
		}
	}
	for _, id := range tagIDs {
		if _, ok := known[id]; !ok {
			return map[string]string{"tagIds": fmt.Sprintf("unknown tag %q", id)}
		}
	}
	return nil
}

func validationError(fields map[string]string) error {
	return apperr.NewValidation(fields)
}
