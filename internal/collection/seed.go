package collection

import (
	"time"

	"github.com/mklint/speeddial/internal/favicon"
	"github.com/mklint/speeddial/internal/models"
)

// seedData builds the default collection used when no valid snapshot
// exists. Positions are laid out sequentially for the default grid size.
func seedData(newID func() string, resolver favicon.Resolver) models.SnapshotData {
	now := time.Now().UTC()

	devTag := models.Tag{ID: newID(), Name: "dev", Color: "#6e86ff"}
	newsTag := models.Tag{ID: newID(), Name: "news", Color: "#ffb36e"}

	entries := []struct {
		name string
		url  string
		tag  string
	}{
		{"GitHub", "https://github.com", devTag.ID},
		{"Go Packages", "https://pkg.go.dev", devTag.ID},
		{"Hacker News", "https://news.ycombinator.com", newsTag.ID},
		{"Wikipedia", "https://www.wikipedia.org", ""},
	}

	websites := make([]models.Website, 0, len(entries))
	for i, e := range entries {
		tagIDs := []string{}
		if e.tag != "" {
			tagIDs = append(tagIDs, e.tag)
		}
		websites = append(websites, models.Website{
			ID:         newID(),
			Name:       e.name,
			URL:        e.url,
			Favicon:    resolver.Resolve(e.url),
			TagIDs:     tagIDs,
			ExtraLinks: []models.ExtraLink{},
			Position:   models.Position{Page: 0, Order: i},
			Metadata:   models.Metadata{CreatedAt: now, UpdatedAt: now},
		})
	}

	return models.SnapshotData{
		Websites: websites,
		Tags:     []models.Tag{devTag, newsTag},
		Settings: models.DefaultSettings(),
	}
}
