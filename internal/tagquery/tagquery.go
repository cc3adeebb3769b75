// Package tagquery parses launcher search strings and filters a page of
// websites against the tag registry.
//
// Query grammar:
//
//	""              -> everything on the page
//	"text"          -> case-insensitive substring match on website name
//	"tag:"          -> everything on the page
//	"tag:work"      -> websites carrying the tag named "work"
//	"tag:work gh"   -> tag "work" AND name contains "gh"
//
// The tag name is matched as the longest case-insensitive prefix of the text
// after "tag:", so tag names containing spaces work without quoting. When
// several tags match with equal length the first one found wins; precedence
// among same-length names is unspecified.
package tagquery

import (
	"strings"

	"github.com/mklint/speeddial/internal/models"
)

const tagPrefix = "tag:"

// Filter applies the query to the given page of websites.
func Filter(query string, websites []models.Website, tags []models.Tag) []models.Website {
	q := strings.TrimSpace(query)
	if q == "" {
		return websites
	}

	if len(q) >= len(tagPrefix) && strings.EqualFold(q[:len(tagPrefix)], tagPrefix) {
		return filterByTag(strings.TrimSpace(q[len(tagPrefix):]), websites, tags)
	}
	return filterByName(q, websites)
}

func filterByTag(rest string, websites []models.Website, tags []models.Tag) []models.Website {
	if rest == "" {
		return websites
	}

	matched, consumed, ok := longestPrefixTag(rest, tags)
	if !ok {
		// A tag: query naming no known tag matches nothing.
		return []models.Website{}
	}

	out := make([]models.Website, 0)
	for _, w := range websites {
		if w.HasTag(matched.ID) {
			out = append(out, w)
		}
	}

	if text := strings.TrimSpace(rest[consumed:]); text != "" {
		out = filterByName(text, out)
	}
	return out
}

// longestPrefixTag finds the tag whose name is the longest case-insensitive
// prefix of rest, comparing rune-wise so the byte count consumed is measured
// on rest itself, not on the tag name (case folding can change byte length).
// Returns the tag and the number of bytes of rest it covers.
func longestPrefixTag(rest string, tags []models.Tag) (models.Tag, int, bool) {
	restRunes := []rune(rest)
	var best models.Tag
	bestRunes := 0
	consumed := 0
	found := false
	for _, t := range tags {
		n := len([]rune(t.Name))
		if n == 0 || n > len(restRunes) {
			continue
		}
		prefix := string(restRunes[:n])
		if !strings.EqualFold(prefix, t.Name) {
			continue
		}
		if !found || n > bestRunes {
			best = t
			bestRunes = n
			consumed = len(prefix)
			found = true
		}
	}
	return best, consumed, found
}

func filterByName(text string, websites []models.Website) []models.Website {
	needle := strings.ToLower(text)
	out := make([]models.Website, 0)
	for _, w := range websites {
		if strings.Contains(strings.ToLower(w.Name), needle) {
			out = append(out, w)
		}
	}
	return out
}
