package tagquery

import (
	"testing"

	"github.com/mklint/speeddial/internal/models"
)

var testTags = []models.Tag{
	{ID: "t-work", Name: "work", Color: "#ff0000"},
	{ID: "t-workout", Name: "workout", Color: "#00ff00"},
	{ID: "t-news", Name: "news", Color: "#0000ff"},
}

func testSites() []models.Website {
	return []models.Website{
		{ID: "w1", Name: "GitHub", TagIDs: []string{"t-work"}},
		{ID: "w2", Name: "Jira Board", TagIDs: []string{"t-work"}},
		{ID: "w3", Name: "Gym Tracker", TagIDs: []string{"t-workout"}},
		{ID: "w4", Name: "Hacker News", TagIDs: []string{"t-news"}},
		{ID: "w5", Name: "Untagged", TagIDs: nil},
	}
}

func ids(ws []models.Website) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.ID
	}
	return out
}

func TestEmptyQueryReturnsAll(t *testing.T) {
	sites := testSites()
	got := Filter("   ", sites, testTags)
	if len(got) != len(sites) {
		t.Errorf("len = %d, want %d", len(got), len(sites))
	}
}

func TestPlainTextFiltersName(t *testing.T) {
	got := Filter("gIt", testSites(), testTags)
	if len(got) != 1 || got[0].ID != "w1" {
		t.Errorf("got %v, want [w1]", ids(got))
	}
}

func TestBareTagPrefixReturnsAll(t *testing.T) {
	sites := testSites()
	for _, q := range []string{"tag:", "TAG:", "tag:   "} {
		got := Filter(q, sites, testTags)
		if len(got) != len(sites) {
			t.Errorf("Filter(%q) len = %d, want %d", q, len(got), len(sites))
		}
	}
}

func TestTagQueryFiltersByTag(t *testing.T) {
	got := Filter("tag:work", testSites(), testTags)
	if len(got) != 2 {
		t.Fatalf("got %v, want [w1 w2]", ids(got))
	}
}

func TestTagQueryLongestPrefixWins(t *testing.T) {
	// "workout" is a longer prefix than "work", so w3 matches, not w1/w2.
	got := Filter("tag:workout", testSites(), testTags)
	if len(got) != 1 || got[0].ID != "w3" {
		t.Errorf("got %v, want [w3]", ids(got))
	}
}

func TestTagQueryWithTrailingText(t *testing.T) {
	got := Filter("tag:work gh", testSites(), testTags)
	if len(got) != 1 || got[0].ID != "w1" {
		t.Errorf("got %v, want [w1]", ids(got))
	}
}

func TestTagQueryCaseInsensitive(t *testing.T) {
	got := Filter("tag:WORK JIRA", testSites(), testTags)
	if len(got) != 1 || got[0].ID != "w2" {
		t.Errorf("got %v, want [w2]", ids(got))
	}
}

func TestTagQueryFoldedRuneWidths(t *testing.T) {
	// The Kelvin sign (U+212A, 3 bytes) case-folds to "k" (1 byte), so the
	// remainder after the tag name must be measured on the query text itself.
	tags := []models.Tag{{ID: "t-kube", Name: "kube", Color: "#326ce5"}}
	sites := []models.Website{
		{ID: "w1", Name: "Kube Dashboard", TagIDs: []string{"t-kube"}},
		{ID: "w2", Name: "Kube Logs", TagIDs: []string{"t-kube"}},
	}

	got := Filter("tag:\u212Aube dash", sites, tags)
	if len(got) != 1 || got[0].ID != "w1" {
		t.Errorf("got %v, want [w1]", ids(got))
	}
}

func TestUnknownTagMatchesNothing(t *testing.T) {
	got := Filter("tag:nosuchtag", testSites(), testTags)
	if got == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("got %v, want []", ids(got))
	}
}
