// Package snapshot builds and validates the versioned persistence envelope
// {version, data, timestamp} used for storage and export/import.
package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mklint/speeddial/internal/apperr"
	"github.com/mklint/speeddial/internal/models"
	"github.com/mklint/speeddial/internal/position"
)

// Build assembles an export envelope from live state. Everything is deep
// copied so the caller's collections stay isolated from the result.
func Build(websites []models.Website, tags []models.Tag, settings models.Settings) models.Snapshot {
	ws := make([]models.Website, len(websites))
	for i, w := range websites {
		ws[i] = w.Clone()
	}
	ts := make([]models.Tag, len(tags))
	copy(ts, tags)

	return models.Snapshot{
		Version: models.CurrentSnapshotVersion,
		Data: models.SnapshotData{
			Websites: ws,
			Tags:     ts,
			Settings: settings,
		},
		Timestamp: time.Now().UTC(),
	}
}

// Encode marshals an envelope for the persistence adapter.
func Encode(s models.Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Decode parses raw snapshot bytes. Unknown fields are ignored, matching
// the "unknown fields ignored" import contract.
func Decode(data []byte) (models.Snapshot, error) {
	var s models.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return models.Snapshot{}, &apperr.ImportError{Reason: "malformed JSON: " + err.Error()}
	}
	return s, nil
}

// upgrade is a version-specific migration applied before validation.
type upgrade func(*models.Snapshot)

// upgrades maps a snapshot version to the migration that lifts it to the
// next version. Chained until CurrentSnapshotVersion is reached.
var upgrades = map[string]upgrade{
	"1": upgradeV1,
}

// upgradeV1 lifts a version-1 snapshot: v1 had no position block, so
// websites are laid out sequentially in list order, and settings gained
// the gridSize field (defaulted below by Validate).
func upgradeV1(s *models.Snapshot) {
	perPage := position.IconsPerPage(models.GridMedium)
	for i := range s.Data.Websites {
		s.Data.Websites[i].Position = models.Position{Page: i / perPage, Order: i % perPage}
	}
	s.Version = "2"
}

// Validate checks an imported envelope structurally and returns a cleaned,
// fully-defaulted copy of its data. The input is never mutated; any failure
// is an *apperr.ImportError and implies no usable result.
func Validate(in models.Snapshot) (models.SnapshotData, error) {
	s := models.Snapshot{
		Version:   in.Version,
		Data:      cloneData(in.Data),
		Timestamp: in.Timestamp,
	}

	if s.Version == "" {
		return models.SnapshotData{}, &apperr.ImportError{Reason: "missing version"}
	}
	for s.Version != models.CurrentSnapshotVersion {
		up, ok := upgrades[s.Version]
		if !ok {
			return models.SnapshotData{}, &apperr.ImportError{
				Reason: fmt.Sprintf("unsupported snapshot version %q (supported: <= %s)", s.Version, models.CurrentSnapshotVersion),
			}
		}
		up(&s)
	}

	if !s.Data.Settings.GridSize.Valid() {
		defaults := models.DefaultSettings()
		if s.Data.Settings.GridSize != "" {
			return models.SnapshotData{}, &apperr.ImportError{
				Reason: fmt.Sprintf("unknown gridSize %q", s.Data.Settings.GridSize),
			}
		}
		s.Data.Settings = defaults
	}

	tagIDs := make(map[string]struct{}, len(s.Data.Tags))
	for i, t := range s.Data.Tags {
		if t.ID == "" {
			return models.SnapshotData{}, &apperr.ImportError{Reason: fmt.Sprintf("tags[%d]: missing id", i)}
		}
		if strings.TrimSpace(t.Name) == "" {
			return models.SnapshotData{}, &apperr.ImportError{Reason: fmt.Sprintf("tags[%d]: missing name", i)}
		}
		if _, dup := tagIDs[t.ID]; dup {
			return models.SnapshotData{}, &apperr.ImportError{Reason: fmt.Sprintf("tags[%d]: duplicate id %q", i, t.ID)}
		}
		tagIDs[t.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(s.Data.Websites))
	for i := range s.Data.Websites {
		w := &s.Data.Websites[i]
		if err := checkWebsite(i, w); err != nil {
			return models.SnapshotData{}, err
		}
		if _, dup := seen[w.ID]; dup {
			return models.SnapshotData{}, &apperr.ImportError{Reason: fmt.Sprintf("websites[%d]: duplicate id %q", i, w.ID)}
		}
		seen[w.ID] = struct{}{}
		pruneTagRefs(w, tagIDs)
	}

	// Per-page order compaction so the contiguity invariant holds no matter
	// what the exporting application produced.
	pages := map[int]struct{}{}
	for i := range s.Data.Websites {
		pages[s.Data.Websites[i].Position.Page] = struct{}{}
	}
	for p := range pages {
		position.Compact(s.Data.Websites, p)
	}

	return s.Data, nil
}

func checkWebsite(i int, w *models.Website) error {
	reason := func(field, msg string) error {
		return &apperr.ImportError{Reason: fmt.Sprintf("websites[%d].%s: %s", i, field, msg)}
	}
	if w.ID == "" {
		return reason("id", "missing")
	}
	if strings.TrimSpace(w.Name) == "" {
		return reason("name", "missing")
	}
	if len([]rune(w.Name)) > models.MaxNameLength {
		return reason("name", fmt.Sprintf("longer than %d characters", models.MaxNameLength))
	}
	if w.URL == "" {
		return reason("url", "missing")
	}
	if w.Position.Page < 0 || w.Position.Order < 0 {
		return reason("position", "negative page or order")
	}
	if len(w.ExtraLinks) > models.MaxExtraLinks {
		return reason("extraLinks", fmt.Sprintf("more than %d entries", models.MaxExtraLinks))
	}
	names := make(map[string]struct{}, len(w.ExtraLinks))
	for _, l := range w.ExtraLinks {
		key := strings.ToLower(l.Name)
		if _, dup := names[key]; dup {
			return reason("extraLinks", fmt.Sprintf("duplicate link name %q", l.Name))
		}
		names[key] = struct{}{}
	}
	if w.TagIDs == nil {
		w.TagIDs = []string{}
	}
	if w.ExtraLinks == nil {
		w.ExtraLinks = []models.ExtraLink{}
	}
	if w.Metadata.CreatedAt.IsZero() {
		w.Metadata.CreatedAt = time.Now().UTC()
	}
	if w.Metadata.UpdatedAt.IsZero() {
		w.Metadata.UpdatedAt = w.Metadata.CreatedAt
	}
	if w.Metadata.VisitCount < 0 {
		w.Metadata.VisitCount = 0
	}
	return nil
}

// pruneTagRefs drops references to tags the snapshot does not define.
func pruneTagRefs(w *models.Website, tagIDs map[string]struct{}) {
	kept := w.TagIDs[:0]
	for _, id := range w.TagIDs {
		if _, ok := tagIDs[id]; ok {
			kept = append(kept, id)
		}
	}
	w.TagIDs = kept
	if w.CategoryID != "" {
		if _, ok := tagIDs[w.CategoryID]; !ok {
			w.CategoryID = ""
		}
	}
}

func cloneData(d models.SnapshotData) models.SnapshotData {
	ws := make([]models.Website, len(d.Websites))
	for i, w := range d.Websites {
		ws[i] = w.Clone()
	}
	ts := make([]models.Tag, len(d.Tags))
	copy(ts, d.Tags)
	return models.SnapshotData{Websites: ws, Tags: ts, Settings: d.Settings}
}
