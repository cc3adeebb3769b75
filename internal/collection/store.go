// Package collection implements the website collection store: the single
// owner of websites, tags, and settings, composed from the position
// allocator, tag-query filter, snapshot validator, and persistence adapter.
package collection

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mklint/speeddial/internal/apperr"
	"github.com/mklint/speeddial/internal/checksum"
	"github.com/mklint/speeddial/internal/favicon"
	"github.com/mklint/speeddial/internal/models"
	"github.com/mklint/speeddial/internal/position"
	"github.com/mklint/speeddial/internal/snapshot"
	"github.com/mklint/speeddial/internal/storage"
	"github.com/mklint/speeddial/internal/tagquery"
)

// EventCallback is called after each committed mutation and after
// persistence outcomes. kind is e.g. "website.created" or "persist.failed";
// id names the affected entity where one exists.
type EventCallback func(kind, id string)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithResolver sets the favicon URL resolver.
func WithResolver(r favicon.Resolver) Option {
	return func(s *Store) { s.resolver = r }
}

// WithEventCallback sets the mutation/persistence notification callback.
func WithEventCallback(cb EventCallback) Option {
	return func(s *Store) { s.notify = cb }
}

// Store owns all collection state. Every public operation takes the store
// lock, runs to completion against in-memory state, and then schedules an
// asynchronous snapshot write; reads never depend on persistence.
type Store struct {
	mu       sync.Mutex
	provider storage.Provider
	resolver favicon.Resolver
	logger   *slog.Logger
	notify   EventCallback
	newID    func() string

	websites []models.Website
	tags     []models.Tag
	settings models.Settings

	// persistence machinery: latest-wins queue drained by one goroutine
	pending    []byte
	persisting bool
	lastSaved  string // checksum of the last successfully written payload
	wg         sync.WaitGroup
}

// Open loads the persisted snapshot through the provider, falling back to
// the bundled seed data when none exists or the stored bytes are invalid.
func Open(provider storage.Provider, opts ...Option) *Store {
	s := &Store{
		provider: provider,
		resolver: favicon.NewServiceResolver(),
		logger:   slog.Default(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := provider.Load()
	switch {
	case errors.Is(err, storage.ErrNoSnapshot):
		s.logger.Info("no snapshot found, seeding collection")
		s.seed()
	case err != nil:
		s.logger.Warn("snapshot load failed, seeding collection", slog.String("error", err.Error()))
		s.seed()
	default:
		if loadErr := s.adopt(data); loadErr != nil {
			s.logger.Warn("snapshot rejected, seeding collection", slog.String("error", loadErr.Error()))
			s.seed()
		}
	}
	return s
}

// adopt validates raw snapshot bytes and installs them as live state.
func (s *Store) adopt(data []byte) error {
	snap, err := snapshot.Decode(data)
	if err != nil {
		return err
	}
	clean, err := snapshot.Validate(snap)
	if err != nil {
		return err
	}
	s.websites = clean.Websites
	s.tags = clean.Tags
	s.settings = clean.Settings
	s.lastSaved = checksum.Sum(data)
	return nil
}

func (s *Store) seed() {
	data := seedData(s.newID, s.resolver)
	s.websites = data.Websites
	s.tags = data.Tags
	s.settings = data.Settings
}

// Close waits for any in-flight persistence write to finish.
func (s *Store) Close() {
	s.wg.Wait()
}

// ---- persistence -------------------------------------------------------

// schedulePersist encodes the current state and hands it to the writer
// goroutine. Called with the store lock held. Writes are fire-and-forget:
// failure never rolls back the mutation, and because every mutation encodes
// the full state, the next successful write repairs any earlier failure.
func (s *Store) schedulePersist() {
	data, err := snapshot.Encode(snapshot.Build(s.websites, s.tags, s.settings))
	if err != nil {
		s.logger.Error("snapshot encode failed", slog.String("error", err.Error()))
		return
	}
	s.pending = data
	if s.persisting {
		return
	}
	s.persisting = true
	s.wg.Add(1)
	go s.persistLoop()
}

func (s *Store) persistLoop() {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		data := s.pending
		s.pending = nil
		if data == nil {
			s.persisting = false
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		if err := s.provider.Save(data); err != nil {
			perr := &apperr.PersistenceError{Err: err}
			s.logger.Warn("snapshot write failed, keeping in-memory state",
				slog.String("error", err.Error()))
			s.emit("persist.failed", perr.Error())
			continue
		}
		s.mu.Lock()
		s.lastSaved = checksum.Sum(data)
		s.mu.Unlock()
	}
}

// LastSavedChecksum returns the checksum of the most recently persisted
// payload. The external-change watcher uses it to ignore our own writes.
func (s *Store) LastSavedChecksum() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

// Reload replaces the live state with externally produced snapshot bytes
// (e.g. the watcher saw another process rewrite the snapshot file). The
// swap is atomic: invalid bytes leave the live state untouched.
func (s *Store) Reload(data []byte) error {
	s.mu.Lock()
	if err := s.adopt(data); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.emit("collection.reloaded", "")
	return nil
}

func (s *Store) emit(kind, id string) {
	if s.notify != nil {
		s.notify(kind, id)
	}
}

// ---- website operations ------------------------------------------------

// AddWebsite validates the input, assigns an id and the next free grid
// position, and appends the website.
func (s *Store) AddWebsite(in WebsiteInput) (models.Website, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return models.Website{}, validationError(fieldErrors(err))
	}
	normalized, err := normalizeURL(in.URL)
	if err != nil {
		return models.Website{}, validationError(map[string]string{"url": err.Error()})
	}
	links, lerr := s.buildExtraLinks(in.ExtraLinks)
	if lerr != nil {
		return models.Website{}, validationError(lerr)
	}

	s.mu.Lock()
	if ferr := s.checkTagRefs(in.CategoryID, in.TagIDs); ferr != nil {
		s.mu.Unlock()
		return models.Website{}, validationError(ferr)
	}

	now := time.Now().UTC()
	w := models.Website{
		ID:              s.newID(),
		Name:            in.Name,
		URL:             normalized,
		Favicon:         s.resolver.Resolve(normalized),
		CustomIcon:      in.CustomIcon,
		Zoom:            in.Zoom,
		OffsetX:         in.OffsetX,
		OffsetY:         in.OffsetY,
		BackgroundColor: in.BackgroundColor,
		CategoryID:      in.CategoryID,
		TagIDs:          dedupeTagIDs(in.TagIDs),
		ExtraLinks:      links,
		Position:        position.Append(s.websites, position.IconsPerPage(s.settings.GridSize)),
		Metadata:        models.Metadata{CreatedAt: now, UpdatedAt: now},
	}
	s.websites = append(s.websites, w)
	out := w.Clone()
	s.schedulePersist()
	s.mu.Unlock()

	s.emit("website.created", out.ID)
	return out, nil
}

// EditWebsite applies a partial update. Position is only touched when the
// patch names it explicitly.
func (s *Store) EditWebsite(id string, patch WebsitePatch) (models.Website, error) {
	var links []models.ExtraLink
	if patch.ExtraLinks != nil {
		var lerr map[string]string
		links, lerr = s.buildExtraLinks(*patch.ExtraLinks)
		if lerr != nil {
			return models.Website{}, validationError(lerr)
		}
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return models.Website{}, fmt.Errorf("website %s: %w", id, apperr.ErrNotFound)
	}
	w := s.websites[idx].Clone()
	oldPage := w.Position.Page

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" || len([]rune(name)) > models.MaxNameLength {
			s.mu.Unlock()
			return models.Website{}, validationError(map[string]string{
				"name": fmt.Sprintf("must be 1 to %d characters", models.MaxNameLength),
			})
		}
		w.Name = name
	}
	if patch.URL != nil {
		normalized, err := normalizeURL(*patch.URL)
		if err != nil {
			s.mu.Unlock()
			return models.Website{}, validationError(map[string]string{"url": err.Error()})
		}
		w.URL = normalized
		w.Favicon = s.resolver.Resolve(normalized)
	}
	if patch.CategoryID != nil || patch.TagIDs != nil {
		category := w.CategoryID
		if patch.CategoryID != nil {
			category = *patch.CategoryID
		}
		tagIDs := w.TagIDs
		if patch.TagIDs != nil {
			tagIDs = *patch.TagIDs
		}
		if ferr := s.checkTagRefs(category, tagIDs); ferr != nil {
			s.mu.Unlock()
			return models.Website{}, validationError(ferr)
		}
		w.CategoryID = category
		w.TagIDs = dedupeTagIDs(tagIDs)
	}
	if patch.CustomIcon != nil {
		w.CustomIcon = *patch.CustomIcon
	}
	if patch.Zoom != nil {
		w.Zoom = *patch.Zoom
	}
	if patch.OffsetX != nil {
		w.OffsetX = *patch.OffsetX
	}
	if patch.OffsetY != nil {
		w.OffsetY = *patch.OffsetY
	}
	if patch.BackgroundColor != nil {
		w.BackgroundColor = *patch.BackgroundColor
	}
	if patch.ExtraLinks != nil {
		w.ExtraLinks = links
	}
	if patch.Position != nil {
		if patch.Position.Page < 0 || patch.Position.Order < 0 {
			s.mu.Unlock()
			return models.Website{}, validationError(map[string]string{"position": "page and order must be non-negative"})
		}
		w.Position = *patch.Position
	}

	w.Metadata.UpdatedAt = time.Now().UTC()
	s.websites[idx] = w
	if patch.Position != nil {
		s.moveWebsite(idx, oldPage)
	}
	out := s.websites[idx].Clone()
	s.schedulePersist()
	s.mu.Unlock()

	s.emit("website.updated", id)
	return out, nil
}

// moveWebsite normalizes orders after an explicit reposition: the website at
// idx takes the requested slot on its new page, everything at or past that
// slot shifts down one, and both affected pages are re-compacted so orders
// stay a contiguous 0..n-1 sequence. An order past the end of the page
// clamps to the last slot. Must be called with the store lock held.
func (s *Store) moveWebsite(idx, oldPage int) {
	target := s.websites[idx].Position
	for i := range s.websites {
		if i == idx {
			continue
		}
		if s.websites[i].Position.Page == target.Page && s.websites[i].Position.Order >= target.Order {
			s.websites[i].Position.Order++
		}
	}
	position.Compact(s.websites, target.Page)
	if oldPage != target.Page {
		position.Compact(s.websites, oldPage)
	}
}

// DeleteWebsite removes the entity and compacts the orders of the websites
// remaining on its page.
func (s *Store) DeleteWebsite(id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("website %s: %w", id, apperr.ErrNotFound)
	}
	page := s.websites[idx].Position.Page
	s.websites = append(s.websites[:idx], s.websites[idx+1:]...)
	position.Compact(s.websites, page)
	s.schedulePersist()
	s.mu.Unlock()

	s.emit("website.deleted", id)
	return nil
}

// VisitWebsite records a visit and returns the updated entity so the caller
// can open its URL. Position is never touched.
func (s *Store) VisitWebsite(id string) (models.Website, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return models.Website{}, fmt.Errorf("website %s: %w", id, apperr.ErrNotFound)
	}
	now := time.Now().UTC()
	s.websites[idx].Metadata.VisitCount++
	s.websites[idx].Metadata.LastVisited = &now
	out := s.websites[idx].Clone()
	s.schedulePersist()
	s.mu.Unlock()

	s.emit("website.updated", id)
	return out, nil
}

// Website returns a single website by id.
func (s *Store) Website(id string) (models.Website, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return models.Website{}, fmt.Errorf("website %s: %w", id, apperr.ErrNotFound)
	}
	return s.websites[idx].Clone(), nil
}

// Websites returns every website in global (page, order) sequence.
func (s *Store) Websites() []models.Website {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Website, len(s.websites))
	for i, w := range s.websites {
		out[i] = w.Clone()
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Position.Page != out[b].Position.Page {
			return out[a].Position.Page < out[b].Position.Page
		}
		return out[a].Position.Order < out[b].Position.Order
	})
	return out
}

// PageView is the derived view of one launcher page.
type PageView struct {
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	Columns    int              `json:"columns"`
	PerPage    int              `json:"perPage"`
	Websites   []models.Website `json:"websites"`
}

// Page derives the view for the given page index.
func (s *Store) Page(page int) PageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PageView{
		Page:       page,
		TotalPages: position.TotalPages(s.websites, position.IconsPerPage(s.settings.GridSize)),
		Columns:    position.Columns(s.settings.GridSize),
		PerPage:    position.IconsPerPage(s.settings.GridSize),
		Websites:   position.PageWebsites(s.websites, page),
	}
}

// Search filters the given page through the tag-query grammar.
func (s *Store) Search(page int, query string) []models.Website {
	s.mu.Lock()
	websites := position.PageWebsites(s.websites, page)
	tags := append([]models.Tag{}, s.tags...)
	s.mu.Unlock()
	return tagquery.Filter(query, websites, tags)
}

// UpdateWebsitePositions atomically reorders one page. ids must be exactly
// a permutation of the websites currently on that page; otherwise nothing
// changes and a conflict is reported.
func (s *Store) UpdateWebsitePositions(page int, ids []string) error {
	s.mu.Lock()
	current := map[string]int{}
	for i := range s.websites {
		if s.websites[i].Position.Page == page {
			current[s.websites[i].ID] = i
		}
	}

	if len(ids) != len(current) {
		s.mu.Unlock()
		return fmt.Errorf("page %d holds %d websites, got %d ids: %w",
			page, len(current), len(ids), apperr.ErrConflict)
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := current[id]; !ok {
			s.mu.Unlock()
			return fmt.Errorf("website %s is not on page %d: %w", id, page, apperr.ErrConflict)
		}
		if _, dup := seen[id]; dup {
			s.mu.Unlock()
			return fmt.Errorf("duplicate website id %s: %w", id, apperr.ErrConflict)
		}
		seen[id] = struct{}{}
	}

	for order, id := range ids {
		s.websites[current[id]].Position.Order = order
	}
	s.schedulePersist()
	s.mu.Unlock()

	s.emit("page.reordered", fmt.Sprintf("%d", page))
	return nil
}

// ---- tag operations ----------------------------------------------------

// Tags returns the tag registry.
func (s *Store) Tags() []models.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Tag{}, s.tags...)
}

// AddTag creates a tag. Case-insensitive duplicate names are rejected.
func (s *Store) AddTag(name, color string) (models.Tag, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return models.Tag{}, validationError(map[string]string{"name": "is required"})
	}

	s.mu.Lock()
	for _, t := range s.tags {
		if strings.EqualFold(t.Name, trimmed) {
			s.mu.Unlock()
			return models.Tag{}, fmt.Errorf("tag %q already exists: %w", trimmed, apperr.ErrConflict)
		}
	}
	tag := models.Tag{ID: s.newID(), Name: trimmed, Color: color}
	s.tags = append(s.tags, tag)
	s.schedulePersist()
	s.mu.Unlock()

	s.emit("tag.created", tag.ID)
	return tag, nil
}

// RenameTag changes a tag's name.
func (s *Store) RenameTag(id, name string) (models.Tag, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return models.Tag{}, validationError(map[string]string{"name": "is required"})
	}

	s.mu.Lock()
	idx := -1
	for i, t := range s.tags {
		if t.ID == id {
			idx = i
			continue
		}
		if strings.EqualFold(t.Name, trimmed) {
			s.mu.Unlock()
			return models.Tag{}, fmt.Errorf("tag %q already exists: %w", trimmed, apperr.ErrConflict)
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return models.Tag{}, fmt.Errorf("tag %s: %w", id, apperr.ErrNotFound)
	}
	s.tags[idx].Name = trimmed
	tag := s.tags[idx]
	s.schedulePersist()
	s.mu.Unlock()

	s.emit("tag.updated", id)
	return tag, nil
}

// DeleteTag removes a tag and prunes every reference to it from website
// tag sets and categories.
func (s *Store) DeleteTag(id string) error {
	s.mu.Lock()
	idx := -1
	for i, t := range s.tags {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("tag %s: %w", id, apperr.ErrNotFound)
	}
	s.tags = append(s.tags[:idx], s.tags[idx+1:]...)

	for i := range s.websites {
		w := &s.websites[i]
		kept := w.TagIDs[:0]
		for _, tid := range w.TagIDs {
			if tid != id {
				kept = append(kept, tid)
			}
		}
		w.TagIDs = kept
		if w.CategoryID == id {
			w.CategoryID = ""
		}
	}
	s.schedulePersist()
	s.mu.Unlock()

	s.emit("tag.deleted", id)
	return nil
}

// ---- settings ----------------------------------------------------------

// Settings returns the current display settings.
func (s *Store) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the settings object. A gridSize change triggers
// the global position redistribution, computed in full before commit.
func (s *Store) UpdateSettings(in models.Settings) (models.Settings, error) {
	if !in.GridSize.Valid() {
		return models.Settings{}, validationError(map[string]string{
			"gridSize": fmt.Sprintf("must be one of %s, %s, %s", models.GridSmall, models.GridMedium, models.GridLarge),
		})
	}

	s.mu.Lock()
	if in.GridSize != s.settings.GridSize {
		positions := position.Redistribute(s.websites, position.IconsPerPage(in.GridSize))
		for i := range s.websites {
			s.websites[i].Position = positions[s.websites[i].ID]
		}
	}
	s.settings = in
	s.schedulePersist()
	s.mu.Unlock()

	s.emit("settings.updated", "")
	return in, nil
}

// ---- export / import ---------------------------------------------------

// Export builds a deep-copied snapshot of the live state. Read-only.
func (s *Store) Export() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot.Build(s.websites, s.tags, s.settings)
}

// Import validates the snapshot into a temporary state and, only if every
// check passes, atomically replaces the live state and persists it.
func (s *Store) Import(snap models.Snapshot) error {
	clean, err := snapshot.Validate(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.websites = clean.Websites
	s.tags = clean.Tags
	s.settings = clean.Settings
	s.schedulePersist()
	s.mu.Unlock()

	s.emit("collection.imported", "")
	return nil
}

// indexOf returns the slice index for a website id, or -1.
// Must be called with the store lock held.
func (s *Store) indexOf(id string) int {
	for i := range s.websites {
		if s.websites[i].ID == id {
			return i
		}
	}
	return -1
}
