// Package ephemeral owns time-bounded content: stories (ordered media
// containers expiring after 24h) and notes (single-slot text expiring after
// 24h). Visibility for both is owner-or-follower AND not expired; expiry is
// enforced at query time, the sweep only reclaims storage.
package ephemeral

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tahmidr/glowfeed/backend/internal/models"
)

// Sentinel errors the HTTP layer maps onto status codes.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

// Content limits.
const (
	MaxImageItems = 10
	MaxVideoItems = 1
	MaxNoteLength = 60
)

// MediaLookup resolves media ids to their registered records.
type MediaLookup interface {
	GetByIDs(ids []string) ([]models.Media, error)
}

// StoryStore is the story persistence surface the manager drives.
type StoryStore interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetStoryByID(ctx context.Context, id string) (*models.Story, error)
	GetVisibleStories(ctx context.Context, ownerIDs []uint) ([]models.Story, error)
	DeleteStory(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
	MarkViewed(view *models.StoryView) error
	GetViewers(storyID string) ([]models.StoryView, error)
}

// NoteStore is the note persistence surface the manager drives.
type NoteStore interface {
	SetNote(note *models.Note) error
	DeleteNote(userID uint) error
	GetVisibleNotes(ownerIDs []uint) ([]models.Note, error)
	DeleteExpired() (int64, error)
}

// Graph resolves the follow edges that scope visibility.
type Graph interface {
	GetFollowingIDs(userID uint) ([]uint, error)
}

// Manager coordinates ephemeral-content lifecycle.
type Manager struct {
	media   MediaLookup
	stories StoryStore
	notes   NoteStore
	graph   Graph
	now     func() time.Time
}

// NewManager creates a Manager.
func NewManager(media MediaLookup, stories StoryStore, notes NoteStore, graph Graph) *Manager {
	return &Manager{media: media, stories: stories, notes: notes, graph: graph, now: time.Now}
}

// CreateStory validates the referenced media and per-kind caps, then creates
// the container with its ordered items in one atomic write. Nothing is
// persisted if any check fails.
func (m *Manager) CreateStory(ctx context.Context, ownerID uint, mediaIDs []string) (*models.Story, error) {
	if len(mediaIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one media id required", ErrValidation)
	}

	media, err := m.media.GetByIDs(mediaIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Media, len(media))
	for _, mrec := range media {
		byID[mrec.ID] = mrec
	}
	missing := 0
	for _, id := range mediaIDs {
		if _, ok := byID[id]; !ok {
			missing++
		}
	}
	if missing > 0 {
		return nil, fmt.Errorf("%w: %d media not found", ErrNotFound, missing)
	}

	images, videos := 0, 0
	for _, id := range mediaIDs {
		switch byID[id].Kind {
		case models.MediaKindVideo:
			videos++
		default:
			images++
		}
	}
	if images > MaxImageItems {
		return nil, fmt.Errorf("%w: a story holds at most %d images", ErrValidation, MaxImageItems)
	}
	if videos > MaxVideoItems {
		return nil, fmt.Errorf("%w: a story holds at most %d video", ErrValidation, MaxVideoItems)
	}

	items := make([]models.StoryItem, len(mediaIDs))
	for i, id := range mediaIDs {
		rec := byID[id]
		items[i] = models.StoryItem{MediaID: rec.ID, URL: rec.URL, Kind: rec.Kind, Order: i}
	}

	story := &models.Story{OwnerID: ownerID, Items: items}
	if err := m.stories.CreateStory(ctx, story); err != nil {
		return nil, err
	}
	return story, nil
}

// visibilityScope is the reader plus everyone they follow.
func (m *Manager) visibilityScope(readerID uint) ([]uint, error) {
	followingIDs, err := m.graph.GetFollowingIDs(readerID)
	if err != nil {
		return nil, err
	}
	return append(followingIDs, readerID), nil
}

// VisibleStories returns the non-expired stories in the reader's scope.
func (m *Manager) VisibleStories(ctx context.Context, readerID uint) ([]models.Story, error) {
	scope, err := m.visibilityScope(readerID)
	if err != nil {
		return nil, err
	}
	return m.stories.GetVisibleStories(ctx, scope)
}

// liveStory fetches a story and applies the expiry filter; expired containers
// are treated as absent even before the sweep removes them.
func (m *Manager) liveStory(ctx context.Context, storyID string) (*models.Story, error) {
	story, err := m.stories.GetStoryByID(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("%w: story", ErrNotFound)
	}
	if !m.now().Before(story.ExpiresAt) {
		return nil, fmt.Errorf("%w: story", ErrNotFound)
	}
	return story, nil
}

// DeleteStory removes an owned story and cascades its views.
func (m *Manager) DeleteStory(ctx context.Context, actorID uint, storyID string) error {
	story, err := m.stories.GetStoryByID(ctx, storyID)
	if err != nil {
		return fmt.Errorf("%w: story", ErrNotFound)
	}
	if story.OwnerID != actorID {
		return fmt.Errorf("%w: only the owner may delete a story", ErrForbidden)
	}
	return m.stories.DeleteStory(ctx, storyID)
}

// RecordView upserts the (viewer, story) pair. Re-viewing never fails and
// never duplicates.
func (m *Manager) RecordView(ctx context.Context, viewerID uint, storyID string) error {
	if _, err := m.liveStory(ctx, storyID); err != nil {
		return err
	}
	return m.stories.MarkViewed(&models.StoryView{StoryID: storyID, ViewerID: viewerID})
}

// Viewers lists who viewed a story. Owner only.
func (m *Manager) Viewers(ctx context.Context, actorID uint, storyID string) ([]models.StoryView, error) {
	story, err := m.stories.GetStoryByID(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("%w: story", ErrNotFound)
	}
	if story.OwnerID != actorID {
		return nil, fmt.Errorf("%w: only the owner may list viewers", ErrForbidden)
	}
	return m.stories.GetViewers(storyID)
}

// SetNote replaces the owner's live note with new content. The delete-then-
// insert runs inside one transaction in the store, so at most one live note
// per owner survives.
func (m *Manager) SetNote(ctx context.Context, ownerID uint, content string) (*models.Note, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: note content must not be empty", ErrValidation)
	}
	if len([]rune(content)) > MaxNoteLength {
		return nil, fmt.Errorf("%w: note content exceeds %d characters", ErrValidation, MaxNoteLength)
	}
	note := &models.Note{UserID: ownerID, Content: content}
	if err := m.notes.SetNote(note); err != nil {
		return nil, err
	}
	return note, nil
}

// DeleteNote removes the owner's note, live or not.
func (m *Manager) DeleteNote(ctx context.Context, ownerID uint) error {
	return m.notes.DeleteNote(ownerID)
}

// VisibleNotes returns the non-expired notes in the reader's scope.
func (m *Manager) VisibleNotes(ctx context.Context, readerID uint) ([]models.Note, error) {
	scope, err := m.visibilityScope(readerID)
	if err != nil {
		return nil, err
	}
	return m.notes.GetVisibleNotes(scope)
}

// SweepResult reports what a sweep reclaimed.
type SweepResult struct {
	Stories int64 `json:"stories"`
	Notes   int64 `json:"notes"`
}

// Sweep deletes expired stories (and empty containers) and expired notes.
// Safe to run concurrently with reads, which already filter by expiry.
func (m *Manager) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	stories, err := m.stories.DeleteExpired(ctx)
	if err != nil {
		return res, err
	}
	res.Stories = stories
	notes, err := m.notes.DeleteExpired()
	if err != nil {
		return res, err
	}
	res.Notes = notes
	return res, nil
}
