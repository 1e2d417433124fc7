package ephemeral

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahmidr/glowfeed/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeMedia map[string]models.Media

func (f fakeMedia) GetByIDs(ids []string) ([]models.Media, error) {
	var out []models.Media
	for _, id := range ids {
		if m, ok := f[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeStoryStore struct {
	stories map[string]*models.Story
	views   []models.StoryView
	created int
	swept   int64
}

func newFakeStoryStore() *fakeStoryStore {
	return &fakeStoryStore{stories: make(map[string]*models.Story)}
}

func (f *fakeStoryStore) CreateStory(ctx context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	story.CreatedAt = time.Now()
	story.ExpiresAt = story.CreatedAt.Add(24 * time.Hour)
	f.stories[story.ID.Hex()] = story
	f.created++
	return nil
}

func (f *fakeStoryStore) GetStoryByID(ctx context.Context, id string) (*models.Story, error) {
	s, ok := f.stories[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return s, nil
}

func (f *fakeStoryStore) GetVisibleStories(ctx context.Context, ownerIDs []uint) ([]models.Story, error) {
	owners := make(map[uint]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = true
	}
	var out []models.Story
	for _, s := range f.stories {
		if owners[s.OwnerID] && s.ExpiresAt.After(time.Now()) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStoryStore) DeleteStory(ctx context.Context, id string) error {
	delete(f.stories, id)
	return nil
}

func (f *fakeStoryStore) DeleteExpired(ctx context.Context) (int64, error) {
	return f.swept, nil
}

func (f *fakeStoryStore) MarkViewed(view *models.StoryView) error {
	for _, v := range f.views {
		if v.StoryID == view.StoryID && v.ViewerID == view.ViewerID {
			return nil // upsert semantics
		}
	}
	f.views = append(f.views, *view)
	return nil
}

func (f *fakeStoryStore) GetViewers(storyID string) ([]models.StoryView, error) {
	var out []models.StoryView
	for _, v := range f.views {
		if v.StoryID == storyID {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeNoteStore struct {
	notes map[uint]*models.Note
	swept int64
}

func newFakeNoteStore() *fakeNoteStore {
	return &fakeNoteStore{notes: make(map[uint]*models.Note)}
}

func (f *fakeNoteStore) SetNote(note *models.Note) error {
	note.CreatedAt = time.Now()
	note.ExpiresAt = note.CreatedAt.Add(24 * time.Hour)
	f.notes[note.UserID] = note
	return nil
}

func (f *fakeNoteStore) DeleteNote(userID uint) error {
	delete(f.notes, userID)
	return nil
}

func (f *fakeNoteStore) GetVisibleNotes(ownerIDs []uint) ([]models.Note, error) {
	var out []models.Note
	for _, id := range ownerIDs {
		if n, ok := f.notes[id]; ok && n.ExpiresAt.After(time.Now()) {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNoteStore) DeleteExpired() (int64, error) {
	return f.swept, nil
}

type fakeGraph map[uint][]uint

func (f fakeGraph) GetFollowingIDs(userID uint) ([]uint, error) {
	return f[userID], nil
}

func imageMedia(n int) fakeMedia {
	m := make(fakeMedia, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("img-%d", i)
		m[id] = models.Media{ID: id, URL: "https://cdn.example.com/" + id, Kind: models.MediaKindImage}
	}
	return m
}

func mediaIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("img-%d", i+1)
	}
	return ids
}

func TestCreateStoryTooManyImages(t *testing.T) {
	store := newFakeStoryStore()
	m := NewManager(imageMedia(11), store, newFakeNoteStore(), fakeGraph{})

	_, err := m.CreateStory(context.Background(), 1, mediaIDs(11))
	require.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, store.created, "nothing may persist when validation fails")
}

func TestCreateStoryTooManyVideos(t *testing.T) {
	media := fakeMedia{
		"v1": {ID: "v1", Kind: models.MediaKindVideo},
		"v2": {ID: "v2", Kind: models.MediaKindVideo},
	}
	store := newFakeStoryStore()
	m := NewManager(media, store, newFakeNoteStore(), fakeGraph{})

	_, err := m.CreateStory(context.Background(), 1, []string{"v1", "v2"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, store.created)
}

func TestCreateStoryMissingMedia(t *testing.T) {
	store := newFakeStoryStore()
	m := NewManager(imageMedia(1), store, newFakeNoteStore(), fakeGraph{})

	_, err := m.CreateStory(context.Background(), 1, []string{"img-1", "ghost-1", "ghost-2"})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "2 media not found")
	assert.Zero(t, store.created)
}

func TestCreateStoryOrdersItems(t *testing.T) {
	store := newFakeStoryStore()
	m := NewManager(imageMedia(3), store, newFakeNoteStore(), fakeGraph{})

	story, err := m.CreateStory(context.Background(), 1, []string{"img-3", "img-1", "img-2"})
	require.NoError(t, err)
	require.Len(t, story.Items, 3)
	assert.Equal(t, "img-3", story.Items[0].MediaID)
	assert.Equal(t, "img-1", story.Items[1].MediaID)
	for i, item := range story.Items {
		assert.Equal(t, i, item.Order)
	}
}

func TestVisibleStoriesScope(t *testing.T) {
	store := newFakeStoryStore()
	graph := fakeGraph{1: {2}}
	m := NewManager(imageMedia(1), store, newFakeNoteStore(), graph)

	for _, owner := range []uint{1, 2, 3} {
		_, err := m.CreateStory(context.Background(), owner, []string{"img-1"})
		require.NoError(t, err)
	}

	stories, err := m.VisibleStories(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, stories, 2) // own story + followed user's, not user 3's
	for _, s := range stories {
		assert.NotEqual(t, uint(3), s.OwnerID)
	}
}

func TestRecordViewIdempotent(t *testing.T) {
	store := newFakeStoryStore()
	m := NewManager(imageMedia(1), store, newFakeNoteStore(), fakeGraph{})

	story, err := m.CreateStory(context.Background(), 1, []string{"img-1"})
	require.NoError(t, err)

	id := story.ID.Hex()
	require.NoError(t, m.RecordView(context.Background(), 2, id))
	require.NoError(t, m.RecordView(context.Background(), 2, id))
	assert.Len(t, store.views, 1)
}

func TestRecordViewExpiredStory(t *testing.T) {
	store := newFakeStoryStore()
	m := NewManager(imageMedia(1), store, newFakeNoteStore(), fakeGraph{})

	story, err := m.CreateStory(context.Background(), 1, []string{"img-1"})
	require.NoError(t, err)

	// Jump the clock past expiry; the document still exists but must read as absent.
	m.now = func() time.Time { return story.ExpiresAt.Add(time.Minute) }

	err = m.RecordView(context.Background(), 2, story.ID.Hex())
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.views)
}

func TestViewersOwnerOnly(t *testing.T) {
	store := newFakeStoryStore()
	m := NewManager(imageMedia(1), store, newFakeNoteStore(), fakeGraph{})

	story, err := m.CreateStory(context.Background(), 1, []string{"img-1"})
	require.NoError(t, err)

	_, err = m.Viewers(context.Background(), 2, story.ID.Hex())
	require.ErrorIs(t, err, ErrForbidden)

	_, err = m.Viewers(context.Background(), 1, story.ID.Hex())
	require.NoError(t, err)
}

func TestDeleteStoryOwnerOnly(t *testing.T) {
	store := newFakeStoryStore()
	m := NewManager(imageMedia(1), store, newFakeNoteStore(), fakeGraph{})

	story, err := m.CreateStory(context.Background(), 1, []string{"img-1"})
	require.NoError(t, err)

	err = m.DeleteStory(context.Background(), 2, story.ID.Hex())
	require.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, m.DeleteStory(context.Background(), 1, story.ID.Hex()))
	err = m.DeleteStory(context.Background(), 1, story.ID.Hex())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetNoteValidation(t *testing.T) {
	notes := newFakeNoteStore()
	m := NewManager(fakeMedia{}, newFakeStoryStore(), notes, fakeGraph{})

	_, err := m.SetNote(context.Background(), 1, "")
	require.ErrorIs(t, err, ErrValidation)

	long := make([]rune, MaxNoteLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = m.SetNote(context.Background(), 1, string(long))
	require.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, notes.notes)
}

func TestSetNoteReplacesPrevious(t *testing.T) {
	notes := newFakeNoteStore()
	m := NewManager(fakeMedia{}, newFakeStoryStore(), notes, fakeGraph{})

	_, err := m.SetNote(context.Background(), 1, "first")
	require.NoError(t, err)
	_, err = m.SetNote(context.Background(), 1, "second")
	require.NoError(t, err)

	visible, err := m.VisibleNotes(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "second", visible[0].Content)
}

func TestSweepAggregatesCounts(t *testing.T) {
	store := newFakeStoryStore()
	store.swept = 4
	notes := newFakeNoteStore()
	notes.swept = 2
	m := NewManager(fakeMedia{}, store, notes, fakeGraph{})

	res, err := m.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Stories)
	assert.Equal(t, int64(2), res.Notes)
}
