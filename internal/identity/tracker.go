// Package identity approximates "one reaction, like or view per browser"
// without accounts. Markers live in per-browser storage (a session cookie
// in production), so clearing cookies or switching browsers resets them.
// Nothing on the server backs these checks; that trust trade-off is
// accepted.
package identity

import (
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"almostArchiveAPI/internal/logger"
	"almostArchiveAPI/internal/types/story"
)

const (
	ReactionsKey    = "almostArchive_userReactions"
	CommentLikesKey = "almostArchive_commentLikes"
	ViewsKey        = "almostArchive_userViews"
	StoryLikesKey   = "almostArchive_userLikes"
	FingerprintKey  = "almostArchive_fingerprint"
)

// Storage is a string key-value blob store scoped to one browser.
// Load returns "" when nothing is stored under key.
type Storage interface {
	Load(key string) (string, error)
	Save(key, value string) error
}

// Tracker holds the markers of one browser. All marker kinds are loaded
// once by Open and each mutation rewrites its whole blob. Storage failures
// are logged and otherwise ignored: the tracker then behaves as if nothing
// had been recorded.
type Tracker struct {
	storage      Storage
	reactions    map[string]story.ReactionType
	commentLikes map[string]bool
	views        map[string]bool
	storyLikes   map[string]bool
}

func Open(storage Storage) *Tracker {
	return &Tracker{
		storage:      storage,
		reactions:    load[story.ReactionType](storage, ReactionsKey),
		commentLikes: load[bool](storage, CommentLikesKey),
		views:        load[bool](storage, ViewsKey),
		storyLikes:   load[bool](storage, StoryLikesKey),
	}
}

func (t *Tracker) HasReacted(storyID string) bool {
	_, ok := t.reactions[storyID]
	return ok
}

// ReactionFor returns the reaction this browser gave storyID, if any.
func (t *Tracker) ReactionFor(storyID string) (story.ReactionType, bool) {
	r, ok := t.reactions[storyID]
	return r, ok
}

func (t *Tracker) RecordReaction(storyID string, reaction story.ReactionType) {
	t.reactions[storyID] = reaction
	persist(t.storage, ReactionsKey, t.reactions)
}

func (t *Tracker) HasLiked(commentID string) bool {
	return t.commentLikes[commentID]
}

func (t *Tracker) RecordLike(commentID string) {
	t.commentLikes[commentID] = true
	persist(t.storage, CommentLikesKey, t.commentLikes)
}

func (t *Tracker) HasLikedStory(storyID string) bool {
	return t.storyLikes[storyID]
}

func (t *Tracker) RecordStoryLike(storyID string) {
	t.storyLikes[storyID] = true
	persist(t.storage, StoryLikesKey, t.storyLikes)
}

func (t *Tracker) HasViewed(storyID string) bool {
	return t.views[storyID]
}

// RecordView marks storyID as viewed and reports whether this was the
// first view from this browser. Only a first view should bump the remote
// read counter.
func (t *Tracker) RecordView(storyID string) bool {
	if t.views[storyID] {
		return false
	}
	t.views[storyID] = true
	persist(t.storage, ViewsKey, t.views)
	return true
}

// Fingerprint returns the anonymous id of this browser, minting and
// storing one on first use.
func (t *Tracker) Fingerprint() string {
	if fp, err := t.storage.Load(FingerprintKey); err == nil && fp != "" {
		return fp
	}
	fp := "anonymous-" + uuid.NewString()
	if err := t.storage.Save(FingerprintKey, fp); err != nil {
		logger.Log.Debug("fingerprint_save_failed", zap.Error(err))
	}
	return fp
}

func load[V any](storage Storage, key string) map[string]V {
	out := make(map[string]V)
	raw, err := storage.Load(key)
	if err != nil {
		logger.Log.Debug("identity_load_failed", zap.String("key", key), zap.Error(err))
		return out
	}
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		logger.Log.Debug("identity_blob_corrupt", zap.String("key", key), zap.Error(err))
		return make(map[string]V)
	}
	return out
}

func persist[V any](storage Storage, key string, markers map[string]V) {
	raw, err := json.Marshal(markers)
	if err != nil {
		logger.Log.Debug("identity_encode_failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := storage.Save(key, string(raw)); err != nil {
		logger.Log.Debug("identity_save_failed", zap.String("key", key), zap.Error(err))
	}
}
