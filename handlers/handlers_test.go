package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almostArchiveAPI/handlers"
	"almostArchiveAPI/internal/archive"
	"almostArchiveAPI/internal/docstore"
	"almostArchiveAPI/internal/identity"
	"almostArchiveAPI/internal/types/comment"
	"almostArchiveAPI/internal/types/story"
	"almostArchiveAPI/internal/validation"
	"almostArchiveAPI/middleware"
	"almostArchiveAPI/services"
)

type testServer struct {
	store    *docstore.MemoryStore
	stories  *services.StoryService
	comments *services.CommentService
	story    *handlers.StoryHandler
	reaction *handlers.ReactionHandler
	comment  *handlers.CommentHandler
	stats    *handlers.StatsHandler
}

func setup(t *testing.T) *testServer {
	t.Helper()
	store := docstore.NewMemoryStore()
	v := validation.New()
	storyService := services.NewStoryService(store, v)
	commentService := services.NewCommentService(store, v)
	reactionService := services.NewReactionService(store)
	statsService := services.NewStatsService(store, storyService, commentService)

	return &testServer{
		store:    store,
		stories:  storyService,
		comments: commentService,
		story:    handlers.NewStoryHandler(storyService, commentService, reactionService),
		reaction: handlers.NewReactionHandler(reactionService),
		comment:  handlers.NewCommentHandler(commentService),
		stats:    handlers.NewStatsHandler(statsService),
	}
}

func validStory(title string) story.StorySubmission {
	return story.StorySubmission{
		Title:      title,
		Body:       strings.Repeat("We almost made it, and then we didn't. ", 3),
		AuthorName: "Still Wondering",
		Tags:       []string{"what if"},
		Mood:       story.MoodNostalgic,
	}
}

func (s *testServer) seedStory(t *testing.T, title string) string {
	t.Helper()
	resp, err := s.stories.Submit(context.Background(), validStory(title))
	require.NoError(t, err)
	return resp.StoryID
}

func newBrowser() *identity.Tracker {
	return identity.Open(identity.NewMemoryStorage())
}

// request builds a request as the router would hand it over: route vars
// set and the browser's tracker in context.
func request(method, target string, body any, vars map[string]string, tracker *identity.Tracker) *http.Request {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}

	req := httptest.NewRequest(method, target, &buf)
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	ctx := context.WithValue(req.Context(), middleware.TrackerKey, tracker)
	ctx = context.WithValue(ctx, middleware.FingerprintKey, tracker.Fingerprint())
	return req.WithContext(ctx)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestSubmitStory(t *testing.T) {
	s := setup(t)
	rr := httptest.NewRecorder()

	s.story.SubmitStory(rr, request(http.MethodPost, "/api/v1/stories", validStory("The One Who Got Away"), nil, newBrowser()))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	resp := decode[story.SubmissionResponse](t, rr)
	assert.NotEmpty(t, resp.StoryID)
	assert.Equal(t, "the-one-who-got-away", resp.Slug)
}

func TestSubmitStory_ValidationErrors(t *testing.T) {
	s := setup(t)
	sub := validStory("ab")
	sub.Mood = ""
	rr := httptest.NewRecorder()

	s.story.SubmitStory(rr, request(http.MethodPost, "/api/v1/stories", sub, nil, newBrowser()))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := decode[struct {
		Errors []validation.FieldError `json:"errors"`
	}](t, rr)
	assert.Equal(t, []validation.FieldError{
		{Field: "title", Message: "title too short"},
		{Field: "mood", Message: "mood is required"},
	}, body.Errors)
}

func TestSubmitStory_BadBody(t *testing.T) {
	s := setup(t)
	rr := httptest.NewRecorder()

	s.story.SubmitStory(rr, request(http.MethodPost, "/api/v1/stories", "{not json", nil, newBrowser()))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, rr.Body.String())
}

func TestGetStory_CountsFirstViewOnly(t *testing.T) {
	s := setup(t)
	id := s.seedStory(t, "First Love")
	browser := newBrowser()
	vars := map[string]string{"id": id}

	rr := httptest.NewRecorder()
	s.story.GetStory(rr, request(http.MethodGet, "/api/v1/stories/"+id, nil, vars, browser))
	require.Equal(t, http.StatusOK, rr.Code)
	detail := decode[handlers.StoryDetail](t, rr)
	assert.Equal(t, 1, detail.Story.ReadCount)
	assert.Empty(t, detail.Comments)
	assert.Empty(t, detail.UserReaction)

	rr = httptest.NewRecorder()
	s.story.GetStory(rr, request(http.MethodGet, "/api/v1/stories/"+id, nil, vars, browser))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[handlers.StoryDetail](t, rr).Story.ReadCount)

	rr = httptest.NewRecorder()
	s.story.GetStory(rr, request(http.MethodGet, "/api/v1/stories/"+id, nil, vars, newBrowser()))
	assert.Equal(t, 2, decode[handlers.StoryDetail](t, rr).Story.ReadCount)
}

func TestGetStory_NotFound(t *testing.T) {
	s := setup(t)
	rr := httptest.NewRecorder()

	s.story.GetStory(rr, request(http.MethodGet, "/api/v1/stories/nope", nil, map[string]string{"id": "nope"}, newBrowser()))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"story not found"}`, rr.Body.String())
}

func TestGetStory_ShowsBrowserState(t *testing.T) {
	s := setup(t)
	id := s.seedStory(t, "First Love")
	c, err := s.comments.Submit(context.Background(), id, comment.CommentSubmission{Body: "Sending virtual hugs!"})
	require.NoError(t, err)

	browser := newBrowser()
	browser.RecordReaction(id, story.ReactionHug)
	browser.RecordLike(c.ID)
	rr := httptest.NewRecorder()

	s.story.GetStory(rr, request(http.MethodGet, "/api/v1/stories/"+id, nil, map[string]string{"id": id}, browser))

	detail := decode[handlers.StoryDetail](t, rr)
	assert.Equal(t, story.ReactionHug, detail.UserReaction)
	assert.Equal(t, []string{c.ID}, detail.HeartedComments)
	require.Len(t, detail.Comments, 1)
}

func TestListStories_Pagination(t *testing.T) {
	s := setup(t)
	for i := 0; i < 14; i++ {
		s.seedStory(t, fmt.Sprintf("Almost Story %d", i))
	}
	unfiltered := archive.NewState().Key()

	rr := httptest.NewRecorder()
	s.story.ListStories(rr, request(http.MethodGet, "/api/v1/stories?page=2&state="+unfiltered, nil, nil, newBrowser()))
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[archive.Result](t, rr)
	assert.Len(t, page.Stories, 2)
	assert.Equal(t, 14, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.True(t, page.HasPreviousPage)
	assert.Equal(t, unfiltered, page.StateKey)

	// a changed search sends the reader back to the first page
	rr = httptest.NewRecorder()
	s.story.ListStories(rr, request(http.MethodGet, "/api/v1/stories?q=almost&page=2&state="+unfiltered, nil, nil, newBrowser()))
	page = decode[archive.Result](t, rr)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Len(t, page.Stories, 12)
}

func TestListStories_Filters(t *testing.T) {
	s := setup(t)
	s.seedStory(t, "First Love")
	sub := validStory("Second Chances")
	sub.Mood = story.MoodHopeful
	sub.Tags = []string{"healing"}
	_, err := s.stories.Submit(context.Background(), sub)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	s.story.ListStories(rr, request(http.MethodGet, "/api/v1/stories?mood=hopeful&tag=healing", nil, nil, newBrowser()))
	page := decode[archive.Result](t, rr)
	require.Len(t, page.Stories, 1)
	assert.Equal(t, "Second Chances", page.Stories[0].Title)

	rr = httptest.NewRecorder()
	s.story.GetTags(rr, request(http.MethodGet, "/api/v1/stories/tags", nil, nil, newBrowser()))
	assert.Equal(t, []string{"healing", "what if"}, decode[[]string](t, rr))
}

func TestListStories_StoreFailure(t *testing.T) {
	s := setup(t)
	s.store.FailWith = errors.New("unavailable")
	rr := httptest.NewRecorder()

	s.story.ListStories(rr, request(http.MethodGet, "/api/v1/stories", nil, nil, newBrowser()))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestReact_OncePerBrowser(t *testing.T) {
	s := setup(t)
	id := s.seedStory(t, "First Love")
	browser := newBrowser()
	vars := map[string]string{"id": id}

	rr := httptest.NewRecorder()
	s.reaction.React(rr, request(http.MethodPost, "/api/v1/stories/"+id+"/reactions", story.ReactRequest{Type: story.ReactionExSucks}, vars, browser))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	event := decode[story.UserReaction](t, rr)
	assert.Equal(t, browser.Fingerprint(), event.UserFingerprint)

	// any store access on the second attempt would surface as a 500
	s.store.FailWith = errors.New("store must not be called")
	rr = httptest.NewRecorder()
	s.reaction.React(rr, request(http.MethodPost, "/api/v1/stories/"+id+"/reactions", story.ReactRequest{Type: story.ReactionHug}, vars, browser))
	assert.Equal(t, http.StatusConflict, rr.Code)

	s.store.FailWith = nil
	st, err := s.stories.GetStory(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, story.Reactions{ExSucks: 1, Total: 1}, st.Reactions)
}

func TestReact_Errors(t *testing.T) {
	s := setup(t)
	id := s.seedStory(t, "First Love")

	rr := httptest.NewRecorder()
	s.reaction.React(rr, request(http.MethodPost, "/", story.ReactRequest{Type: "meh"}, map[string]string{"id": id}, newBrowser()))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	s.reaction.React(rr, request(http.MethodPost, "/", story.ReactRequest{Type: story.ReactionLol}, map[string]string{"id": "nope"}, newBrowser()))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLikeStory(t *testing.T) {
	s := setup(t)
	id := s.seedStory(t, "First Love")
	browser := newBrowser()
	vars := map[string]string{"id": id}

	rr := httptest.NewRecorder()
	s.story.LikeStory(rr, request(http.MethodPost, "/", nil, vars, browser))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"liked":true}`, rr.Body.String())

	rr = httptest.NewRecorder()
	s.story.LikeStory(rr, request(http.MethodPost, "/", nil, vars, browser))
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = httptest.NewRecorder()
	s.story.LikeStory(rr, request(http.MethodPost, "/", nil, map[string]string{"id": "nope"}, newBrowser()))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestComments(t *testing.T) {
	s := setup(t)
	id := s.seedStory(t, "First Love")
	browser := newBrowser()

	rr := httptest.NewRecorder()
	s.comment.SubmitComment(rr, request(http.MethodPost, "/", comment.CommentSubmission{Body: "I felt this in my soul."}, map[string]string{"id": id}, browser))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	c := decode[comment.Comment](t, rr)
	assert.True(t, c.IsSupport)

	rr = httptest.NewRecorder()
	s.comment.ListComments(rr, request(http.MethodGet, "/", nil, map[string]string{"id": id}, browser))
	require.Len(t, decode[[]comment.Comment](t, rr), 1)

	rr = httptest.NewRecorder()
	s.comment.HeartComment(rr, request(http.MethodPost, "/", nil, map[string]string{"id": c.ID}, browser))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	s.comment.HeartComment(rr, request(http.MethodPost, "/", nil, map[string]string{"id": c.ID}, browser))
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = httptest.NewRecorder()
	s.comment.HeartComment(rr, request(http.MethodPost, "/", nil, map[string]string{"id": "nope"}, browser))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSubmitComment_Errors(t *testing.T) {
	s := setup(t)

	rr := httptest.NewRecorder()
	s.comment.SubmitComment(rr, request(http.MethodPost, "/", comment.CommentSubmission{Body: "short"}, map[string]string{"id": "nope"}, newBrowser()))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = httptest.NewRecorder()
	s.comment.SubmitComment(rr, request(http.MethodPost, "/", comment.CommentSubmission{Body: "long enough to post"}, map[string]string{"id": "nope"}, newBrowser()))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStatsAndCatalogues(t *testing.T) {
	s := setup(t)
	s.seedStory(t, "First Love")

	rr := httptest.NewRecorder()
	s.stats.GetStats(rr, request(http.MethodGet, "/", nil, nil, newBrowser()))
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[map[string]any](t, rr)
	assert.EqualValues(t, 1, body["totalStories"])

	rr = httptest.NewRecorder()
	s.stats.GetMoods(rr, request(http.MethodGet, "/", nil, nil, newBrowser()))
	assert.Len(t, decode[[]story.Mood](t, rr), len(story.MoodOptions))

	rr = httptest.NewRecorder()
	s.reaction.GetReactionOptions(rr, request(http.MethodGet, "/", nil, nil, newBrowser()))
	assert.Len(t, decode[[]story.Reaction](t, rr), 4)
}
