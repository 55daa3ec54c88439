package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almostArchiveAPI/internal/identity"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiter_BurstThen429(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Middleware(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stories", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// a different client has its own bucket
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stories", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:1234"
	assert.Equal(t, "192.0.2.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}

func TestRateLimiter_CleanupForgetsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.getLimiter("idle")
	rl.getLimiter("active")
	rl.visitors["idle"].lastSeen = time.Now().Add(-10 * time.Minute)

	rl.cleanup(time.Now())

	assert.NotContains(t, rl.visitors, "idle")
	assert.Contains(t, rl.visitors, "active")
}

func TestBasicAuthMiddleware(t *testing.T) {
	h := BasicAuthMiddleware("metrics", "s3cret")(okHandler)

	tests := []struct {
		name       string
		user, pass string
		setAuth    bool
		want       int
	}{
		{"no credentials", "", "", false, http.StatusUnauthorized},
		{"wrong password", "metrics", "nope", true, http.StatusUnauthorized},
		{"valid", "metrics", "s3cret", true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestBasicAuthMiddleware_EmptyUserDisables(t *testing.T) {
	h := BasicAuthMiddleware("", "")(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("", "")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMonitorMiddleware_LabelsByRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(MonitorMiddleware)
	r.HandleFunc("/stories/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	counter := httpRequestsTotal.WithLabelValues("/stories/{id}", http.MethodGet, "404")
	before := testutil.ToFloat64(counter)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stories/abc123", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestIdentityMiddleware_PersistsMarkersInCookie(t *testing.T) {
	store, err := identity.NewSessionStore("cookie", "test-secret-key-for-sessions-only", "")
	require.NoError(t, err)

	var fingerprints []string
	var firstViews []bool
	h := IdentityMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracker, found := GetTracker(r.Context())
		require.True(t, found)
		fp, found := GetFingerprint(r.Context())
		require.True(t, found)
		fingerprints = append(fingerprints, fp)
		firstViews = append(firstViews, tracker.RecordView("s1"))
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/stories/s1", nil))
	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)

	next := httptest.NewRequest(http.MethodGet, "/api/v1/stories/s1", nil)
	next.AddCookie(cookies[len(cookies)-1])
	h.ServeHTTP(httptest.NewRecorder(), next)

	assert.Equal(t, []bool{true, false}, firstViews)
	require.Len(t, fingerprints, 2)
	assert.NotEmpty(t, fingerprints[0])
	assert.Equal(t, fingerprints[0], fingerprints[1])
}

func TestIdentityMiddleware_GarbageCookieStartsFresh(t *testing.T) {
	store, err := identity.NewSessionStore("cookie", "test-secret-key-for-sessions-only", "")
	require.NoError(t, err)

	var viewed bool
	h := IdentityMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracker, _ := GetTracker(r.Context())
		viewed = tracker.HasViewed("s1")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: identity.SessionName, Value: "tampered"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, viewed)
}

func TestCORS_EchoesConfiguredOriginWithCredentials(t *testing.T) {
	h := CORS([]string{"https://almostarchive.com"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stories", nil)
	req.Header.Set("Origin", "https://almostarchive.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "https://almostarchive.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/stories", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_SameOriginWritesNoHeaders(t *testing.T) {
	h := CORS(nil)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stories", nil)
	req.Header.Set("Origin", "https://almostarchive.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
}
