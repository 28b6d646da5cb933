package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"moodlog/internal/auth"
	"moodlog/internal/config"
	"moodlog/internal/db"
	httpx "moodlog/internal/http"
	"moodlog/internal/jobs"
	"moodlog/internal/metrics"
	"moodlog/internal/mood"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	backend *db.Backend
	jwt     *auth.JWT
}

func newTestServer(t *testing.T, store mood.Store) *testServer {
	t.Helper()
	b := db.NewMemoryBackend()
	if store != nil {
		b.Moods = store
	}
	log := zap.NewNop()
	jwtSvc := auth.NewJWT("test-secret")
	h := httpx.NewRouter(httpx.Deps{
		Config: config.Config{StoreDriver: config.DriverMemory},
		Log:    log,
		Moods:  mood.NewService(b.Moods, log),
		Users:  b.Users,
		Jobs:   b.Jobs,
		JWT:    jwtSvc,
	})
	return &testServer{t: t, handler: h, backend: b, jwt: jwtSvc}
}

func (s *testServer) do(method, path string, body any, header ...string) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(s.t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec.Code, env
}

func (s *testServer) history(userID string) []mood.Entry {
	s.t.Helper()
	code, env := s.do(http.MethodGet, "/api/mood/"+userID+"?days=30", nil)
	require.Equal(s.t, http.StatusOK, code)
	require.True(s.t, env.Success)
	var entries []mood.Entry
	require.NoError(s.t, json.Unmarshal(env.Data, &entries))
	return entries
}

func TestMood_EndToEnd(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(http.MethodPost, "/api/mood", map[string]any{
		"userId": "u1", "mood": 7, "tags": []string{"sleep", "exercise"}, "notes": "ok",
	})
	require.Equal(t, http.StatusCreated, code)
	require.True(t, env.Success)

	var created mood.Entry
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 7, created.Mood)
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, []string{"sleep", "exercise"}, created.Tags)
	assert.NotEmpty(t, created.ID)
	assert.WithinDuration(t, time.Now(), created.Date, 5*time.Second)

	got := s.history("u1")
	require.Len(t, got, 1)
	assert.Equal(t, created.ID, got[0].ID)
}

func TestMood_RejectionIsNotPersisted(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(http.MethodPost, "/api/mood", map[string]any{"userId": "u1", "mood": 15})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.Equal(t, mood.CodeInvalidMood, env.Code)
	assert.NotEmpty(t, env.Message)

	assert.Empty(t, s.history("u1"))
}

func TestMood_ValidationCodes(t *testing.T) {
	s := newTestServer(t, nil)

	cases := []struct {
		name string
		body any
		code string
	}{
		{"zero", map[string]any{"userId": "u1", "mood": 0}, mood.CodeInvalidMood},
		{"eleven", map[string]any{"userId": "u1", "mood": 11}, mood.CodeInvalidMood},
		{"fraction", map[string]any{"userId": "u1", "mood": 6.5}, mood.CodeInvalidMood},
		{"string mood", `{"userId":"u1","mood":"7"}`, mood.CodeInvalidMood},
		{"missing mood", map[string]any{"userId": "u1"}, mood.CodeInvalidMood},
		{"unknown tag", map[string]any{"userId": "u1", "mood": 5, "tags": []string{"sleep", "vacation"}}, mood.CodeInvalidTag},
		{"missing user", map[string]any{"mood": 5}, mood.CodeMissingUserID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := s.do(http.MethodPost, "/api/mood", tc.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.False(t, env.Success)
			assert.Equal(t, tc.code, env.Code)
		})
	}

	assert.Empty(t, s.history("u1"))
}

func TestMood_MalformedBody(t *testing.T) {
	s := newTestServer(t, nil)

	for _, body := range []string{`{"userId":`, `{"userId":"u1","mood":5,"extra":true}`} {
		code, env := s.do(http.MethodPost, "/api/mood", body)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.False(t, env.Success)
	}
}

func TestMood_EmptyHistory(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(http.MethodGet, "/api/mood/u2?days=30", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestMood_HistoryWindowAndOrder(t *testing.T) {
	s := newTestServer(t, nil)
	now := time.Now().UTC()

	for _, d := range []time.Duration{31, 2, 29, 10} {
		code, _ := s.do(http.MethodPost, "/api/mood", map[string]any{
			"userId": "u1", "mood": 5, "date": now.Add(-d * 24 * time.Hour),
		})
		require.Equal(t, http.StatusCreated, code)
	}
	_, _ = s.do(http.MethodPost, "/api/mood", map[string]any{"userId": "other", "mood": 9})

	got := s.history("u1")
	require.Len(t, got, 3, "the 31 day old entry is outside the window")
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Date.Before(got[i-1].Date))
	}
	for _, e := range got {
		assert.Equal(t, "u1", e.UserID)
	}
}

func TestMood_InvalidDaysFallsBackToDefault(t *testing.T) {
	s := newTestServer(t, nil)
	old := time.Now().Add(-20 * 24 * time.Hour)
	code, _ := s.do(http.MethodPost, "/api/mood", map[string]any{"userId": "u1", "mood": 3, "date": old})
	require.Equal(t, http.StatusCreated, code)

	for _, q := range []string{"", "?days=abc", "?days=-4"} {
		code, env := s.do(http.MethodGet, "/api/mood/u1"+q, nil)
		require.Equal(t, http.StatusOK, code, q)
		var entries []mood.Entry
		require.NoError(t, json.Unmarshal(env.Data, &entries))
		assert.Len(t, entries, 1, q)
	}

	_, env := s.do(http.MethodGet, "/api/mood/u1?days=7", nil)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestMood_HugeDaysReturnsAllEntries(t *testing.T) {
	s := newTestServer(t, nil)
	code, _ := s.do(http.MethodPost, "/api/mood", map[string]any{"userId": "u1", "mood": 4})
	require.Equal(t, http.StatusCreated, code)

	for _, q := range []string{"106752", "200000", "99999999999999"} {
		code, env := s.do(http.MethodGet, "/api/mood/u1?days="+q, nil)
		require.Equal(t, http.StatusOK, code, q)
		var entries []mood.Entry
		require.NoError(t, json.Unmarshal(env.Data, &entries))
		assert.Len(t, entries, 1, "days=%s", q)
	}
}

func TestMood_TypeMismatchCountsAsRejection(t *testing.T) {
	s := newTestServer(t, nil)
	counter := metrics.MoodEntriesRejected.WithLabelValues(mood.CodeInvalidMood)
	before := testutil.ToFloat64(counter)

	code, env := s.do(http.MethodPost, "/api/mood", `{"userId":"u1","mood":"7"}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, mood.CodeInvalidMood, env.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestMood_BearerSuppliesUserID(t *testing.T) {
	s := newTestServer(t, nil)
	tok, err := s.jwt.Sign("token-user")
	require.NoError(t, err)

	code, _ := s.do(http.MethodPost, "/api/mood", map[string]any{"mood": 6}, "Authorization", "Bearer "+tok)
	require.Equal(t, http.StatusCreated, code)

	assert.Len(t, s.history("token-user"), 1)
}

type brokenStore struct{}

func (brokenStore) Create(context.Context, *mood.Entry) error {
	return errors.New("pq: connection refused")
}

func (brokenStore) FindSince(context.Context, string, time.Time) ([]mood.Entry, error) {
	return nil, errors.New("pq: connection refused")
}

func TestMood_StoreFailureIsGeneric(t *testing.T) {
	s := newTestServer(t, brokenStore{})

	code, env := s.do(http.MethodPost, "/api/mood", map[string]any{"userId": "u1", "mood": 5})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Server error", env.Message)

	code, env = s.do(http.MethodGet, "/api/mood/u1", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Server error", env.Message)
	assert.NotContains(t, env.Message, "pq")
}

func TestMood_Summary(t *testing.T) {
	s := newTestServer(t, nil)
	for _, m := range []int{4, 8} {
		code, _ := s.do(http.MethodPost, "/api/mood", map[string]any{"userId": "u1", "mood": m, "tags": []string{"work"}})
		require.Equal(t, http.StatusCreated, code)
	}

	code, env := s.do(http.MethodGet, "/api/mood/u1/summary?days=7", nil)
	require.Equal(t, http.StatusOK, code)

	var sum mood.Summary
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	assert.Equal(t, 7, sum.Days)
	assert.Equal(t, 2, sum.Count)
	assert.Equal(t, 6.0, sum.Average)
	assert.Equal(t, map[string]int{"work": 2}, sum.TagCounts)
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	s := newTestServer(t, nil)
	creds := map[string]any{"email": " Person@Example.test ", "password": "longenough"}

	code, env := s.do(http.MethodPost, "/api/auth/register", creds)
	require.Equal(t, http.StatusCreated, code)
	var reg struct {
		Token string    `json:"token"`
		User  auth.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &reg))
	assert.Equal(t, "person@example.test", reg.User.Email)
	assert.NotContains(t, string(env.Data), "passwordHash")

	code, _ = s.do(http.MethodPost, "/api/auth/register", creds)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "person@example.test", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(http.MethodPost, "/api/auth/login", creds)
	require.Equal(t, http.StatusOK, code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))

	code, env = s.do(http.MethodGet, "/api/me", nil, "Authorization", "Bearer "+login.Token)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"userId":"`+reg.User.ID+`"}`, string(env.Data))

	code, _ = s.do(http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAuth_RegisterRejectsShortPassword(t *testing.T) {
	s := newTestServer(t, nil)
	code, env := s.do(http.MethodPost, "/api/auth/register", map[string]any{"email": "a@b.test", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
}

func TestReminders_CreateAndCancel(t *testing.T) {
	s := newTestServer(t, nil)
	at := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)

	code, env := s.do(http.MethodPost, "/api/reminders", map[string]any{"userId": "u1", "remindAt": at})
	require.Equal(t, http.StatusCreated, code)
	var rem struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rem))
	assert.Equal(t, jobs.StatusPending, rem.Status)

	code, _ = s.do(http.MethodDelete, "/api/reminders/"+rem.ID+"?userId=u2", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodDelete, "/api/reminders/"+rem.ID+"?userId=u1", nil)
	assert.Equal(t, http.StatusOK, code)

	job, ok := s.backend.Jobs.(*jobs.MemRepo).Get(rem.ID)
	require.True(t, ok)
	assert.Equal(t, jobs.StatusCancelled, job.Status)
}

func TestReminders_RejectsBadTime(t *testing.T) {
	s := newTestServer(t, nil)

	code, _ := s.do(http.MethodPost, "/api/reminders", map[string]any{"userId": "u1", "remindAt": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/reminders", map[string]any{"userId": "u1"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
