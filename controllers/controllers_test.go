package controllers_test

import (
	"Trivium/middleware"
	"Trivium/models/postgres"
	"Trivium/routes"
	"Trivium/services/identity"
	"Trivium/services/match"
	"Trivium/services/social"
	"Trivium/services/store"
	"Trivium/services/trivia"
	"Trivium/utils"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubQuestions struct{}

func (stubQuestions) FetchQuestions(ctx context.Context, p trivia.Params) ([]postgres.Question, error) {
	if _, ok := trivia.CategoryID(p.Category); !ok {
		return nil, utils.BadRequest("Invalid category selected")
	}
	n := p.Amount
	if n == 0 {
		n = 10
	}
	out := make([]postgres.Question, n)
	for i := range out {
		out[i] = postgres.Question{
			Question:      fmt.Sprintf("q%d", i),
			CorrectAnswer: "yes",
			AllAnswers:    []string{"yes", "no"},
		}
	}
	return out, nil
}

type api struct {
	t        *testing.T
	router   *gin.Engine
	verifier *identity.JWTVerifier
	mem      *store.MemoryStore
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := identity.NewJWTVerifier("controller-secret", "")
	require.NoError(t, err)

	mem := store.NewMemoryStore()
	manager := match.NewManager(match.Options{Rooms: mem, Profiles: mem, Questions: stubQuestions{}})

	router := gin.New()
	middleware.SetUpMiddleware(router, nil)
	routes.SetupRoutes(router, routes.Dependencies{
		Matches:   manager,
		Social:    social.NewService(mem, mem),
		Questions: stubQuestions{},
		Verifier:  verifier,
		PublicURL: "https://trivium.example/",
	})
	return &api{t: t, router: router, verifier: verifier, mem: mem}
}

func (a *api) token(uid string) string {
	a.t.Helper()
	token, err := a.verifier.Issue(identity.Identity{UID: uid, Name: "Name " + uid, Email: uid + "@example.com"}, time.Hour)
	require.NoError(a.t, err)
	return token
}

func (a *api) do(method, path, uid string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set("Authorization", "Bearer "+a.token(uid))
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestPing(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodGet, "/api/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", decode(t, w)["message"])
}

func TestRoomsRequireAuth(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodPost, "/api/rooms", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", decode(t, w)["kind"])
}

func TestMatchFlow(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/api/rooms", "host", map[string]any{"capacity": 2, "customRoomId": "FLOW01", "amount": 3})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "FLOW01", decode(t, w)["roomId"])

	w = a.do(http.MethodPost, "/api/rooms", "other", map[string]any{"customRoomId": "FLOW01"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// starting alone is refused
	w = a.do(http.MethodPost, "/api/rooms/start", "host", map[string]any{"roomId": "FLOW01"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "insufficient_players", decode(t, w)["kind"])

	w = a.do(http.MethodPost, "/api/rooms/join", "guest", map[string]any{"roomId": "FLOW01"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/api/rooms/join", "late", map[string]any{"roomId": "FLOW01"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "capacity", decode(t, w)["kind"])

	w = a.do(http.MethodPost, "/api/rooms/start", "guest", map[string]any{"roomId": "FLOW01"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPost, "/api/rooms/start", "host", map[string]any{"roomId": "FLOW01"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode(t, w)["questions"], 3)

	w = a.do(http.MethodGet, "/api/rooms/questions?roomId=FLOW01", "guest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["questions"], 3)

	w = a.do(http.MethodGet, "/api/rooms/questions?roomId=FLOW01", "stranger", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPost, "/api/rooms/answer", "guest", map[string]any{"roomId": "FLOW01", "questionIndex": 0, "answer": "yes", "isCorrect": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(10), decode(t, w)["score"])

	w = a.do(http.MethodPost, "/api/rooms/answer", "guest", map[string]any{"roomId": "FLOW01", "questionIndex": 0, "answer": "no", "isCorrect": false})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_submission", decode(t, w)["kind"])

	w = a.do(http.MethodPost, "/api/rooms/answer-bulk", "host", map[string]any{
		"roomId":     "FLOW01",
		"answers":    map[string]string{"0": "yes", "2": "no"},
		"finalScore": 20,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(20), decode(t, w)["score"])

	w = a.do(http.MethodGet, "/api/rooms/leaderboard/FLOW01", "guest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	board := decode(t, w)["leaderboard"].([]any)
	require.Len(t, board, 2)
	assert.Equal(t, "host", board[0].(map[string]any)["uid"])
	assert.Equal(t, "Name host", board[0].(map[string]any)["name"])

	w = a.do(http.MethodGet, "/api/rooms/status/FLOW01", "guest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "started", decode(t, w)["status"])

	w = a.do(http.MethodPost, "/api/rooms/finish", "host", map[string]any{"roomId": "FLOW01"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/api/rooms/status/FLOW01", "guest", nil)
	assert.Equal(t, "finished", decode(t, w)["status"])
}

func TestRequestValidation(t *testing.T) {
	a := newAPI(t)

	cases := []struct {
		path string
		body any
	}{
		{"/api/rooms/join", map[string]any{}},
		{"/api/rooms", map[string]any{"capacity": 11}},
		{"/api/rooms", map[string]any{"difficulty": "impossible"}},
		{"/api/rooms/answer", map[string]any{"roomId": "X"}},
		{"/api/rooms/answer", map[string]any{"roomId": "X", "questionIndex": -1}},
		{"/api/rooms/answer-bulk", map[string]any{"roomId": "X", "answers": []string{"a"}}},
		{"/api/rooms/answer-bulk", map[string]any{"roomId": "X", "answers": []string{"a"}, "finalScore": -5}},
	}
	for _, tc := range cases {
		w := a.do(http.MethodPost, tc.path, "alice", tc.body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%s %v", tc.path, tc.body)
	}

	w := a.do(http.MethodGet, "/api/rooms/status/MISSING", "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRandomMatch(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/api/rooms/random", "p1", map[string]any{"category": "science"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode(t, w)["roomId"]

	w = a.do(http.MethodPost, "/api/rooms/random", "p2", map[string]any{"category": "science"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, first, body["roomId"])
	assert.Equal(t, "started", body["room"].(map[string]any)["status"])
}

func TestSubmitScoreRoute(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/api/rooms", "host", map[string]any{"customRoomId": "SCORE1"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(http.MethodPost, "/api/leaderboard/SCORE1/submit", "host", map[string]any{"score": 70})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(70), decode(t, w)["score"])

	w = a.do(http.MethodPost, "/api/rooms/leaderboard/SCORE1/submit", "nobody", map[string]any{"score": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInviteQR(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/api/rooms", "host", map[string]any{"customRoomId": "QRCODE"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(http.MethodGet, "/api/rooms/qr/QRCODE", "host", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte("\x89PNG"), w.Body.Bytes()[:4])
}

func TestUsersAndFriends(t *testing.T) {
	a := newAPI(t)

	// any authenticated call registers the caller's profile
	for _, uid := range []string{"alice", "bob"} {
		w := a.do(http.MethodGet, "/api/users/me", uid, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uid, decode(t, w)["uid"])
	}

	w := a.do(http.MethodPost, "/api/users/register", "alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodGet, "/api/users/search", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/users/search?query=name", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "bob", found[0]["uid"])

	w = a.do(http.MethodGet, "/api/users/suggested", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodPost, "/api/friends/request", "alice", map[string]any{"recipient": "bob"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	requestID := decode(t, w)["request"].(map[string]any)["id"].(string)

	w = a.do(http.MethodPost, "/api/friends/request", "alice", map[string]any{"recipient": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/friends/pending", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["pendingRequests"], 1)

	w = a.do(http.MethodPut, "/api/friends/request/"+requestID, "alice", map[string]any{"action": "accept"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPut, "/api/friends/request/"+requestID, "bob", map[string]any{"action": "accept"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/api/friends/list", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	friends := decode(t, w)["friends"].([]any)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].(map[string]any)["uid"])
}

func TestQuizRoutes(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodGet, "/api/quiz/questions?category=history&amount=4", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var questions []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &questions))
	assert.Len(t, questions, 4)

	w = a.do(http.MethodGet, "/api/quiz/questions?amount=500", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/quiz/questions?category=astrology", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/quiz/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w)["categories"], "History")
}
