package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pregchat/models"
	"pregchat/services"
)

// stubSessionStore はSessionManagerのインメモリ実装
type stubSessionStore struct {
	values map[string][]byte
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{values: map[string][]byte{}}
}

func (s *stubSessionStore) Put(_ context.Context, key string, value []byte) error {
	s.values[key] = value
	return nil
}

func (s *stubSessionStore) Delete(_ context.Context, key string) error {
	if _, ok := s.values[key]; !ok {
		return services.ErrNotFound
	}
	delete(s.values, key)
	return nil
}

func (s *stubSessionStore) Rename(_ context.Context, oldKey, newKey string) error {
	value, ok := s.values[oldKey]
	if !ok {
		return services.ErrNotFound
	}
	s.values[newKey] = value
	delete(s.values, oldKey)
	return nil
}

func (s *stubSessionStore) ListUserSessions(_ context.Context, userID string) ([]string, error) {
	keys := make([]string, 0)
	for key := range s.values {
		if strings.HasPrefix(key, services.UserSessionPrefix(userID)) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *stubSessionStore) GetSessionDetail(_ context.Context, key string) (models.SessionDetail, error) {
	data, ok := s.values[key]
	if !ok {
		return models.SessionDetail{}, services.ErrNotFound
	}
	var record models.SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return models.SessionDetail{}, err
	}
	return models.SessionDetail{
		SessionKey: key,
		Title:      record.Title,
		Username:   record.Username,
		Question:   record.Question,
		Answer:     record.Response,
		Timestamp:  record.CreationTimestamp,
	}, nil
}

func (s *stubSessionStore) AllSessionKeys(_ context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	return keys, nil
}

func sessionRouter(store *stubSessionStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	sc := NewSessionController(store)
	r.GET("/sessions/:user_id", sc.GetUserSessions)
	r.GET("/session/:session_key", sc.GetSessionDetails)
	r.POST("/create-session", sc.CreateSession)
	r.DELETE("/delete-session/:session_id", sc.DeleteSession)
	r.PUT("/rename-session", sc.RenameSession)
	return r
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetUserSessions(t *testing.T) {
	store := newStubSessionStore()
	key := services.SessionKey("101", "turn-1")
	store.values[key] = []byte(`{"question":"q"}`)
	router := sessionRouter(store)

	w := doJSON(router, http.MethodGet, "/sessions/101", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Sessions []string `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{key}, body.Sessions)
}

func TestGetSessionDetails(t *testing.T) {
	store := newStubSessionStore()
	key := services.SessionKey("101", "turn-1")
	store.values[key] = []byte(`{"response":"a","username":"Asha","question":"q","creation_timestamp":"2025-03-01-10-00-00"}`)
	router := sessionRouter(store)

	w := doJSON(router, http.MethodGet, "/session/"+key, "")
	require.Equal(t, http.StatusOK, w.Code)

	var detail models.SessionDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, key, detail.SessionKey)
	assert.Equal(t, "q", detail.Question)
	assert.Equal(t, "a", detail.Answer)
	assert.Equal(t, "2025-03-01-10-00-00", detail.Timestamp)
}

func TestGetSessionDetailsNotFound(t *testing.T) {
	router := sessionRouter(newStubSessionStore())

	w := doJSON(router, http.MethodGet, "/session/pregchat:session:user:101:gone", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateSession(t *testing.T) {
	store := newStubSessionStore()
	router := sessionRouter(store)

	w := doJSON(router, http.MethodPost, "/create-session",
		`{"session_id":"pregchat:session:user:101:manual","data":{"question":"imported"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"question":"imported"}`, string(store.values["pregchat:session:user:101:manual"]))
}

func TestDeleteSessionNotFound(t *testing.T) {
	router := sessionRouter(newStubSessionStore())

	w := doJSON(router, http.MethodDelete, "/delete-session/pregchat:session:user:101:gone", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRenameSession(t *testing.T) {
	store := newStubSessionStore()
	store.values["old_key"] = []byte(`{"question":"q"}`)
	store.values["new_key"] = []byte(`{"question":"stale"}`)
	router := sessionRouter(store)

	w := doJSON(router, http.MethodPut, "/rename-session",
		`{"old_session_id":"old_key","new_session_id":"new_key"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// 移動元は消え、移動先は上書きされている
	_, exists := store.values["old_key"]
	assert.False(t, exists)
	assert.JSONEq(t, `{"question":"q"}`, string(store.values["new_key"]))
}
