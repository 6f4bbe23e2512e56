package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetvoice/message-history-service/internal/domain"
	"github.com/meetvoice/message-history-service/internal/service"
)

type stubMessageService struct {
	messages  []domain.Message
	lastLimit int
	err       error
}

func (s *stubMessageService) GetHistory(_ context.Context, _ string, limit int) ([]domain.Message, error) {
	s.lastLimit = limit
	return s.messages, s.err
}

func (s *stubMessageService) GetConversation(_ context.Context, _, _ string, limit int) ([]domain.Message, error) {
	s.lastLimit = limit
	return s.messages, s.err
}

func (s *stubMessageService) Send(_ context.Context, req *domain.SendMessageRequest) (*domain.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Message{
		ID:          "id-1",
		Sender:      req.Sender,
		Recipient:   req.Recipient,
		Content:     req.Content,
		MessageType: domain.DefaultMessageType,
	}, nil
}

func (s *stubMessageService) MarkRead(context.Context, string, string) (int64, error) {
	return 3, s.err
}

func (s *stubMessageService) DeleteConversation(context.Context, string, string) (int64, error) {
	return 2, s.err
}

type stubConversationService struct {
	summaries []domain.ConversationSummary
	err       error
}

func (s *stubConversationService) ListConversations(context.Context, string) ([]domain.ConversationSummary, error) {
	return s.summaries, s.err
}

type stubPresenceService struct {
	err    error
	online []string
}

func (s *stubPresenceService) Connect(context.Context, string) error    { return s.err }
func (s *stubPresenceService) Disconnect(context.Context, string) error { return s.err }
func (s *stubPresenceService) OnlineUsers(context.Context) ([]string, error) {
	return s.online, s.err
}
func (s *stubPresenceService) Status(context.Context, string) (bool, error) {
	return true, s.err
}

func newTestRouter(msg *stubMessageService, conv *stubConversationService, pres *stubPresenceService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if msg == nil {
		msg = &stubMessageService{}
	}
	if conv == nil {
		conv = &stubConversationService{}
	}
	if pres == nil {
		pres = &stubPresenceService{}
	}

	router := gin.New()
	NewHTTPHandler(msg, conv, pres).RegisterRoutes(router)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func TestGetHistoryEnvelope(t *testing.T) {
	msg := &stubMessageService{messages: []domain.Message{
		{Sender: "alice", Recipient: "bob", Content: "hi", Timestamp: "2024-01-01T10:00:00Z"},
	}}
	router := newTestRouter(msg, nil, nil)

	w, parsed := doRequest(t, router, http.MethodGet, "/api/messages/history/alice?limit=5", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, parsed["success"])
	data := parsed["data"].(map[string]interface{})
	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, float64(1), data["count"])
	assert.Equal(t, 5, msg.lastLimit)
}

func TestGetHistoryUnparsableLimitFallsThrough(t *testing.T) {
	msg := &stubMessageService{}
	router := newTestRouter(msg, nil, nil)

	w, _ := doRequest(t, router, http.MethodGet, "/api/messages/history/alice?limit=abc", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, msg.lastLimit, "handler hands invalid limits to the service default")
}

func TestGetHistoryStoreErrorIs500(t *testing.T) {
	msg := &stubMessageService{err: errors.New("store down")}
	router := newTestRouter(msg, nil, nil)

	w, parsed := doRequest(t, router, http.MethodGet, "/api/messages/history/alice", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, parsed["success"])
}

func TestListConversationsEnvelope(t *testing.T) {
	conv := &stubConversationService{summaries: []domain.ConversationSummary{
		{Username: "bob", FirstName: "Robert", LastMessage: "hi", LastMessageAt: "2024-01-01T10:00:00Z"},
	}}
	router := newTestRouter(nil, conv, nil)

	w, parsed := doRequest(t, router, http.MethodGet, "/api/messages/conversations/alice", "")

	assert.Equal(t, http.StatusOK, w.Code)
	data := parsed["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])
	conversations := data["conversations"].([]interface{})
	first := conversations[0].(map[string]interface{})
	assert.Equal(t, "bob", first["username"])
	assert.Equal(t, "Robert", first["first_name"])
}

func TestSendMessageValidation(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	w, parsed := doRequest(t, router, http.MethodPost, "/api/messages/send",
		`{"sender":"alice"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, parsed["success"])
}

func TestSendMessageSuccess(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	w, parsed := doRequest(t, router, http.MethodPost, "/api/messages/send",
		`{"sender":"alice","recipient":"bob","content":"hello"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parsed["data"].(map[string]interface{})
	assert.Equal(t, "id-1", data["id"])
	assert.Equal(t, "text", data["message_type"])
}

func TestMarkReadEnvelope(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	w, parsed := doRequest(t, router, http.MethodPut, "/api/messages/mark-read",
		`{"sender":"alice","recipient":"bob"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parsed["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["count"])
}

func TestPresenceUnavailableIs503(t *testing.T) {
	pres := &stubPresenceService{err: service.ErrPresenceUnavailable}
	router := newTestRouter(nil, nil, pres)

	w, parsed := doRequest(t, router, http.MethodPost, "/api/users/connect",
		`{"username":"alice"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	errInfo := parsed["error"].(map[string]interface{})
	assert.Equal(t, "SERVICE_UNAVAILABLE", errInfo["code"])
}

func TestOnlineUsersEnvelope(t *testing.T) {
	pres := &stubPresenceService{online: []string{"alice", "bob"}}
	router := newTestRouter(nil, nil, pres)

	w, parsed := doRequest(t, router, http.MethodGet, "/api/users/online", "")

	assert.Equal(t, http.StatusOK, w.Code)
	data := parsed["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	w, parsed := doRequest(t, router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", parsed["status"])
}
