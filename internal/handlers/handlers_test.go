package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/iyunix/go-lifexia/internal/auth"
	"github.com/iyunix/go-lifexia/internal/factstore"
	"github.com/iyunix/go-lifexia/internal/intent"
	"github.com/iyunix/go-lifexia/internal/middleware"
	"github.com/iyunix/go-lifexia/internal/repository/conversation"
	"github.com/iyunix/go-lifexia/internal/resolver"
	"github.com/iyunix/go-lifexia/internal/services"
	chatservice "github.com/iyunix/go-lifexia/internal/services/chat"
	"github.com/iyunix/go-lifexia/internal/services/engine"
	"github.com/iyunix/go-lifexia/internal/services/whatsapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct{}

func (stubGenerator) Generate(ctx context.Context, question, conversation string) string {
	return "generated answer"
}

type recordingSender struct {
	mu   sync.Mutex
	sent map[string][]string
}

func (s *recordingSender) SendText(ctx context.Context, to, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent == nil {
		s.sent = make(map[string][]string)
	}
	s.sent[to] = append(s.sent[to], body)
	return "wamid.1", nil
}

func (s *recordingSender) count(to string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent[to])
}

const (
	appSecret  = "app-secret"
	jwtSecret  = "jwt-secret"
	operatorID = "ops"
)

type testServer struct {
	handler http.Handler
	sender  *recordingSender
}

func newTestServer(t *testing.T, sender whatsapp.Sender) *testServer {
	t.Helper()
	logger := &services.NoOpLogger{}
	store := factstore.MustDefault()
	res := resolver.New(store)
	eng := engine.New(res, intent.New(store), stubGenerator{}, logger)

	chatCfg := chatservice.DefaultConfig()
	conversations := services.NewConversationService(conversation.NewMemoryRepository(), chatCfg, logger)
	chat, err := services.NewChatService(chatCfg, eng, conversations, logger)
	require.NoError(t, err)

	waCfg := whatsapp.DefaultConfig()
	waCfg.VerifyToken = "verify-me"
	waCfg.AppSecret = appSecret
	wa := services.NewWhatsAppService(waCfg, chat, sender, whatsapp.NewMemoryWindow(waCfg.Window), whatsapp.NewMemoryDeduper(waCfg.DedupeTTL), logger)

	routes := &Routes{
		Chat:    NewChatHandler(chat, services.NewDrugService(store, res, logger), conversations, logger),
		History: NewHistoryHandler(conversations, logger),
		Webhook: NewWebhookHandler(wa, logger),
		Health: NewHealthHandler(store.Len(), map[string]HealthCheck{
			"llm": func(ctx context.Context) error { return errors.New("not configured") },
		}),
	}
	ts := &testServer{handler: routes.Router(RouteMiddleware{
		API:      []mux.MiddlewareFunc{middleware.OptionalJWT([]byte(jwtSecret), logger)},
		User:     []mux.MiddlewareFunc{middleware.RequireUser(logger)},
		Operator: []mux.MiddlewareFunc{middleware.RequireOperator([]string{operatorID}, logger)},
	})}
	if rs, ok := sender.(*recordingSender); ok {
		ts.sender = rs
	}
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	return ts.doAs(t, "", method, path, body)
}

// doAs sends the request with a bearer token for userID; an empty userID
// sends no token.
func (ts *testServer) doAs(t *testing.T, userID, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		token, err := auth.GenerateJWT(userID, []byte(jwtSecret), time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var out map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestQueryAnswersDrugQuestion(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, out := ts.do(t, "POST", "/api/chat/query", map[string]string{
		"message":    "Tell me about Paracetamol",
		"user_type":  "general-public",
		"session_id": "web-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "web-1", out["session_id"])
	assert.Equal(t, "drug", out["branch"])
	assert.Contains(t, out["response"], "Paracetamol")
	assert.Equal(t, float64(2), out["message_id"])
	assert.NotEmpty(t, out["timestamp"])

	_, hist := ts.do(t, "GET", "/api/chat/history?session_id=web-1", nil)
	assert.Len(t, hist["history"], 2)
}

func TestQueryRendersHTML(t *testing.T) {
	ts := newTestServer(t, nil)
	_, out := ts.do(t, "POST", "/api/chat/query?render=html", map[string]string{"message": "aspirin"})
	assert.Contains(t, out["response_html"], "<")
	assert.NotEmpty(t, out["session_id"])
}

func TestQueryValidation(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, out := ts.do(t, "POST", "/api/chat/query", map[string]string{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, out["success"])

	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/chat/query", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDrugSearch(t *testing.T) {
	ts := newTestServer(t, nil)

	_, out := ts.do(t, "POST", "/api/chat/drug-search", map[string]string{"drug_name": "Crocin", "user_type": "student"})
	assert.Equal(t, true, out["found"])
	assert.NotEmpty(t, out["formatted_response"])
	info := out["drug_info"].(map[string]interface{})
	assert.Equal(t, "paracetamol", info["key"])

	_, out = ts.do(t, "POST", "/api/chat/drug-search", map[string]string{"drug_name": "unobtainium"})
	assert.Equal(t, false, out["found"])
	assert.Contains(t, out["message"], `"unobtainium"`)

	rec, _ := ts.do(t, "POST", "/api/chat/drug-search", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmergencyDrugsAndQuickInfo(t *testing.T) {
	ts := newTestServer(t, nil)

	_, out := ts.do(t, "GET", "/api/chat/emergency-drugs", nil)
	assert.NotEmpty(t, out["emergency_drugs"])
	assert.NotEmpty(t, out["categories"])

	rec, out := ts.do(t, "GET", "/api/chat/quick-info/aspirin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "aspirin", out["drug"].(map[string]interface{})["key"])

	rec, out = ts.do(t, "GET", "/api/chat/quick-info/unobtainium", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Drug not found", out["error"])
}

func TestClearHistoryAndConversationRoutes(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(t, "POST", "/api/chat/query", map[string]string{"message": "hi", "session_id": "s1", "user_id": "u1"})

	_, out := ts.doAs(t, "u1", "GET", "/api/history/u1", nil)
	convs := out["conversations"].([]interface{})
	require.Len(t, convs, 1)
	summary := convs[0].(map[string]interface{})
	assert.Equal(t, "s1", summary["session_id"])
	assert.Equal(t, "hi", summary["title"])

	rec, _ := ts.doAs(t, "u1", "GET", "/api/history/conversation/s1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.do(t, "POST", "/api/chat/clear-history", map[string]string{"session_id": "s1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.doAs(t, "u1", "GET", "/api/history/conversation/s1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = ts.do(t, "GET", "/api/chat/history", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteConversation(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(t, "POST", "/api/chat/query", map[string]string{"message": "hi", "session_id": "s1", "user_id": "u1"})

	_, out := ts.doAs(t, "u1", "GET", "/api/history/u1", nil)
	id := out["conversations"].([]interface{})[0].(map[string]interface{})["id"].(float64)

	rec, _ := ts.doAs(t, "u1", "DELETE", "/api/history/delete/"+jsonNumber(id), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.doAs(t, "u1", "DELETE", "/api/history/delete/"+jsonNumber(id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryRoutesRequireOwner(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(t, "POST", "/api/chat/query", map[string]string{"message": "hi", "session_id": "s1", "user_id": "u1"})
	_, out := ts.doAs(t, "u1", "GET", "/api/history/u1", nil)
	id := out["conversations"].([]interface{})[0].(map[string]interface{})["id"].(float64)

	rec, _ := ts.do(t, "GET", "/api/history/u1", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = ts.doAs(t, "u2", "GET", "/api/history/u1", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = ts.do(t, "GET", "/api/history/conversation/s1", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = ts.doAs(t, "u2", "GET", "/api/history/conversation/s1", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = ts.doAs(t, "u2", "DELETE", "/api/history/delete/"+jsonNumber(id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = ts.doAs(t, "u1", "GET", "/api/history/conversation/s1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOperatorRoutesRequireOperator(t *testing.T) {
	sender := &recordingSender{}
	ts := newTestServer(t, sender)
	msg := map[string]string{"to": "911", "message": "hello"}

	rec, _ := ts.do(t, "POST", "/api/whatsapp/send-message", msg)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = ts.doAs(t, "u1", "POST", "/api/whatsapp/send-message", msg)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = ts.doAs(t, "u1", "GET", "/api/whatsapp/session-status/911", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, sender.count("911"))
}

func jsonNumber(f float64) string {
	b, _ := json.Marshal(int(f))
	return string(b)
}

func TestDecodeJSONRequiresSingleValue(t *testing.T) {
	ts := newTestServer(t, nil)
	post := func(body string) int {
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/chat/feedback", strings.NewReader(body)))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post(`{"message_id": 2, "rating": 4, "client": "web"}`+"\n"))
	assert.Equal(t, http.StatusBadRequest, post(`{"message_id": 2, "rating": 4}{"rating": 1}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"rating": 4} trailing`))
	assert.Equal(t, http.StatusBadRequest, post(`[1, 2]`))
}

func TestFeedback(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, out := ts.do(t, "POST", "/api/chat/feedback", map[string]interface{}{"message_id": 2, "rating": 5})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Thank you for your feedback!", out["message"])

	rec, _ = ts.do(t, "POST", "/api/chat/feedback", map[string]interface{}{"message_id": 2, "rating": 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookVerify(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest("GET",
		"/api/whatsapp/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=42", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String())

	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest("GET",
		"/api/whatsapp/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=42", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/whatsapp/webhook", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

const webhookBody = `{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{
	"messaging_product":"whatsapp",
	"messages":[
		{"from":"911","id":"m1","type":"text","text":{"body":"what is aspirin"}},
		{"from":"912","id":"m2","type":"text","text":{"body":"hello"}},
		{"from":"911","id":"m3","type":"text","text":{"body":"thanks"}}
	]}}]}]}`

func TestWebhookReceiveAnswersEverySender(t *testing.T) {
	sender := &recordingSender{}
	ts := newTestServer(t, sender)

	req := httptest.NewRequest("POST", "/api/whatsapp/webhook", strings.NewReader(webhookBody))
	req.Header.Set(whatsapp.SignatureHeader, whatsapp.Sign(appSecret, []byte(webhookBody)))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, sender.count("911"))
	assert.Equal(t, 1, sender.count("912"))

	_, out := ts.do(t, "GET", "/api/chat/history?session_id=whatsapp:911", nil)
	history := out["history"].([]interface{})
	require.Len(t, history, 4)
	assert.Equal(t, "what is aspirin", history[0].(map[string]interface{})["content"])
	assert.Equal(t, "thanks", history[2].(map[string]interface{})["content"])

	_, out = ts.doAs(t, operatorID, "GET", "/api/whatsapp/session-status/911", nil)
	assert.Equal(t, true, out["window_open"])
}

func TestWebhookRedeliveryIsAnsweredOnce(t *testing.T) {
	sender := &recordingSender{}
	ts := newTestServer(t, sender)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/whatsapp/webhook", strings.NewReader(webhookBody))
		req.Header.Set(whatsapp.SignatureHeader, whatsapp.Sign(appSecret, []byte(webhookBody)))
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 2, sender.count("911"))
	assert.Equal(t, 1, sender.count("912"))
}

func TestWebhookReceiveRejectsBadSignature(t *testing.T) {
	sender := &recordingSender{}
	ts := newTestServer(t, sender)

	req := httptest.NewRequest("POST", "/api/whatsapp/webhook", strings.NewReader(webhookBody))
	req.Header.Set(whatsapp.SignatureHeader, "sha256=deadbeef")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, sender.count("911"))
}

func TestSendMessage(t *testing.T) {
	sender := &recordingSender{}
	ts := newTestServer(t, sender)

	rec, out := ts.doAs(t, operatorID, "POST", "/api/whatsapp/send-message", map[string]string{"to": "911", "message": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "wamid.1", out["message_id"])

	rec, _ = ts.doAs(t, operatorID, "POST", "/api/whatsapp/send-message", map[string]string{"to": "911"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	unconfigured := newTestServer(t, nil)
	rec, _ = unconfigured.doAs(t, operatorID, "POST", "/api/whatsapp/send-message", map[string]string{"to": "911", "message": "hello"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthAndNotFound(t *testing.T) {
	ts := newTestServer(t, nil)

	_, out := ts.do(t, "GET", "/health", nil)
	assert.Equal(t, "degraded", out["status"])
	assert.NotZero(t, out["drugs_loaded"])

	rec, _ := ts.do(t, "GET", "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogClientEvent(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, _ := ts.do(t, "POST", "/api/log", map[string]string{"level": "error", "message": "boom"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = ts.do(t, "POST", "/api/log", map[string]string{"level": "error"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
