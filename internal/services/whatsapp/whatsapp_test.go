package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

func testConfig(baseURL string) *Config {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.AccessToken = "token"
	cfg.PhoneNumberID = "12345"
	cfg.VerifyToken = "verify"
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func TestSendTextPostsCloudAPIMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v21.0/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "whatsapp", body["messaging_product"])
		assert.Equal(t, "919876543210", body["to"])
		assert.Equal(t, "text", body["type"])
		assert.Equal(t, "hello", body["text"].(map[string]interface{})["body"])

		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	id, err := NewCloudProvider(testConfig(srv.URL), nopLogger{}).SendText(context.Background(), "919876543210", "hello")
	require.NoError(t, err)
	assert.Equal(t, "wamid.1", id)
}

func TestSendTextRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.3"}]}`))
	}))
	defer srv.Close()

	id, err := NewCloudProvider(testConfig(srv.URL), nopLogger{}).SendText(context.Background(), "1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "wamid.3", id)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSendTextDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad number","code":100}}`))
	}))
	defer srv.Close()

	_, err := NewCloudProvider(testConfig(srv.URL), nopLogger{}).SendText(context.Background(), "1", "hi")
	var waErr *WhatsAppError
	require.True(t, errors.As(err, &waErr))
	assert.Equal(t, ErrTypeProvider, waErr.Type)
	assert.Equal(t, http.StatusBadRequest, waErr.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSendTextTruncatesLongBodies(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var msg textMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		got = msg.Text.Body
		_, _ = w.Write([]byte(`{"messages":[{"id":"x"}]}`))
	}))
	defer srv.Close()

	_, err := NewCloudProvider(testConfig(srv.URL), nopLogger{}).SendText(context.Background(), "1", strings.Repeat("é", 5000))
	require.NoError(t, err)
	assert.Equal(t, MaxMessageRunes, len([]rune(got)))
}

func TestSendTextUnconfigured(t *testing.T) {
	_, err := NewCloudProvider(DefaultConfig(), nopLogger{}).SendText(context.Background(), "1", "hi")
	var waErr *WhatsAppError
	require.True(t, errors.As(err, &waErr))
	assert.Equal(t, ErrTypeConfig, waErr.Type)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate())
	assert.False(t, cfg.Enabled())

	cfg = testConfig("https://graph.facebook.com")
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "https://graph.facebook.com/v21.0/12345/messages", cfg.MessagesURL())

	cfg.Window = 0
	assert.Error(t, cfg.Validate())

	cfg = testConfig("https://graph.facebook.com")
	cfg.DedupeTTL = 0
	assert.Error(t, cfg.Validate())
}

func TestMemoryWindow(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	w := NewMemoryWindow(24 * time.Hour).(*memoryWindow)
	w.now = func() time.Time { return now }
	ctx := context.Background()

	st, err := w.Status(ctx, "91")
	require.NoError(t, err)
	assert.False(t, st.Open)

	require.NoError(t, w.Record(ctx, "91"))
	now = now.Add(23 * time.Hour)
	st, err = w.Status(ctx, "91")
	require.NoError(t, err)
	assert.True(t, st.Open)
	assert.Equal(t, time.Hour, st.Remaining)

	now = now.Add(2 * time.Hour)
	st, err = w.Status(ctx, "91")
	require.NoError(t, err)
	assert.False(t, st.Open)
}

func TestMemoryDeduper(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	d := NewMemoryDeduper(time.Hour).(*memoryDeduper)
	d.now = func() time.Time { return now }
	ctx := context.Background()

	first, err := d.FirstSeen(ctx, "wamid.1")
	require.NoError(t, err)
	assert.True(t, first)

	first, err = d.FirstSeen(ctx, "wamid.1")
	require.NoError(t, err)
	assert.False(t, first)

	first, err = d.FirstSeen(ctx, "wamid.2")
	require.NoError(t, err)
	assert.True(t, first)

	now = now.Add(2 * time.Hour)
	first, err = d.FirstSeen(ctx, "wamid.1")
	require.NoError(t, err)
	assert.True(t, first)
	assert.Len(t, d.seen, 1)
}

func TestSeenKey(t *testing.T) {
	assert.Equal(t, "whatsapp:seen:wamid.ABC", seenKey("wamid.ABC"))
}

func TestWindowKey(t *testing.T) {
	assert.Equal(t, "whatsapp:window:919876543210", windowKey("919876543210"))
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"text", `{"type":"text","text":{"body":"what is aspirin"}}`, "what is aspirin"},
		{"button", `{"type":"button","button":{"text":"Emergency","payload":"E"}}`, "Emergency"},
		{"button reply", `{"type":"interactive","interactive":{"type":"button_reply","button_reply":{"id":"1","title":"Drug list"}}}`, "Drug list"},
		{"list reply", `{"type":"interactive","interactive":{"type":"list_reply","list_reply":{"id":"2","title":"Hospitals"}}}`, "Hospitals"},
		{"image caption", `{"type":"image","image":{"caption":"is this crocin?"}}`, "is this crocin?"},
		{"image without caption", `{"type":"image","image":{}}`, "I sent an image"},
		{"location", `{"type":"location","location":{"latitude":12.97,"longitude":77.59}}`, "hospitals near me (location: 12.97,77.59)"},
		{"sticker", `{"type":"sticker","sticker":{"id":"s"}}`, ""},
		{"text without body", `{"type":"text"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Message
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &m))
			assert.Equal(t, tt.want, ExtractText(m))
		})
	}
}

func TestPayloadInbound(t *testing.T) {
	raw := `{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{
		"messaging_product":"whatsapp",
		"messages":[
			{"from":"911","id":"m1","type":"text","text":{"body":"hi"}},
			{"id":"m2","type":"text","text":{"body":"no sender"}},
			{"from":"912","id":"m3","type":"sticker"}
		],
		"statuses":[{"id":"s1","status":"delivered","recipient_id":"911"}]}}]}]}`

	var p WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	in := p.Inbound()
	require.Len(t, in, 2)
	assert.Equal(t, Inbound{From: "911", ID: "m1", Type: "text", Text: "hi"}, in[0])
	assert.Equal(t, "", in[1].Text)

	require.Len(t, p.Statuses(), 1)
	assert.Equal(t, "delivered", p.Statuses()[0].Status)
}

func TestCleanForWhatsApp(t *testing.T) {
	in := "## 💊 **Paracetamol**\n\n---\n**Use:** fever  "
	want := "💊 *Paracetamol*\n\n" + strings.Repeat("─", 20) + "\n*Use:* fever"
	assert.Equal(t, want, CleanForWhatsApp(in))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "éé", Truncate("ééé", 2))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"object":"whatsapp_business_account"}`)
	header := Sign("secret", body)

	assert.True(t, VerifySignature("secret", body, header))
	assert.False(t, VerifySignature("other", body, header))
	assert.False(t, VerifySignature("secret", []byte("{}"), header))
	assert.False(t, VerifySignature("secret", body, "sha1=abc"))
	assert.False(t, VerifySignature("secret", body, "sha256=zz"))
	assert.False(t, VerifySignature("", body, header))
}
