// File: internal/handlers/webhook_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/iyunix/go-lifexia/internal/services"
	"github.com/iyunix/go-lifexia/internal/services/whatsapp"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentSenders bounds how many senders of one webhook batch are
// answered in parallel.
const maxConcurrentSenders = 4

type WebhookHandler struct {
	WhatsApp *services.WhatsAppService
	Logger   Logger
}

func NewWebhookHandler(ws *services.WhatsAppService, logger Logger) *WebhookHandler {
	return &WebhookHandler{WhatsApp: ws, Logger: logger}
}

// Verify answers the subscription handshake with the raw challenge.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, token := q.Get("hub.mode"), q.Get("hub.verify_token")
	if mode == "" || token == "" {
		writeError(w, "Not found", http.StatusNotFound)
		return
	}

	challenge, err := h.WhatsApp.Verify(mode, token, q.Get("hub.challenge"))
	if err != nil {
		writeError(w, "Verification failed", http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, challenge)
}

// Receive answers every message of a webhook batch. Messages of one sender
// are handled in order; different senders are handled concurrently.
// Per-message failures are logged and the batch is still acknowledged.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !h.WhatsApp.CheckSignature(body, r.Header.Get(whatsapp.SignatureHeader)) {
		h.Logger.Warn("webhook signature rejected", "remote", r.RemoteAddr)
		writeError(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var payload whatsapp.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	for _, st := range payload.Statuses() {
		h.Logger.Debug("message status", "id", st.ID, "status", st.Status, "recipient", st.RecipientID)
	}

	bySender := make(map[string][]whatsapp.Inbound)
	var order []string
	for _, in := range payload.Inbound() {
		if _, seen := bySender[in.From]; !seen {
			order = append(order, in.From)
		}
		bySender[in.From] = append(bySender[in.From], in)
	}

	g, ctx := errgroup.WithContext(context.WithoutCancel(r.Context()))
	g.SetLimit(maxConcurrentSenders)
	for _, from := range order {
		batch := bySender[from]
		g.Go(func() error {
			for _, in := range batch {
				if err := h.WhatsApp.Handle(ctx, in); err != nil {
					h.Logger.Error("failed to answer whatsapp message", "from", in.From, "id", in.ID, "error", err)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

// SendMessage lets an operator push a text message to a number.
func (h *WebhookHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To      string `json:"to"`
		Message string `json:"message"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.Message) == "" {
		writeError(w, "to and message are required", http.StatusBadRequest)
		return
	}

	id, err := h.WhatsApp.SendText(r.Context(), req.To, req.Message)
	if err != nil {
		var waErr *whatsapp.WhatsAppError
		if errors.As(err, &waErr) && waErr.Type == whatsapp.ErrTypeConfig {
			writeError(w, "WhatsApp sending is not configured", http.StatusServiceUnavailable)
			return
		}
		h.Logger.Error("failed to send whatsapp message", "to", req.To, "error", err)
		writeError(w, "Failed to send message", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message_id": id})
}

// SessionStatus reports whether a free-form reply can still be sent to a number.
func (h *WebhookHandler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	phone := mux.Vars(r)["phone"]
	status, err := h.WhatsApp.SessionStatus(r.Context(), phone)
	if err != nil {
		h.Logger.Error("session status lookup failed", "phone", phone, "error", err)
		writeError(w, "Could not read session status", http.StatusInternalServerError)
		return
	}
	resp := map[string]interface{}{
		"success":           true,
		"phone":             phone,
		"window_open":       status.Open,
		"remaining_seconds": int(status.Remaining.Seconds()),
	}
	if !status.LastMessage.IsZero() {
		resp["last_message"] = status.LastMessage
	}
	writeJSON(w, http.StatusOK, resp)
}
