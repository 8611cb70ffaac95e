// File: internal/handlers/routes.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Routes groups every HTTP handler of the service.
type Routes struct {
	Chat    *ChatHandler
	History *HistoryHandler
	Webhook *WebhookHandler
	Health  *HealthHandler
}

// RouteMiddleware is applied by Router: Global to every route, API to the
// /api subtree except the webhook, Query to the chat query alone, User to
// the history routes and Operator to the WhatsApp operator routes.
type RouteMiddleware struct {
	Global   []mux.MiddlewareFunc
	API      []mux.MiddlewareFunc
	Query    []mux.MiddlewareFunc
	User     []mux.MiddlewareFunc
	Operator []mux.MiddlewareFunc
}

func (rt *Routes) Router(mw RouteMiddleware) *mux.Router {
	r := mux.NewRouter()
	r.Use(mw.Global...)

	// --- Public Routes ---
	r.HandleFunc("/health", rt.Health.Health).Methods("GET")
	r.HandleFunc("/api/log", LogClientEvent).Methods("POST")
	r.HandleFunc("/api/whatsapp/webhook", rt.Webhook.Verify).Methods("GET")
	r.HandleFunc("/api/whatsapp/webhook", rt.Webhook.Receive).Methods("POST")

	// --- API Routes ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(mw.API...)

	var query http.Handler = http.HandlerFunc(rt.Chat.Query)
	for i := len(mw.Query) - 1; i >= 0; i-- {
		query = mw.Query[i](query)
	}
	api.Handle("/chat/query", query).Methods("POST")
	api.HandleFunc("/chat/drug-search", rt.Chat.DrugSearch).Methods("POST")
	api.HandleFunc("/chat/emergency-drugs", rt.Chat.EmergencyDrugs).Methods("GET")
	api.HandleFunc("/chat/quick-info/{drug}", rt.Chat.QuickInfo).Methods("GET")
	api.HandleFunc("/chat/history", rt.Chat.History).Methods("GET")
	api.HandleFunc("/chat/clear-history", rt.Chat.ClearHistory).Methods("POST")
	api.HandleFunc("/chat/feedback", rt.Chat.Feedback).Methods("POST")

	// --- User Routes ---
	history := api.PathPrefix("/history").Subrouter()
	history.Use(mw.User...)
	history.HandleFunc("/conversation/{session_id}", rt.History.Conversation).Methods("GET")
	history.HandleFunc("/delete/{id:[0-9]+}", rt.History.Delete).Methods("DELETE")
	history.HandleFunc("/{user_id}", rt.History.UserConversations).Methods("GET")

	// --- Operator Routes ---
	operator := api.PathPrefix("/whatsapp").Subrouter()
	operator.Use(mw.Operator...)
	operator.HandleFunc("/send-message", rt.Webhook.SendMessage).Methods("POST")
	operator.HandleFunc("/session-status/{phone}", rt.Webhook.SessionStatus).Methods("GET")

	// --- Custom Error Handlers ---
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
	return r
}
