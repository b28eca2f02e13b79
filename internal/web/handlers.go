package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"questforge/server/internal/config"
	"questforge/server/internal/protocol"
	"questforge/server/internal/storage"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

type Handlers struct {
	config *config.Config
	hub    *SessionHub
	wizard *WizardService
	db     *storage.PostgresStore
}

func NewHandlers(cfg *config.Config, hub *SessionHub, wizard *WizardService, db *storage.PostgresStore) *Handlers {
	return &Handlers{
		config: cfg,
		hub:    hub,
		wizard: wizard,
		db:     db,
	}
}

func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "questforge",
		"clients": h.hub.GetClientCount(),
	})
}

// CORS middleware
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "300")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authMiddleware checks the bearer token on API routes. An empty
// configured token disables the check entirely.
func authMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid or missing token"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func NewRouter(cfg *config.Config, hub *SessionHub, wizard *WizardService, db *storage.PostgresStore) *chi.Mux {
	r := chi.NewRouter()

	// Request logging middleware
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("REQUEST: %s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	})

	// CORS middleware
	r.Use(corsMiddleware)

	handlers := NewHandlers(cfg, hub, wizard, db)

	// Public routes
	r.Get("/health", handlers.HealthCheck)
	r.Get("/ws", handlers.ServeWS)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(cfg.Server.AuthToken))

		r.Post("/chat", wizard.HandleChat)

		r.Route("/adventures", func(r chi.Router) {
			r.Get("/", handlers.ListAdventures)
			r.Get("/{id}", handlers.GetAdventure)
		})

		r.Route("/content", func(r chi.Router) {
			r.Get("/frames", handlers.GetFrames)
			r.Get("/adversaries", handlers.GetAdversaries)
			r.Get("/items", handlers.GetItems)
		})
	})

	return r
}

// ServeWS upgrades the connection and binds a wizard session to it.
func (h *Handlers) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := &Client{
		ID:     sessionID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		Hub:    h.hub,
		closed: false,
	}

	emitter := NewEmitter(client)
	sess := h.wizard.NewSession(r.Context(), sessionID, emitter)
	handlers := h.wizard.BindHandlers(sess)
	// The request context ends when this handler returns; dispatched
	// events outlive it.
	client.handle = func(env *protocol.Envelope) {
		Dispatch(context.Background(), emitter, env, handlers)
	}

	// Register client with hub (starts the write pump)
	h.hub.register <- client

	emitter.Connected(sessionID, "Connected to the adventure wizard")

	// Start client read pump
	go client.readPump()
}

// --- adventure REST ---

func (h *Handlers) ListAdventures(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.db == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "Database not available"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	advs, err := h.db.ListAdventures(limit)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Failed to list adventures"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{"adventures": advs})
}

func (h *Handlers) GetAdventure(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.db == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "Database not available"})
		return
	}

	adv, err := h.db.GetAdventure(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Adventure not found"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(adv)
}

// --- content lookups ---

func (h *Handlers) GetFrames(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.db == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "Database not available"})
		return
	}

	frames, err := h.db.FindFrames(r.URL.Query().Get("tier"))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Failed to load frames"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{"frames": frames})
}

func (h *Handlers) GetAdversaries(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.db == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "Database not available"})
		return
	}

	advs, err := h.db.FindAdversaries(r.URL.Query().Get("tier"), r.URL.Query().Get("role"))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Failed to load adversaries"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{"adversaries": advs})
}

func (h *Handlers) GetItems(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.db == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "Database not available"})
		return
	}

	items, err := h.db.FindItems(r.URL.Query().Get("rarity"))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Failed to load items"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{"items": items})
}

// generateSessionID generates a unique session ID
func generateSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:16]
	}
	return hex.EncodeToString(b)
}
