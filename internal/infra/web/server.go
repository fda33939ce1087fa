package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"gourmet-dialog-bot/internal/application"
	"gourmet-dialog-bot/internal/domain/model"
	"gourmet-dialog-bot/internal/domain/ports/repository"
)

// Server is the cookie-authenticated admin surface. It sits next to the
// public message endpoint on the same listener.
type Server struct {
	dispatcher *application.Dispatcher
	turns      repository.TurnLogRepository // optional, may be nil
	auth       *AuthManager
	password   string
	log        *zerolog.Logger
}

func NewServer(
	dispatcher *application.Dispatcher,
	turns repository.TurnLogRepository,
	auth *AuthManager,
	password string,
	logger *zerolog.Logger,
) *Server {
	webLog := logger.With().Str("component", "AdminServer").Logger()
	return &Server{
		dispatcher: dispatcher,
		turns:      turns,
		auth:       auth,
		password:   password,
		log:        &webLog,
	}
}

// RegisterRoutes sets up the routing for the admin API.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Post("/admin/login", s.loginHandler)
	r.Post("/admin/logout", s.logoutHandler)

	r.Group(func(pr chi.Router) {
		pr.Use(s.authMiddleware)
		pr.Get("/admin/stats", s.statsHandler)
		pr.Get("/admin/conversations/{id}/turns", s.turnsHandler)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if s.password == "" {
		s.log.Error().Msg("admin password is not configured")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.password)) != 1 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if _, err := s.auth.Mint(w); err != nil {
		s.log.Error().Err(err).Msg("failed to mint admin session")
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) logoutHandler(w http.ResponseWriter, _ *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.dispatcher.CurrentStats(r.Context())
	if err != nil {
		http.Error(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}

	response := struct {
		ActiveConversations int    `json:"active_conversations"`
		Uptime              string `json:"uptime"`
	}{
		ActiveConversations: stats.ActiveConversations,
		Uptime:              stats.Uptime.Round(time.Second).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func (s *Server) turnsHandler(w http.ResponseWriter, r *http.Request) {
	if s.turns == nil {
		http.Error(w, "Turn log is not configured", http.StatusNotFound)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Conversation ID is required", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 100
	}

	records, err := s.turns.ListByConversation(r.Context(), id, limit)
	if err != nil {
		http.Error(w, "Failed to list turns", http.StatusInternalServerError)
		return
	}

	response := struct {
		Data  []*model.TurnRecord `json:"data"`
		Limit int                 `json:"limit"`
	}{
		Data:  records,
		Limit: limit,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
