package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"gourmet-dialog-bot/internal/application"
	"gourmet-dialog-bot/internal/domain/model"
	"gourmet-dialog-bot/internal/infra/worker"
)

const turnTimeout = 60 * time.Second

// Server exposes the message-submission endpoint. The transport ack is
// decoupled from dialog processing: activities are accepted immediately and
// handed to the worker pool.
type Server struct {
	dispatcher *application.Dispatcher
	pool       *worker.Pool
	log        *zerolog.Logger
}

func NewServer(dispatcher *application.Dispatcher, pool *worker.Pool, logger *zerolog.Logger) *Server {
	apiLog := logger.With().Str("component", "APIServer").Logger()
	return &Server{dispatcher: dispatcher, pool: pool, log: &apiLog}
}

// Router builds the chi router with all public routes attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(TraceID())
	r.Use(RequestLog(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/v1/messages", s.handleMessages)
	return r
}

// handleMessages acknowledges every submission with 202; dialog outcome
// never leaks into the transport response. Malformed bodies are logged and
// acknowledged with no dialog side effect.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	var act model.Activity
	if err := json.NewDecoder(r.Body).Decode(&act); err != nil {
		s.log.Warn().Err(err).Msg("unparseable activity body")
		s.accepted(w)
		return
	}

	task := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, turnTimeout)
		defer cancel()
		return s.dispatcher.HandleActivity(ctx, &act)
	}
	if err := s.pool.Submit(task); err != nil {
		// Queue saturated: degrade to inline processing off the request
		// goroutine rather than dropping the user's message.
		s.log.Warn().Err(err).Msg("worker queue full; processing inline")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
			defer cancel()
			if err := s.dispatcher.HandleActivity(ctx, &act); err != nil {
				s.log.Error().Err(err).Msg("inline turn failed")
			}
		}()
	}
	s.accepted(w)
}

func (s *Server) accepted(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}
