package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stock-logistic/quoting-cli/internal/monitoring"
	"github.com/stock-logistic/quoting-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		// Expired sessions are evicted in the background while serving.
		go evictLoop(ctx, env.Store)

		if cfg.Monitoring.WebhookURL != "" {
			collector := monitoring.NewCollector(env.Store)
			alerter := monitoring.NewAlerter(cfg.Monitoring)
			go monitoring.NewChecker(collector, alerter, cfg.Monitoring).Run(ctx)
		}

		router := newRouter(env)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(env *quoteEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		sessions, err := env.Store.ListSessions(req.Context(), 1000, 0)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"store":    cfg.Store.Driver,
			"sessions": len(sessions),
		})
	})

	r.Post("/chat", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			SessionID string `json:"session_id"`
			Message   string `json:"message"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
			return
		}
		if body.Message == "" {
			writeError(w, http.StatusBadRequest, eris.New("message is required"))
			return
		}

		reply, err := env.Handler.Message(req.Context(), body.SessionID, body.Message)
		if err != nil {
			zap.L().Error("chat turn failed",
				zap.String("session_id", body.SessionID),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	})

	r.Get("/sessions", func(w http.ResponseWriter, req *http.Request) {
		limit := queryInt(req, "limit", 50)
		offset := queryInt(req, "offset", 0)
		sessions, err := env.Store.ListSessions(req.Context(), limit, offset)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, sessions)
	})

	r.Get("/sessions/{id}", func(w http.ResponseWriter, req *http.Request) {
		reply, err := env.Handler.Resume(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	})

	r.Delete("/sessions/{id}", func(w http.ResponseWriter, req *http.Request) {
		if err := env.Store.DeleteSession(req.Context(), chi.URLParam(req, "id")); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/quotes", func(w http.ResponseWriter, req *http.Request) {
		quotes, err := env.Store.ListQuotes(req.Context(), store.QuoteFilter{
			SessionID: req.URL.Query().Get("session_id"),
			Limit:     queryInt(req, "limit", 50),
			Offset:    queryInt(req, "offset", 0),
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, quotes)
	})

	r.Get("/quotes/{id}", func(w http.ResponseWriter, req *http.Request) {
		q, err := env.Store.GetQuote(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	})

	return r
}

// evictLoop deletes expired sessions on the configured interval until the
// context is cancelled.
func evictLoop(ctx context.Context, st store.Store) {
	interval := time.Duration(cfg.Session.EvictionIntervalMin) * time.Minute
	if interval <= 0 {
		return
	}
	ttl := time.Duration(cfg.Session.TTLHours) * time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := st.DeleteExpiredSessions(ctx, ttl)
			if err != nil {
				zap.L().Warn("session eviction failed", zap.Error(err))
				continue
			}
			if n > 0 {
				zap.L().Info("expired sessions evicted", zap.Int("count", n))
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if eris.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func queryInt(req *http.Request, key string, def int) int {
	raw := req.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
