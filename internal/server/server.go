// Package server exposes an executor over HTTP.
//
// The core is single-threaded, so every request that touches the catalog
// runs under one mutex.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/koustreak/relcore/internal/config"
	"github.com/koustreak/relcore/internal/executor"
	"github.com/koustreak/relcore/internal/logger"
	"github.com/koustreak/relcore/internal/parser"
)

const maxBodyBytes = 1 << 20

type Server struct {
	mu     sync.Mutex
	exec   *executor.Executor
	cfg    config.ServerConfig
	log    *logger.Logger
	router chi.Router
}

// New builds the router. Call ListenAndServe to start accepting requests, or
// mount Handler in a test server.
func New(exec *executor.Executor, cfg config.ServerConfig, log *logger.Logger) *Server {
	s := &Server{
		exec: exec,
		cfg:  cfg,
		log:  logger.OrNop(log).Component("server"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Get("/join", s.handleJoin)

		r.Route("/tables", func(r chi.Router) {
			r.Get("/", s.handleListTables)
			r.Post("/", s.handleCreateTable)

			r.Route("/{table}", func(r chi.Router) {
				r.Get("/", s.handleDescribe)
				r.Delete("/", s.handleDropTable)

				r.Get("/rows", s.handleSelect)
				r.Post("/rows", s.handleInsert)
				r.Patch("/rows", s.handleUpdate)
				r.Delete("/rows", s.handleDelete)
			})
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoWith("listening", map[string]interface{}{"addr": s.cfg.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			s.log.Request(r.Method, r.URL.Path, status, time.Since(start), middleware.GetReqID(r.Context()))
		}()
		next.ServeHTTP(ww, r)
	})
}

// run executes one command under the catalog lock.
func (s *Server) run(cmd parser.Command) (*executor.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exec.Exec(cmd)
}
