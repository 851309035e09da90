// Package petservice is a small HTTP service that serves the fixture pet list
// the pets view reads. It is used for local runs and end-to-end tests.
package petservice

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
)

// DataPath is where the pet list is served.
const DataPath = "/pets/v1/data"

type Options struct {
	// ErrorEvery makes every Nth data call fail with 503. Zero disables it.
	ErrorEvery int
	// Hostname is reported in the payload; empty means os.Hostname.
	Hostname string
	Logger   logr.Logger
}

// Service holds the call counter shared by the handlers.
type Service struct {
	opts  Options
	calls atomic.Int64
}

func New(opts Options) *Service {
	if opts.Hostname == "" {
		host, err := os.Hostname()
		if err != nil {
			host = "Unknown"
		}
		opts.Hostname = host
	}
	return &Service{opts: opts}
}

// Calls returns how many data requests were served, failed ones included.
func (s *Service) Calls() int64 {
	return s.calls.Load()
}

// Router returns the chi handler for the service.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.requestLog)
	r.Use(cors)

	r.Get("/liveness", ok)
	r.Get("/readiness", ok)
	r.Get(DataPath, s.data)
	r.Options(DataPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func (s *Service) data(w http.ResponseWriter, r *http.Request) {
	n := s.calls.Add(1)
	if every := int64(s.opts.ErrorEvery); every > 0 && n%every == 0 {
		s.opts.Logger.Info("failing data call", "call", n, "request_id", chimw.GetReqID(r.Context()))
		http.Error(w, "Unexpected Error when querying the pets repository", http.StatusServiceUnavailable)
		return
	}

	body, err := json.Marshal(payload(s.opts.Hostname))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *Service) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.opts.Logger.V(1).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		h.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		next.ServeHTTP(w, r)
	})
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ListenAndServe serves s on addr until ctx is canceled, then shuts down.
// ready, if non-nil, receives the bound address once listening.
func (s *Service) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:      s.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if ready != nil {
		ready(ln.Addr())
	}
	s.opts.Logger.Info("pet service listening", "addr", ln.Addr().String(), "error_every", s.opts.ErrorEvery)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
