// Package server exposes dashboard edit sessions over HTTP and pushes page
// changes to websocket subscribers.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/internal/catalog"
	"github.com/goliatone/go-formstate/internal/dashboard"
	"github.com/goliatone/go-formstate/pkg/confirm"
	"github.com/goliatone/go-formstate/pkg/model"
)

const (
	defaultSubmitTimeout = 30 * time.Second
	defaultIdleTimeout   = 30 * time.Minute
	sweepInterval        = time.Minute
)

// Server serves edit sessions backed by a catalog store.
type Server struct {
	store         catalog.Store
	sessions      *Manager
	logger        *zap.Logger
	pageOptions   []dashboard.Option
	submitTimeout time.Duration
	router        chi.Router
	wg            sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPageOptions applies opts to every page the server opens.
func WithPageOptions(opts ...dashboard.Option) Option {
	return func(s *Server) {
		s.pageOptions = append(s.pageOptions, opts...)
	}
}

// WithIdleTimeout sets how long an untouched session survives.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.sessions.idleTimeout = d
	}
}

// WithSubmitTimeout bounds background submissions.
func WithSubmitTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.submitTimeout = d
		}
	}
}

// New creates a server for store.
func New(store catalog.Store, opts ...Option) *Server {
	s := &Server{
		store:         store,
		sessions:      NewManager(defaultIdleTimeout),
		logger:        zap.NewNop(),
		submitTimeout: defaultSubmitTimeout,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Sessions exposes the session manager.
func (s *Server) Sessions() *Manager { return s.sessions }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(s.recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.Len()})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/collections", s.searchCollections)
		r.Post("/products/{id}/sessions", s.openProduct)
		r.Post("/collections/{id}/sessions", s.openCollection)

		r.Route("/sessions/{sid}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/change", s.change)
			r.Post("/attributes/{attr}", s.changeAttribute)
			r.Post("/collections/toggle", s.toggleCollection)
			r.Post("/submit", s.submit)
			r.Get("/ws", s.watch)
		})
	})
	return r
}

// Run serves on addr until ctx is done, then shuts down and closes every
// session.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweepLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close waits for background submissions and closes every session.
func (s *Server) Close() {
	s.wg.Wait()
	s.sessions.CloseAll()
}

func (s *Server) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Sweep(); n > 0 {
				s.logger.Info("closed idle sessions", zap.Int("count", n))
			}
		}
	}
}

func (s *Server) openProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess := newSession(dashboard.KindProduct, id, s.sessions.now())
	page, err := dashboard.OpenProductPage(r.Context(), s.store, id, s.sessionPageOptions(sess)...)
	if err != nil {
		s.errorToHTTP(w, err)
		return
	}
	s.register(w, sess, page)
}

func (s *Server) openCollection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess := newSession(dashboard.KindCollection, id, s.sessions.now())
	page, err := dashboard.OpenCollectionPage(r.Context(), s.store, id, s.sessionPageOptions(sess)...)
	if err != nil {
		s.errorToHTTP(w, err)
		return
	}
	s.register(w, sess, page)
}

func (s *Server) sessionPageOptions(sess *Session) []dashboard.Option {
	opts := append([]dashboard.Option{
		dashboard.WithLogger(s.logger.With(zap.String("session", sess.ID))),
	}, s.pageOptions...)
	return append(opts,
		dashboard.WithOnChange(func() { sess.publish(pendingSnapshot) }),
		dashboard.WithOnButton(func(confirm.Snapshot) { sess.publish(pendingButton) }),
	)
}

func (s *Server) register(w http.ResponseWriter, sess *Session, page dashboard.Page) {
	sess.page = page
	s.sessions.add(sess)
	s.logger.Info("session opened",
		zap.String("session", sess.ID),
		zap.String("kind", sess.Kind),
		zap.String("record", sess.RecordID),
	)
	s.respond(w, http.StatusCreated, SessionResponse{Session: sess, Snapshot: page.Snapshot()})
}

// SessionResponse is returned when a session is opened or read.
type SessionResponse struct {
	Session  *Session           `json:"session"`
	Snapshot dashboard.Snapshot `json:"snapshot"`
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sid := chi.URLParam(r, "sid")
	sess, ok := s.sessions.Get(sid)
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "unknown session: "+sid)
		return nil, false
	}
	return sess, true
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respond(w, http.StatusOK, SessionResponse{Session: sess, Snapshot: sess.page.Snapshot()})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	if !s.sessions.Remove(sid) {
		writeError(w, http.StatusNotFound, CodeNotFound, "unknown session: "+sid)
		return
	}
	s.logger.Info("session closed", zap.String("session", sid))
	w.WriteHeader(http.StatusNoContent)
}

// ChangeRequest is the body of the change endpoint.
type ChangeRequest struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func (s *Server) change(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req ChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := sess.page.Change(model.Change(req.Name, req.Value)); err != nil {
		s.errorToHTTP(w, err)
		return
	}
	s.respond(w, http.StatusOK, sess.page.Snapshot())
}

// AttributeRequest is the body of the attribute endpoint.
type AttributeRequest struct {
	Value any `json:"value"`
}

func (s *Server) changeAttribute(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	editor, ok := sess.page.(dashboard.AttributeEditor)
	if !ok {
		writeError(w, http.StatusBadRequest, CodeUnsupported, sess.Kind+" pages have no attributes")
		return
	}
	var req AttributeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := editor.ChangeAttribute(chi.URLParam(r, "attr"), req.Value); err != nil {
		s.errorToHTTP(w, err)
		return
	}
	s.respond(w, http.StatusOK, sess.page.Snapshot())
}

// ToggleRequest is the body of the collection toggle endpoint.
type ToggleRequest struct {
	ID string `json:"id"`
}

func (s *Server) toggleCollection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	picker, ok := sess.page.(dashboard.CollectionPicker)
	if !ok {
		writeError(w, http.StatusBadRequest, CodeUnsupported, sess.Kind+" pages have no collections")
		return
	}
	var req ToggleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := picker.ToggleCollection(req.ID); err != nil {
		s.errorToHTTP(w, err)
		return
	}
	s.respond(w, http.StatusOK, sess.page.Snapshot())
}

// submit starts the save in the background; progress is observable through
// the snapshot's button view and the websocket.
func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if !sess.submitting.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, CodeSubmitInFlight, "a submission is already running")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer sess.submitting.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), s.submitTimeout)
		defer cancel()
		res, err := sess.page.Submit(ctx)
		switch {
		case err != nil:
			s.logger.Warn("submit failed", zap.String("session", sess.ID), zap.Error(err))
		case !res.OK():
			s.logger.Info("submit rejected",
				zap.String("session", sess.ID),
				zap.Int("field_errors", len(res.Errors.Fields)),
				zap.Int("form_errors", len(res.Errors.Form)),
			)
		default:
			s.logger.Info("submit saved", zap.String("session", sess.ID))
		}
	}()

	s.respond(w, http.StatusAccepted, map[string]string{"status": "submitting"})
}

func (s *Server) searchCollections(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := catalog.PageRequest{After: q.Get("after")}
	if first := q.Get("first"); first != "" {
		n, err := parsePositive(first)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid first: "+first)
			return
		}
		req.First = n
	}
	page, err := s.store.SearchCollections(r.Context(), q.Get("query"), req)
	if err != nil {
		s.errorToHTTP(w, err)
		return
	}
	s.respond(w, http.StatusOK, page)
}
