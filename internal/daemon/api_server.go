package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"reach/internal/api"
	"reach/internal/config"
	"reach/internal/logging"
	"reach/internal/persist"
	"reach/internal/taxonomy"
)

const maxRequestBody = 64 << 10

type apiServer struct {
	bind      string
	logger    *slog.Logger
	daemon    *Daemon
	threshold int64
	streams   *streamRegistry

	catalogMu sync.Mutex
	catalog   *api.Catalog

	listener net.Listener
	server   *http.Server
	handler  http.Handler
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.API.Bind)
	if bind == "" {
		return nil, errors.New("api bind address is required")
	}

	srv := &apiServer{
		bind:      bind,
		logger:    logger,
		daemon:    d,
		threshold: cfg.Selection.LowCapacityThreshold,
		streams:   newStreamRegistry(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", srv.handleStatus)
	mux.HandleFunc("GET /api/taxonomy/categories", srv.handleCategories)
	mux.HandleFunc("GET /api/taxonomy/categories/{category}/subcategories", srv.handleSubCategories)
	mux.HandleFunc("GET /api/taxonomy/categories/{category}/subcategories/{sub}/leaves", srv.handleLeaves)
	mux.HandleFunc("GET /api/selection", srv.handleSelection)
	mux.HandleFunc("GET /api/selection/stream", srv.handleStream)
	mux.HandleFunc("POST /api/selection/category", srv.handleSetCategory)
	mux.HandleFunc("POST /api/selection/subcategories/toggle", srv.handleToggleSubCategory)
	mux.HandleFunc("POST /api/selection/leaves/toggle", srv.handleToggleLeaf)
	mux.HandleFunc("PUT /api/selection/title", srv.handleSetTitle)
	mux.HandleFunc("DELETE /api/selection", srv.handleReset)
	mux.HandleFunc("GET /api/draft", srv.handleDraft)
	srv.handler = mux

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
		s.streams.closeAll()
	}()

	s.log().Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	s.streams.closeAll()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	if s == nil {
		return ""
	}
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

func (s *apiServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	status := s.daemon.Status()
	payload := api.Status{
		Running:      status.Running,
		PID:          status.PID,
		ContextID:    status.ContextID,
		Backend:      status.Backend,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
		Taxonomy: api.TaxonomyStatus{
			State:      status.Taxonomy.String(),
			Categories: status.Categories,
		},
		Subscribers:   status.Subscribers,
		LowCapacityAt: s.threshold,
	}
	if status.TaxonomyErr != nil {
		payload.Taxonomy.Error = status.TaxonomyErr.Error()
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleCategories(w http.ResponseWriter, _ *http.Request) {
	catalog, ok := s.readyCatalog(w)
	if !ok {
		return
	}
	s.writeEncoded(w, catalog.Categories)
}

func (s *apiServer) handleSubCategories(w http.ResponseWriter, r *http.Request) {
	catalog, ok := s.readyCatalog(w)
	if !ok {
		return
	}
	category := r.PathValue("category")
	s.writeEncoded(w, func() ([]byte, error) { return catalog.SubCategories(category) })
}

func (s *apiServer) handleLeaves(w http.ResponseWriter, r *http.Request) {
	catalog, ok := s.readyCatalog(w)
	if !ok {
		return
	}
	category, sub := r.PathValue("category"), r.PathValue("sub")
	s.writeEncoded(w, func() ([]byte, error) { return catalog.Leaves(category, sub) })
}

func (s *apiServer) handleSelection(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.selectionView())
}

func (s *apiServer) handleSetCategory(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.daemon.console.Controller().SetCategory)
}

func (s *apiServer) handleToggleSubCategory(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.daemon.console.Controller().ToggleSubCategory)
}

func (s *apiServer) handleToggleLeaf(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.daemon.console.Controller().ToggleLeaf)
}

func (s *apiServer) handleSetTitle(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.daemon.console.Controller().SetCampaignTitle)
}

func (s *apiServer) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.daemon.console.Controller().Reset()
	s.writeJSON(w, http.StatusOK, s.selectionView())
}

func (s *apiServer) handleDraft(w http.ResponseWriter, r *http.Request) {
	doc, err := s.daemon.console.Draft(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *apiServer) mutate(w http.ResponseWriter, r *http.Request, apply func(string)) {
	var req api.ValueRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	apply(strings.TrimSpace(req.Value))
	s.writeJSON(w, http.StatusOK, s.selectionView())
}

// selectionView reads through the controller so the response reflects the
// mutation that produced it.
func (s *apiServer) selectionView() api.Selection {
	ctrl := s.daemon.console.Controller()
	out := ctrl.Outcome()
	snap := persist.Snapshot{
		State:         out.State,
		HasSelections: out.State.HasSelections(),
		IsEmpty:       out.State.IsEmpty(),
	}
	return api.FromSnapshot(snap, s.threshold, ctrl.Phase().String())
}

func (s *apiServer) readyCatalog(w http.ResponseWriter) (*api.Catalog, bool) {
	source := s.daemon.console.Taxonomy()
	status, loadErr := source.Status()
	switch status {
	case taxonomy.StatusPending:
		s.writeError(w, http.StatusServiceUnavailable, "taxonomy is still loading")
		return nil, false
	case taxonomy.StatusFailed:
		s.writeError(w, http.StatusServiceUnavailable, fmt.Sprintf("taxonomy load failed: %v", loadErr))
		return nil, false
	}

	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()
	if s.catalog == nil {
		catalog, err := api.NewCatalog(source.Tree(), 0)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return nil, false
		}
		s.catalog = catalog
	}
	return s.catalog, true
}

func (s *apiServer) writeEncoded(w http.ResponseWriter, encode func() ([]byte, error)) {
	data, err := encode()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(slog.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
