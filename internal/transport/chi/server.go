package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/govsearch/internal/domain/record"
	logpkg "github.com/kailas-cloud/govsearch/internal/logger"
	healthuc "github.com/kailas-cloud/govsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/govsearch/internal/usecase/search"
)

// Error codes returned in JSON error bodies.
const (
	codeBadRequest   = "bad_request"
	codeUnauthorized = "unauthorized"
)

// Server exposes the search service over HTTP.
type Server struct {
	search *searchuc.Service
	health *healthuc.Service
	logger *zap.Logger

	// rebuildMu guards the flight state below. HTTP-triggered rebuilds are
	// single-flighted: requests arriving while one runs coalesce into a
	// single follow-up build instead of queueing one rebuild per request.
	// The service itself allows concurrent rebuilds (last writer wins).
	rebuildMu      sync.Mutex
	rebuildRunning bool
	rebuildQueued  bool
	rebuildTimeout time.Duration
}

// NewServer creates an HTTP API server. rebuildTimeout bounds one async
// rebuild end to end; 0 means unbounded.
func NewServer(
	search *searchuc.Service,
	health *healthuc.Service,
	rebuildTimeout time.Duration,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:         search,
		health:         health,
		rebuildTimeout: rebuildTimeout,
		logger:         logger,
	}
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/search", s.searchRecords)
	r.Post("/search/rebuild-index", s.rebuildIndex)
	r.Get("/search/status", s.searchStatus)
	r.Get("/health", s.healthCheck)
	r.Get("/metrics", s.metrics)
}

type searchRecordResponse struct {
	ID          string   `json:"id"`
	EntityType  string   `json:"entity_type"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Link        string   `json:"link"`
	Tags        []string `json:"tags"`
}

// searchRecords handles GET /search?search_term=<string>.
func (s *Server) searchRecords(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("search_term")
	if strings.TrimSpace(term) == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "search_term query parameter is required")
		return
	}

	recs := s.search.Search(r.Context(), term)
	logpkg.FromContext(r.Context()).Debug("search evaluated",
		zap.String("search_term", term),
		zap.Int("results", len(recs)),
	)
	writeJSON(w, http.StatusOK, recordsToResponse(recs))
}

// rebuildIndex handles POST /search/rebuild-index. The rebuild runs
// asynchronously; 202 acknowledges that it was queued.
func (s *Server) rebuildIndex(w http.ResponseWriter, _ *http.Request) {
	rebuildID := uuid.NewString()

	go s.runRebuild(rebuildID)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"rebuild_id": rebuildID,
		"status":     "accepted",
	})
}

func (s *Server) runRebuild(rebuildID string) {
	s.rebuildMu.Lock()
	if s.rebuildRunning {
		// The build in flight may already be past some providers; queue
		// exactly one follow-up so this request's changes are picked up.
		s.rebuildQueued = true
		s.rebuildMu.Unlock()
		s.logger.Info("rebuild coalesced into the one in flight", zap.String("rebuild_id", rebuildID))
		return
	}
	s.rebuildRunning = true
	s.rebuildMu.Unlock()

	for {
		s.rebuildOnce(rebuildID)

		s.rebuildMu.Lock()
		if s.rebuildQueued {
			s.rebuildQueued = false
			s.rebuildMu.Unlock()
			continue
		}
		s.rebuildRunning = false
		s.rebuildMu.Unlock()
		return
	}
}

func (s *Server) rebuildOnce(rebuildID string) {
	ctx := context.Background()
	if s.rebuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.rebuildTimeout)
		defer cancel()
	}

	s.logger.Info("rebuild started", zap.String("rebuild_id", rebuildID))
	stats := s.search.Rebuild(ctx)
	s.logger.Info("rebuild finished",
		zap.String("rebuild_id", rebuildID),
		zap.Uint64("generation", stats.Generation),
		zap.Int("records", stats.Records),
		zap.Duration("duration", stats.Duration),
	)
}

// searchStatus handles GET /search/status.
func (s *Server) searchStatus(w http.ResponseWriter, _ *http.Request) {
	snap := s.search.Current()

	resp := map[string]any{
		"ready":      snap.Ready(),
		"generation": snap.Generation(),
		"records":    snap.Len(),
		"providers":  s.search.ProviderCount(),
	}
	if snap.Ready() {
		resp["built_at"] = snap.BuiltAt().Format(time.RFC3339Nano)
	}
	writeJSON(w, http.StatusOK, resp)
}

// healthCheck handles GET /health.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// metrics handles GET /metrics.
func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func recordsToResponse(recs []record.Record) []searchRecordResponse {
	// Always an array, never null.
	out := make([]searchRecordResponse, 0, len(recs))
	for _, r := range recs {
		var desc *string
		if d := r.Description(); d != "" {
			desc = &d
		}
		tags := r.Tags()
		if tags == nil {
			tags = []string{}
		}
		out = append(out, searchRecordResponse{
			ID:          r.ID(),
			EntityType:  r.EntityType(),
			Title:       r.Title(),
			Description: desc,
			Link:        r.Link(),
			Tags:        tags,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}
