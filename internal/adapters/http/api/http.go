// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/robocloud/internal/adapters/preview"
	"github.com/okian/robocloud/internal/domain/cloud"
	"github.com/okian/robocloud/internal/domain/model"
	"github.com/okian/robocloud/internal/domain/types"
)

// Submitter accepts inbound joint states.
type Submitter interface {
	Submit(ctx context.Context, js model.JointState) error
}

// CloudSource exposes the newest published frame.
type CloudSource interface {
	Snapshot() (*cloud.Frame, bool)
	PointCloud2() (*cloud.PointCloud2, bool)
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Submitter
	CloudSource
}

// Server wires HTTP routes.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	topicsHandler  *TopicsHandler
	cloudHandler   *CloudHandler
	previewHandler *PreviewHandler
}

// NewServer creates a new API server with all handlers. topic is the
// joint-state topic accepted under /topics/.
func NewServer(topic string, deps Dependencies, statsProvider StatsProvider, renderer *preview.Renderer) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		topicsHandler:  NewTopicsHandler(topic, deps),
		cloudHandler:   NewCloudHandler(deps),
		previewHandler: NewPreviewHandler(deps, renderer),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/topics/", MetricsMiddleware(s.topicsHandler.HandlePostJointState, "topics"))
	mux.HandleFunc("/cloud", MetricsMiddleware(s.cloudHandler.HandleGetCloud, "cloud"))
	mux.HandleFunc("/cloud2", MetricsMiddleware(s.cloudHandler.HandleGetCloud2, "cloud2"))
	mux.HandleFunc("/cloud/preview.webp", MetricsMiddleware(s.previewHandler.Handle(preview.FormatWebP), "preview"))
	mux.HandleFunc("/cloud/preview.png", MetricsMiddleware(s.previewHandler.Handle(preview.FormatPNG), "preview"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, types.ErrorResponse{Error: msg})
}
