package api

import (
	"net/http"

	"github.com/okian/robocloud/internal/domain/types"
)

// CloudHandler serves the newest frame.
type CloudHandler struct {
	src CloudSource
}

// NewCloudHandler creates a new cloud handler.
func NewCloudHandler(src CloudSource) *CloudHandler {
	return &CloudHandler{src: src}
}

// HandleGetCloud handles GET /cloud: points plus an intensity channel.
func (h *CloudHandler) HandleGetCloud(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	f, ok := h.src.Snapshot()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, ErrNoFrame)
		return
	}
	writeJSON(w, http.StatusOK, types.NewPointCloudMessage(f))
}

// HandleGetCloud2 handles GET /cloud2: the packed PointCloud2 layout.
func (h *CloudHandler) HandleGetCloud2(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	pc, ok := h.src.PointCloud2()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, ErrNoFrame)
		return
	}
	writeJSON(w, http.StatusOK, pc)
}
