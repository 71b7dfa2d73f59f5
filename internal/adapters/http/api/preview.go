package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/okian/robocloud/internal/adapters/preview"
)

// PreviewHandler renders the newest frame as an image.
type PreviewHandler struct {
	src      CloudSource
	renderer *preview.Renderer
}

// NewPreviewHandler creates a new preview handler. A nil renderer uses the
// defaults.
func NewPreviewHandler(src CloudSource, renderer *preview.Renderer) *PreviewHandler {
	if renderer == nil {
		renderer = preview.NewRenderer()
	}
	return &PreviewHandler{src: src, renderer: renderer}
}

// Handle returns a handler for GET /cloud/preview.{format}.
func (h *PreviewHandler) Handle(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		f, ok := h.src.Snapshot()
		if !ok {
			writeError(w, http.StatusServiceUnavailable, ErrNoFrame)
			return
		}
		img, err := h.renderer.Render(f)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		var buf bytes.Buffer
		if err := preview.Encode(&buf, img, format); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", preview.ContentType(format))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
