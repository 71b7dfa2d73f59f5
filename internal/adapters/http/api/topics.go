package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/robocloud/internal/adapters/mq/queue"
	"github.com/okian/robocloud/internal/domain/dedupe"
	"github.com/okian/robocloud/internal/domain/model"
	"github.com/okian/robocloud/internal/domain/types"
	"github.com/okian/robocloud/pkg/metrics"
)

// Source is the ingest source label for HTTP messages.
const Source = "http"

const maxBodyBytes = 1 << 20

// TopicsHandler accepts joint states posted to the configured topic.
type TopicsHandler struct {
	topic string
	deps  Submitter
}

// NewTopicsHandler creates a handler for POST /topics/{topic}.
func NewTopicsHandler(topic string, deps Submitter) *TopicsHandler {
	return &TopicsHandler{topic: topic, deps: deps}
}

// HandlePostJointState handles POST /topics/{topic} requests.
func (h *TopicsHandler) HandlePostJointState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	topic := strings.TrimPrefix(r.URL.Path, "/topics/")
	if topic != h.topic {
		metrics.RecordJointStateRejected("topic")
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %q", ErrUnknownTopic, topic))
		return
	}

	var msg types.JointStateMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&msg); err != nil {
		metrics.RecordJointStateRejected("decode")
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if msg.Topic != "" && msg.Topic != h.topic {
		metrics.RecordJointStateRejected("topic")
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: body topic %q", ErrBadRequest, msg.Topic))
		return
	}

	err := h.deps.Submit(r.Context(), msg.ToModel(Source))
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, types.AcceptedResponse{Status: "accepted", ID: msg.ID})
	case errors.Is(err, dedupe.ErrDuplicate):
		writeJSON(w, http.StatusOK, types.AcceptedResponse{Status: "duplicate", ID: msg.ID})
	case errors.Is(err, model.ErrInvalidJointState):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, queue.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, err)
	case errors.Is(err, queue.ErrQueueClosed):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
