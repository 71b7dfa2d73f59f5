// Package types contains the JSON wire shapes exchanged with clients.
package types

import (
	"time"

	"github.com/okian/robocloud/internal/domain/cloud"
	"github.com/okian/robocloud/internal/domain/model"
)

// JointStateMessage is the inbound skeletal-state message, carried in HTTP
// bodies and UDP datagrams.
type JointStateMessage struct {
	ID         string    `json:"id,omitempty"`
	Topic      string    `json:"topic,omitempty"`
	StampNanos int64     `json:"stamp_ns,omitempty"`
	Name       []string  `json:"name"`
	Position   []float64 `json:"position"`
}

// ToModel converts the message for the given ingest source.
func (m *JointStateMessage) ToModel(source string) model.JointState {
	js := model.JointState{
		ID:        m.ID,
		Source:    source,
		Names:     m.Name,
		Positions: m.Position,
	}
	if m.StampNanos != 0 {
		js.Stamp = time.Unix(0, m.StampNanos)
	}
	return js
}

// Channel is one named per-point value list.
type Channel struct {
	Name   string    `json:"name"`
	Values []float32 `json:"values"`
}

// PointCloudMessage is the outbound point cloud: ordered points plus one
// "intensity" channel holding each point's segment index.
type PointCloudMessage struct {
	FrameID    string       `json:"frame_id"`
	StampNanos int64        `json:"stamp_ns"`
	Seq        uint64       `json:"seq"`
	Points     [][3]float32 `json:"points"`
	Channels   []Channel    `json:"channels"`
}

// NewPointCloudMessage converts a frame.
func NewPointCloudMessage(f *cloud.Frame) PointCloudMessage {
	points := make([][3]float32, f.Len())
	intensity := make([]float32, f.Len())
	for i, p := range f.Points {
		points[i] = [3]float32{p.X, p.Y, p.Z}
		intensity[i] = f.Intensity(i)
	}
	return PointCloudMessage{
		FrameID:    f.FrameID,
		StampNanos: f.Stamp.UnixNano(),
		Seq:        f.Seq,
		Points:     points,
		Channels:   []Channel{{Name: "intensity", Values: intensity}},
	}
}

// ErrorResponse is the body of non-2xx JSON responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AcceptedResponse acknowledges an ingested message.
type AcceptedResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}
