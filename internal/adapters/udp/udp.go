// Package udp receives joint-state datagrams over UDP.
package udp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/panjf2000/gnet"

	"github.com/okian/robocloud/internal/domain/model"
	"github.com/okian/robocloud/internal/domain/types"
	"github.com/okian/robocloud/pkg/logger"
	"github.com/okian/robocloud/pkg/metrics"
)

// Source is the ingest source label for datagrams.
const Source = "udp"

const tickInterval = 200 * time.Millisecond

// Submitter accepts decoded joint states.
type Submitter interface {
	Submit(ctx context.Context, js model.JointState) error
}

// Listener is a gnet event handler that decodes one JSON joint-state message
// per datagram.
type Listener struct {
	*gnet.EventServer

	ctx    context.Context
	topic  string
	sink   Submitter
	logger logger.Logger
}

// NewListener creates a listener accepting messages for topic.
func NewListener(topic string, sink Submitter) *Listener {
	return &Listener{
		EventServer: &gnet.EventServer{},
		ctx:         context.Background(),
		topic:       topic,
		sink:        sink,
		logger:      logger.Named("udp"),
	}
}

// Serve blocks until ctx is cancelled or the server fails.
func (l *Listener) Serve(ctx context.Context, addr string) error {
	l.ctx = ctx
	if err := gnet.Serve(l, "udp://"+addr, gnet.WithTicker(true)); err != nil {
		return fmt.Errorf("udp serve %s: %w", addr, err)
	}
	return nil
}

// OnInitComplete logs the bound address.
func (l *Listener) OnInitComplete(srv gnet.Server) gnet.Action {
	l.logger.Info(l.ctx, "udp listener started",
		logger.String("addr", srv.Addr.String()),
		logger.String("topic", l.topic))
	return gnet.None
}

// Tick stops the server once the serve context is done.
func (l *Listener) Tick() (time.Duration, gnet.Action) {
	if l.ctx.Err() != nil {
		return 0, gnet.Shutdown
	}
	return tickInterval, gnet.None
}

// React handles one datagram. Nothing is written back.
func (l *Listener) React(packet []byte, _ gnet.Conn) ([]byte, gnet.Action) {
	if err := l.Handle(packet); err != nil {
		l.logger.Debug(l.ctx, "datagram dropped", logger.Error(err))
	}
	return nil, gnet.None
}

// Handle decodes and submits a datagram. packet is not retained.
func (l *Listener) Handle(packet []byte) error {
	var msg types.JointStateMessage
	if err := json.Unmarshal(packet, &msg); err != nil {
		metrics.RecordJointStateRejected("decode")
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if msg.Topic != "" && msg.Topic != l.topic {
		metrics.RecordJointStateRejected("topic")
		return fmt.Errorf("%w: %q", ErrWrongTopic, msg.Topic)
	}
	return l.sink.Submit(l.ctx, msg.ToModel(Source))
}
