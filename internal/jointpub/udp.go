package jointpub

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"github.com/okian/robocloud/internal/domain/types"
)

// UDPSender writes one JSON datagram per message. Delivery is not
// acknowledged, so every successful write counts as accepted.
type UDPSender struct {
	conn net.Conn
}

// NewUDPSender dials addr.
func NewUDPSender(ctx context.Context, addr string) (*UDPSender, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial udp %s: %w", addr, err)
	}
	return &UDPSender{conn: conn}, nil
}

// Send writes msg as one datagram.
func (s *UDPSender) Send(_ context.Context, msg types.JointStateMessage) (Result, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return ResultFailed, err
	}
	if _, err := s.conn.Write(b); err != nil {
		return ResultFailed, err
	}
	return ResultAccepted, nil
}

// Close closes the socket.
func (s *UDPSender) Close() error {
	return s.conn.Close()
}
