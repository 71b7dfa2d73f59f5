package udp

import "errors"

var (
	ErrDecode     = errors.New("undecodable datagram")
	ErrWrongTopic = errors.New("datagram for another topic")
)
