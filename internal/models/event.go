package models

import (
	"net"
	"net/netip"
	"strings"
	"time"
)

// RawEvent is a single datagram as received from the network.
type RawEvent struct {
	Payload  []byte
	Source   net.Addr // Sender endpoint, informational only
	Received time.Time
}

// Protocol is the transport protocol named in a block line.
type Protocol string

const (
	ProtocolTCP     Protocol = "tcp"
	ProtocolUDP     Protocol = "udp"
	ProtocolUnknown Protocol = "unknown"
)

// ParseProtocol maps a token to a Protocol, case-insensitively.
// The second return value is false when the token names neither tcp nor udp.
func ParseProtocol(token string) (Protocol, bool) {
	switch {
	case strings.EqualFold(token, "tcp"):
		return ProtocolTCP, true
	case strings.EqualFold(token, "udp"):
		return ProtocolUDP, true
	}
	return ProtocolUnknown, false
}

// BlockEvent holds the fields extracted from a firewall block line.
// Source is always a valid IPv4 address and DstPort is in (0, 65535].
type BlockEvent struct {
	Source   netip.Addr
	DstPort  int
	Protocol Protocol
}
