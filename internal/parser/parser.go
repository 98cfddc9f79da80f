// Package parser turns forwarded firewall syslog lines into block events.
//
// The format is not structured syslog. A line is treated as an opaque,
// comma-delimited string and fields are picked out heuristically.
package parser

import (
	"bytes"
	"net/netip"
	"strconv"
	"strings"

	"blockwatch/internal/models"
)

// blockMarker must appear in a payload for it to be considered at all.
var blockMarker = []byte("block")

const maxPort = 65535

// IsBlock reports whether the payload looks like a block notification.
// The check is case-sensitive.
func IsBlock(payload []byte) bool {
	return bytes.Contains(payload, blockMarker)
}

// Parse filters and parses a raw payload. It returns false for anything that
// is not a block line or lacks a source address or destination port.
func Parse(payload []byte) (models.BlockEvent, bool) {
	if !IsBlock(payload) {
		return models.BlockEvent{}, false
	}
	return extract(string(payload))
}

// extract walks the comma-separated tokens of a line. The first IPv4 token
// is the source, the last integer token in range is the port and the last
// tcp/udp token is the protocol.
func extract(line string) (ev models.BlockEvent, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ev, ok = models.BlockEvent{}, false
		}
	}()

	ev.Protocol = models.ProtocolUnknown
	for _, part := range strings.Split(line, ",") {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}

		if !ev.Source.IsValid() {
			if addr, err := netip.ParseAddr(token); err == nil && addr.Is4() {
				ev.Source = addr
			}
		}

		if port, err := strconv.Atoi(token); err == nil && port > 0 && port <= maxPort {
			ev.DstPort = port
		}

		if proto, found := models.ParseProtocol(token); found {
			ev.Protocol = proto
		}
	}

	if !ev.Source.IsValid() || ev.DstPort <= 0 {
		return models.BlockEvent{}, false
	}
	return ev, true
}
