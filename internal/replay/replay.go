// Package replay feeds firewall datagrams recorded in a pcap file through
// the same handler the live listener uses.
package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"blockwatch/internal/listener"
	"blockwatch/internal/logging"
	"blockwatch/internal/models"
	"blockwatch/internal/output"
)

// ErrUnsupportedLink is returned for captures whose link type cannot carry
// the syslog datagrams we look for.
var ErrUnsupportedLink = errors.New("unsupported pcap link type")

var supportedLinks = map[layers.LinkType]bool{
	layers.LinkTypeEthernet: true,
	layers.LinkTypeLinuxSLL: true,
	layers.LinkTypeRaw:      true,
}

// Result summarises a replay.
type Result struct {
	Packets   int // Packets read from the capture
	Delivered int // UDP datagrams handed to the handler
}

// File replays the capture at path. See Read.
func File(ctx context.Context, path string, port int, h listener.Handler, errs output.ErrorReporter) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()
	return Read(ctx, f, port, h, errs)
}

// Read decodes a classic pcap stream and hands every UDP payload sent to
// port (any port when 0) to h, in capture order. Other traffic is skipped.
func Read(ctx context.Context, r io.Reader, port int, h listener.Handler, errs output.ErrorReporter) (Result, error) {
	var res Result

	reader, err := pcapgo.NewReader(r)
	if err != nil {
		return res, fmt.Errorf("read pcap header: %w", err)
	}

	link := reader.LinkType()
	if !supportedLinks[link] {
		return res, fmt.Errorf("%w: %s", ErrUnsupportedLink, link)
	}

	src := gopacket.NewPacketSource(reader, link)
	src.DecodeOptions = gopacket.DecodeOptions{Lazy: true, NoCopy: true}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		packet, err := src.NextPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read packet %d: %w", res.Packets+1, err)
		}
		res.Packets++

		ev, ok := datagram(packet, port)
		if !ok {
			continue
		}
		res.Delivered++
		listener.Dispatch(ctx, h, errs, ev)
	}

	logging.Info().
		Int("packets", res.Packets).
		Int("delivered", res.Delivered).
		Msg("replay finished")
	return res, nil
}

// datagram extracts the UDP payload of packet if it is addressed to port.
func datagram(packet gopacket.Packet, port int) (models.RawEvent, bool) {
	udpLayer := packet.Layer(layers.LayerTypeUDP)
	if udpLayer == nil {
		return models.RawEvent{}, false
	}
	udp := udpLayer.(*layers.UDP)
	if port != 0 && int(udp.DstPort) != port {
		return models.RawEvent{}, false
	}

	var srcIP net.IP
	switch ip := packet.NetworkLayer().(type) {
	case *layers.IPv4:
		srcIP = ip.SrcIP
	case *layers.IPv6:
		srcIP = ip.SrcIP
	}

	payload := make([]byte, len(udp.Payload))
	copy(payload, udp.Payload)

	return models.RawEvent{
		Payload:  payload,
		Source:   &net.UDPAddr{IP: srcIP, Port: int(udp.SrcPort)},
		Received: packet.Metadata().Timestamp,
	}, true
}
