package output

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"blockwatch/internal/logging"
	"blockwatch/internal/models"
)

// AlertMessage is the JSON document published for each alert.
type AlertMessage struct {
	Source    string    `json:"source"`
	Location  string    `json:"location"`
	Port      int       `json:"port"`
	Service   string    `json:"service"`
	Protocol  string    `json:"protocol"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAlertMessage converts an alert to its wire form.
func NewAlertMessage(a models.Alert) AlertMessage {
	return AlertMessage{
		Source:    a.Event.Source.String(),
		Location:  a.Location,
		Port:      a.Event.DstPort,
		Service:   a.Service,
		Protocol:  string(a.Event.Protocol),
		Text:      a.Text,
		Timestamp: a.Timestamp.UTC(),
	}
}

// NATS publishes alerts to a subject.
type NATS struct {
	nc      *nats.Conn
	subject string
}

// NewNATS connects to url. Reconnects are unlimited; publishes during an
// outage are buffered by the client.
func NewNATS(url, subject string) (*NATS, error) {
	log := logging.WithComponent("nats")
	nc, err := nats.Connect(url,
		nats.Name("blockwatch"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	log.Info().Str("url", url).Str("subject", subject).Msg("connected to NATS")
	return &NATS{nc: nc, subject: subject}, nil
}

func (n *NATS) Name() string { return "nats" }

// Emit publishes the alert as JSON.
func (n *NATS) Emit(_ context.Context, alert models.Alert) error {
	data, err := json.Marshal(NewAlertMessage(alert))
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	return n.nc.Publish(n.subject, data)
}

// Close drains pending messages and closes the connection.
func (n *NATS) Close() {
	if n.nc != nil {
		_ = n.nc.Drain()
	}
}
