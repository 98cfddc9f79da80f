package analysis

import (
	"fmt"
	"strings"
	"time"

	"blockwatch/internal/models"
)

// FormatAlert renders the console line for an enriched event.
func FormatAlert(ev models.BlockEvent, location, service string) string {
	return fmt.Sprintf("ALERT: Blocked traffic detected from %s (%s) targeting port %d (%s) over %s.",
		ev.Source, location, ev.DstPort, service, strings.ToUpper(string(ev.Protocol)))
}

// NewAlert enriches ev with its service name and renders the alert text.
func NewAlert(ev models.BlockEvent, location string, now time.Time) models.Alert {
	service := GetServiceName(ev.DstPort)
	return models.Alert{
		Event:     ev,
		Location:  location,
		Service:   service,
		Text:      FormatAlert(ev, location, service),
		Timestamp: now,
	}
}
