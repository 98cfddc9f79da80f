package models

import "time"

// UnknownLocation is reported whenever geolocation cannot produce a country.
const UnknownLocation = "Unknown"

// Alert is a fully enriched block event, ready to be rendered.
type Alert struct {
	Event     BlockEvent
	Location  string
	Service   string
	Text      string // Rendered alert line
	Timestamp time.Time
}
