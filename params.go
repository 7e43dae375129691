package unifi

import (
	"net"

	"github.com/cockroachdb/errors"
)

const (
	// DefaultStart is the default pagination offset.
	DefaultStart = 0
	// DefaultLimit is the default page size for listing endpoints.
	DefaultLimit = 100
	// DefaultWithinHours is the default lookback window for time-bounded
	// listings.
	DefaultWithinHours = 1
)

// EventOptions filters the controller event log.
type EventOptions struct {
	// Start is the pagination offset (defaults to 0).
	Start int
	// Limit is the page size (defaults to 100; non-positive values are
	// rejected in favor of the default).
	Limit int
	// WithinHours bounds the lookback window in hours (defaults to 1).
	WithinHours int
}

// AlarmOptions filters the controller alarm list.
type AlarmOptions struct {
	// Archived includes archived alarms (defaults to false).
	Archived bool
}

// RogueAPOptions filters the neighboring/rogue access point listing.
type RogueAPOptions struct {
	// WithinHours bounds the lookback window in hours (defaults to 1).
	WithinHours int
}

func normalizeStart(start int) int {
	if start < 0 {
		return DefaultStart
	}
	return start
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

func normalizeWithin(hours int) int {
	if hours <= 0 {
		return DefaultWithinHours
	}
	return hours
}

// validateMACs rejects malformed hardware addresses before any network call.
func validateMACs(macs []string) error {
	for _, mac := range macs {
		if _, err := net.ParseMAC(mac); err != nil {
			return errors.Wrapf(err, "invalid MAC address %q", mac)
		}
	}
	return nil
}
