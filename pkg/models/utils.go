package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

// ParseEventTime normalizes the timestamp formats seen across dashboard
// responses (RFC3339, epoch seconds, epoch milliseconds) to UTC.
func ParseEventTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if epoch, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if epoch > 1e12 {
			return time.UnixMilli(epoch).UTC(), nil
		}
		return time.Unix(epoch, 0).UTC(), nil
	}
	parsed, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q: %v", raw, err)
	}
	return parsed.UTC(), nil
}

// Time parses the record's raw timestamp; zero time when missing or unparseable.
func (f FailedConnection) Time() time.Time {
	parsed, err := ParseEventTime(f.TS)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// Time parses the client's last-seen timestamp; zero time when missing.
func (c WirelessClient) Time() time.Time {
	parsed, err := ParseEventTime(c.LastSeen)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
