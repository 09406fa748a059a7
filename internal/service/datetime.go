// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"log/slog"
	"time"

	"github.com/relaycrm/scheduling-service/internal/logging"
)

const (
	dateLayout = "2006-01-02"
	wallLayout = "15:04"
)

// fallbackOffsets covers the zones our tenants actually schedule in, for
// hosts with a broken or missing tzdata. DST is ignored on this path.
var fallbackOffsets = map[string]string{
	"UTC":                 "+00:00",
	"Europe/London":       "+00:00",
	"Europe/Paris":        "+01:00",
	"Europe/Berlin":       "+01:00",
	"America/New_York":    "-05:00",
	"America/Chicago":     "-06:00",
	"America/Denver":      "-07:00",
	"America/Los_Angeles": "-08:00",
	"America/Sao_Paulo":   "-03:00",
	"Asia/Kolkata":        "+05:30",
	"Asia/Singapore":      "+08:00",
	"Asia/Tokyo":          "+09:00",
	"Australia/Sydney":    "+10:00",
}

// DateTimeResolver composes separate date, wall-clock time and IANA timezone
// inputs into one unambiguous RFC3339 timestamp.
type DateTimeResolver struct{}

// NewDateTimeResolver creates a new DateTimeResolver.
func NewDateTimeResolver() *DateTimeResolver {
	return &DateTimeResolver{}
}

// Resolve builds an RFC3339 timestamp from a `YYYY-MM-DD` date, an `HH:MM`
// wall time and an IANA timezone name. It never fails: unresolvable zones
// fall back to a static offset table.
//
// When startTimeHint is given and wallTime sorts before it, the wall time is
// taken to be an end time that crossed midnight and the date is advanced one
// day. The comparison is lexicographic, which is exact for zero-padded HH:MM.
func (r *DateTimeResolver) Resolve(date, wallTime, timezone, startTimeHint string) string {
	if startTimeHint != "" && wallTime < startTimeHint {
		if day, err := time.Parse(dateLayout, date); err == nil {
			date = day.AddDate(0, 0, 1).Format(dateLayout)
		}
	}
	return date + "T" + wallTime + ":00" + r.offsetFor(date, wallTime, timezone)
}

// offsetFor resolves the UTC offset of the zone at the given local date and
// time, so daylight-saving transitions land on the right side.
func (r *DateTimeResolver) offsetFor(date, wallTime, timezone string) string {
	location, err := time.LoadLocation(timezone)
	if err == nil {
		local, parseErr := time.ParseInLocation(dateLayout+"T"+wallLayout, date+"T"+wallTime, location)
		if parseErr == nil {
			return local.Format("-07:00")
		}
		err = parseErr
	}

	slog.Warn("falling back to static timezone offsets",
		logging.ErrKey, err, "timezone", timezone, "date", date)
	if offset, ok := fallbackOffsets[timezone]; ok {
		return offset
	}
	return "+00:00"
}
