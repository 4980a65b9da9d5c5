package workflow

import (
	"strings"
	"time"

	"asahigaoka/internal/models"
)

const (
	startOfDay = "00:00:00"
	endOfDay   = "23:59:59"
)

// EventRange is the normalized event schedule written to the store.
type EventRange struct {
	Start        string
	End          *string
	HasStartTime bool
	HasEndTime   bool
}

// NormalizeEventRange assembles start and end datetimes from form values.
// A missing time becomes start or end of day and clears the matching has_*
// flag. An empty end date yields no end. Feeding the output back in returns
// the same value.
func NormalizeEventRange(dateFrom, timeFrom, dateTo, timeTo string) (EventRange, map[string]string) {
	var r EventRange
	fields := map[string]string{}

	start, hasStart, msg := normalizeOne(dateFrom, timeFrom, startOfDay)
	if msg != "" {
		fields["event_date_from"] = msg
	}
	r.Start, r.HasStartTime = start, hasStart

	if strings.TrimSpace(dateTo) != "" {
		end, hasEnd, msg := normalizeOne(dateTo, timeTo, endOfDay)
		if msg != "" {
			fields["event_date_to"] = msg
		} else {
			r.End, r.HasEndTime = &end, hasEnd
		}
	}

	if len(fields) > 0 {
		return EventRange{}, fields
	}
	if r.End != nil && *r.End < r.Start {
		return EventRange{}, map[string]string{"event_date_to": "must not be before the start"}
	}
	return r, nil
}

func normalizeOne(date, clock, fallback string) (string, bool, string) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" {
		return "", false, "is required"
	}

	// Already combined, e.g. a value read back from the store. The day
	// boundary time is what an all-day value normalizes to, so it stays all-day.
	if len(date) > len(models.EventDateLayout) {
		date = strings.Replace(date, "T", " ", 1)
		if clock == "" {
			if c := date[len(models.EventDateLayout)+1:]; c != fallback {
				clock = c
			}
		}
		date = date[:len(models.EventDateLayout)]
	}

	if _, err := time.Parse(models.EventDateLayout, date); err != nil {
		return "", false, "must be a date in YYYY-MM-DD format"
	}

	if clock == "" {
		return date + " " + fallback, false, ""
	}
	if len(clock) == len("15:04") {
		clock += ":00"
	}
	if _, err := time.Parse("15:04:05", clock); err != nil {
		return "", false, "time must be HH:MM or HH:MM:SS"
	}
	return date + " " + clock, true, ""
}
