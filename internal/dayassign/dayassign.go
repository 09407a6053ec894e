// Package dayassign derives relative trip-day numbers from photo timestamps.
package dayassign

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TimestampFormat is the EXIF-style timestamp layout carried in the
// datetime_original column.
const TimestampFormat = "2006:01:02 15:04:05"

// ErrNoValidTimestamps indicates no record carried a parseable timestamp, so
// there is nothing to anchor the trip start to.
var ErrNoValidTimestamps = errors.New("no valid timestamps")

// ParseTimestamp parses a raw datetime_original value.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	ts, err := time.Parse(TimestampFormat, raw)
	if err != nil {
		return time.Time{}, err
	}
	return ts, nil
}

// ParseDate parses only the calendar date component of a raw timestamp.
func ParseDate(raw string) (time.Time, error) {
	ts, err := ParseTimestamp(raw)
	if err != nil {
		// tolerate a bare date without time-of-day
		date, dateErr := time.Parse("2006:01:02", strings.TrimSpace(raw))
		if dateErr != nil {
			return time.Time{}, err
		}
		return date, nil
	}
	return truncateToDate(ts), nil
}

// Assign computes a 1-based day number for every identity with a parseable
// timestamp, relative to the earliest calendar date in the set. Identities
// with absent or unparseable timestamps map to "" — explicitly unknown,
// never day 1. Returns ErrNoValidTimestamps when nothing anchors the trip.
func Assign(timestamps map[string]string) (map[string]string, error) {
	type parsed struct {
		identity string
		date     time.Time
		valid    bool
	}

	entries := make([]parsed, 0, len(timestamps))
	var tripStart time.Time
	anyValid := false
	for identity, raw := range timestamps {
		ts, err := ParseTimestamp(raw)
		if err != nil {
			entries = append(entries, parsed{identity: identity})
			continue
		}
		date := truncateToDate(ts)
		entries = append(entries, parsed{identity: identity, date: date, valid: true})
		if !anyValid || date.Before(tripStart) {
			tripStart = date
			anyValid = true
		}
	}

	if !anyValid {
		return nil, ErrNoValidTimestamps
	}

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if !e.valid {
			out[e.identity] = ""
			continue
		}
		days := int(e.date.Sub(tripStart).Hours()/24) + 1
		out[e.identity] = strconv.Itoa(days)
	}
	return out, nil
}

// Group is one calendar day's worth of records.
type Group struct {
	Date       time.Time
	Identities []string
}

// GroupByDay buckets identities by the calendar date of their timestamp,
// discarding time-of-day. Identities with unparseable timestamps are omitted.
// Groups are ordered by date ascending; order within a group follows input
// order and carries no meaning.
func GroupByDay(ordered []string, timestamps map[string]string) []Group {
	buckets := make(map[time.Time][]string)
	for _, identity := range ordered {
		ts, err := ParseTimestamp(timestamps[identity])
		if err != nil {
			continue
		}
		date := truncateToDate(ts)
		buckets[date] = append(buckets[date], identity)
	}

	dates := make([]time.Time, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	groups := make([]Group, 0, len(dates))
	for _, date := range dates {
		groups = append(groups, Group{Date: date, Identities: buckets[date]})
	}
	return groups
}

func truncateToDate(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}
