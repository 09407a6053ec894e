package query

import (
	"strconv"
	"strings"
	"time"

	"memograph/internal/dayassign"
	"memograph/internal/store"
)

const dateLayout = "2006-01-02"

// matchesDate checks a record timestamp against either a single calendar
// date or an inclusive "start:end" range, both YYYY-MM-DD. A malformed
// expression rejects every record rather than failing the query.
func matchesDate(raw, expr string) bool {
	date, err := dayassign.ParseDate(raw)
	if err != nil {
		return false
	}

	if strings.Contains(expr, ":") {
		parts := strings.SplitN(expr, ":", 2)
		start, startErr := time.Parse(dateLayout, strings.TrimSpace(parts[0]))
		end, endErr := time.Parse(dateLayout, strings.TrimSpace(parts[1]))
		if startErr != nil || endErr != nil {
			return false
		}
		return !date.Before(start) && !date.After(end)
	}

	target, err := time.Parse(dateLayout, strings.TrimSpace(expr))
	if err != nil {
		return false
	}
	return date.Equal(target)
}

// matchesIntRange checks a numeric field against either an inclusive
// "low:high" range or, without a colon, exact string equality. Records whose
// field does not parse as an integer never match; a malformed range rejects
// every record.
func matchesIntRange(raw, expr string) bool {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return false
	}

	if strings.Contains(expr, ":") {
		parts := strings.SplitN(expr, ":", 2)
		low, lowErr := strconv.Atoi(strings.TrimSpace(parts[0]))
		high, highErr := strconv.Atoi(strings.TrimSpace(parts[1]))
		if lowErr != nil || highErr != nil {
			return false
		}
		return low <= value && value <= high
	}
	return strings.TrimSpace(raw) == strings.TrimSpace(expr)
}

// matchesExtension checks the record's file name against a comma-separated,
// case-insensitive suffix list; any listed suffix matches.
func matchesExtension(rec *store.Record, list string) bool {
	name := rec.Get("image_name")
	if name == "" {
		name = rec.Get("local_path")
	}
	name = strings.ToLower(name)
	for _, ext := range strings.Split(list, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
