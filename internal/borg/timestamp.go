package borg

import (
	"strings"
	"time"

	"github.com/MrSnakeDoc/borg-exporter/internal/errs"
)

const lastModifiedLayout = "2006-01-02T15:04:05"

// NormalizeTimestamp converts borg's `last_modified` (local wall clock with
// a fractional second part, e.g. 2023-05-01T10:15:30.123456) into Unix
// seconds, reading the wall clock in loc. The fraction is dropped but a
// missing "." is an error. Wall clock times that fall into a DST gap or
// overlap in loc are rejected.
func NormalizeTimestamp(lastModified string, loc *time.Location) (int64, error) {
	if loc == nil {
		loc = time.Local
	}

	dot := strings.IndexByte(lastModified, '.')
	if dot < 0 {
		return 0, errs.Newf(errs.Timestamp, "", "expected a `.` in the timestamp: %s", lastModified)
	}

	wall, err := time.Parse(lastModifiedLayout, lastModified[:dot])
	if err != nil {
		return 0, errs.Newf(errs.Timestamp, "", "failed to parse timestamp %q: %v", lastModified, err)
	}

	instant, err := resolveLocal(wall, loc)
	if err != nil {
		return 0, errs.Newf(errs.Timestamp, "", "%q: %v", lastModified, err)
	}
	return instant.Unix(), nil
}

type localTimeError string

func (e localTimeError) Error() string { return string(e) }

const (
	errNonExistent localTimeError = "local time does not exist in this time zone"
	errAmbiguous   localTimeError = "local time is ambiguous in this time zone"
)

// resolveLocal maps the wall clock fields of wall (parsed as UTC) to the
// single instant that shows those fields in loc. time.Date silently
// normalizes gaps and picks one side of an overlap, so every UTC offset
// loc uses around that date is tried and the matches are counted.
func resolveLocal(wall time.Time, loc *time.Location) (time.Time, error) {
	offsets := map[int]struct{}{}
	for _, probe := range []time.Duration{-24 * time.Hour, 0, 24 * time.Hour} {
		_, off := wall.Add(probe).In(loc).Zone()
		offsets[off] = struct{}{}
	}

	var (
		match   time.Time
		matches int
	)
	for off := range offsets {
		candidate := wall.Add(-time.Duration(off) * time.Second)
		if _, got := candidate.In(loc).Zone(); got != off {
			continue
		}
		if matches > 0 && candidate.Equal(match) {
			continue
		}
		match = candidate
		matches++
	}

	switch matches {
	case 0:
		return time.Time{}, errNonExistent
	case 1:
		return match, nil
	default:
		return time.Time{}, errAmbiguous
	}
}
