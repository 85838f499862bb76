package bot

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Window is a parsed reservation request: a start/end pair in the reference
// timezone plus the desired connection password.
type Window struct {
	Start         time.Time
	End           time.Time
	Now           bool
	Password      string
	PasswordGiven bool
}

// ParseWindow parses the free-form `!reserve` argument string.
// Grammar: `now | HH:MM | HHhMM`, optionally preceded by `YYYY-MM-DD` and
// optionally followed by a connection password. A bare time-of-day already
// past today rolls to tomorrow; an explicit date more than a year ahead is
// rejected.
func ParseWindow(args string, now time.Time, loc *time.Location, duration time.Duration, defaultPassword string) (*Window, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return nil, &ParseError{Hint: msgInvalidFormat}
	}

	now = now.In(loc)
	w := &Window{Password: defaultPassword}

	var dateStr, timeStr string
	switch {
	case strings.EqualFold(fields[0], "now"):
		timeStr = "now"
		if len(fields) >= 2 {
			w.Password = fields[1]
			w.PasswordGiven = true
		}
	case dateRe.MatchString(fields[0]):
		if len(fields) < 2 {
			return nil, &ParseError{Hint: msgInvalidFormat}
		}
		dateStr = fields[0]
		timeStr = fields[1]
		if len(fields) >= 3 {
			w.Password = fields[2]
			w.PasswordGiven = true
		}
	default:
		timeStr = fields[0]
		if len(fields) >= 2 {
			w.Password = fields[1]
			w.PasswordGiven = true
		}
	}

	if strings.EqualFold(timeStr, "now") {
		w.Now = true
		w.Start = now
	} else {
		hour, minute, ok := parseClock(timeStr)
		if !ok {
			return nil, &ParseError{Hint: msgInvalidTime}
		}
		w.Start = time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
		if w.Start.Before(now) {
			w.Start = w.Start.AddDate(0, 0, 1)
		}
	}

	if dateStr != "" {
		if w.Now {
			return nil, &ParseError{Hint: msgInvalidTime}
		}
		day, err := time.ParseInLocation("2006-01-02", dateStr, loc)
		if err != nil {
			return nil, &ParseError{Hint: msgInvalidDate}
		}
		w.Start = time.Date(day.Year(), day.Month(), day.Day(), w.Start.Hour(), w.Start.Minute(), 0, 0, loc)
		if w.Start.After(now.AddDate(1, 0, 0)) {
			return nil, &ParseError{Hint: msgDateTooFar}
		}
	}

	w.End = w.Start.Add(duration)
	return w, nil
}

// parseClock accepts HH:MM and HHhMM.
func parseClock(s string) (int, int, bool) {
	s = strings.ReplaceAll(s, ":", "h")
	parts := strings.Split(s, "h")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
