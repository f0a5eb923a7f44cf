package deploy

import (
	"regexp"
	"strconv"
	"time"

	sserrors "github.com/stateset/stateset/internal/errors"
)

var relativeOffset = regexp.MustCompile(`^([+-])(\d+)([smhdw])$`)

// absoluteLayouts are tried in order for absolute when-expressions.
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseWhen turns a human scheduling expression into an absolute time.
// Accepted forms: the literals now/today/current, a signed offset like
// +2h or -30m applied to now, or an absolute timestamp.
func ParseWhen(expr string, now time.Time) (time.Time, error) {
	switch expr {
	case "now", "today", "current":
		return now, nil
	}

	if m := relativeOffset.FindStringSubmatch(expr); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return time.Time{}, sserrors.Newf(sserrors.ErrorTypeValidation, "invalid schedule offset: %s", expr)
		}

		var unit time.Duration
		switch m[3] {
		case "s":
			unit = time.Second
		case "m":
			unit = time.Minute
		case "h":
			unit = time.Hour
		case "d":
			unit = 24 * time.Hour
		case "w":
			unit = 7 * 24 * time.Hour
		}

		offset := time.Duration(n) * unit
		if m[1] == "-" {
			offset = -offset
		}
		return now.Add(offset), nil
	}

	for _, layout := range absoluteLayouts {
		if ts, err := time.Parse(layout, expr); err == nil {
			return ts, nil
		}
	}

	return time.Time{}, sserrors.Newf(sserrors.ErrorTypeValidation, "unrecognized schedule expression: %q", expr).
		WithSolutions(
			"Use 'now', a relative offset like '+2h' or '-30m'",
			"Use an absolute time like '2026-09-01T09:00:00Z'",
		)
}
