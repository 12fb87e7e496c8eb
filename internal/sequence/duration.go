// Package sequence parses compact duration and phase-sequence patterns such as
// "1h20m" or "(25m work, 5m rest)x4" and expands them into an ordered phase list.
package sequence

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	hoursRe   = regexp.MustCompile(`(\d+)h`)
	minutesRe = regexp.MustCompile(`(\d+)m`)
	secondsRe = regexp.MustCompile(`(\d+)s`)
	bareRe    = regexp.MustCompile(`^\d+$`)
)

// MaxSeconds is the longest duration accepted, one year. Longer values parse
// as 0 so start + seconds always fits in a time.Time.
const MaxSeconds = 365 * 24 * 3600

// ParseDuration converts a duration token like "1h20m30s" to seconds. Each unit
// is matched on its own and the results are summed, so "30m1h" equals "1h30m".
// A bare integer is raw seconds. Anything unrecognised, or longer than
// MaxSeconds, yields 0.
func ParseDuration(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	if bareRe.MatchString(text) {
		n, err := strconv.Atoi(text)
		if err != nil || n > MaxSeconds {
			return 0
		}
		return n
	}

	total := 0
	for _, u := range []struct {
		re   *regexp.Regexp
		mult int
	}{
		{hoursRe, 3600},
		{minutesRe, 60},
		{secondsRe, 1},
	} {
		if m := u.re.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil || n > MaxSeconds/u.mult {
				return 0
			}
			total += n * u.mult
		}
	}
	if total > MaxSeconds {
		return 0
	}
	return total
}

// FormatDuration renders seconds in the compact form ParseDuration accepts.
func FormatDuration(secs int) string {
	if secs <= 0 {
		return "0s"
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60

	var b strings.Builder
	if h > 0 {
		fmt.Fprintf(&b, "%dh", h)
	}
	if m > 0 {
		fmt.Fprintf(&b, "%dm", m)
	}
	if s > 0 {
		fmt.Fprintf(&b, "%ds", s)
	}
	return b.String()
}

// FormatClock renders seconds as HH:MM:SS, or MM:SS under an hour.
func FormatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
