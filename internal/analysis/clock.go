package analysis

import (
	"fmt"
	"strconv"
	"strings"
)

// weekdayNames maps day indices (0=Sunday) to display names
var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// parseClockTime parses an HH:MM string into minutes since midnight.
// Returns false for anything that is not a valid 24h clock time.
func parseClockTime(s string) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, false
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}

	return hour*60 + minute, true
}

// formatClockTime renders minutes since midnight as HH:MM, wrapping around
// midnight in both directions
func formatClockTime(minutes int) string {
	const day = 24 * 60
	minutes = ((minutes % day) + day) % day
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// shiftClockTime shifts an HH:MM time by a signed number of minutes.
// Returns the input unchanged when it cannot be parsed.
func shiftClockTime(s string, shift int) string {
	minutes, ok := parseClockTime(s)
	if !ok {
		return s
	}
	return formatClockTime(minutes + shift)
}

// periodForHour returns the fixed time-of-day bucket for an hour of the day.
// Night wraps around midnight: 22:00-06:00.
func periodForHour(hour int) DayPeriod {
	switch {
	case hour >= 6 && hour < 12:
		return PeriodMorning
	case hour >= 12 && hour < 18:
		return PeriodAfternoon
	case hour >= 18 && hour < 22:
		return PeriodEvening
	default:
		return PeriodNight
	}
}
