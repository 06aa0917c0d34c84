package analysis

import (
	"math"
)

// AggregateSlot reduces all patterns for one medication+scheduled-time slot
// into a single PatternAnalysis. Input order does not matter. Callers are
// expected to have filtered malformed records already (see SanitizePatterns);
// the computation itself never fails, it degrades to a zero-signal summary.
func AggregateSlot(medicationID, scheduledTime string, patterns []ReminderPattern, cfg Config) PatternAnalysis {
	result := PatternAnalysis{
		MedicationID:  medicationID,
		ScheduledTime: scheduledTime,
		TotalDoses:    len(patterns),
	}

	if len(patterns) == 0 {
		return result
	}

	var delays []float64
	for _, p := range patterns {
		if p.Missed {
			result.MissedDoses++
			continue
		}
		if p.DelayMinutes != nil {
			delays = append(delays, *p.DelayMinutes)
		}
	}

	// Guarded: zero doses yields 0, never NaN
	result.MissedPercentage = float64(result.MissedDoses) / float64(result.TotalDoses) * 100.0

	if len(delays) > 0 {
		result.AverageDelayMinutes = mean(delays)
	}

	result.HasRecurringMissedDoses = hasRecurringWeekdayMisses(patterns, cfg.RecurringMissWeeks)

	if len(delays) >= cfg.MinDelaySamples && stdDev(delays) < cfg.ConsistentDelayStdDevMax {
		result.HasConsistentDelay = true
		suggested := shiftClockTime(scheduledTime, int(math.Round(result.AverageDelayMinutes)))
		result.SuggestedTime = &suggested
	}

	result.Confidence = clamp01(float64(result.TotalDoses) / float64(cfg.ConfidenceSaturation))

	return result
}

// SanitizePatterns splits the input into usable records and a count of
// malformed ones. Malformed records never abort an analysis run; they are
// reported through Diagnostics instead.
func SanitizePatterns(patterns []ReminderPattern) ([]ReminderPattern, int) {
	valid := make([]ReminderPattern, 0, len(patterns))
	skipped := 0
	for _, p := range patterns {
		if p.Valid() {
			valid = append(valid, p)
		} else {
			skipped++
		}
	}
	return valid, skipped
}

// hasRecurringWeekdayMisses reports whether any single weekday shows misses
// across at least minWeeks distinct ISO weeks
func hasRecurringWeekdayMisses(patterns []ReminderPattern, minWeeks int) bool {
	// weekday -> set of ISO year-week keys with a miss
	missWeeks := make(map[int]map[int]struct{})

	for _, p := range patterns {
		if !p.Missed {
			continue
		}
		year, week := p.Date.ISOWeek()
		key := year*100 + week
		if missWeeks[p.DayOfWeek] == nil {
			missWeeks[p.DayOfWeek] = make(map[int]struct{})
		}
		missWeeks[p.DayOfWeek][key] = struct{}{}
	}

	for _, weeks := range missWeeks {
		if len(weeks) >= minWeeks {
			return true
		}
	}
	return false
}

// mean returns the arithmetic mean of values; 0 for an empty slice
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev returns the population standard deviation of values
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
