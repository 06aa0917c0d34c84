package analysis

import "sort"

// Fixed factor weights of the forgetfulness risk model. They sum to 1 so the
// probability is naturally bounded before the defensive clamp.
const (
	weightHistoricalMiss = 0.3
	weightRecentTrend    = 0.2
	weightWeekdayRisk    = 0.2
	weightTimeOfDayRisk  = 0.2
	weightConsecutive    = 0.1

	// consecutiveMissCap is the streak length at which the streak factor saturates
	consecutiveMissCap = 5.0
)

// Risk band boundaries, inclusive on the lower bound of each band
const (
	riskLowMax    = 0.2
	riskMediumMax = 0.5
	riskHighMax   = 0.75
)

// PredictionInput carries everything the predictor needs for one upcoming
// scheduled dose
type PredictionInput struct {
	MedicationID      string
	ScheduledTime     string
	DayOfWeek         int
	Slot              PatternAnalysis
	Trend             TrendAnalysis
	Weekday           []WeekdayVariance
	TimeOfDay         []TimeOfDayVariance
	ConsecutiveMisses int
}

// PredictForgetfulness combines historical miss rate, recent trend, weekday
// and time-of-day risk and the current miss streak into a single probability
// that the dose will be missed, with a categorical risk level.
func PredictForgetfulness(in PredictionInput) ForgetfulnessPrediction {
	historicalMissRate := clamp01(in.Slot.MissedPercentage / 100.0)

	// Only a worsening trend raises risk; an improving one contributes zero,
	// never a negative offset
	trendFactor := clamp01(in.Trend.Slope)

	weekdayRisk := 0.0
	if in.DayOfWeek >= 0 && in.DayOfWeek < len(in.Weekday) {
		weekdayRisk = clamp01(in.Weekday[in.DayOfWeek].RiskScore)
	}

	timeOfDayRisk := 0.0
	if minutes, ok := parseClockTime(in.ScheduledTime); ok {
		period := periodForHour(minutes / 60)
		for _, v := range in.TimeOfDay {
			if v.Period == period {
				timeOfDayRisk = clamp01(v.RiskScore)
				break
			}
		}
	}

	streakFactor := clamp01(float64(in.ConsecutiveMisses) / consecutiveMissCap)

	probability := clamp01(weightHistoricalMiss*historicalMissRate +
		weightRecentTrend*trendFactor +
		weightWeekdayRisk*weekdayRisk +
		weightTimeOfDayRisk*timeOfDayRisk +
		weightConsecutive*streakFactor)

	level := classifyRisk(probability)

	return ForgetfulnessPrediction{
		MedicationID:  in.MedicationID,
		ScheduledTime: in.ScheduledTime,
		DayOfWeek:     in.DayOfWeek,
		Probability:   probability,
		// The prediction is only as trustworthy as its weakest signal
		Confidence: minFloat(in.Trend.Confidence, in.Slot.Confidence),
		RiskLevel:  level,
		Factors: PredictionFactors{
			HistoricalMissRate: historicalMissRate,
			RecentTrend:        in.Trend.Slope,
			WeekdayRisk:        weekdayRisk,
			TimeOfDayRisk:      timeOfDayRisk,
			ConsecutiveMisses:  in.ConsecutiveMisses,
		},
		Recommendations: riskRecommendations(level, in.Slot),
	}
}

// classifyRisk maps a probability to its risk band
func classifyRisk(probability float64) RiskLevel {
	switch {
	case probability < riskLowMax:
		return RiskLow
	case probability < riskMediumMax:
		return RiskMedium
	case probability < riskHighMax:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// riskRecommendations scales suggestion text with the risk level. Output is
// deterministic for the same level and slot summary.
func riskRecommendations(level RiskLevel, slot PatternAnalysis) []string {
	var recs []string

	switch level {
	case RiskLow:
		// Nothing to fix
		return nil
	case RiskMedium:
		recs = append(recs, "Enable a follow-up reminder for this dose")
	case RiskHigh:
		recs = append(recs,
			"Enable a follow-up reminder for this dose",
			"Consider adjusting the schedule to a time that fits your routine")
	case RiskCritical:
		recs = append(recs,
			"Enable a follow-up reminder for this dose",
			"Consider adjusting the schedule to a time that fits your routine",
			"Ask a caregiver or family member to help with this medication",
			"Discuss persistent missed doses with your healthcare provider")
	}

	if slot.SuggestedTime != nil {
		recs = append(recs, "Consider moving this dose to "+*slot.SuggestedTime)
	}

	return recs
}

// CountConsecutiveMisses returns the length of the trailing miss streak for
// one slot's patterns, in chronological order
func CountConsecutiveMisses(patterns []ReminderPattern) int {
	ordered := make([]ReminderPattern, len(patterns))
	copy(ordered, patterns)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	streak := 0
	for i := len(ordered) - 1; i >= 0; i-- {
		if !ordered[i].Missed {
			break
		}
		streak++
	}
	return streak
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
