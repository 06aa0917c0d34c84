package analysis

// HighRiskThreshold marks a weekday or time-of-day bucket as high risk.
// Consumers (clustering, prediction) use this instead of hard-coding text.
const HighRiskThreshold = 0.7

// Weight split between miss rate and delay in a bucket's risk score. A delay
// of an hour or more counts as fully delayed.
const (
	riskMissWeight      = 0.7
	riskDelayWeight     = 0.3
	riskDelayCapMinutes = 60.0
)

// periodDescriptors fixes the order and display metadata of the four
// time-of-day buckets
var periodDescriptors = []struct {
	period    DayPeriod
	label     string
	timeRange string
}{
	{PeriodMorning, "Morning", "06:00-12:00"},
	{PeriodAfternoon, "Afternoon", "12:00-18:00"},
	{PeriodEvening, "Evening", "18:00-22:00"},
	{PeriodNight, "Night", "22:00-06:00"},
}

// AnalyzeWeekdayVariance buckets patterns by weekday and computes per-bucket
// adherence statistics. Always returns exactly 7 entries, days 0-6, even when
// a day has no data.
func AnalyzeWeekdayVariance(patterns []ReminderPattern) []WeekdayVariance {
	type bucket struct {
		missed int
		total  int
		delays []float64
	}
	buckets := [7]bucket{}

	for _, p := range patterns {
		b := &buckets[p.DayOfWeek]
		b.total++
		if p.Missed {
			b.missed++
		} else if p.DelayMinutes != nil {
			b.delays = append(b.delays, *p.DelayMinutes)
		}
	}

	result := make([]WeekdayVariance, 7)
	for day := 0; day < 7; day++ {
		b := buckets[day]
		v := WeekdayVariance{
			Day:         day,
			DayName:     weekdayNames[day],
			MissedCount: b.missed,
			TotalDoses:  b.total,
		}
		if b.total > 0 {
			v.MissRate = float64(b.missed) / float64(b.total)
		}
		v.AvgDelayMinutes = mean(b.delays)
		v.RiskScore = bucketRiskScore(v.MissRate, v.AvgDelayMinutes)
		result[day] = v
	}
	return result
}

// AnalyzeTimeOfDayVariance buckets patterns by the scheduled time's period of
// day. Always returns exactly 4 entries in fixed order, even with no data.
func AnalyzeTimeOfDayVariance(patterns []ReminderPattern) []TimeOfDayVariance {
	type bucket struct {
		missed int
		total  int
		delays []float64
	}
	buckets := make(map[DayPeriod]*bucket, 4)
	for _, d := range periodDescriptors {
		buckets[d.period] = &bucket{}
	}

	for _, p := range patterns {
		minutes, ok := parseClockTime(p.ScheduledTime)
		if !ok {
			continue
		}
		b := buckets[periodForHour(minutes/60)]
		b.total++
		if p.Missed {
			b.missed++
		} else if p.DelayMinutes != nil {
			b.delays = append(b.delays, *p.DelayMinutes)
		}
	}

	result := make([]TimeOfDayVariance, 0, len(periodDescriptors))
	for _, d := range periodDescriptors {
		b := buckets[d.period]
		v := TimeOfDayVariance{
			Period:      d.period,
			Label:       d.label,
			TimeRange:   d.timeRange,
			MissedCount: b.missed,
			TotalDoses:  b.total,
		}
		if b.total > 0 {
			v.MissRate = float64(b.missed) / float64(b.total)
		}
		v.AvgDelayMinutes = mean(b.delays)
		v.RiskScore = bucketRiskScore(v.MissRate, v.AvgDelayMinutes)
		result = append(result, v)
	}
	return result
}

// bucketRiskScore combines miss rate and average delay into a bounded [0,1]
// composite. Early doses (negative delay) do not raise risk.
func bucketRiskScore(missRate, avgDelayMinutes float64) float64 {
	delayFactor := 0.0
	if avgDelayMinutes > 0 {
		delayFactor = clamp01(avgDelayMinutes / riskDelayCapMinutes)
	}
	return clamp01(riskMissWeight*missRate + riskDelayWeight*delayFactor)
}
