package analysis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analysisFixture() []ReminderPattern {
	var patterns []ReminderPattern

	// Morning slot, mostly punctual with misses piling up on Fridays
	start := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC) // a Monday
	for day := 0; day < 28; day++ {
		date := start.AddDate(0, 0, day)
		if date.Weekday() == time.Friday {
			patterns = append(patterns, missedDose("lisinopril", "08:00", date))
		} else {
			patterns = append(patterns, takenDose("lisinopril", "08:00", date, float64(day%5)))
		}
	}

	// Evening slot, consistently half an hour late
	for day := 0; day < 14; day++ {
		date := start.AddDate(0, 0, day).Add(12 * time.Hour)
		patterns = append(patterns, takenDose("metformin", "20:00", date, 30))
	}

	return patterns
}

func TestEngineAnalyze_FullRun(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)

	result := engine.Analyze("patient-1", analysisFixture(), now)

	require.Len(t, result.PatternAnalyses, 2, "one summary per medication+time slot")
	require.Len(t, result.WeekdayVariance, 7)
	require.Len(t, result.TimeOfDayVariance, 4)
	require.Len(t, result.Predictions, 2, "one prediction per slot")

	assert.Equal(t, "patient-1", result.PatientID)
	assert.Equal(t, now, result.AnalyzedAt)
	assert.Equal(t, 0, result.Diagnostics.SkippedRecords)

	// Slots are ordered by medication then scheduled time
	assert.Equal(t, "lisinopril", result.PatternAnalyses[0].MedicationID)
	assert.Equal(t, "metformin", result.PatternAnalyses[1].MedicationID)

	// Friday misses dominate the weekday variance
	friday := result.WeekdayVariance[5]
	assert.Equal(t, 4, friday.MissedCount)
	for day, v := range result.WeekdayVariance {
		if day != 5 {
			assert.Less(t, v.MissRate, friday.MissRate, "day %d", day)
		}
	}

	// The metformin slot's constant 30 minute delay earns a suggested time
	metformin := result.PatternAnalyses[1]
	require.NotNil(t, metformin.SuggestedTime)
	assert.Equal(t, "20:30", *metformin.SuggestedTime)

	assert.GreaterOrEqual(t, result.OverallAdherenceScore, 0.0)
	assert.LessOrEqual(t, result.OverallAdherenceScore, 100.0)

	assert.NotEmpty(t, result.BehaviorClusters)
	require.NotNil(t, result.DominantCluster)
	assert.NotEmpty(t, result.Insights)
}

func TestEngineAnalyze_Deterministic(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	patterns := analysisFixture()

	first := engine.Analyze("patient-1", patterns, now)
	second := engine.Analyze("patient-1", patterns, now)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)

	assert.Equal(t, string(firstJSON), string(secondJSON), "identical input must produce identical output")
	assert.Equal(t, first.ID, second.ID, "snapshot id is derived, not random")

	// A different reference time produces a different snapshot id
	later := engine.Analyze("patient-1", patterns, now.Add(time.Hour))
	assert.NotEqual(t, first.ID, later.ID)
}

func TestEngineAnalyze_EmptyInput(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)

	result := engine.Analyze("patient-1", nil, now)

	assert.Empty(t, result.PatternAnalyses)
	assert.Len(t, result.WeekdayVariance, 7, "weekday buckets are always emitted")
	assert.Len(t, result.TimeOfDayVariance, 4, "time-of-day buckets are always emitted")
	assert.Empty(t, result.BehaviorClusters)
	assert.Nil(t, result.DominantCluster)
	assert.Empty(t, result.Predictions)
	assert.Equal(t, 100.0, result.OverallAdherenceScore, "no recorded doses means nothing was missed")
	assert.Equal(t, TrendStable, result.TrendAnalysis.Trend)

	require.NotEmpty(t, result.Insights)
	assert.Contains(t, result.Insights[0], "Not enough dose history")
}

func TestEngineAnalyze_SkipsMalformedRecords(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	patterns := []ReminderPattern{
		takenDose("lisinopril", "08:00", date, 5),
		{MedicationID: "lisinopril", ScheduledTime: "08:00", Missed: true, DayOfWeek: 42, Date: date},
		{MedicationID: "lisinopril", ScheduledTime: "08:00", Missed: true, DayOfWeek: 1},
	}

	result := engine.Analyze("patient-1", patterns, now)

	assert.Equal(t, 2, result.Diagnostics.SkippedRecords)
	require.Len(t, result.PatternAnalyses, 1)
	assert.Equal(t, 1, result.PatternAnalyses[0].TotalDoses, "malformed records never reach aggregation")
}

func TestEngineAnalyze_WorseningTrendSurfacesInInsights(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	start := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 35)

	// Miss rate ramps up week over week: 0/7, 1/7, 2/7, 3/7, 4/7
	var patterns []ReminderPattern
	for week := 0; week < 5; week++ {
		for day := 0; day < 7; day++ {
			date := start.AddDate(0, 0, week*7+day)
			if day < week {
				patterns = append(patterns, missedDose("lisinopril", "08:00", date))
			} else {
				patterns = append(patterns, takenDose("lisinopril", "08:00", date, 2))
			}
		}
	}

	result := engine.Analyze("patient-1", patterns, now)

	assert.Equal(t, TrendWorsening, result.TrendAnalysis.Trend)
	assert.Greater(t, result.TrendAnalysis.Slope, 0.0)
	assert.Contains(t, result.Insights, "Adherence has been declining over recent weeks")
}

func TestUpcomingWeekday(t *testing.T) {
	// Wednesday noon
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	// Slot later today stays on Wednesday
	assert.Equal(t, 3, upcomingWeekday("20:00", now))
	// Slot already passed rolls to Thursday
	assert.Equal(t, 4, upcomingWeekday("08:00", now))
	// Unparseable time falls back to today
	assert.Equal(t, 3, upcomingWeekday("not-a-time", now))
}

func TestOverallAdherenceScore(t *testing.T) {
	analyses := []PatternAnalysis{
		{TotalDoses: 10, MissedDoses: 2},
		{TotalDoses: 10, MissedDoses: 0},
	}
	assert.Equal(t, 90.0, overallAdherenceScore(analyses))
	assert.Equal(t, 100.0, overallAdherenceScore(nil))
}
