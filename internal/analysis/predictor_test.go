package analysis

import (
	"math"
	"testing"
	"time"
)

func TestClassifyRisk_BandBoundaries(t *testing.T) {
	cases := []struct {
		probability float64
		want        RiskLevel
	}{
		{0.0, RiskLow},
		{0.19, RiskLow},
		{0.2, RiskMedium},
		{0.49, RiskMedium},
		{0.5, RiskHigh},
		{0.74, RiskHigh},
		{0.75, RiskCritical},
		{1.0, RiskCritical},
	}

	for _, c := range cases {
		if got := classifyRisk(c.probability); got != c.want {
			t.Errorf("classifyRisk(%f) = %s, want %s", c.probability, got, c.want)
		}
	}
}

func TestPredictForgetfulness_WeightedFactors(t *testing.T) {
	weekday := make([]WeekdayVariance, 7)
	weekday[2].RiskScore = 0.7

	input := PredictionInput{
		MedicationID:  "med-a",
		ScheduledTime: "08:00",
		DayOfWeek:     2,
		Slot: PatternAnalysis{
			MissedPercentage: 50,
			Confidence:       0.9,
		},
		Trend:   TrendAnalysis{Slope: 0.2, Confidence: 0.6},
		Weekday: weekday,
		TimeOfDay: []TimeOfDayVariance{
			{Period: PeriodMorning, RiskScore: 0.6},
		},
		ConsecutiveMisses: 5,
	}

	result := PredictForgetfulness(input)

	// 0.3*0.5 + 0.2*0.2 + 0.2*0.7 + 0.2*0.6 + 0.1*1.0 = 0.55
	if math.Abs(result.Probability-0.55) > 1e-9 {
		t.Errorf("expected probability 0.55, got %f", result.Probability)
	}
	if result.RiskLevel != RiskHigh {
		t.Errorf("expected high risk, got %s", result.RiskLevel)
	}
	// Confidence is the weaker of trend and slot confidence
	if result.Confidence != 0.6 {
		t.Errorf("expected confidence 0.6, got %f", result.Confidence)
	}
	if result.Factors.HistoricalMissRate != 0.5 {
		t.Errorf("expected historical miss rate factor 0.5, got %f", result.Factors.HistoricalMissRate)
	}
	if result.Factors.RecentTrend != 0.2 {
		t.Errorf("expected recent trend factor 0.2, got %f", result.Factors.RecentTrend)
	}
}

func TestPredictForgetfulness_ImprovingTrendAddsNothing(t *testing.T) {
	input := PredictionInput{
		MedicationID:  "med-a",
		ScheduledTime: "08:00",
		DayOfWeek:     0,
		Slot:          PatternAnalysis{MissedPercentage: 0, Confidence: 1},
		Trend:         TrendAnalysis{Slope: -0.5, Confidence: 1},
		Weekday:       make([]WeekdayVariance, 7),
		TimeOfDay:     AnalyzeTimeOfDayVariance(nil),
	}

	result := PredictForgetfulness(input)

	if result.Probability != 0 {
		t.Errorf("expected zero probability with an improving trend and clean history, got %f", result.Probability)
	}
	if result.RiskLevel != RiskLow {
		t.Errorf("expected low risk, got %s", result.RiskLevel)
	}
	if result.Recommendations != nil {
		t.Errorf("expected no recommendations at low risk, got %v", result.Recommendations)
	}
}

func TestPredictForgetfulness_ProbabilityBounded(t *testing.T) {
	weekday := make([]WeekdayVariance, 7)
	for i := range weekday {
		weekday[i].RiskScore = 1
	}

	input := PredictionInput{
		MedicationID:  "med-a",
		ScheduledTime: "08:00",
		DayOfWeek:     3,
		Slot:          PatternAnalysis{MissedPercentage: 100, Confidence: 1},
		Trend:         TrendAnalysis{Slope: 5, Confidence: 1},
		Weekday:       weekday,
		TimeOfDay: []TimeOfDayVariance{
			{Period: PeriodMorning, RiskScore: 1},
		},
		ConsecutiveMisses: 50,
	}

	result := PredictForgetfulness(input)

	if result.Probability < 0 || result.Probability > 1 {
		t.Errorf("probability out of bounds: %f", result.Probability)
	}
	if result.Probability != 1 {
		t.Errorf("expected saturated probability 1.0, got %f", result.Probability)
	}
	if result.RiskLevel != RiskCritical {
		t.Errorf("expected critical risk, got %s", result.RiskLevel)
	}
	if len(result.Recommendations) < 4 {
		t.Errorf("expected escalated recommendations at critical risk, got %v", result.Recommendations)
	}
}

func TestRiskRecommendations_IncludeSuggestedTime(t *testing.T) {
	suggested := "08:30"
	recs := riskRecommendations(RiskMedium, PatternAnalysis{SuggestedTime: &suggested})

	found := false
	for _, r := range recs {
		if r == "Consider moving this dose to 08:30" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a suggested-time recommendation, got %v", recs)
	}
}

func TestCountConsecutiveMisses(t *testing.T) {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	// Trailing streak of 2 after a taken dose
	patterns := []ReminderPattern{
		missedDose("med-a", "08:00", start.AddDate(0, 0, 3)),
		takenDose("med-a", "08:00", start, 0),
		missedDose("med-a", "08:00", start.AddDate(0, 0, 2)),
		takenDose("med-a", "08:00", start.AddDate(0, 0, 1), 0),
	}
	if got := CountConsecutiveMisses(patterns); got != 2 {
		t.Errorf("expected trailing streak of 2, got %d", got)
	}

	// A taken dose at the end resets the streak
	patterns = append(patterns, takenDose("med-a", "08:00", start.AddDate(0, 0, 4), 0))
	if got := CountConsecutiveMisses(patterns); got != 0 {
		t.Errorf("expected streak 0 after a taken dose, got %d", got)
	}

	if got := CountConsecutiveMisses(nil); got != 0 {
		t.Errorf("expected streak 0 for empty input, got %d", got)
	}
}
