package analysis

import (
	"math"
	"testing"
	"time"
)

func TestAnalyzeWeekdayVariance_AlwaysSevenBuckets(t *testing.T) {
	result := AnalyzeWeekdayVariance(nil)

	if len(result) != 7 {
		t.Fatalf("expected 7 weekday buckets, got %d", len(result))
	}
	for day, v := range result {
		if v.Day != day {
			t.Errorf("expected bucket %d in position %d, got %d", day, day, v.Day)
		}
		if v.TotalDoses != 0 || v.MissRate != 0 || v.RiskScore != 0 {
			t.Errorf("expected zeroed stats for empty day %s, got %+v", v.DayName, v)
		}
	}
	if result[0].DayName != "Sunday" || result[6].DayName != "Saturday" {
		t.Errorf("unexpected day names: %s .. %s", result[0].DayName, result[6].DayName)
	}
}

func TestAnalyzeWeekdayVariance_MissRates(t *testing.T) {
	friday := time.Date(2026, 3, 6, 8, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	patterns := []ReminderPattern{
		missedDose("med-a", "08:00", friday),
		missedDose("med-a", "08:00", friday.AddDate(0, 0, 7)),
		takenDose("med-a", "08:00", friday.AddDate(0, 0, 14), 0),
		takenDose("med-a", "08:00", monday, 0),
		takenDose("med-a", "08:00", monday.AddDate(0, 0, 7), 0),
	}

	result := AnalyzeWeekdayVariance(patterns)

	fridayBucket := result[5]
	if fridayBucket.TotalDoses != 3 || fridayBucket.MissedCount != 2 {
		t.Errorf("expected 2/3 missed on Friday, got %d/%d", fridayBucket.MissedCount, fridayBucket.TotalDoses)
	}
	if math.Abs(fridayBucket.MissRate-2.0/3.0) > 1e-9 {
		t.Errorf("expected Friday miss rate 2/3, got %f", fridayBucket.MissRate)
	}

	mondayBucket := result[1]
	if mondayBucket.MissRate != 0 {
		t.Errorf("expected Monday miss rate 0, got %f", mondayBucket.MissRate)
	}
}

func TestAnalyzeTimeOfDayVariance_AlwaysFourBuckets(t *testing.T) {
	result := AnalyzeTimeOfDayVariance(nil)

	if len(result) != 4 {
		t.Fatalf("expected 4 time-of-day buckets, got %d", len(result))
	}

	wantOrder := []DayPeriod{PeriodMorning, PeriodAfternoon, PeriodEvening, PeriodNight}
	for i, v := range result {
		if v.Period != wantOrder[i] {
			t.Errorf("expected period %s in position %d, got %s", wantOrder[i], i, v.Period)
		}
		if v.TotalDoses != 0 || v.RiskScore != 0 {
			t.Errorf("expected zeroed stats for empty period %s, got %+v", v.Period, v)
		}
	}
}

func TestAnalyzeTimeOfDayVariance_NightWrapsMidnight(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	patterns := []ReminderPattern{
		missedDose("med-a", "23:00", date),
		missedDose("med-a", "02:00", date.AddDate(0, 0, 1)),
		takenDose("med-a", "05:30", date.AddDate(0, 0, 2), 0),
		takenDose("med-a", "08:00", date.AddDate(0, 0, 3), 0),
	}

	result := AnalyzeTimeOfDayVariance(patterns)

	night := result[3]
	if night.TotalDoses != 3 {
		t.Errorf("expected 3 doses bucketed as night, got %d", night.TotalDoses)
	}
	if night.MissedCount != 2 {
		t.Errorf("expected 2 night misses, got %d", night.MissedCount)
	}

	morning := result[0]
	if morning.TotalDoses != 1 {
		t.Errorf("expected 1 morning dose, got %d", morning.TotalDoses)
	}
}

func TestBucketRiskScore(t *testing.T) {
	cases := []struct {
		missRate float64
		avgDelay float64
		want     float64
	}{
		{0, 0, 0},
		{1, 0, 0.7},
		{1, 60, 1.0},
		{0, 120, 0.3}, // delay factor caps at one hour
		{0.5, 30, 0.5},
		{0, -20, 0}, // early doses add no risk
	}

	for _, c := range cases {
		got := bucketRiskScore(c.missRate, c.avgDelay)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("bucketRiskScore(%f, %f) = %f, want %f", c.missRate, c.avgDelay, got, c.want)
		}
	}
}

func TestPeriodForHour(t *testing.T) {
	cases := []struct {
		hour int
		want DayPeriod
	}{
		{6, PeriodMorning},
		{11, PeriodMorning},
		{12, PeriodAfternoon},
		{17, PeriodAfternoon},
		{18, PeriodEvening},
		{21, PeriodEvening},
		{22, PeriodNight},
		{23, PeriodNight},
		{0, PeriodNight},
		{5, PeriodNight},
	}

	for _, c := range cases {
		if got := periodForHour(c.hour); got != c.want {
			t.Errorf("periodForHour(%d) = %s, want %s", c.hour, got, c.want)
		}
	}
}
