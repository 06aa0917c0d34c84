package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Engine runs the full adherence analysis pipeline. It is a pure batch
// computation: no I/O, no shared state, and identical input (including the
// reference time) always produces identical output.
type Engine struct {
	cfg Config
}

// NewEngine creates an analysis engine with the given tuning configuration
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Analyze runs aggregation, trend fitting, temporal variance, behavioral
// clustering and per-dose forgetfulness prediction over a patient's pattern
// history and assembles the snapshot handed back to callers. The caller owns
// persistence of the result; nothing is mutated in place.
func (e *Engine) Analyze(patientID string, patterns []ReminderPattern, now time.Time) AdvancedAnalysis {
	valid, skipped := SanitizePatterns(patterns)

	slots := groupBySlot(valid)

	analyses := make([]PatternAnalysis, 0, len(slots))
	for i := range slots {
		slots[i].Analysis = AggregateSlot(
			slots[i].Analysis.MedicationID,
			slots[i].Analysis.ScheduledTime,
			slots[i].Patterns,
			e.cfg)
		analyses = append(analyses, slots[i].Analysis)
	}

	trend := AnalyzeTrend(weeklyMissRateSeries(valid))
	weekday := AnalyzeWeekdayVariance(valid)
	timeOfDay := AnalyzeTimeOfDayVariance(valid)
	clusters := ClusterBehaviors(slots)
	dominant := DominantCluster(clusters)

	predictions := make([]ForgetfulnessPrediction, 0, len(slots))
	for _, slot := range slots {
		predictions = append(predictions, PredictForgetfulness(PredictionInput{
			MedicationID:      slot.Analysis.MedicationID,
			ScheduledTime:     slot.Analysis.ScheduledTime,
			DayOfWeek:         upcomingWeekday(slot.Analysis.ScheduledTime, now),
			Slot:              slot.Analysis,
			Trend:             trend,
			Weekday:           weekday,
			TimeOfDay:         timeOfDay,
			ConsecutiveMisses: CountConsecutiveMisses(slot.Patterns),
		}))
	}

	score := overallAdherenceScore(analyses)

	result := AdvancedAnalysis{
		ID:                    analysisID(patientID, now),
		PatientID:             patientID,
		AnalyzedAt:            now,
		PatternAnalyses:       analyses,
		TrendAnalysis:         trend,
		WeekdayVariance:       weekday,
		TimeOfDayVariance:     timeOfDay,
		BehaviorClusters:      clusters,
		DominantCluster:       dominant,
		Predictions:           predictions,
		OverallAdherenceScore: score,
		Diagnostics:           Diagnostics{SkippedRecords: skipped},
	}

	result.Insights = buildInsights(&result)
	result.Recommendations = collectRecommendations(clusters, predictions)

	return result
}

// analysisID derives a stable snapshot identifier so that identical runs
// produce identical output
func analysisID(patientID string, now time.Time) uuid.UUID {
	name := fmt.Sprintf("medicamenta:analysis:%s:%s", patientID, now.UTC().Format(time.RFC3339Nano))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name))
}

// groupBySlot splits patterns into medication+scheduled-time slots with
// deterministic slot ordering and chronological member ordering
func groupBySlot(patterns []ReminderPattern) []SlotPatterns {
	type slotKey struct {
		medicationID  string
		scheduledTime string
	}

	groups := make(map[slotKey][]ReminderPattern)
	for _, p := range patterns {
		key := slotKey{p.MedicationID, p.ScheduledTime}
		groups[key] = append(groups[key], p)
	}

	keys := make([]slotKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].medicationID != keys[j].medicationID {
			return keys[i].medicationID < keys[j].medicationID
		}
		return keys[i].scheduledTime < keys[j].scheduledTime
	})

	slots := make([]SlotPatterns, 0, len(keys))
	for _, key := range keys {
		members := groups[key]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Date.Before(members[j].Date)
		})
		slots = append(slots, SlotPatterns{
			Analysis: PatternAnalysis{
				MedicationID:  key.medicationID,
				ScheduledTime: key.scheduledTime,
			},
			Patterns: members,
		})
	}
	return slots
}

// weeklyMissRateSeries builds the chronological per-ISO-week miss rate series
// that feeds the trend analyzer
func weeklyMissRateSeries(patterns []ReminderPattern) []float64 {
	type weekStats struct {
		missed int
		total  int
	}

	weeks := make(map[int]*weekStats)
	for _, p := range patterns {
		year, week := p.Date.ISOWeek()
		key := year*100 + week
		if weeks[key] == nil {
			weeks[key] = &weekStats{}
		}
		weeks[key].total++
		if p.Missed {
			weeks[key].missed++
		}
	}

	keys := make([]int, 0, len(weeks))
	for key := range weeks {
		keys = append(keys, key)
	}
	sort.Ints(keys)

	series := make([]float64, 0, len(keys))
	for _, key := range keys {
		w := weeks[key]
		series = append(series, float64(w.missed)/float64(w.total))
	}
	return series
}

// upcomingWeekday returns the weekday (0=Sunday) of the next occurrence of an
// HH:MM slot time after the reference time
func upcomingWeekday(scheduledTime string, now time.Time) int {
	day := int(now.Weekday())

	minutes, ok := parseClockTime(scheduledTime)
	if !ok {
		return day
	}

	nowMinutes := now.Hour()*60 + now.Minute()
	if minutes <= nowMinutes {
		// Today's slot already passed, next occurrence is tomorrow
		day = (day + 1) % 7
	}
	return day
}

// overallAdherenceScore is 100 times one minus the dose-count weighted miss
// rate across all slots, bounded to [0,100]
func overallAdherenceScore(analyses []PatternAnalysis) float64 {
	totalDoses := 0
	missedDoses := 0
	for _, a := range analyses {
		totalDoses += a.TotalDoses
		missedDoses += a.MissedDoses
	}

	if totalDoses == 0 {
		return 100
	}

	missRate := float64(missedDoses) / float64(totalDoses)
	return clampRange(100*(1-missRate), 0, 100)
}
