// Package adherence computes patient-level adherence reports from dose
// outcome records. Reports are descriptive summaries for caregivers and
// dashboards, not predictions, and the package has no dependency on the
// analysis engine so other services can reuse it.
package adherence

import (
	"sort"
	"time"
)

// DoseRecord is one scheduled dose outcome as the report builder sees it.
// Callers hand in already-validated records.
type DoseRecord struct {
	MedicationID string
	Missed       bool
	DelayMinutes *float64
	Date         time.Time
}

// MedicationAdherence summarizes one medication's dose outcomes within the
// report window
type MedicationAdherence struct {
	MedicationID        string  `json:"medicationId"`
	TotalDoses          int     `json:"totalDoses"`
	TakenDoses          int     `json:"takenDoses"`
	MissedDoses         int     `json:"missedDoses"`
	AdherenceRate       float64 `json:"adherenceRate"`
	AverageDelayMinutes float64 `json:"averageDelayMinutes"`
}

// Report is a patient's adherence summary over a bounded window
type Report struct {
	PatientID         string                `json:"patientId"`
	From              time.Time             `json:"from"`
	To                time.Time             `json:"to"`
	TotalDoses        int                   `json:"totalDoses"`
	TakenDoses        int                   `json:"takenDoses"`
	MissedDoses       int                   `json:"missedDoses"`
	AdherenceRate     float64               `json:"adherenceRate"`
	CurrentStreakDays int                   `json:"currentStreakDays"`
	LongestStreakDays int                   `json:"longestStreakDays"`
	Medications       []MedicationAdherence `json:"medications"`
}

// BuildReport aggregates dose outcomes into a patient adherence report.
// Adherence rates are percentages; streaks count consecutive calendar days
// on which every recorded dose was taken.
func BuildReport(patientID string, records []DoseRecord, from, to time.Time) Report {
	report := Report{
		PatientID: patientID,
		From:      from,
		To:        to,
	}

	for _, r := range records {
		report.TotalDoses++
		if r.Missed {
			report.MissedDoses++
		} else {
			report.TakenDoses++
		}
	}

	if report.TotalDoses > 0 {
		report.AdherenceRate = 100 * float64(report.TakenDoses) / float64(report.TotalDoses)
	}

	report.Medications = medicationBreakdown(records)
	report.CurrentStreakDays, report.LongestStreakDays = adherenceStreaks(records)

	return report
}

// medicationBreakdown groups outcomes per medication, ordered by medication ID
func medicationBreakdown(records []DoseRecord) []MedicationAdherence {
	byMedication := make(map[string]*MedicationAdherence)
	delaySums := make(map[string]float64)
	delayCounts := make(map[string]int)

	for _, r := range records {
		m := byMedication[r.MedicationID]
		if m == nil {
			m = &MedicationAdherence{MedicationID: r.MedicationID}
			byMedication[r.MedicationID] = m
		}

		m.TotalDoses++
		if r.Missed {
			m.MissedDoses++
		} else {
			m.TakenDoses++
			if r.DelayMinutes != nil {
				delaySums[r.MedicationID] += *r.DelayMinutes
				delayCounts[r.MedicationID]++
			}
		}
	}

	ids := make([]string, 0, len(byMedication))
	for id := range byMedication {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	breakdown := make([]MedicationAdherence, 0, len(ids))
	for _, id := range ids {
		m := byMedication[id]
		m.AdherenceRate = 100 * float64(m.TakenDoses) / float64(m.TotalDoses)
		if delayCounts[id] > 0 {
			m.AverageDelayMinutes = delaySums[id] / float64(delayCounts[id])
		}
		breakdown = append(breakdown, *m)
	}
	return breakdown
}

// adherenceStreaks computes the current and longest runs of fully adherent
// days. A day counts toward a streak when it has recorded doses and none of
// them were missed; days without any records break the streak.
func adherenceStreaks(records []DoseRecord) (current, longest int) {
	missedByDay := make(map[string]bool)
	for _, r := range records {
		key := r.Date.UTC().Format("2006-01-02")
		if r.Missed {
			missedByDay[key] = true
		} else if _, seen := missedByDay[key]; !seen {
			missedByDay[key] = false
		}
	}

	if len(missedByDay) == 0 {
		return 0, 0
	}

	keys := make([]string, 0, len(missedByDay))
	for key := range missedByDay {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	streak := 0
	var prev time.Time
	for i, key := range keys {
		day, _ := time.Parse("2006-01-02", key)

		adherent := !missedByDay[key]
		consecutive := i > 0 && day.Sub(prev) == 24*time.Hour

		switch {
		case !adherent:
			streak = 0
		case streak == 0 || !consecutive:
			streak = 1
		default:
			streak++
		}

		if streak > longest {
			longest = streak
		}
		prev = day
	}

	// The trailing streak is the current one
	current = streak
	return current, longest
}
