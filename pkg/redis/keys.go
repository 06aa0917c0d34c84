package redis

import "fmt"

// Key construction helpers for the adherence cache

// AnalysisSnapshotKey returns the key for a patient's latest analysis snapshot (string)
// Pattern: analysis:{patient_id}
func AnalysisSnapshotKey(patientID string) string {
	return fmt.Sprintf("analysis:%s", patientID)
}

// DoseTimelineKey returns the key for a patient's dose event timeline (sorted set,
// scored by event timestamp in unix millis)
// Pattern: doses:{patient_id}
func DoseTimelineKey(patientID string) string {
	return fmt.Sprintf("doses:%s", patientID)
}

// AdherenceReportKey returns the key for a patient's cached adherence report (string)
// Pattern: adherence:{patient_id}
func AdherenceReportKey(patientID string) string {
	return fmt.Sprintf("adherence:%s", patientID)
}
