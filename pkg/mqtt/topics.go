package mqtt

import (
	"fmt"
	"strings"
)

// Topic constants for the adherence analysis surface
const (
	// Dose lifecycle events (input). The reminder service publishes one message
	// per scheduled dose outcome: taken, missed, or skipped.
	TopicDoseEvents = "medication/events/dose/+"

	// Analysis triggers (input). Any service can request a fresh analysis run
	// for a patient instead of waiting for the periodic pass.
	TopicAnalysisTrigger = "medication/analysis/trigger/+"

	// Analysis results (output)
	TopicAnalysisBase = "medication/analysis/result"

	// Adherence reports (output)
	TopicAdherenceBase = "medication/adherence/report"
)

// DoseEventTopic constructs the dose event topic for a specific patient
// Pattern: medication/events/dose/{patient_id}
func DoseEventTopic(patientID string) string {
	return fmt.Sprintf("medication/events/dose/%s", patientID)
}

// AnalysisTriggerTopic constructs the analysis trigger topic for a specific patient
// Pattern: medication/analysis/trigger/{patient_id}
func AnalysisTriggerTopic(patientID string) string {
	return fmt.Sprintf("medication/analysis/trigger/%s", patientID)
}

// AnalysisResultTopic constructs the analysis result topic for a specific patient
// Pattern: medication/analysis/result/{patient_id}
func AnalysisResultTopic(patientID string) string {
	return fmt.Sprintf("medication/analysis/result/%s", patientID)
}

// AdherenceReportTopic constructs the adherence report topic for a specific patient
// Pattern: medication/adherence/report/{patient_id}
func AdherenceReportTopic(patientID string) string {
	return fmt.Sprintf("medication/adherence/report/%s", patientID)
}

// PatientFromTopic extracts the patient ID from a per-patient topic.
// Returns an empty string when the topic has no patient segment.
func PatientFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 4 {
		return ""
	}
	return parts[len(parts)-1]
}
