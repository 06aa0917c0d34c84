package analysis

import (
	"time"

	"github.com/google/uuid"
)

// ReminderPattern is one recorded dose outcome: a scheduled dose for a
// medication and whether/when it was actually taken. Patterns are produced by
// the reminder service and are read-only inputs here.
type ReminderPattern struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     string     `json:"patientId"`
	MedicationID  string     `json:"medicationId"`
	ScheduledTime string     `json:"scheduledTime"` // HH:MM
	Missed        bool       `json:"missed"`
	ActualTime    *time.Time `json:"actualTime,omitempty"`
	DelayMinutes  *float64   `json:"delayMinutes,omitempty"` // negative when taken early
	DayOfWeek     int        `json:"dayOfWeek"`              // 0=Sunday .. 6=Saturday
	Date          time.Time  `json:"date"`
}

// Valid reports whether the pattern is internally consistent. Invalid records
// are skipped from aggregation and counted in Diagnostics.
func (p *ReminderPattern) Valid() bool {
	if p.DayOfWeek < 0 || p.DayOfWeek > 6 {
		return false
	}
	if p.Date.IsZero() {
		return false
	}
	if p.Missed && (p.ActualTime != nil || p.DelayMinutes != nil) {
		return false
	}
	if !p.Missed && p.DelayMinutes == nil {
		return false
	}
	return true
}

// PatternAnalysis summarizes all patterns for one medication+scheduled-time slot
type PatternAnalysis struct {
	MedicationID            string  `json:"medicationId"`
	ScheduledTime           string  `json:"scheduledTime"`
	TotalDoses              int     `json:"totalDoses"`
	MissedDoses             int     `json:"missedDoses"`
	MissedPercentage        float64 `json:"missedPercentage"`
	AverageDelayMinutes     float64 `json:"averageDelayMinutes"`
	HasRecurringMissedDoses bool    `json:"hasRecurringMissedDoses"`
	HasConsistentDelay      bool    `json:"hasConsistentDelay"`
	SuggestedTime           *string `json:"suggestedTime,omitempty"` // HH:MM, only when delay is consistent
	Confidence              float64 `json:"confidence"`
}

// TrendDirection classifies the direction of change in miss/delay behavior
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendWorsening TrendDirection = "worsening"
	TrendStable    TrendDirection = "stable"
)

// TrendAnalysis is a least-squares fit over a chronological series of
// per-period values, where higher values mean worse adherence
type TrendAnalysis struct {
	Slope      float64        `json:"slope"`
	Intercept  float64        `json:"intercept"`
	RSquared   float64        `json:"rSquared"`
	Prediction float64        `json:"prediction"` // fitted value at the next period
	Confidence float64        `json:"confidence"`
	Trend      TrendDirection `json:"trend"`
}

// WeekdayVariance holds per-weekday adherence statistics
type WeekdayVariance struct {
	Day             int     `json:"day"` // 0=Sunday .. 6=Saturday
	DayName         string  `json:"dayName"`
	MissedCount     int     `json:"missedCount"`
	TotalDoses      int     `json:"totalDoses"`
	MissRate        float64 `json:"missRate"`
	AvgDelayMinutes float64 `json:"avgDelayMinutes"`
	RiskScore       float64 `json:"riskScore"`
}

// DayPeriod identifies one of the four fixed time-of-day buckets
type DayPeriod string

const (
	PeriodMorning   DayPeriod = "morning"   // 06:00-12:00
	PeriodAfternoon DayPeriod = "afternoon" // 12:00-18:00
	PeriodEvening   DayPeriod = "evening"   // 18:00-22:00
	PeriodNight     DayPeriod = "night"     // 22:00-06:00
)

// TimeOfDayVariance holds per-period adherence statistics
type TimeOfDayVariance struct {
	Period          DayPeriod `json:"period"`
	Label           string    `json:"label"`
	TimeRange       string    `json:"timeRange"`
	MissedCount     int       `json:"missedCount"`
	TotalDoses      int       `json:"totalDoses"`
	MissRate        float64   `json:"missRate"`
	AvgDelayMinutes float64   `json:"avgDelayMinutes"`
	RiskScore       float64   `json:"riskScore"`
}

// Archetype is a closed set of behavioral cluster kinds. Labeling is a lookup,
// never free-form text, so assignment stays deterministic and testable.
type Archetype int

const (
	ArchetypePunctual Archetype = iota
	ArchetypeDelayed
	ArchetypeInconsistent
	ArchetypeHighRisk
)

// Label returns the human-readable cluster label for the archetype
func (a Archetype) Label() string {
	switch a {
	case ArchetypePunctual:
		return "Punctual and consistent"
	case ArchetypeDelayed:
		return "Consistently delayed"
	case ArchetypeInconsistent:
		return "Inconsistent timing"
	case ArchetypeHighRisk:
		return "Frequently missed"
	default:
		return "Unknown"
	}
}

// ClusterCharacteristics describes the shared behavior of a cluster's members
type ClusterCharacteristics struct {
	AvgDelayMinutes    float64 `json:"avgDelayMinutes"`
	MissRate           float64 `json:"missRate"`
	PreferredTimeRange string  `json:"preferredTimeRange"`
	Consistency        float64 `json:"consistency"` // [0,1], lower delay variance means higher consistency
}

// BehaviorCluster is a labeled group of similar adherence patterns
type BehaviorCluster struct {
	ClusterID       int                    `json:"clusterId"`
	Archetype       Archetype              `json:"archetype"`
	Label           string                 `json:"label"`
	Patterns        []ReminderPattern      `json:"patterns"`
	Characteristics ClusterCharacteristics `json:"characteristics"`
	Recommendations []string               `json:"recommendations"`
}

// RiskLevel is the categorical forgetfulness risk band
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// PredictionFactors holds the normalized inputs that produced a prediction
type PredictionFactors struct {
	HistoricalMissRate float64 `json:"historicalMissRate"`
	RecentTrend        float64 `json:"recentTrend"`
	WeekdayRisk        float64 `json:"weekdayRisk"`
	TimeOfDayRisk      float64 `json:"timeOfDayRisk"`
	ConsecutiveMisses  int     `json:"consecutiveMisses"`
}

// ForgetfulnessPrediction estimates the chance that one upcoming scheduled
// dose will be missed
type ForgetfulnessPrediction struct {
	MedicationID    string            `json:"medicationId"`
	ScheduledTime   string            `json:"scheduledTime"`
	DayOfWeek       int               `json:"dayOfWeek"`
	Probability     float64           `json:"probability"`
	Confidence      float64           `json:"confidence"`
	RiskLevel       RiskLevel         `json:"riskLevel"`
	Factors         PredictionFactors `json:"factors"`
	Recommendations []string          `json:"recommendations"`
}

// Diagnostics reports input quality for one analysis run
type Diagnostics struct {
	SkippedRecords int `json:"skippedRecords"`
}

// AdvancedAnalysis is the top-level snapshot handed back to callers. Consumers
// must treat it as immutable; every run recomputes it from scratch.
type AdvancedAnalysis struct {
	ID                    uuid.UUID                 `json:"id"`
	PatientID             string                    `json:"patientId"`
	AnalyzedAt            time.Time                 `json:"analyzedAt"`
	PatternAnalyses       []PatternAnalysis         `json:"patternAnalyses"`
	TrendAnalysis         TrendAnalysis             `json:"trendAnalysis"`
	WeekdayVariance       []WeekdayVariance         `json:"weekdayVariance"`   // always 7 entries
	TimeOfDayVariance     []TimeOfDayVariance       `json:"timeOfDayVariance"` // always 4 entries
	BehaviorClusters      []BehaviorCluster         `json:"behaviorClusters"`
	DominantCluster       *BehaviorCluster          `json:"dominantCluster,omitempty"`
	Predictions           []ForgetfulnessPrediction `json:"predictions"`
	OverallAdherenceScore float64                   `json:"overallAdherenceScore"` // [0,100]
	Insights              []string                  `json:"insights"`
	Recommendations       []string                  `json:"recommendations"`
	Diagnostics           Diagnostics               `json:"diagnostics"`
}

// clamp01 bounds a value to [0,1]
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampRange bounds a value to [min,max]
func clampRange(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
