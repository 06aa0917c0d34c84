package analysis

import (
	"math"
	"sort"

	"github.com/pgvector/pgvector-go"
)

// SlotPatterns pairs one medication+scheduled-time slot summary with its raw
// member patterns. Slots are the unit of cluster assignment; their member
// patterns travel with them, so every pattern lands in exactly one cluster.
type SlotPatterns struct {
	Analysis PatternAnalysis
	Patterns []ReminderPattern
}

// archetypeCentroids are the labeled centroids in behavior feature space:
// (miss rate, normalized delay, normalized delay spread). Assignment is
// nearest-centroid under archetypeDistance, which makes clustering
// deterministic and every archetype's meaning explicit.
var archetypeCentroids = map[Archetype][]float32{
	ArchetypePunctual:     {0.0, 0.05, 0.1},
	ArchetypeDelayed:      {0.1, 0.5, 0.15},
	ArchetypeInconsistent: {0.15, 0.3, 0.8},
	ArchetypeHighRisk:     {0.45, 0.3, 0.4},
}

// archetypeWeights emphasize miss rate over timing when measuring distance to
// a centroid
var archetypeWeights = []float64{3.0, 1.0, 1.0}

// Normalization caps for the feature dimensions
const (
	featureDelayCapMinutes  = 60.0
	featureSpreadCapMinutes = 30.0
)

// SlotFeatureVector builds the behavior feature vector for one slot:
// [missRate, delay, delaySpread, sin(t), cos(t), confidence]. The first three
// dimensions drive archetype assignment; the full vector is persisted for
// similarity lookups by other services.
func SlotFeatureVector(a PatternAnalysis, patterns []ReminderPattern) pgvector.Vector {
	delays := slotDelays(patterns)

	missRate := 0.0
	if a.TotalDoses > 0 {
		missRate = float64(a.MissedDoses) / float64(a.TotalDoses)
	}

	delayNorm := 0.0
	if a.AverageDelayMinutes > 0 {
		delayNorm = clamp01(a.AverageDelayMinutes / featureDelayCapMinutes)
	}

	spreadNorm := clamp01(stdDev(delays) / featureSpreadCapMinutes)

	// Cyclic encoding of the scheduled time so 23:00 sits next to 01:00
	sinT, cosT := 0.0, 1.0
	if minutes, ok := parseClockTime(a.ScheduledTime); ok {
		angle := 2 * math.Pi * float64(minutes) / (24 * 60)
		sinT, cosT = math.Sin(angle), math.Cos(angle)
	}

	return pgvector.NewVector([]float32{
		float32(missRate),
		float32(delayNorm),
		float32(spreadNorm),
		float32(sinT),
		float32(cosT),
		float32(a.Confidence),
	})
}

// archetypeDistance is the weighted squared distance from a slot's feature
// vector to an archetype centroid, over the assignment dimensions only
func archetypeDistance(features pgvector.Vector, centroid []float32) float64 {
	s := features.Slice()
	var sum float64
	for i := range centroid {
		diff := float64(s[i]) - float64(centroid[i])
		sum += archetypeWeights[i] * diff * diff
	}
	return sum
}

// classifyArchetype assigns a slot to its nearest labeled centroid. Ties go to
// the lowest archetype id for determinism.
func classifyArchetype(features pgvector.Vector) Archetype {
	best := ArchetypePunctual
	bestDist := math.MaxFloat64

	for a := ArchetypePunctual; a <= ArchetypeHighRisk; a++ {
		dist := archetypeDistance(features, archetypeCentroids[a])
		if dist < bestDist {
			best = a
			bestDist = dist
		}
	}
	return best
}

// ClusterBehaviors groups slots into labeled behavioral clusters. Every slot
// is assigned to exactly one archetype; empty archetypes are not emitted.
// Output is ordered by cluster id, members keep their input order, so the
// result is deterministic for identical input.
func ClusterBehaviors(slots []SlotPatterns) []BehaviorCluster {
	members := make(map[Archetype][]SlotPatterns)

	for _, slot := range slots {
		features := SlotFeatureVector(slot.Analysis, slot.Patterns)
		archetype := classifyArchetype(features)
		members[archetype] = append(members[archetype], slot)
	}

	var clusters []BehaviorCluster
	for a := ArchetypePunctual; a <= ArchetypeHighRisk; a++ {
		slots := members[a]
		if len(slots) == 0 {
			continue
		}

		var patterns []ReminderPattern
		for _, slot := range slots {
			patterns = append(patterns, slot.Patterns...)
		}

		characteristics := clusterCharacteristics(patterns)
		clusters = append(clusters, BehaviorCluster{
			ClusterID:       int(a),
			Archetype:       a,
			Label:           a.Label(),
			Patterns:        patterns,
			Characteristics: characteristics,
			Recommendations: clusterRecommendations(characteristics),
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].ClusterID < clusters[j].ClusterID
	})
	return clusters
}

// DominantCluster returns the cluster with the most member patterns, ties
// broken by lowest cluster id. Nil for an empty cluster set.
func DominantCluster(clusters []BehaviorCluster) *BehaviorCluster {
	var dominant *BehaviorCluster
	for i := range clusters {
		c := &clusters[i]
		if dominant == nil ||
			len(c.Patterns) > len(dominant.Patterns) ||
			(len(c.Patterns) == len(dominant.Patterns) && c.ClusterID < dominant.ClusterID) {
			dominant = c
		}
	}
	return dominant
}

// clusterCharacteristics summarizes the shared behavior of a cluster's members
func clusterCharacteristics(patterns []ReminderPattern) ClusterCharacteristics {
	delays := slotDelays(patterns)

	missed := 0
	periodCounts := make(map[DayPeriod]int)
	for _, p := range patterns {
		if p.Missed {
			missed++
		}
		if minutes, ok := parseClockTime(p.ScheduledTime); ok {
			periodCounts[periodForHour(minutes/60)]++
		}
	}

	missRate := 0.0
	if len(patterns) > 0 {
		missRate = float64(missed) / float64(len(patterns))
	}

	// Consistency drops as delay spread grows; with fewer than 2 taken doses
	// there is nothing to be consistent about
	consistency := 0.0
	if len(delays) >= 2 {
		consistency = 1 - clamp01(stdDev(delays)/featureSpreadCapMinutes)
	}

	return ClusterCharacteristics{
		AvgDelayMinutes:    mean(delays),
		MissRate:           missRate,
		PreferredTimeRange: preferredTimeRange(periodCounts),
		Consistency:        consistency,
	}
}

// preferredTimeRange picks the period holding the most member doses. Fixed
// iteration order keeps ties deterministic.
func preferredTimeRange(periodCounts map[DayPeriod]int) string {
	best := ""
	bestCount := 0
	for _, d := range periodDescriptors {
		if count := periodCounts[d.period]; count > bestCount {
			best = d.label + " (" + d.timeRange + ")"
			bestCount = count
		}
	}
	return best
}

// clusterRecommendations derives recommendation text from cluster
// characteristics. Same characteristics always produce the same text.
func clusterRecommendations(c ClusterCharacteristics) []string {
	var recs []string

	if c.MissRate > 0.25 {
		recs = append(recs, "Consider additional reminders for these doses")
	}
	if c.AvgDelayMinutes > 15 {
		recs = append(recs, "Shift the reminder closer to when doses are actually taken")
	}
	if c.Consistency < 0.5 && c.MissRate <= 0.25 {
		recs = append(recs, "Try anchoring these doses to a fixed daily routine")
	}
	if len(recs) == 0 {
		recs = append(recs, "Keep up the current routine")
	}

	return recs
}

// slotDelays extracts the delays of taken doses
func slotDelays(patterns []ReminderPattern) []float64 {
	var delays []float64
	for _, p := range patterns {
		if !p.Missed && p.DelayMinutes != nil {
			delays = append(delays, *p.DelayMinutes)
		}
	}
	return delays
}
