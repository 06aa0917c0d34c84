package analysis

import "fmt"

// buildInsights renders short natural-language summaries of the detected
// findings. Text is derived only from the snapshot, so identical runs produce
// identical insights.
func buildInsights(a *AdvancedAnalysis) []string {
	var insights []string

	hasData := false
	for _, p := range a.PatternAnalyses {
		if p.TotalDoses > 0 {
			hasData = true
			break
		}
	}
	if !hasData {
		return []string{"Not enough dose history yet to detect adherence patterns"}
	}

	switch a.TrendAnalysis.Trend {
	case TrendWorsening:
		insights = append(insights, "Adherence has been declining over recent weeks")
	case TrendImproving:
		insights = append(insights, "Adherence has been improving over recent weeks")
	case TrendStable:
		insights = append(insights, "Adherence has been stable over recent weeks")
	}

	if a.DominantCluster != nil {
		insights = append(insights, fmt.Sprintf("Most doses follow the %q pattern", a.DominantCluster.Label))
	}

	if day, found := riskiestWeekday(a.WeekdayVariance); found {
		insights = append(insights, fmt.Sprintf("%s shows elevated risk of missed doses", day))
	}

	if label, found := riskiestPeriod(a.TimeOfDayVariance); found {
		insights = append(insights, fmt.Sprintf("%s doses are missed or delayed more than others", label))
	}

	for _, p := range a.PatternAnalyses {
		if p.HasConsistentDelay && p.SuggestedTime != nil {
			insights = append(insights, fmt.Sprintf(
				"The %s dose is consistently taken late; %s may fit the routine better",
				p.ScheduledTime, *p.SuggestedTime))
		}
	}

	if a.OverallAdherenceScore < 50 {
		insights = append(insights, "Overall adherence needs attention")
	}

	return insights
}

// riskiestWeekday returns the name of the highest-risk day, if any day
// crosses the high-risk threshold. Ties resolve to the earliest day.
func riskiestWeekday(variance []WeekdayVariance) (string, bool) {
	best := ""
	bestScore := HighRiskThreshold
	for _, v := range variance {
		if v.RiskScore > bestScore {
			best = v.DayName
			bestScore = v.RiskScore
		}
	}
	return best, best != ""
}

// riskiestPeriod returns the label of the highest-risk time-of-day bucket, if
// any bucket crosses the high-risk threshold
func riskiestPeriod(variance []TimeOfDayVariance) (string, bool) {
	best := ""
	bestScore := HighRiskThreshold
	for _, v := range variance {
		if v.RiskScore > bestScore {
			best = v.Label
			bestScore = v.RiskScore
		}
	}
	return best, best != ""
}

// collectRecommendations merges per-cluster and per-prediction recommendation
// lists, dropping duplicates while preserving first-seen order
func collectRecommendations(clusters []BehaviorCluster, predictions []ForgetfulnessPrediction) []string {
	seen := make(map[string]struct{})
	var merged []string

	add := func(items []string) {
		for _, item := range items {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			merged = append(merged, item)
		}
	}

	for _, c := range clusters {
		add(c.Recommendations)
	}
	for _, p := range predictions {
		add(p.Recommendations)
	}

	return merged
}
