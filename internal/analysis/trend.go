package analysis

import "math"

// SlopeStableEpsilon is the slope magnitude below which a trend is classified
// as stable. Series values are interpreted as "badness" (miss rate, delay), so
// a positive slope means adherence is getting worse.
const SlopeStableEpsilon = 0.01

// AnalyzeTrend fits an ordinary least-squares line over a chronologically
// ordered series, one value per calendar period, indexed 0..n-1. Fewer than 2
// points is not an error: it yields a zero-confidence stable result.
func AnalyzeTrend(series []float64) TrendAnalysis {
	n := len(series)
	if n < 2 {
		return TrendAnalysis{Trend: TrendStable}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return TrendAnalysis{Trend: TrendStable}
	}

	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn

	// Coefficient of determination against the fitted line
	meanY := sumY / fn
	var ssRes, ssTot float64
	for i, y := range series {
		fitted := slope*float64(i) + intercept
		ssRes += (y - fitted) * (y - fitted)
		ssTot += (y - meanY) * (y - meanY)
	}

	rSquared := 0.0
	if ssTot > 0 {
		rSquared = clamp01(1 - ssRes/ssTot)
	}

	return TrendAnalysis{
		Slope:      slope,
		Intercept:  intercept,
		RSquared:   rSquared,
		Prediction: slope*fn + intercept,
		Confidence: rSquared,
		Trend:      classifyTrend(slope),
	}
}

// classifyTrend maps a regression slope to a trend direction
func classifyTrend(slope float64) TrendDirection {
	if math.Abs(slope) < SlopeStableEpsilon {
		return TrendStable
	}
	if slope > 0 {
		return TrendWorsening
	}
	return TrendImproving
}
