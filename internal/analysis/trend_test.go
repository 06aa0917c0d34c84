package analysis

import (
	"math"
	"testing"
)

func TestAnalyzeTrend_InsufficientData(t *testing.T) {
	for _, series := range [][]float64{nil, {}, {0.4}} {
		result := AnalyzeTrend(series)

		if result.Trend != TrendStable {
			t.Errorf("expected stable trend for %v, got %s", series, result.Trend)
		}
		if result.Slope != 0 || result.Intercept != 0 || result.RSquared != 0 {
			t.Errorf("expected zeroed fit for %v, got %+v", series, result)
		}
		if result.Confidence != 0 {
			t.Errorf("expected zero confidence for %v, got %f", series, result.Confidence)
		}
	}
}

func TestAnalyzeTrend_PerfectWorseningLine(t *testing.T) {
	// Miss rate climbing 0.1 per week
	result := AnalyzeTrend([]float64{0.1, 0.2, 0.3, 0.4})

	if math.Abs(result.Slope-0.1) > 1e-9 {
		t.Errorf("expected slope 0.1, got %f", result.Slope)
	}
	if math.Abs(result.Intercept-0.1) > 1e-9 {
		t.Errorf("expected intercept 0.1, got %f", result.Intercept)
	}
	if math.Abs(result.RSquared-1.0) > 1e-9 {
		t.Errorf("expected R² of 1.0 for a perfect line, got %f", result.RSquared)
	}
	if math.Abs(result.Prediction-0.5) > 1e-9 {
		t.Errorf("expected next-period prediction 0.5, got %f", result.Prediction)
	}
	if result.Trend != TrendWorsening {
		t.Errorf("expected worsening trend, got %s", result.Trend)
	}
	if result.Confidence != result.RSquared {
		t.Errorf("expected confidence to equal R², got %f vs %f", result.Confidence, result.RSquared)
	}
}

func TestAnalyzeTrend_Improving(t *testing.T) {
	result := AnalyzeTrend([]float64{0.5, 0.35, 0.2, 0.1})

	if result.Slope >= 0 {
		t.Errorf("expected negative slope, got %f", result.Slope)
	}
	if result.Trend != TrendImproving {
		t.Errorf("expected improving trend, got %s", result.Trend)
	}
}

func TestAnalyzeTrend_FlatSeriesIsStable(t *testing.T) {
	result := AnalyzeTrend([]float64{0.3, 0.3, 0.3, 0.3})

	if result.Trend != TrendStable {
		t.Errorf("expected stable trend for flat series, got %s", result.Trend)
	}
	if result.Slope != 0 {
		t.Errorf("expected zero slope, got %f", result.Slope)
	}
	// Zero total variance means R² is reported as 0, not NaN
	if result.RSquared != 0 {
		t.Errorf("expected R² of 0 for zero-variance series, got %f", result.RSquared)
	}
}

func TestAnalyzeTrend_NoisySeriesLowersConfidence(t *testing.T) {
	clean := AnalyzeTrend([]float64{0.1, 0.2, 0.3, 0.4, 0.5})
	noisy := AnalyzeTrend([]float64{0.1, 0.45, 0.15, 0.5, 0.2})

	if noisy.RSquared >= clean.RSquared {
		t.Errorf("expected noisy series to have lower R²: noisy %f, clean %f", noisy.RSquared, clean.RSquared)
	}
	if noisy.RSquared < 0 || noisy.RSquared > 1 {
		t.Errorf("R² out of bounds: %f", noisy.RSquared)
	}
}

func TestClassifyTrend_Epsilon(t *testing.T) {
	cases := []struct {
		slope float64
		want  TrendDirection
	}{
		{0.009, TrendStable},
		{-0.009, TrendStable},
		{0.01, TrendWorsening},
		{-0.01, TrendImproving},
		{0.3, TrendWorsening},
		{-0.3, TrendImproving},
	}

	for _, c := range cases {
		if got := classifyTrend(c.slope); got != c.want {
			t.Errorf("classifyTrend(%f) = %s, want %s", c.slope, got, c.want)
		}
	}
}
