package domain

import "math"

// MinCorrelationPoints is the smallest paired sample a coefficient is
// reported for.
const MinCorrelationPoints = 3

// Correlation is the Pearson coefficient between two metrics over the days
// on which both were recorded. R is nil when the sample is too small or one
// side never varies.
type Correlation struct {
	X MetricKey
	Y MetricKey
	N int
	R *float64
}

// Correlations computes every unordered metric pair over rows.
func Correlations(rows []DailyMetricRow) []Correlation {
	keys := AllMetrics()
	out := make([]Correlation, 0, len(keys)*(len(keys)-1)/2)
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			out = append(out, pearson(rows, keys[i], keys[j]))
		}
	}
	return out
}

// MaxN is the largest paired sample across corrs.
func MaxN(corrs []Correlation) int {
	maxN := 0
	for _, c := range corrs {
		if c.N > maxN {
			maxN = c.N
		}
	}
	return maxN
}

func pearson(rows []DailyMetricRow, x, y MetricKey) Correlation {
	corr := Correlation{X: x, Y: y}
	var xs, ys []float64
	for _, row := range rows {
		xv, okX := row.Value(x)
		yv, okY := row.Value(y)
		if !okX || !okY {
			continue
		}
		xs = append(xs, xv)
		ys = append(ys, yv)
	}
	corr.N = len(xs)
	if corr.N < MinCorrelationPoints {
		return corr
	}
	mx, my := mean(xs), mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return corr
	}
	r := sxy / math.Sqrt(sxx*syy)
	corr.R = &r
	return corr
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
