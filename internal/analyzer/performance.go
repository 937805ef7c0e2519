package analyzer

import (
	"math"
	"time"
)

// dialectFactor is the per-dialect multiplier applied to the base
// threshold, reflecting how much slower or faster that engine typically is
// for an equivalent query.
var dialectFactor = map[string]float64{
	"sqlite":     0.5,
	"duckdb":     1.0,
	"postgresql": 1.5,
	"postgres":   1.5,
	"bigquery":   10.0,
	"snowflake":  10.0,
}

var complexityFactor = map[ComplexityLevel]float64{
	ComplexitySimple:      1,
	ComplexityModerate:    2,
	ComplexityComplex:     4,
	ComplexityVeryComplex: 8,
}

// PerformanceThresholds holds the three adaptive cutoffs, in milliseconds,
// a query's actual duration is scored against.
type PerformanceThresholds struct {
	ExcellentMS float64
	GoodMS      float64
	AcceptableMS float64
}

// PerformanceReport is the outcome of Analyzer.Performance.
type PerformanceReport struct {
	Thresholds PerformanceThresholds
	Score      float64
}

const (
	baseExcellentMS  = 10.0
	baseGoodMS       = 100.0
	baseAcceptableMS = 1000.0
)

// Performance computes adaptive thresholds for dialectName and level, then
// scores actualDuration against them. rowEstimate, when > 1000, widens the
// thresholds logarithmically to account for genuinely large result sets
// being slower without that being a sign of a bad query.
func (a *Analyzer) Performance(dialectName string, level ComplexityLevel, rowEstimate int64, actualDuration time.Duration) PerformanceReport {
	df, ok := dialectFactor[dialectName]
	if !ok {
		df = 1.0
	}
	cf, ok := complexityFactor[level]
	if !ok {
		cf = 1.0
	}

	rowAdjust := 1.0
	if rowEstimate > 1000 {
		rowAdjust = 1 + math.Log10(float64(rowEstimate)/1000.0)
	}

	thresholds := PerformanceThresholds{
		ExcellentMS:  baseExcellentMS * df * cf * rowAdjust,
		GoodMS:       baseGoodMS * df * cf * rowAdjust,
		AcceptableMS: baseAcceptableMS * df * cf * rowAdjust,
	}

	actualMS := float64(actualDuration.Microseconds()) / 1000.0
	score := performanceScore(actualMS, thresholds)

	return PerformanceReport{Thresholds: thresholds, Score: score}
}

// performanceScore is 1.0 at or below excellent, interpolates linearly to
// 0.8 at good and 0.5 at acceptable, and past acceptable falls linearly
// from 0.5 to 0 over one more good-to-acceptable span, floored at 0.
func performanceScore(actualMS float64, t PerformanceThresholds) float64 {
	switch {
	case actualMS <= t.ExcellentMS:
		return 1.0
	case actualMS <= t.GoodMS:
		return interpolate(actualMS, t.ExcellentMS, t.GoodMS, 1.0, 0.8)
	case actualMS <= t.AcceptableMS:
		return interpolate(actualMS, t.GoodMS, t.AcceptableMS, 0.8, 0.5)
	default:
		span := t.AcceptableMS - t.GoodMS
		if span <= 0 {
			span = t.AcceptableMS
		}
		over := actualMS - t.AcceptableMS
		decay := 0.5 - 0.5*(over/span)
		if decay < 0 {
			decay = 0
		}
		return decay
	}
}

func interpolate(x, x0, x1, y0, y1 float64) float64 {
	if x1 <= x0 {
		return y1
	}
	fraction := (x - x0) / (x1 - x0)
	return y0 + fraction*(y1-y0)
}
