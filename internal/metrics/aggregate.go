package metrics

import (
	"fmt"
	"strconv"
)

// Sample is the usage and capacity of one subject (node, pod or container).
// Quantities are unparsed; an empty string counts as zero.
type Sample struct {
	Name     string
	Usage    string
	Capacity string
}

// SubjectResult is a parsed sample with its own utilization.
type SubjectResult struct {
	Name               string
	Usage              float64
	Capacity           float64
	UtilizationPercent float64
}

// Result holds unrounded totals and per-subject figures in input order.
type Result struct {
	TotalUsage         float64
	TotalCapacity      float64
	UtilizationPercent float64
	Subjects           []SubjectResult
}

// Aggregate parses every sample and sums usage and capacity.
// A quantity that fails to parse aborts the aggregation.
func Aggregate(samples []Sample) (*Result, error) {
	result := &Result{
		Subjects: make([]SubjectResult, 0, len(samples)),
	}

	for _, s := range samples {
		usage, err := ParseQuantity(s.Usage)
		if err != nil {
			return nil, fmt.Errorf("failed to parse usage of %s: %w", s.Name, err)
		}
		capacity, err := ParseQuantity(s.Capacity)
		if err != nil {
			return nil, fmt.Errorf("failed to parse capacity of %s: %w", s.Name, err)
		}

		result.TotalUsage += usage
		result.TotalCapacity += capacity
		result.Subjects = append(result.Subjects, SubjectResult{
			Name:               s.Name,
			Usage:              usage,
			Capacity:           capacity,
			UtilizationPercent: Utilization(usage, capacity),
		})
	}

	result.UtilizationPercent = Utilization(result.TotalUsage, result.TotalCapacity)
	return result, nil
}

// Utilization returns usage/capacity*100, or 0 when capacity is not positive.
// The value is not clamped to 100.
func Utilization(usage, capacity float64) float64 {
	if capacity > 0 {
		return usage / capacity * 100
	}
	return 0
}

// Round rounds v to the given number of decimal places. Rounding works on the
// exact decimal value of v and breaks ties to even.
func Round(v float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return r
}
