package layout

import (
	"math"

	"github.com/histpath/readingorder/model"
)

// AverageConfidence returns the arithmetic mean of the element confidences,
// or 0 for an empty set.
func AverageConfidence(elements []*model.Element) float64 {
	if len(elements) == 0 {
		return 0
	}
	var sum float64
	for _, e := range elements {
		sum += e.Confidence()
	}
	return sum / float64(len(elements))
}

// ComputeStats returns mean, min, max and population standard deviation of
// the element confidences. All fields are zero for an empty set.
func ComputeStats(elements []*model.Element) model.ConfidenceStats {
	if len(elements) == 0 {
		return model.ConfidenceStats{}
	}

	avg := AverageConfidence(elements)
	stats := model.ConfidenceStats{
		Avg:   avg,
		Min:   elements[0].Confidence(),
		Max:   elements[0].Confidence(),
		Count: len(elements),
	}

	var sq float64
	for _, e := range elements {
		c := e.Confidence()
		stats.Min = math.Min(stats.Min, c)
		stats.Max = math.Max(stats.Max, c)
		sq += (c - avg) * (c - avg)
	}
	stats.StdDev = math.Sqrt(sq / float64(len(elements)))

	return stats
}
