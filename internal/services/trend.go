package services

const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// CalculateTrend compares the averages of the older and newer halves of
// values, which must be in chronological order. A rise of more than 10%
// is improving when higherIsBetter and declining otherwise.
func CalculateTrend(values []float64, higherIsBetter bool) string {
	if len(values) < 2 {
		return TrendStable
	}

	mid := len(values) / 2
	first := Average(values[:mid])
	second := Average(values[mid:])

	var rising, falling bool
	switch {
	case second > first*1.1:
		rising = true
	case second < first*0.9:
		falling = true
	}

	switch {
	case rising && higherIsBetter, falling && !higherIsBetter:
		return TrendImproving
	case rising, falling:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Present drops the missing readings, keeping order.
func Present[T int | float64](values []*T) []float64 {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			present = append(present, float64(*v))
		}
	}
	return present
}

// AveragePtr averages the present values, nil when none are present.
func AveragePtr[T int | float64](values []*T) *float64 {
	present := Present(values)
	if len(present) == 0 {
		return nil
	}
	avg := Round2(Average(present))
	return &avg
}
