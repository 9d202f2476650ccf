package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTrend(t *testing.T) {
	assert.Equal(t, TrendStable, CalculateTrend(nil, true))
	assert.Equal(t, TrendStable, CalculateTrend([]float64{5}, true))

	assert.Equal(t, TrendImproving, CalculateTrend([]float64{10, 10, 20, 20}, true))
	assert.Equal(t, TrendDeclining, CalculateTrend([]float64{20, 20, 10, 10}, true))
	assert.Equal(t, TrendStable, CalculateTrend([]float64{10, 10, 10.5, 10.5}, true))

	// A rising stress level is bad news.
	assert.Equal(t, TrendDeclining, CalculateTrend([]float64{2, 2, 6, 6}, false))
	assert.Equal(t, TrendImproving, CalculateTrend([]float64{6, 6, 2, 2}, false))

	// Odd lengths put the middle value in the newer half.
	assert.Equal(t, TrendImproving, CalculateTrend([]float64{10, 20, 20}, true))
}

func TestAverages(t *testing.T) {
	assert.Equal(t, 0.0, Average(nil))
	assert.Equal(t, 2.5, Average([]float64{1, 2, 3, 4}))

	one, three := 1, 3
	assert.Equal(t, []float64{1, 3}, Present([]*int{&one, nil, &three}))

	avg := AveragePtr([]*int{&one, nil, &three})
	if assert.NotNil(t, avg) {
		assert.Equal(t, 2.0, *avg)
	}
	assert.Nil(t, AveragePtr([]*float64{nil, nil}))
}
