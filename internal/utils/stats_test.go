package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFiniteMean(t *testing.T) {
	mean, ok := FiniteMean([]float64{1, 2, math.NaN(), math.Inf(1), 3})
	assert.True(t, ok)
	assert.Equal(t, 2.0, mean)

	_, ok = FiniteMean([]float64{math.NaN()})
	assert.False(t, ok)

	_, ok = FiniteMean(nil)
	assert.False(t, ok)
}

func TestSampleStdDev(t *testing.T) {
	assert.Equal(t, 0.0, SampleStdDev([]float64{1}))
	assert.Equal(t, 0.0, SampleStdDev([]float64{2, 2, 2}))
	assert.InDelta(t, 1.0, SampleStdDev([]float64{1, 2, 3}), 1e-12)
}
