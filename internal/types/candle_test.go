package types

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestTimeframeDuration(t *testing.T) {
	tests := []struct {
		timeframe Timeframe
		expected  time.Duration
	}{
		{Timeframe1m, time.Minute},
		{Timeframe15m, 15 * time.Minute},
		{Timeframe1h, time.Hour},
		{Timeframe4h, 4 * time.Hour},
		{Timeframe1d, 24 * time.Hour},
		{Timeframe1w, 7 * 24 * time.Hour},
	}

	for _, tc := range tests {
		t.Run(string(tc.timeframe), func(t *testing.T) {
			d, err := tc.timeframe.Duration()
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, d)
		})
	}
}

func TestTimeframeDurationUnknown(t *testing.T) {
	_, err := Timeframe("3d").Duration()
	assert.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidTimeframe))
	assert.True(t, errors.IsValidationError(err))
}

func TestAllTimeframesResolve(t *testing.T) {
	for _, tf := range AllTimeframes {
		_, err := tf.(Timeframe).Duration()
		assert.NoError(t, err, "timeframe %v", tf)
	}
}
