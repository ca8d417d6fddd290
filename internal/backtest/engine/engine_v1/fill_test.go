package engine

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestFillPrices(t *testing.T) {
	assert.InDelta(t, 100.0, entryFillPrice(100, 0, 0), 1e-12)
	assert.InDelta(t, 100*1.0002*1.0005, entryFillPrice(100, 0.0002, 0.0005), 1e-12)
	assert.InDelta(t, 100*0.9998*0.9995, exitFillPrice(100, 0.0002, 0.0005), 1e-12)
	assert.Greater(t, entryFillPrice(50, 0.001, 0.001), exitFillPrice(50, 0.001, 0.001))
}

func TestProtectiveExit(t *testing.T) {
	protected := types.Position{
		Symbol:     "AAPL",
		Quantity:   1,
		EntryPrice: 100,
		StopLoss:   optional.Some(95.0),
		TakeProfit: optional.Some(110.0),
	}

	tests := []struct {
		name      string
		position  types.Position
		candle    types.Candle
		triggered bool
		level     float64
		reason    string
	}{
		{
			name:      "inside range",
			position:  protected,
			candle:    types.Candle{Open: 100, High: 105, Low: 96, Close: 101},
			triggered: false,
		},
		{
			name:      "stop touched",
			position:  protected,
			candle:    types.Candle{Open: 100, High: 101, Low: 95, Close: 96},
			triggered: true,
			level:     95,
			reason:    types.ExitReasonStopLoss,
		},
		{
			name:      "target touched",
			position:  protected,
			candle:    types.Candle{Open: 105, High: 110, Low: 104, Close: 109},
			triggered: true,
			level:     110,
			reason:    types.ExitReasonTakeProfit,
		},
		{
			name:      "both in one bar, stop wins",
			position:  protected,
			candle:    types.Candle{Open: 100, High: 115, Low: 90, Close: 100},
			triggered: true,
			level:     95,
			reason:    types.ExitReasonStopLoss,
		},
		{
			name:      "gap down through stop",
			position:  protected,
			candle:    types.Candle{Open: 92, High: 93, Low: 91, Close: 92},
			triggered: true,
			level:     92,
			reason:    types.ExitReasonStopLoss,
		},
		{
			name:      "gap up through target",
			position:  protected,
			candle:    types.Candle{Open: 112, High: 113, Low: 111, Close: 112},
			triggered: true,
			level:     112,
			reason:    types.ExitReasonTakeProfit,
		},
		{
			name:      "no levels",
			position:  types.Position{Symbol: "AAPL", Quantity: 1, EntryPrice: 100},
			candle:    types.Candle{Open: 100, High: 200, Low: 1, Close: 100},
			triggered: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			level, reason, triggered := protectiveExit(tc.position, tc.candle)
			assert.Equal(t, tc.triggered, triggered)

			if tc.triggered {
				assert.Equal(t, tc.level, level)
				assert.Equal(t, tc.reason, reason)
			}
		})
	}
}
