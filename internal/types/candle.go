package types

import (
	"time"

	"github.com/rxtech-lab/argo-guard/pkg/errors"
)

// Candle is one OHLCV bar for a fixed time bucket.
type Candle struct {
	Time   time.Time `csv:"time" json:"time" yaml:"time"`
	Symbol string    `csv:"symbol" json:"symbol" yaml:"symbol"`
	Open   float64   `csv:"open" json:"open" yaml:"open"`
	High   float64   `csv:"high" json:"high" yaml:"high"`
	Low    float64   `csv:"low" json:"low" yaml:"low"`
	Close  float64   `csv:"close" json:"close" yaml:"close"`
	Volume float64   `csv:"volume" json:"volume" yaml:"volume"`
}

type Timeframe string

const (
	Timeframe1m  Timeframe = "1m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe30m Timeframe = "30m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe6h  Timeframe = "6h"
	Timeframe8h  Timeframe = "8h"
	Timeframe12h Timeframe = "12h"
	Timeframe1d  Timeframe = "1d"
	Timeframe1w  Timeframe = "1w"
)

// AllTimeframes lists the supported timeframes, used for schema enums and CLI help.
var AllTimeframes = []any{
	Timeframe1m, Timeframe5m, Timeframe15m, Timeframe30m,
	Timeframe1h, Timeframe4h, Timeframe6h, Timeframe8h, Timeframe12h,
	Timeframe1d, Timeframe1w,
}

// Duration returns the expected interval between two consecutive candles.
func (t Timeframe) Duration() (time.Duration, error) {
	var minutes int

	switch t {
	case Timeframe1m:
		minutes = 1
	case Timeframe5m:
		minutes = 5
	case Timeframe15m:
		minutes = 15
	case Timeframe30m:
		minutes = 30
	case Timeframe1h:
		minutes = 60
	case Timeframe4h:
		minutes = 240
	case Timeframe6h:
		minutes = 360
	case Timeframe8h:
		minutes = 480
	case Timeframe12h:
		minutes = 720
	case Timeframe1d:
		minutes = 1440
	case Timeframe1w:
		minutes = 10080
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe: %q", string(t))
	}

	return time.Duration(minutes) * time.Minute, nil
}
