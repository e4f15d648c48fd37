package analytics

import (
	"math"

	"github.com/aristath/bankdash/internal/domain"
	"github.com/markcheno/go-talib"
)

// DefaultTrendPeriod is the moving average window in days.
const DefaultTrendPeriod = 7

// TrendPoint is the moving average of daily total amounts ending at Step.
type TrendPoint struct {
	Step  domain.FlexString `json:"step"`
	Value float64           `json:"value"`
}

// MovingAverage computes the simple moving average of daily totals, in input order.
// Series shorter than period yield an empty trend.
func MovingAverage(days []domain.DailyStat, period int) []TrendPoint {
	if period <= 0 {
		period = DefaultTrendPeriod
	}
	if len(days) < period {
		return []TrendPoint{}
	}

	totals := make([]float64, len(days))
	for i, d := range days {
		totals[i] = d.TotalAmount.Float()
	}

	var sma []float64
	if period == 1 {
		sma = totals
	} else {
		sma = talib.Sma(totals, period)
	}

	points := make([]TrendPoint, 0, len(days)-period+1)
	for i := period - 1; i < len(sma); i++ {
		if math.IsNaN(sma[i]) {
			continue
		}
		points = append(points, TrendPoint{Step: days[i].Step, Value: sma[i]})
	}
	return points
}
