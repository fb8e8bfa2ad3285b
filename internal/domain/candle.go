package domain

import (
	"strconv"

	"github.com/CryptoBia/Infinex/pkg/dexmath"
)

// Granularity tags one OHLCV aggregation width.
type Granularity string

const (
	GranularityMinute Granularity = "minute"
	GranularityHour   Granularity = "hour"
	GranularityDay    Granularity = "day"
)

// Granularities lists all chart widths, narrowest first.
var Granularities = []Granularity{GranularityMinute, GranularityHour, GranularityDay}

// WidthMs returns the bucket width in milliseconds.
func (g Granularity) WidthMs() int64 {
	switch g {
	case GranularityMinute:
		return dexmath.MinuteMs
	case GranularityHour:
		return dexmath.HourMs
	case GranularityDay:
		return dexmath.DayMs
	default:
		return 0
	}
}

// Candle is one OHLCV bucket. Only the most recent bucket per
// (pair, granularity) is mutable; sealed buckets are append-only history.
type Candle struct {
	PairID         int32       `gorm:"primaryKey" json:"pair_id"`
	Granularity    Granularity `gorm:"primaryKey" json:"granularity"`
	StartTime      int64       `gorm:"primaryKey" json:"start_time"`
	EndTime        int64       `json:"end_time"`
	Open           uint64      `json:"open"`
	High           uint64      `json:"high"`
	Low            uint64      `json:"low"` // 0 until first trade sets it
	Close          uint64      `json:"close"`
	Quantity       uint64      `json:"qty"`
	Amount         uint64      `json:"amount"`
	Trades         uint32      `json:"trades"`
	LastUpdate     int64       `json:"last_update"`
	OperatorPubKey string      `json:"operator_pub_key"`
	Sig            []byte      `json:"sig"`
}

// SignPayload returns the canonical byte string covered by the operator
// signature on a sealed bucket.
func (c *Candle) SignPayload() []byte {
	return []byte(strconv.Itoa(int(c.PairID)) + string(c.Granularity) +
		strconv.FormatInt(c.StartTime, 10) + strconv.FormatInt(c.EndTime, 10) +
		strconv.FormatUint(c.Open, 10) + strconv.FormatUint(c.High, 10) +
		strconv.FormatUint(c.Low, 10) + strconv.FormatUint(c.Close, 10) +
		strconv.FormatUint(c.Amount, 10) + strconv.FormatUint(c.Quantity, 10) +
		strconv.Itoa(int(c.Trades)) + strconv.FormatInt(c.LastUpdate, 10) +
		c.OperatorPubKey)
}
