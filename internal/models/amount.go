package models

import "github.com/shopspring/decimal"

const (
	moneyScale = 2
	rateScale  = 3
)

var (
	maxMoney = decimal.New(1, 12)
	maxRate  = decimal.NewFromInt(1000)
)

// ValidMoney проверяет, что сумма помещается в NUMERIC(14,2) без округления.
func ValidMoney(value decimal.Decimal) bool {
	return fitsColumn(value, moneyScale, maxMoney)
}

// ValidRate проверяет, что ставка помещается в NUMERIC(6,3) без округления.
func ValidRate(value decimal.Decimal) bool {
	return fitsColumn(value, rateScale, maxRate)
}

func fitsColumn(value decimal.Decimal, scale int32, limit decimal.Decimal) bool {
	if !value.Equal(value.Round(scale)) {
		return false
	}
	return value.Abs().LessThan(limit)
}
