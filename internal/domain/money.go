package domain

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits kept for balances and amounts.
const MoneyScale int32 = 2

// RoundMoney rounds d to MoneyScale digits using round-half-to-even.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(MoneyScale)
}

// ZeroMoney returns 0.00.
func ZeroMoney() decimal.Decimal {
	return decimal.New(0, -MoneyScale)
}

// HasMoneyScale reports whether d has no more than MoneyScale significant fractional digits.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}
