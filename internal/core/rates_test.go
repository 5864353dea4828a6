package core

import "testing"

func TestApproxUSD(t *testing.T) {
	amounts := []CurrencyAmount{
		{Currency: EGP, Amount: Money{Cents: 10000}}, // 100 EGP -> 3.20 USD
		{Currency: USD, Amount: Money{Cents: 1000}},  // 10 USD
	}
	got := ApproxUSD(amounts)
	if got.Cents != 1320 {
		t.Errorf("ApproxUSD = %d cents, want 1320", got.Cents)
	}
}

func TestApproxUSDUnknownCurrencyPassesThrough(t *testing.T) {
	got := ApproxUSD([]CurrencyAmount{{Currency: "XXX", Amount: Money{Cents: 500}}})
	if got.Cents != 500 {
		t.Errorf("ApproxUSD unknown = %d cents, want 500", got.Cents)
	}
}

func TestApproxEGP(t *testing.T) {
	if got := ApproxEGP(Money{Cents: 12345}, EGP); got.Cents != 12345 {
		t.Errorf("EGP passthrough = %d, want 12345", got.Cents)
	}
	// 10 USD at 31.25 EGP/USD = 312.50 EGP
	if got := ApproxEGP(Money{Cents: 1000}, USD); got.Cents != 31250 {
		t.Errorf("USD conversion = %d, want 31250", got.Cents)
	}
	// VISA is USD-pegged
	if got := ApproxEGP(Money{Cents: 1000}, VISA); got.Cents != 31250 {
		t.Errorf("VISA conversion = %d, want 31250", got.Cents)
	}
}
