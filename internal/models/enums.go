package models

import "strings"

// SubmissionStatus is the lifecycle state of a performance submission.
// PENDING is the only non-terminal state; the review pipeline moves a
// submission exactly once into APPROVED or REJECTED.
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "PENDING"
	StatusApproved SubmissionStatus = "APPROVED"
	StatusRejected SubmissionStatus = "REJECTED"
)

// Exchange labels accepted on submissions.
type Exchange string

const (
	ExchangeBinance  Exchange = "BINANCE"
	ExchangeBybit    Exchange = "BYBIT"
	ExchangeCoinbase Exchange = "COINBASE"
	ExchangeKraken   Exchange = "KRAKEN"
	ExchangeOKX      Exchange = "OKX"
	ExchangeOther    Exchange = "OTHER"
)

func ParseExchange(s string) (Exchange, bool) {
	e := Exchange(strings.ToUpper(strings.TrimSpace(s)))
	switch e {
	case ExchangeBinance, ExchangeBybit, ExchangeCoinbase, ExchangeKraken, ExchangeOKX, ExchangeOther:
		return e, true
	}
	return "", false
}

// Window is an enumerated reporting period. The review pipeline only
// publishes into WindowThisMonth; the other windows are populated by
// rollup processes outside this service.
type Window string

const (
	WindowThisMonth   Window = "THIS_MONTH"
	WindowThreeMonths Window = "THREE_MONTHS"
	WindowSixMonths   Window = "SIX_MONTHS"
	WindowYTD         Window = "YTD"
	WindowAllTime     Window = "ALL_TIME"
)

func ParseWindow(s string) (Window, bool) {
	w := Window(strings.ToUpper(strings.TrimSpace(s)))
	switch w {
	case WindowThisMonth, WindowThreeMonths, WindowSixMonths, WindowYTD, WindowAllTime:
		return w, true
	}
	return "", false
}
