package model

import "time"

// NetWorthSnapshot is one day of the user's net-worth history, built by
// replaying every asset's ledger as of the snapshot date. Daily flows cover
// only transactions stamped on that exact date.
type NetWorthSnapshot struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	SnapshotDate       time.Time `json:"timestamp"`
	GrossTotal         float64   `json:"grossTotal"`
	InvestedTotal      float64   `json:"investedTotal"`
	DailyContributions float64   `json:"dailyContributions"`
	DailyWithdrawals   float64   `json:"dailyWithdrawals"`
}

// Quote is the last known market price for a ticker.
type Quote struct {
	Ticker string    `json:"ticker"`
	Price  float64   `json:"price"`
	AsOf   time.Time `json:"asOf"`
}

// IndexRate is one business-day entry of a reference-index series, expressed
// as an annual percentage rate.
type IndexRate struct {
	Reference  ReferenceIndex `json:"reference"`
	Date       time.Time      `json:"date"`
	AnnualRate float64        `json:"annualRate"`
}
