package clientdata

import "time"

// TTL constants for different data types.
const (
	TTLPriceHistory = 24 * time.Hour   // monthly closes only move once a day
	TTLQuote        = 15 * time.Minute // price and volume
	TTLExchangeRate = time.Hour

	// StaleRetention is how long expired rows are kept as fallback data.
	StaleRetention = 30 * 24 * time.Hour
)
