package marketdata

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatVolume renders a traded volume compactly: 1.2M, 3.4K, or the raw count.
// A zero volume renders as "---".
func FormatVolume(volume int64) string {
	switch {
	case volume <= 0:
		return "---"
	case volume >= 1_000_000:
		return decimal.New(volume, -6).StringFixed(1) + "M"
	case volume >= 1_000:
		return decimal.New(volume, -3).StringFixed(1) + "K"
	default:
		return strconv.FormatInt(volume, 10)
	}
}
