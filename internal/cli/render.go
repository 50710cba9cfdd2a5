package cli

import (
	"fmt"
	"strings"

	"github.com/aristath/etfcast/internal/modules/catalog"
	"github.com/aristath/etfcast/internal/modules/marketdata"
	"github.com/aristath/etfcast/internal/modules/projection"
	"github.com/aristath/etfcast/pkg/currency"
)

// InstrumentsMarkdown renders the catalog grouped by instrument type.
func InstrumentsMarkdown(types []catalog.InstrumentType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Instruments\n\n")

	for _, t := range types {
		fmt.Fprintf(&b, "## %s\n\n", t.Name)
		if t.FallbackGrowth != nil {
			fmt.Fprintf(&b, "Fallback growth: %.1f%%\n\n", *t.FallbackGrowth)
		}
		fmt.Fprintln(&b, "| Symbol | Name | Description |")
		fmt.Fprintln(&b, "|:---|:---|:---|")
		for _, inst := range t.Instruments {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", inst.Symbol, inst.Name, inst.Description)
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}

// OverviewMarkdown renders the market summary and growth of one instrument.
func OverviewMarkdown(ov *marketdata.Overview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", ov.Symbol)
	if ov.Name != "" {
		fmt.Fprintf(&b, "%s (%s)\n\n", ov.Name, ov.Type)
	}

	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Price | %s |\n", currency.Format(ov.Price, "USD"))
	fmt.Fprintf(&b, "| Volume | %s |\n", ov.Volume)
	if ov.InceptionDate != "" {
		fmt.Fprintf(&b, "| Inception | %s (%d years) |\n", ov.InceptionDate, ov.Years)
	}
	fmt.Fprintf(&b, "| Raw CAGR | %.2f%% |\n", ov.Growth.RawGrowthPercent)
	fmt.Fprintf(&b, "| Corrected growth | %.2f%% |\n", ov.Growth.AnnualGrowthPercent)
	fmt.Fprintf(&b, "| Default growth | %.2f%% |\n", ov.Growth.DefaultGrowthRatePercent)
	fmt.Fprintf(&b, "| Simulation growth | %.2f%% |\n", ov.SimulationGrowthRate)
	return b.String()
}

// SimulationMarkdown renders the percentile table of a simulation.
func SimulationMarkdown(symbol string, growth float64, r *projection.SimulationResult) string {
	var b strings.Builder
	p := r.Parameters
	fmt.Fprintf(&b, "# Simulation: %s\n\n", symbol)
	fmt.Fprintf(&b, "%s monthly for %d years, %d paths. Annual growth %.2f%%, monthly mean %.4f%%, volatility %.4f%%.\n\n",
		currency.Format(p.MonthlyDeposit, "USD"), p.YearsToInvest, p.PathCount, growth, p.MeanReturn*100, p.Volatility*100)

	deposited := p.MonthlyDeposit * float64(p.Months())
	fmt.Fprintln(&b, "| Outcome | Final value | Gain |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	rows := []struct {
		label string
		value float64
	}{
		{"Worst", r.Percentiles.Worst},
		{"10th percentile", r.Percentiles.P10},
		{"25th percentile", r.Percentiles.P25},
		{"Median", r.Percentiles.Median},
		{"75th percentile", r.Percentiles.P75},
		{"90th percentile", r.Percentiles.P90},
		{"Best", r.Percentiles.Best},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", row.label, currency.Format(row.value, "USD"), currency.Format(row.value-deposited, "USD"))
	}
	fmt.Fprintf(&b, "\nTotal deposited: %s\n", currency.Format(deposited, "USD"))
	return b.String()
}

// CurveMarkdown renders the yearly fixed-rate projection.
func CurveMarkdown(points []projection.ProjectionPoint, code string, growth, inflationAdjusted float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Projection at %.2f%% per year\n\n", growth)

	fmt.Fprintln(&b, "| Year | Deposits | Interest | Total |")
	fmt.Fprintln(&b, "|---:|---:|---:|---:|")
	for _, pt := range points[1:] {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
			pt.Year,
			currency.Format(pt.DepositComponent, code),
			currency.Format(pt.InterestComponent, code),
			currency.Format(pt.TotalValue, code),
		)
	}

	final := points[len(points)-1]
	fmt.Fprintf(&b, "\nFinal value %s, %s in today's money.\n", currency.Format(final.TotalValue, code), currency.Format(inflationAdjusted, code))
	return b.String()
}
