package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// Band classifies how wide a spread is.
type Band string

const (
	BandTight    Band = "tight"
	BandModerate Band = "moderate"
	BandWide     Band = "wide"
)

// SpreadBand returns tight below 0.1, moderate below 1 and wide otherwise.
func SpreadBand(spread float64) Band {
	switch {
	case spread < 0.1:
		return BandTight
	case spread < 1:
		return BandModerate
	default:
		return BandWide
	}
}

// NoOpportunities is printed when a summary has nothing to show.
const NoOpportunities = "No net arbitrage opportunities found."

var numbers = message.NewPrinter(language.English)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// WriteSpreadTable renders one asset's spread table.
func WriteSpreadTable(w io.Writer, asset string, rows []domain.SpreadRow) error {
	if _, err := fmt.Fprintf(w, "\n%s price comparison\n", asset); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no quotes available")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "EXCHANGE\tBUY (ASK)\tSELL (BID)\tSPREAD\tBAND")
	for _, r := range rows {
		numbers.Fprintf(tw, "%s\t%.5f\t%.5f\t%.4f\t%s\n",
			r.Exchange, r.Ask, r.Bid, r.Spread, SpreadBand(r.Spread))
	}
	return tw.Flush()
}

// WriteArbitrageSummary renders the net arbitrage table, or NoOpportunities
// when opps is empty.
func WriteArbitrageSummary(w io.Writer, opps []domain.ArbOpportunity) error {
	if _, err := fmt.Fprintln(w, "\nNet arbitrage opportunities (after fees):"); err != nil {
		return err
	}
	if len(opps) == 0 {
		_, err := fmt.Fprintln(w, NoOpportunities)
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ASSET\tBUY @\tASK\tSELL @\tBID\tNET $\tBAND")
	for _, o := range opps {
		numbers.Fprintf(tw, "%s\t%s\t%.4f\t%s\t%.4f\t%.4f\t%s\n",
			o.Asset, o.BuyExchange, o.AskPrice, o.SellExchange, o.BidPrice, o.NetProfit, SpreadBand(o.NetProfit))
	}
	return tw.Flush()
}

// WriteHistorySummary renders the number of points and the latest mid price
// of each series.
func WriteHistorySummary(w io.Writer, reference domain.Exchange, series map[string][]domain.PricePoint, assets []string) error {
	if _, err := fmt.Fprintf(w, "\n%s mid-price history\n", reference); err != nil {
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ASSET\tPOINTS\tFIRST\tLAST\tLATEST MID")
	for _, asset := range assets {
		pts := series[asset]
		if len(pts) == 0 {
			fmt.Fprintf(tw, "%s\t0\t-\t-\t-\n", asset)
			continue
		}
		first, last := pts[0], pts[len(pts)-1]
		numbers.Fprintf(tw, "%s\t%d\t%s\t%s\t%.5f\n", asset, len(pts),
			first.Time.Format("15:04:05"), last.Time.Format("15:04:05"), last.MidPrice)
	}
	return tw.Flush()
}
