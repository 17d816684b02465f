// Package report renders quote and arbitrage results for people and appends
// detected opportunities to a CSV log.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// TimestampLayout is the layout of the CSV log's first column.
const TimestampLayout = "2006-01-02 15:04:05"

// CSVLog appends one row per opportunity to a file:
// timestamp, asset, buy exchange, ask, sell exchange, bid, net profit.
// The file is opened per write so external rotation is tolerated.
type CSVLog struct {
	mu   sync.Mutex
	path string
}

// NewCSVLog returns a log that appends to path, creating it on first write.
func NewCSVLog(path string) *CSVLog {
	return &CSVLog{path: path}
}

// Record appends opp. Opportunities with a non-positive net profit are not
// logged.
func (l *CSVLog) Record(_ context.Context, opp domain.ArbOpportunity) error {
	if !(opp.NetProfit > 0) {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("report: open csv log: %w", err)
	}
	w := csv.NewWriter(f)
	werr := w.Write(csvRow(opp))
	w.Flush()
	if werr == nil {
		werr = w.Error()
	}
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("report: write csv log: %w", werr)
	}
	if cerr != nil {
		return fmt.Errorf("report: close csv log: %w", cerr)
	}
	return nil
}

func csvRow(opp domain.ArbOpportunity) []string {
	return []string{
		opp.DetectedAt.Format(TimestampLayout),
		opp.Asset,
		string(opp.BuyExchange),
		strconv.FormatFloat(opp.AskPrice, 'f', -1, 64),
		string(opp.SellExchange),
		strconv.FormatFloat(opp.BidPrice, 'f', -1, 64),
		strconv.FormatFloat(opp.NetProfit, 'f', -1, 64),
	}
}
