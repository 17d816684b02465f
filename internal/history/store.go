// Package history accumulates per-asset mid-price series sampled from a
// single reference exchange.
package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// Store is an owned, append-only collection of price series. Appends and
// reads are synchronized so exports may run while sampling continues.
type Store struct {
	mu        sync.RWMutex
	maxPoints int
	order     []string
	series    map[string][]domain.PricePoint
}

// NewStore creates an empty Store. When maxPoints > 0 each series keeps only
// its newest maxPoints entries; otherwise series grow without bound.
func NewStore(maxPoints int) *Store {
	return &Store{
		maxPoints: maxPoints,
		series:    make(map[string][]domain.PricePoint),
	}
}

// Append adds p to the end of asset's series.
func (s *Store) Append(asset string, p domain.PricePoint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pts, ok := s.series[asset]
	if !ok {
		s.order = append(s.order, asset)
	}
	pts = append(pts, p)
	if s.maxPoints > 0 && len(pts) > s.maxPoints {
		pts = append(pts[:0:0], pts[len(pts)-s.maxPoints:]...)
	}
	s.series[asset] = pts
}

// Points returns a copy of asset's series in append order.
func (s *Store) Points(asset string) []domain.PricePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.PricePoint(nil), s.series[asset]...)
}

// Len returns the number of points held for asset.
func (s *Store) Len(asset string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series[asset])
}

// Assets returns every asset with at least one point, in first-append order.
func (s *Store) Assets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Snapshot returns a deep copy of every series.
func (s *Store) Snapshot() map[string][]domain.PricePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]domain.PricePoint, len(s.series))
	for asset, pts := range s.series {
		out[asset] = append([]domain.PricePoint(nil), pts...)
	}
	return out
}

// csvHeader is the first row written by WriteCSV.
var csvHeader = []string{"timestamp", "asset", "mid_price"}

// WriteCSV writes every point as (timestamp, asset, mid_price), grouped by
// asset in first-append order. Timestamps are RFC 3339 in UTC.
func (s *Store) WriteCSV(w io.Writer) error {
	snap := s.Snapshot()
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("history: write header: %w", err)
	}
	for _, asset := range s.Assets() {
		for _, p := range snap[asset] {
			row := []string{
				p.Time.UTC().Format(time.RFC3339),
				asset,
				strconv.FormatFloat(p.MidPrice, 'f', -1, 64),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("history: write row: %w", err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("history: flush: %w", err)
	}
	return nil
}
