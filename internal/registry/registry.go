// Package registry holds the static, read-only mapping from asset pairs to the
// exchanges that list them, and the per-exchange taker fee table.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alanyoungcy/spreadwatch/internal/config"
	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// Source is one exchange listing of an asset.
type Source struct {
	Exchange domain.Exchange
	Symbol   string
}

// Sources maps asset pairs to their exchange listings. It is built once at
// startup and never mutated, so it is safe for concurrent reads.
type Sources struct {
	order  []string
	assets map[string][]Source
}

// NewSources builds a registry from asset → exchange name → native symbol.
// Each asset's sources are kept in canonical exchange order. Empty symbols and
// unknown exchanges are rejected.
func NewSources(pairs []string, symbols map[string]map[string]string) (*Sources, error) {
	s := &Sources{assets: make(map[string][]Source, len(pairs))}
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if _, dup := s.assets[pair]; dup {
			return nil, fmt.Errorf("registry: duplicate asset %q", pair)
		}
		var list []Source
		for name, sym := range symbols[pair] {
			ex, err := domain.ParseExchange(name)
			if err != nil {
				return nil, fmt.Errorf("registry: asset %s: %w", pair, err)
			}
			sym = strings.TrimSpace(sym)
			if sym == "" {
				return nil, fmt.Errorf("registry: asset %s: empty symbol for %s", pair, ex)
			}
			list = append(list, Source{Exchange: ex, Symbol: sym})
		}
		sort.Slice(list, func(i, j int) bool {
			return list[i].Exchange.Rank() < list[j].Exchange.Rank()
		})
		s.order = append(s.order, pair)
		s.assets[pair] = list
	}
	return s, nil
}

// FromConfig builds the registry from the [[assets]] section.
func FromConfig(assets []config.AssetConfig) (*Sources, error) {
	pairs := make([]string, 0, len(assets))
	symbols := make(map[string]map[string]string, len(assets))
	for _, a := range assets {
		pair := strings.TrimSpace(a.Pair)
		pairs = append(pairs, pair)
		symbols[pair] = a.Symbols
	}
	return NewSources(pairs, symbols)
}

// Assets returns every configured pair in declaration order.
func (s *Sources) Assets() []string {
	return append([]string(nil), s.order...)
}

// Has reports whether the asset is configured.
func (s *Sources) Has(asset string) bool {
	_, ok := s.assets[asset]
	return ok
}

// Lookup returns the listings of an asset. An unknown asset, or one with no
// listings, yields nil.
func (s *Sources) Lookup(asset string) []Source {
	list := s.assets[asset]
	if len(list) == 0 {
		return nil
	}
	return append([]Source(nil), list...)
}

// Symbol returns the native symbol of asset on ex.
func (s *Sources) Symbol(asset string, ex domain.Exchange) (string, bool) {
	for _, src := range s.assets[asset] {
		if src.Exchange == ex {
			return src.Symbol, true
		}
	}
	return "", false
}

// Fees maps exchanges to taker fee fractions. Exchanges absent from the table
// trade at zero fee.
type Fees map[domain.Exchange]float64

// NewFees resolves a name-keyed fee map. Rates must satisfy 0 <= fee < 1.
func NewFees(raw map[string]float64) (Fees, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	fees := make(Fees, len(raw))
	for _, name := range names {
		ex, err := domain.ParseExchange(name)
		if err != nil {
			return nil, fmt.Errorf("registry: fees: %w", err)
		}
		rate := raw[name]
		if !(rate >= 0 && rate < 1) {
			return nil, fmt.Errorf("registry: fees: %s rate %g outside [0, 1)", ex, rate)
		}
		fees[ex] = rate
	}
	return fees, nil
}

// Rate returns the taker fee of ex, or 0 when unlisted.
func (f Fees) Rate(ex domain.Exchange) float64 {
	return f[ex]
}
