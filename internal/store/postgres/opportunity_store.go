package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates a new OpportunityStore backed by the given
// connection pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const oppSelectCols = `id, asset, buy_exchange, ask_price, sell_exchange, bid_price,
	gross_spread, fee_cost, net_profit, detected_at`

// Insert stores a detected opportunity. Re-inserting the same ID is a no-op.
func (s *OpportunityStore) Insert(ctx context.Context, opp domain.ArbOpportunity) error {
	const query = `
		INSERT INTO arb_opportunities (
			id, asset, buy_exchange, ask_price, sell_exchange, bid_price,
			gross_spread, fee_cost, net_profit, detected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`

	_, err := s.pool.Exec(ctx, query,
		opp.ID, opp.Asset, string(opp.BuyExchange), opp.AskPrice,
		string(opp.SellExchange), opp.BidPrice,
		opp.GrossSpread, opp.FeeCost, opp.NetProfit, opp.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// Record satisfies the scanner's sink contract by inserting opp.
func (s *OpportunityStore) Record(ctx context.Context, opp domain.ArbOpportunity) error {
	return s.Insert(ctx, opp)
}

// ListRecent returns the most recent opportunities, newest first.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.ArbOpportunity, error) {
	query := `SELECT ` + oppSelectCols + ` FROM arb_opportunities ORDER BY detected_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	return scanOpportunities(rows)
}

// ListByAsset returns the most recent opportunities for one asset.
func (s *OpportunityStore) ListByAsset(ctx context.Context, asset string, limit int) ([]domain.ArbOpportunity, error) {
	query := `SELECT ` + oppSelectCols + ` FROM arb_opportunities WHERE asset = $1 ORDER BY detected_at DESC`
	args := []any{asset}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities for %s: %w", asset, err)
	}
	return scanOpportunities(rows)
}

func scanOpportunities(rows pgx.Rows) ([]domain.ArbOpportunity, error) {
	defer rows.Close()

	var opps []domain.ArbOpportunity
	for rows.Next() {
		var opp domain.ArbOpportunity
		var buy, sell string
		if err := rows.Scan(
			&opp.ID, &opp.Asset, &buy, &opp.AskPrice, &sell, &opp.BidPrice,
			&opp.GrossSpread, &opp.FeeCost, &opp.NetProfit, &opp.DetectedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		opp.BuyExchange = domain.Exchange(buy)
		opp.SellExchange = domain.Exchange(sell)
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: opportunity rows: %w", err)
	}
	return opps, nil
}

// Compile-time interface check.
var _ domain.OpportunityStore = (*OpportunityStore)(nil)
