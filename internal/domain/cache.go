package domain

import "context"

// QuoteCache keeps the latest valid quote per asset and exchange.
type QuoteCache interface {
	SetQuote(ctx context.Context, q Quote) error
	GetQuote(ctx context.Context, asset string, ex Exchange) (Quote, error)
}

// SignalBus provides pub/sub and durable streams for opportunity events.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	StreamAppend(ctx context.Context, stream string, payload []byte) error
}
