package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// streamMaxLen is the approximate maximum length for Redis streams, enforced
// via XADD MAXLEN ~.
const streamMaxLen int64 = 10000

const (
	// OpportunityChannel carries every detected opportunity over Pub/Sub.
	OpportunityChannel = "arb"
	// OpportunityStream keeps a trimmed, durable copy of the same events.
	OpportunityStream = "arb:opportunities"
)

// SignalBus implements domain.SignalBus using Redis Pub/Sub for ephemeral
// messaging and Redis Streams for durable, ordered delivery.
type SignalBus struct {
	rdb *redis.Client
}

// NewSignalBus creates a SignalBus backed by the given Client.
func NewSignalBus(c *Client) *SignalBus {
	return &SignalBus{rdb: c.Underlying()}
}

// Publish sends a raw byte payload to a Redis Pub/Sub channel.
func (sb *SignalBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := sb.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", channel, err)
	}
	return nil
}

// StreamAppend appends a payload to a Redis stream using XADD with an
// approximate MAXLEN of 10,000 entries.
func (sb *SignalBus) StreamAppend(ctx context.Context, stream string, payload []byte) error {
	args := &redis.XAddArgs{
		Stream: stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"payload": payload,
		},
	}
	if err := sb.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("redis: stream append %s: %w", stream, err)
	}
	return nil
}

// opportunityEvent is the payload published for each opportunity.
type opportunityEvent struct {
	Event string `json:"event"`
	domain.ArbOpportunity
}

func encodeOpportunity(opp domain.ArbOpportunity) ([]byte, error) {
	return json.Marshal(opportunityEvent{Event: "arb_detected", ArbOpportunity: opp})
}

// OpportunitySink publishes opportunities to OpportunityChannel and appends
// them to OpportunityStream.
type OpportunitySink struct {
	bus domain.SignalBus
}

// NewOpportunitySink creates a sink publishing through bus.
func NewOpportunitySink(bus domain.SignalBus) *OpportunitySink {
	return &OpportunitySink{bus: bus}
}

// Record publishes opp. The stream append is attempted even if the publish
// fails; the first error is returned.
func (s *OpportunitySink) Record(ctx context.Context, opp domain.ArbOpportunity) error {
	payload, err := encodeOpportunity(opp)
	if err != nil {
		return fmt.Errorf("redis: encode opportunity: %w", err)
	}
	pubErr := s.bus.Publish(ctx, OpportunityChannel, payload)
	streamErr := s.bus.StreamAppend(ctx, OpportunityStream, payload)
	if pubErr != nil {
		return pubErr
	}
	return streamErr
}

// Compile-time interface check.
var _ domain.SignalBus = (*SignalBus)(nil)
