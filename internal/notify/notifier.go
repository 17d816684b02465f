// Package notify sends opportunity alerts to chat channels. Alerts are
// filtered by event type so operators receive only what they subscribed to.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alanyoungcy/spreadwatch/internal/config"
	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// EventArbDetected is the event type of opportunity alerts.
const EventArbDetected = "arb_detected"

// Sender is implemented by each notification channel.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Notifier dispatches notifications to every Sender. Notify forwards only
// allowed event types; an empty allow list admits everything.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier over senders.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		if e = strings.TrimSpace(e); e != "" {
			allowed[e] = true
		}
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// FromConfig builds a Notifier with a sender for every configured channel.
// It reports false when no channel is configured.
func FromConfig(cfg config.NotifyConfig, logger *slog.Logger) (*Notifier, bool) {
	var senders []Sender
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		senders = append(senders, NewTelegramSender(cfg.TelegramToken, cfg.TelegramChatID))
	}
	if cfg.DiscordWebhookURL != "" {
		senders = append(senders, NewDiscordSender(cfg.DiscordWebhookURL))
	}
	if len(senders) == 0 {
		return nil, false
	}
	return NewNotifier(senders, cfg.Events, logger), true
}

// Notify sends to all senders if event is allowed.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out", slog.String("event", event))
		return nil
	}
	return n.dispatch(ctx, title, message)
}

// Record alerts on a detected opportunity.
func (n *Notifier) Record(ctx context.Context, opp domain.ArbOpportunity) error {
	return n.Notify(ctx, EventArbDetected, OpportunityTitle(opp), OpportunityMessage(opp))
}

// OpportunityTitle is the one-line headline of an opportunity alert.
func OpportunityTitle(opp domain.ArbOpportunity) string {
	return fmt.Sprintf("Arbitrage %s: net $%.4f", opp.Asset, opp.NetProfit)
}

// OpportunityMessage describes both legs and the fee cost.
func OpportunityMessage(opp domain.ArbOpportunity) string {
	return fmt.Sprintf("Buy on %s at %.4f\nSell on %s at %.4f\nGross %.4f, fees %.4f",
		opp.BuyExchange, opp.AskPrice, opp.SellExchange, opp.BidPrice, opp.GrossSpread, opp.FeeCost)
}

// dispatch delivers to every sender. One sender's failure does not stop the
// others; all failures are joined into the returned error.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	var errs []error
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "notification sent",
			slog.String("sender", s.Name()),
			slog.String("title", title),
		)
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %w", len(errs), errors.Join(errs...))
	}
	return nil
}
