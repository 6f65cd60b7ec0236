package stripewebhook

import (
	"context"
	"errors"

	"github.com/dkowalski/containerdepot-backend/pkg/outbox/idempotency"
)

// ConsumerName scopes the Redis dedupe keys for this webhook.
const ConsumerName = "stripe-webhook"

type processedMarker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer, eventID string) (bool, error)
	Delete(ctx context.Context, consumer, eventID string) error
}

// Guard deduplicates Stripe event deliveries by event id.
type Guard struct {
	marker processedMarker
}

func NewGuard(manager *idempotency.Manager) (*Guard, error) {
	if manager == nil {
		return nil, errors.New("idempotency manager is required")
	}
	return &Guard{marker: manager}, nil
}

// CheckAndMark reports whether the event was already processed, marking
// it as processed otherwise.
func (g *Guard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	return g.marker.CheckAndMarkProcessed(ctx, ConsumerName, eventID)
}

// Delete releases the processed mark so a provider retry can reprocess.
func (g *Guard) Delete(ctx context.Context, eventID string) error {
	return g.marker.Delete(ctx, ConsumerName, eventID)
}
