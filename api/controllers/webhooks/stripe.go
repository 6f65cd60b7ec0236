package webhooks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/dkowalski/containerdepot-backend/api/responses"
	pkgerrors "github.com/dkowalski/containerdepot-backend/pkg/errors"
	"github.com/dkowalski/containerdepot-backend/pkg/logger"
	"github.com/dkowalski/containerdepot-backend/pkg/metrics"
)

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

type stripeWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type stripeClient interface {
	SigningSecret() string
}

// StripeWebhook verifies and reconciles Stripe payment events. Verified
// deliveries are always acknowledged; handler failures are logged and the
// dedupe mark is released so Stripe's retry can reprocess.
func StripeWebhook(svc StripeWebhookService, client stripeClient, guard stripeWebhookGuard, wm *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || client == nil || guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook pipeline unavailable"))
			return
		}
		if strings.TrimSpace(client.SigningSecret()) == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook signing secret missing"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "stripe signature missing"))
			return
		}

		event, err := webhook.ConstructEvent(payload, sigHeader, client.SigningSecret())
		if err != nil {
			observe(wm, "unknown", "rejected")
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "verify signature"))
			return
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, event.ID)
		if err != nil {
			// Dedupe outage must not drop a verified payment event.
			warn(ctx, logg, fmt.Sprintf("idempotency check failed, processing anyway: %v", err))
			alreadyProcessed = false
		}
		if alreadyProcessed {
			observe(wm, string(event.Type), "duplicate")
			ack(w)
			return
		}

		if err := svc.HandleEvent(ctx, &event); err != nil {
			_ = guard.Delete(ctx, event.ID)
			observe(wm, string(event.Type), "failed")
			if logg != nil {
				logg.Error(ctx, "stripe webhook handler failed", err)
			}
			ack(w)
			return
		}

		observe(wm, string(event.Type), "processed")
		ack(w)
	}
}

func ack(w http.ResponseWriter) {
	responses.WriteSuccess(w, map[string]bool{"received": true})
}

func observe(wm *metrics.WebhookMetrics, eventType, outcome string) {
	if wm == nil {
		return
	}
	wm.Observe(eventType, outcome)
}

func warn(ctx context.Context, logg *logger.Logger, msg string) {
	if logg == nil {
		return
	}
	logg.Warn(ctx, msg)
}
