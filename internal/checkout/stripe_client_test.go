package checkout

import (
	"context"
	"testing"

	"github.com/dkowalski/containerdepot-backend/pkg/config"
	pkgstripe "github.com/dkowalski/containerdepot-backend/pkg/stripe"
)

func TestNewStripeClientWrapsConfiguredClient(t *testing.T) {
	pkgClient, err := pkgstripe.NewClient(context.Background(), config.StripeConfig{
		APIKey: "sk_test_wrapper",
		Secret: "whsec_wrapper",
		Env:    "test",
	}, nil)
	if err != nil {
		t.Fatalf("stripe client: %v", err)
	}

	sessionClient := NewStripeClient(pkgClient)
	if sessionClient == nil {
		t.Fatal("configured client must yield a session client")
	}
	wrapper, ok := sessionClient.(*stripeClientWrapper)
	if !ok {
		t.Fatalf("unexpected implementation %T", sessionClient)
	}
	if wrapper.api != pkgClient.API() {
		t.Fatal("wrapper must hold the injected api client")
	}
}

func TestNewStripeClientRejectsNil(t *testing.T) {
	if c := NewStripeClient(nil); c != nil {
		t.Fatalf("nil client must yield nil, got %T", c)
	}
}
