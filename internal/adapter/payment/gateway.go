package payment

import "context"

// Intent is the gateway-side handle for a payment in progress.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
}

// Gateway abstracts the external payment provider so the service layer can be
// tested against a fake and the provider swapped without touching callers.
type Gateway interface {
	CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
	Refund(ctx context.Context, intentID string) (string, error)
}

// Gateway statuses the service layer interprets.
const (
	IntentStatusSucceeded = "succeeded"
	IntentStatusCanceled  = "canceled"
)
