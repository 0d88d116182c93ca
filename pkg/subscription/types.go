package subscription

// Status represents the lifecycle state of a subscription record.
type Status string

const (
	// StatusNone marks a fresh account that never engaged the billing flow.
	StatusNone       Status = "none"
	StatusTrialing   Status = "trialing"
	StatusActive     Status = "active"
	StatusPastDue    Status = "past_due"
	StatusCanceled   Status = "canceled"
	StatusIncomplete Status = "incomplete"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNone, StatusTrialing, StatusActive, StatusPastDue, StatusCanceled, StatusIncomplete:
		return true
	}
	return false
}

// paid reports whether the status can only be reached through a real
// provider subscription.
func (s Status) paid() bool {
	switch s {
	case StatusActive, StatusPastDue, StatusCanceled:
		return true
	}
	return false
}

// PlanType represents the billing frequency of a subscription.
type PlanType string

const (
	PlanNone    PlanType = "none"
	PlanMonthly PlanType = "monthly"
	PlanAnnual  PlanType = "annual"
)

// Valid reports whether p is one of the known plan types.
func (p PlanType) Valid() bool {
	switch p {
	case PlanNone, PlanMonthly, PlanAnnual:
		return true
	}
	return false
}

// Money represents a monetary amount in the smallest currency unit.
// For example, EUR 10.99 would be Amount: 1099, Currency: "EUR".
type Money struct {
	Amount   int64  `yaml:"amount" json:"amount"`     // amount in smallest currency unit
	Currency string `yaml:"currency" json:"currency"` // ISO 4217 currency code
}

// AccessState is the derived entitlement decision computed from a record
// snapshot and the current time. It is never persisted or cached beyond the
// snapshot it was computed from.
type AccessState struct {
	Active          bool `json:"active"`
	InTrial         bool `json:"in_trial"`
	RequiresPayment bool `json:"requires_payment"`
}

// CheckoutOptions contains options for creating a checkout session.
type CheckoutOptions struct {
	SuccessURL string // redirect after successful payment
	CancelURL  string // redirect if the customer cancels
	SkipTrial  bool   // start billing immediately, no provider-side trial
}
