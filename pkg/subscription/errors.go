package subscription

import "errors"

var (
	ErrRecordNotFound = errors.New("subscription record not found")
	ErrInvalidRecord  = errors.New("invalid subscription record")

	ErrTrialAlreadyUsed          = errors.New("trial period already used for this account")
	ErrSubscriptionAlreadyExists = errors.New("subscription already exists")
	ErrNoBillingAccount          = errors.New("no billing account associated with this user")

	ErrPlanNotFound             = errors.New("subscription plan not found")
	ErrInvalidPlanConfiguration = errors.New("invalid subscription plan configuration")
	ErrFailedToLoadPlans        = errors.New("failed to load subscription plans")

	ErrFeedClosed = errors.New("subscription feed is closed")

	// Provider-specific errors
	ErrMissingAPIKey             = errors.New("billing provider API key is required")
	ErrMissingWebhookSecret      = errors.New("billing provider webhook secret is required")
	ErrWebhookVerificationFailed = errors.New("webhook signature verification failed")
	ErrUnknownWebhookUser        = errors.New("webhook event carries no resolvable user ID")
	ErrNoCheckoutURL             = errors.New("no checkout URL returned from provider")
	ErrNoPortalURL               = errors.New("no portal URL returned from provider")
)
