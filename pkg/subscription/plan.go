package subscription

import "time"

// Plan describes a purchasable subscription plan. The ID field must be set
// to the payment provider's price ID so checkout sessions and webhook events
// can be mapped back to a plan without a separate lookup table.
type Plan struct {
	ID         string   `yaml:"id" json:"id"` // provider's price ID (e.g. price_monthly_eur)
	Name       string   `yaml:"name" json:"name"`
	Type       PlanType `yaml:"type" json:"type"`
	Price      Money    `yaml:"price" json:"price"`
	TrialHours int      `yaml:"trial_hours" json:"trial_hours"` // provider-side trial length, 0 disables
	Public     bool     `yaml:"public" json:"public"`           // available for self-service signup
}

// TrialDays returns the provider-side trial length in whole days, rounded
// up. Billing providers configure trials at day granularity.
func (p Plan) TrialDays() int64 {
	if p.TrialHours <= 0 {
		return 0
	}
	return int64((time.Duration(p.TrialHours)*time.Hour + 24*time.Hour - 1) / (24 * time.Hour))
}
