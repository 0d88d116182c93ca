package subscription

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PlansSource defines how plans are loaded into the subscription service.
type PlansSource interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// YAMLPlansSource loads the plan catalog from a YAML file. The file holds a
// list of plans; the map key is derived from each plan's price ID.
//
// Example file:
//
//	plans:
//	  - id: price_monthly_eur
//	    name: Monthly
//	    type: monthly
//	    price: { amount: 999, currency: EUR }
//	    trial_hours: 48
//	    public: true
type YAMLPlansSource struct {
	path string
}

// NewYAMLPlansSource creates a plans source reading from the given path.
func NewYAMLPlansSource(path string) *YAMLPlansSource {
	return &YAMLPlansSource{path: path}
}

// Load reads and parses the plan catalog.
func (s *YAMLPlansSource) Load(ctx context.Context) (map[string]Plan, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	var doc struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	plans := make(map[string]Plan, len(doc.Plans))
	for _, plan := range doc.Plans {
		plans[plan.ID] = plan
	}
	return plans, nil
}

// StaticPlansSource serves a fixed plan catalog. Useful in tests and for
// deployments that compile the catalog in.
type StaticPlansSource map[string]Plan

func (s StaticPlansSource) Load(ctx context.Context) (map[string]Plan, error) {
	return s, nil
}

// validatePlans ensures plan configurations are internally consistent.
// Catches configuration mistakes at startup instead of mid-checkout.
func validatePlans(plans map[string]Plan) error {
	for planID, plan := range plans {
		if plan.ID != planID {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan ID mismatch: map key %s != plan.ID %s", planID, plan.ID))
		}
		if !plan.Type.Valid() || plan.Type == PlanNone {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has invalid type %q", planID, plan.Type))
		}
		if plan.TrialHours < 0 {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has negative trial hours: %d", planID, plan.TrialHours))
		}
	}
	return nil
}
