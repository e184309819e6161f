package model

import "fmt"

// Plan identifies a subscription plan with a known token quota.
type Plan string

// Known plans. Custom derives its ceiling from historical peak usage
// instead of a static table.
const (
	PlanPro    Plan = "pro"
	PlanMax5   Plan = "max5"
	PlanMax20  Plan = "max20"
	PlanCustom Plan = "custom"
)

// ParsePlan validates a plan name supplied by a flag, config file, or
// query parameter.
func ParsePlan(s string) (Plan, error) {
	switch Plan(s) {
	case PlanPro, PlanMax5, PlanMax20, PlanCustom:
		return Plan(s), nil
	}
	return "", fmt.Errorf("unknown plan %q (valid: pro, max5, max20, custom)", s)
}

func (p Plan) String() string { return string(p) }
