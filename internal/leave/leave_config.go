package leave

import (
	"context"

	"nia-hrms/internal/employee"
)

// ConfigProvider supplies the active rule set per employment category.
// Absence of a rule is a valid "not entitled" signal; only the
// leave-without-pay family bypasses rule lookup.
type ConfigProvider struct {
	repo ConfigRepository
}

func NewConfigProvider(repo ConfigRepository) *ConfigProvider {
	return &ConfigProvider{repo: repo}
}

func (p *ConfigProvider) Rules(ctx context.Context, category employee.EmploymentCategory) (map[string]Configuration, error) {
	rules, err := p.repo.FindActiveByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	out := make(map[string]Configuration, len(rules))
	for _, rule := range rules {
		out[rule.LeaveType] = rule
	}
	return out, nil
}

// RuleFor returns the rule row for one leave type, and whether it exists.
func (p *ConfigProvider) RuleFor(ctx context.Context, category employee.EmploymentCategory, leaveType string) (Configuration, bool, error) {
	rules, err := p.Rules(ctx, category)
	if err != nil {
		return Configuration{}, false, err
	}
	rule, ok := rules[leaveType]
	return rule, ok, nil
}
