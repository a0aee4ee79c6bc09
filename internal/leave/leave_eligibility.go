package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nia-hrms/internal/employee"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EvalRequest is a leave application under validation. The employee has
// already been resolved by the caller.
type EvalRequest struct {
	Employee    employee.Employee
	Spec        TypeSpec
	From        time.Time
	To          time.Time
	HalfDay     bool
	HasDocument bool
}

// EvalResult is the structured outcome of rule evaluation. A policy
// rejection is an expected negative result: OK is false and Reason names
// the rule; it is not an error.
type EvalResult struct {
	OK     bool
	Days   decimal.Decimal
	To     time.Time // normalized range end to persist
	Reason string
}

func rejected(reason string) EvalResult {
	return EvalResult{OK: false, Reason: reason}
}

// Evaluator applies category rules, deduction computation and balance
// checks to a leave request. Construct it over transaction-bound
// repositories when the evaluation guards an insert.
type Evaluator struct {
	config   *ConfigProvider
	balances BalanceRepository
	apps     ApplicationRepository
}

func NewEvaluator(config *ConfigProvider, balances BalanceRepository, apps ApplicationRepository) *Evaluator {
	return &Evaluator{config: config, balances: balances, apps: apps}
}

// Evaluate validates the request and computes the deductible day count.
// Returns an error only for dependency failures; rule violations come back
// as a non-OK result.
func (e *Evaluator) Evaluate(ctx context.Context, req EvalRequest) (EvalResult, error) {
	emp := req.Employee
	spec := req.Spec

	rule, hasRule, err := e.config.RuleFor(ctx, emp.EmploymentCategory, spec.Name)
	if err != nil {
		return EvalResult{}, err
	}
	if !hasRule && !spec.BalanceExempt() {
		return rejected(fmt.Sprintf("%s is not applicable for this employee category", spec.Name)), nil
	}

	days, normalizedTo := DeductibleDays(spec, req.From, req.To, req.HalfDay, emp.WorksSaturday)

	// Per-request bounds from configuration.
	if hasRule {
		if rule.MaxPerRequest.IsPositive() && days.GreaterThan(rule.MaxPerRequest) {
			return rejected(fmt.Sprintf("%s cannot exceed %s days per request", spec.Name, rule.MaxPerRequest)), nil
		}
		if rule.MinPerRequest.IsPositive() && days.LessThan(rule.MinPerRequest) {
			return rejected(fmt.Sprintf("%s must be a minimum of %s days", spec.Name, rule.MinPerRequest)), nil
		}
	}
	if spec.PerOccasionLimit.IsPositive() && days.GreaterThan(spec.PerOccasionLimit) {
		return rejected(fmt.Sprintf("%s: max %s days per occasion", spec.Name, spec.PerOccasionLimit)), nil
	}

	// Category hard rejections.
	if emp.InProbation() && (spec.Category == CategoryPrivilege || spec.Category == CategorySick) {
		return rejected("Probation Rule: Privilege and Sick Leave are not allowed during probation"), nil
	}
	if !spec.AppliesToGender(emp.IsFemale()) {
		want := "Male"
		if spec.Gender == GenderFemale {
			want = "Female"
		}
		return rejected(fmt.Sprintf("%s is only for %s employees", spec.Name, want)), nil
	}

	if !spec.BalanceExempt() {
		result, err := e.checkBalance(ctx, emp, spec, rule, hasRule, req.From, days)
		if err != nil {
			return EvalResult{}, err
		}
		if !result.OK {
			return result, nil
		}
	}

	if spec.RequiresDocument(days) && !req.HasDocument {
		return rejected("Supporting document is mandatory for this request"), nil
	}

	return EvalResult{OK: true, Days: days, To: normalizedTo}, nil
}

func (e *Evaluator) checkBalance(
	ctx context.Context,
	emp employee.Employee,
	spec TypeSpec,
	rule Configuration,
	hasRule bool,
	from time.Time,
	days decimal.Decimal,
) (EvalResult, error) {
	year := from.Year()
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	var used decimal.Decimal
	var err error
	if spec.Window == WindowLifetime {
		used, err = e.apps.SumByTypeLifetime(ctx, emp.ID, spec.Name)
	} else {
		used, err = e.apps.SumByTypeInWindow(ctx, emp.ID, spec.Name, yearStart, yearEnd)
	}
	if err != nil {
		return EvalResult{}, err
	}

	opening, err := e.balances.FindByEmployeeYear(ctx, emp.ID, year)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return EvalResult{}, err
		}
		opening = nil
	}

	daysWorked := inclusiveDays(emp.JoinDate, from) - 1
	if daysWorked < 0 {
		daysWorked = 0
	}

	switch spec.Category {
	case CategorySick:
		// Half-day unit accounting: entitlement and consumption compare
		// in units, the user message reports both.
		limitUnits := decimal.NewFromInt(20)
		if opening != nil {
			limitUnits = opening.SickOpeningUnits
		} else if hasRule && rule.AnnualLimit.IsPositive() {
			limitUnits = rule.AnnualLimit.Mul(decimal.NewFromInt(2))
		}
		if emp.InProbation() {
			limitUnits = decimal.Zero
		}

		usedUnits := used.Mul(decimal.NewFromInt(2))
		requestUnits := days.Mul(decimal.NewFromInt(2))
		if usedUnits.Add(requestUnits).GreaterThan(limitUnits) {
			leftUnits := decimal.Max(limitUnits.Sub(usedUnits), decimal.Zero)
			leftDays := leftUnits.Div(decimal.NewFromInt(2))
			return rejected(fmt.Sprintf("Insufficient Sick Leave. Balance: %s Units (%s Days)", leftUnits, leftDays)), nil
		}

	case CategoryCasual:
		limit := DefaultCasualOpening
		if opening != nil {
			limit = opening.CasualOpening
		} else if hasRule && rule.AnnualLimit.IsPositive() {
			limit = rule.AnnualLimit
		}
		switch {
		case emp.InProbation():
			limit = decimal.NewFromInt(daysWorked / 45)
		case emp.IsContractual():
			limit = decimal.Min(limit, decimal.NewFromInt(daysWorked/45))
		}
		if used.Add(days).GreaterThan(limit) {
			left := decimal.Max(limit.Sub(used), decimal.Zero)
			return rejected(fmt.Sprintf("Insufficient Casual Leave. Available: %s days", left)), nil
		}

	case CategoryPrivilege:
		limit := DefaultPrivilegeOpening
		if opening != nil {
			limit = opening.PrivilegeOpening
		} else if hasRule && rule.AnnualLimit.IsPositive() {
			limit = rule.AnnualLimit
		}
		switch {
		case emp.InProbation():
			limit = decimal.Zero
		case emp.IsContractual():
			limit = decimal.Min(limit, decimal.NewFromInt(int64(monthsBetween(emp.JoinDate, from))))
		}
		if used.Add(days).GreaterThan(limit) {
			left := decimal.Max(limit.Sub(used), decimal.Zero)
			return rejected(fmt.Sprintf("Insufficient Privilege Leave. Available: %s days", left)), nil
		}

	case CategoryCarryForward:
		limit := DefaultCarryForwardOpening
		if opening != nil {
			limit = opening.CarryForwardOpening
		}
		if emp.InProbation() {
			limit = decimal.Zero
		}
		if used.Add(days).GreaterThan(limit) {
			left := decimal.Max(limit.Sub(used), decimal.Zero)
			return rejected(fmt.Sprintf("Insufficient carry-forward leave. Available: %s days", left)), nil
		}

	case CategoryMaternityPregnancy:
		// Both spellings of the pregnancy type share one lifetime total.
		legacy, err := e.apps.SumByTypeLifetime(ctx, emp.ID, legacyMaternityName)
		if err != nil {
			return EvalResult{}, err
		}
		used = used.Add(legacy)
		limit := spec.EffectiveLifetimeLimit(used)
		if used.Add(days).GreaterThan(limit) {
			return rejected(fmt.Sprintf("Lifetime %s limit (%s days) exceeded", spec.Name, limit)), nil
		}

	case CategoryMaternityAbortion, CategoryPaternity, CategorySpecialCategory:
		limit := spec.EffectiveLifetimeLimit(used)
		if used.Add(days).GreaterThan(limit) {
			return rejected(fmt.Sprintf("Lifetime %s limit (%s days) exceeded", spec.Name, limit)), nil
		}

	default:
		// Generic fallback: plain annual limit from configuration.
		if hasRule && rule.AnnualLimit.IsPositive() && used.Add(days).GreaterThan(rule.AnnualLimit) {
			left := decimal.Max(rule.AnnualLimit.Sub(used), decimal.Zero)
			return rejected(fmt.Sprintf("Insufficient %s. Available: %s days", spec.Name, left)), nil
		}
	}

	return EvalResult{OK: true}, nil
}
