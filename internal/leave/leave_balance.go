package leave

import (
	"time"

	"nia-hrms/internal/employee"

	"github.com/shopspring/decimal"
)

// TypeBalance is one line of the balance screen.
type TypeBalance struct {
	Total   decimal.Decimal `json:"Total"`
	Availed decimal.Decimal `json:"Availed"`
	Balance decimal.Decimal `json:"Balance"`
}

// SnapshotMeta mirrors the response header the prior API exposed.
type SnapshotMeta struct {
	EmployeeCode string `json:"emp_id"`
	Gender       string `json:"gender"`
	InProbation  bool   `json:"is_probation"`
	JoinDate     string `json:"join_date"`
	AsOf         string `json:"server_date"`
}

// Snapshot is the on-demand balance projection for one employee.
type Snapshot struct {
	Meta   SnapshotMeta           `json:"meta"`
	Leaves map[string]TypeBalance `json:"leaves"`
}

// SnapshotInput carries everything the calculator needs; the service
// assembles it from the ledger, application sums and configuration.
type SnapshotInput struct {
	Employee      employee.Employee
	AsOf          time.Time
	Opening       *Balance // nil when no ledger row exists yet
	AnnualTaken   map[string]decimal.Decimal
	LifetimeTaken map[string]decimal.Decimal
	Rules         map[string]Configuration
}

// Older rows recorded pregnancy leave under this name; both spellings
// count against the same lifetime entitlement.
const legacyMaternityName = "Maternity Leave"

// ComputeSnapshot derives the balance screen. Entitlement baselines come
// from the ledger row (or registration defaults), overridden for
// probationary and contractual staff; consumption is always derived from
// applications.
func ComputeSnapshot(in SnapshotInput) Snapshot {
	emp := in.Employee

	opCL := DefaultCasualOpening
	opPL := DefaultPrivilegeOpening
	opSL := DefaultSickOpeningUnits
	opLYCL := DefaultCarryForwardOpening
	if in.Opening != nil {
		opCL = in.Opening.CasualOpening
		opPL = in.Opening.PrivilegeOpening
		opSL = in.Opening.SickOpeningUnits
		opLYCL = in.Opening.CarryForwardOpening
	}

	daysWorked := inclusiveDays(emp.JoinDate, in.AsOf) - 1
	if daysWorked < 0 {
		daysWorked = 0
	}

	switch {
	case emp.InProbation():
		// 1 CL earned per 45 days of service; nothing else accrues yet.
		opPL = decimal.Zero
		opSL = decimal.Zero
		opLYCL = decimal.Zero
		opCL = decimal.NewFromInt(daysWorked / 45)
	case emp.IsContractual():
		opCL = decimal.Min(opCL, decimal.NewFromInt(daysWorked/45))
		opPL = decimal.Min(opPL, decimal.NewFromInt(int64(monthsBetween(emp.JoinDate, in.AsOf))))
	}

	taken := func(m map[string]decimal.Decimal, key string) decimal.Decimal {
		if v, ok := m[key]; ok {
			return v
		}
		return decimal.Zero
	}

	leaves := make(map[string]TypeBalance)
	add := func(name string, total, availed decimal.Decimal) {
		if len(in.Rules) > 0 {
			if _, ok := in.Rules[name]; !ok {
				return
			}
		}
		leaves[name] = TypeBalance{
			Total:   total,
			Availed: availed,
			Balance: decimal.Max(total.Sub(availed), decimal.Zero),
		}
	}

	add(TypeCasual, opCL, taken(in.AnnualTaken, TypeCasual))
	add(TypePrivilege, opPL, taken(in.AnnualTaken, TypePrivilege))

	// Sick leave compares in half-day units.
	slUnitsTaken := taken(in.AnnualTaken, TypeSick).Mul(decimal.NewFromInt(2))
	add(TypeSick, opSL, slUnitsTaken)

	add(TypeCarryForward, opLYCL, taken(in.AnnualTaken, TypeCarryForward))

	female := emp.IsFemale()
	for _, spec := range catalogue {
		if spec.Window != WindowLifetime && spec.Category != CategoryPaternity {
			continue
		}
		if !spec.AppliesToGender(female) {
			continue
		}

		var availed decimal.Decimal
		switch spec.Category {
		case CategoryPaternity:
			availed = taken(in.AnnualTaken, spec.Name)
		case CategoryMaternityPregnancy:
			availed = taken(in.LifetimeTaken, spec.Name).Add(taken(in.LifetimeTaken, legacyMaternityName))
		default:
			availed = taken(in.LifetimeTaken, spec.Name)
		}

		add(spec.Name, spec.EffectiveLifetimeLimit(availed), availed)
	}

	return Snapshot{
		Meta: SnapshotMeta{
			EmployeeCode: emp.Usercode,
			Gender:       emp.Gender,
			InProbation:  emp.InProbation(),
			JoinDate:     emp.JoinDate.Format("2006-01-02"),
			AsOf:         in.AsOf.Format("2006-01-02"),
		},
		Leaves: leaves,
	}
}

// monthsBetween is the number of whole months from start to end, floored.
func monthsBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
