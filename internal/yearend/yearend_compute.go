package yearend

import (
	"time"

	"nia-hrms/internal/employee"
	"nia-hrms/internal/leave"

	"github.com/shopspring/decimal"
)

var (
	privilegeOpeningCap = decimal.NewFromInt(300)
	sickOpeningUnitsCap = decimal.NewFromInt(480)
	two                 = decimal.NewFromInt(2)
)

// Older application rows recorded pregnancy leave under this name.
const legacyMaternityName = "Maternity Leave"

// ComputeOpening derives the target-year opening balances from the
// processing year's opening row and approved consumption. Probation is
// judged against the join-date-plus-one-year rule as of the last day of
// the processing year, deliberately independent of the stored category:
// the close is a historical snapshot of that year.
func ComputeOpening(emp employee.Employee, opening *leave.Balance, used map[string]decimal.Decimal, processingYear int) leave.Balance {
	yearStart := time.Date(processingYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(processingYear, time.December, 31, 0, 0, 0, 0, time.UTC)

	// Exactly one year of service on Dec 31 still counts as probation;
	// confirmation takes effect the day after the anniversary.
	inProbation := !emp.JoinDate.AddDate(1, 0, 0).Before(yearEnd)
	contractual := emp.IsContractual() || emp.InProbation()

	opCL := leave.DefaultCasualOpening
	opPL := leave.DefaultPrivilegeOpening
	opSL := leave.DefaultSickOpeningUnits
	if opening != nil {
		opCL = opening.CasualOpening
		opPL = opening.PrivilegeOpening
		opSL = opening.SickOpeningUnits
	}

	usedCL := takenOf(used, leave.TypeCasual)
	usedPL := takenOf(used, leave.TypePrivilege)
	usedSLUnits := takenOf(used, leave.TypeSick).Mul(two)

	maternityUsed := takenOf(used, leave.TypeMaternityPregnancy).
		Add(takenOf(used, leave.TypeMaternityAbortion)).
		Add(takenOf(used, legacyMaternityName))
	lwpUsed := takenOf(used, leave.TypeWithoutPay).
		Add(takenOf(used, leave.TypeExtraordinary))

	next := leave.Balance{
		EmployeeID:    emp.ID,
		Year:          processingYear + 1,
		CasualOpening: leave.DefaultCasualOpening,
	}

	// Unused casual carries forward as LYCL, except during probation.
	if !inProbation {
		next.CarryForwardOpening = decimal.Max(opCL.Sub(usedCL), decimal.Zero)
	}

	if inProbation || contractual {
		// Privilege and sick restart at zero until confirmation.
		return next
	}

	joined := emp.JoinDate
	if joined.Before(yearStart) {
		joined = yearStart
	}
	daysEmployed := decimal.NewFromInt(int64(yearEnd.Sub(joined).Hours()/24) + 1)
	daysInYear := decimal.NewFromInt(int64(yearEnd.YearDay()))

	// Privilege accrues 1 day per 12 days on duty; leave taken in the
	// privilege, sick, maternity and unpaid families does not count as duty.
	daysOnDuty := daysEmployed.
		Sub(usedPL).
		Sub(usedSLUnits.Div(two)).
		Sub(maternityUsed).
		Sub(lwpUsed)
	plEarned := daysOnDuty.Div(decimal.NewFromInt(12)).Round(1)
	next.PrivilegeOpening = clamp(opPL.Sub(usedPL).Add(plEarned), privilegeOpeningCap)

	slCredit := decimal.NewFromInt(20).Mul(daysEmployed).Div(daysInYear).Round(1)
	next.SickOpeningUnits = clamp(opSL.Sub(usedSLUnits).Add(slCredit), sickOpeningUnitsCap)

	return next
}

func takenOf(used map[string]decimal.Decimal, key string) decimal.Decimal {
	if v, ok := used[key]; ok {
		return v
	}
	return decimal.Zero
}

func clamp(v, limit decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Min(v, limit), decimal.Zero)
}
