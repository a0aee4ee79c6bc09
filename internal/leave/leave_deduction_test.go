package leave_test

import (
	"testing"
	"time"

	"nia-hrms/internal/leave"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustType(t *testing.T, name string) leave.TypeSpec {
	t.Helper()
	spec, ok := leave.LookupType(name)
	assert.True(t, ok)
	return spec
}

func TestDeductibleDays_CasualSkipsWeekends(t *testing.T) {
	casual := mustType(t, leave.TypeCasual)

	// 2026-03-02 is a Monday, 2026-03-08 the following Sunday.
	from, to := day("2026-03-02"), day("2026-03-08")

	t.Run("non saturday worker", func(t *testing.T) {
		days, end := leave.DeductibleDays(casual, from, to, false, false)
		assert.True(t, days.Equal(decimal.NewFromInt(5)), "got %s", days)
		assert.Equal(t, to, end)
	})

	t.Run("saturday worker", func(t *testing.T) {
		days, _ := leave.DeductibleDays(casual, from, to, false, true)
		assert.True(t, days.Equal(decimal.NewFromInt(6)), "got %s", days)
	})

	t.Run("sunday only range deducts nothing", func(t *testing.T) {
		days, _ := leave.DeductibleDays(casual, day("2026-03-08"), day("2026-03-08"), false, false)
		assert.True(t, days.IsZero())
	})
}

func TestDeductibleDays_InclusiveForOtherTypes(t *testing.T) {
	privilege := mustType(t, leave.TypePrivilege)

	days, _ := leave.DeductibleDays(privilege, day("2026-03-02"), day("2026-03-08"), false, false)
	assert.True(t, days.Equal(decimal.NewFromInt(7)), "got %s", days)

	sick := mustType(t, leave.TypeSick)
	days, _ = leave.DeductibleDays(sick, day("2026-06-10"), day("2026-06-10"), false, false)
	assert.True(t, days.Equal(decimal.NewFromInt(1)))
}

func TestDeductibleDays_HalfDay(t *testing.T) {
	casual := mustType(t, leave.TypeCasual)

	days, end := leave.DeductibleDays(casual, day("2026-03-02"), day("2026-03-06"), true, false)
	assert.True(t, days.Equal(decimal.NewFromFloat(0.5)))
	assert.Equal(t, day("2026-03-02"), end, "half day forces to = from")
}
