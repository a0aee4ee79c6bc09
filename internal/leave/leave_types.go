package leave

import (
	"github.com/shopspring/decimal"
)

// Category is the closed set of leave behaviours. Matching is exact on the
// display name via the catalogue; substring checks on type names are not
// used anywhere.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryCasual
	CategorySpecialCasual
	CategoryCarryForward // prior-year casual carry-forward ("LYCL")
	CategoryPrivilege
	CategorySick
	CategoryMaternityPregnancy
	CategoryMaternityAbortion
	CategoryPaternity
	CategorySpecialCategory // sterilisation-related special category leave
	CategoryWithoutPay      // leave without pay / extraordinary leave
)

// Window selects which consumption total a type is checked against.
type Window int

const (
	WindowAnnual Window = iota
	WindowLifetime
)

// Gender applicability of a leave type.
type Gender int

const (
	GenderAny Gender = iota
	GenderFemale
	GenderMale
)

// TypeSpec describes one leave type in the fixed catalogue. Annual
// entitlements for casual/privilege/sick come from the balance ledger and
// configuration; LifetimeLimit and PerOccasionLimit apply to the
// gender-specific families.
type TypeSpec struct {
	Name     string
	Category Category
	Window   Window
	Gender   Gender

	// LifetimeLimit is the base entitlement for lifetime-scoped types.
	LifetimeLimit decimal.Decimal
	// ExtendedLimit, when set, replaces LifetimeLimit once the base limit
	// has been fully consumed. A one-time step, not a multiplier.
	ExtendedLimit decimal.Decimal
	// PerOccasionLimit bounds a single request regardless of balance.
	PerOccasionLimit decimal.Decimal
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

const (
	TypeCasual             = "Casual Leave"
	TypeSpecialCasual      = "Special Casual Leave"
	TypeCarryForward       = "LYCL"
	TypePrivilege          = "Privilege Leave"
	TypeSick               = "Sick Leave"
	TypeMaternityPregnancy = "Maternity (Pregnancy)"
	TypeMaternityAbortion  = "Maternity (Abortion)"
	TypePaternity          = "Paternity Leave"
	TypeSCLTubectomy       = "SCL - Tubectomy"
	TypeSCLIUD             = "SCL - IUD Insertion"
	TypeSCLIUCD            = "SCL - IUCD Insertion"
	TypeSCLSalpingectomy   = "SCL - MTP Salpingectomy"
	TypeSCLRecanalization  = "SCL - Recanalization"
	TypeSCLHusbandVasec    = "SCL - Husband Vasectomy"
	TypeSCLVasectomy       = "SCL - Vasectomy"
	TypeSCLWifeTubectomy   = "SCL - Wife Tubectomy"
	TypeWithoutPay         = "Leave Without Pay"
	TypeExtraordinary      = "Extraordinary Leave"
)

var catalogue = []TypeSpec{
	{Name: TypeCasual, Category: CategoryCasual, Window: WindowAnnual},
	{Name: TypeSpecialCasual, Category: CategorySpecialCasual, Window: WindowAnnual},
	{Name: TypeCarryForward, Category: CategoryCarryForward, Window: WindowAnnual},
	{Name: TypePrivilege, Category: CategoryPrivilege, Window: WindowAnnual},
	{Name: TypeSick, Category: CategorySick, Window: WindowAnnual},

	{Name: TypeMaternityPregnancy, Category: CategoryMaternityPregnancy, Window: WindowLifetime,
		Gender: GenderFemale, LifetimeLimit: d(360), PerOccasionLimit: d(180)},
	{Name: TypeMaternityAbortion, Category: CategoryMaternityAbortion, Window: WindowLifetime,
		Gender: GenderFemale, LifetimeLimit: d(45)},

	// Paternity entitlement is per occasion; availed is reported against
	// the annual window, matching the balance screen clients rely on.
	{Name: TypePaternity, Category: CategoryPaternity, Window: WindowAnnual,
		Gender: GenderMale, LifetimeLimit: d(15), PerOccasionLimit: d(15)},

	{Name: TypeSCLTubectomy, Category: CategorySpecialCategory, Window: WindowLifetime,
		Gender: GenderFemale, LifetimeLimit: d(14), ExtendedLimit: d(28)},
	{Name: TypeSCLIUD, Category: CategorySpecialCategory, Window: WindowLifetime,
		Gender: GenderFemale, LifetimeLimit: d(1)},
	{Name: TypeSCLIUCD, Category: CategorySpecialCategory, Window: WindowLifetime,
		Gender: GenderFemale, LifetimeLimit: d(1)},
	{Name: TypeSCLSalpingectomy, Category: CategorySpecialCategory, Window: WindowLifetime,
		Gender: GenderFemale, LifetimeLimit: d(14)},
	{Name: TypeSCLRecanalization, Category: CategorySpecialCategory, Window: WindowLifetime,
		Gender: GenderAny, LifetimeLimit: d(21)},
	{Name: TypeSCLHusbandVasec, Category: CategorySpecialCategory, Window: WindowLifetime,
		Gender: GenderFemale, LifetimeLimit: d(1)},
	{Name: TypeSCLVasectomy, Category: CategorySpecialCategory, Window: WindowLifetime,
		Gender: GenderMale, LifetimeLimit: d(6), ExtendedLimit: d(12)},
	{Name: TypeSCLWifeTubectomy, Category: CategorySpecialCategory, Window: WindowLifetime,
		Gender: GenderMale, LifetimeLimit: d(7)},

	{Name: TypeWithoutPay, Category: CategoryWithoutPay, Window: WindowAnnual},
	{Name: TypeExtraordinary, Category: CategoryWithoutPay, Window: WindowAnnual},
}

var catalogueByName = func() map[string]TypeSpec {
	m := make(map[string]TypeSpec, len(catalogue))
	for _, spec := range catalogue {
		m[spec.Name] = spec
	}
	return m
}()

// LookupType resolves a display name to its spec. Unknown names are
// rejected at the API boundary.
func LookupType(name string) (TypeSpec, bool) {
	spec, ok := catalogueByName[name]
	return spec, ok
}

// Catalogue returns the full type list in declaration order.
func Catalogue() []TypeSpec {
	out := make([]TypeSpec, len(catalogue))
	copy(out, catalogue)
	return out
}

// AppliesToGender reports whether the type may be availed by an employee of
// the given gender.
func (s TypeSpec) AppliesToGender(female bool) bool {
	switch s.Gender {
	case GenderFemale:
		return female
	case GenderMale:
		return !female
	default:
		return true
	}
}

// EffectiveLifetimeLimit applies the one-time dynamic extension: once the
// base limit has been fully consumed the extended limit governs.
func (s TypeSpec) EffectiveLifetimeLimit(availed decimal.Decimal) decimal.Decimal {
	if !s.ExtendedLimit.IsZero() && availed.GreaterThanOrEqual(s.LifetimeLimit) {
		return s.ExtendedLimit
	}
	return s.LifetimeLimit
}

// RequiresDocument reports whether a supporting document is mandatory for a
// request of the given length.
func (s TypeSpec) RequiresDocument(days decimal.Decimal) bool {
	switch s.Category {
	case CategorySick:
		return days.GreaterThan(decimal.NewFromInt(1))
	case CategoryMaternityPregnancy, CategoryMaternityAbortion, CategoryPaternity, CategorySpecialCategory:
		return true
	default:
		return false
	}
}

// BalanceExempt reports whether the type may always be taken regardless of
// remaining balance (still recorded and deducted for reporting).
func (s TypeSpec) BalanceExempt() bool {
	return s.Category == CategoryWithoutPay
}
