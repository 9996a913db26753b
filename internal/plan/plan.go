// Package plan defines the subscription plan catalog: entitlement policies
// and monthly prices per plan name. The catalog is a pure mapping with no
// storage and no failure modes; unknown names degrade to defaults.
package plan

import "strings"

// Plan name constants.
const (
	// Free is the implicit default plan.
	Free = "free"
	// Pro is the paid monthly plan with a raised daily cap.
	Pro = "pro"
	// Business is the paid monthly plan without a daily cap.
	Business = "business"
)

// Free plan allowances.
const (
	// FreeLifetimeAllowance is the number of generations a free user may
	// perform before the daily cap engages.
	FreeLifetimeAllowance = 15
	// FreeDailyCap applies to free users past the lifetime allowance.
	FreeDailyCap = 5
	// ProDailyCap applies to pro users.
	ProDailyCap = 100
)

// Monthly subscription prices in minor currency units (euro cents).
const (
	// ProMonthPrice is the pro plan monthly price.
	ProMonthPrice int64 = 900
	// BusinessMonthPrice is the business plan monthly price.
	BusinessMonthPrice int64 = 2900
)

// Policy describes the entitlement limits of a plan.
type Policy struct {
	DailyCap  int  // Generations allowed per UTC day; meaningless when Unlimited.
	Unlimited bool // Whether the plan has no daily cap.
}

// Caps resolves the entitlement policy for a plan name. Unrecognized or
// empty names resolve to the free policy.
func Caps(name string) Policy {
	switch Normalize(name) {
	case Business:
		return Policy{Unlimited: true}
	case Pro:
		return Policy{DailyCap: ProDailyCap}
	default:
		return Policy{DailyCap: FreeDailyCap}
	}
}

// Normalize lowercases a plan name and maps unknown values to Free.
func Normalize(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Pro:
		return Pro
	case Business:
		return Business
	default:
		return Free
	}
}

// NormalizePaid maps a requested checkout plan to a purchasable plan,
// defaulting anything that is not exactly business to pro.
func NormalizePaid(name string) string {
	if strings.ToLower(strings.TrimSpace(name)) == Business {
		return Business
	}
	return Pro
}

// MonthPrice returns the monthly price in minor units for a paid plan name.
// The name must already be normalized via NormalizePaid.
func MonthPrice(name string) int64 {
	if name == Business {
		return BusinessMonthPrice
	}
	return ProMonthPrice
}

// DisplayName returns the checkout line-item label for a paid plan.
func DisplayName(name string) string {
	if name == Business {
		return "Business (monthly)"
	}
	return "Pro (monthly)"
}
