// Package entitlement decides whether a user may perform a metered PDF
// generation and records usage once one succeeds.
//
// Plan expiry and the daily usage window are both evaluated lazily on read:
// a stored plan whose period end has passed behaves as free, and a daily
// counter from a previous UTC day behaves as zero. Reads never write these
// corrections back; only Commit and subscription confirmation mutate rows.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/estimo-app/estimo/internal/clock"
	"github.com/estimo-app/estimo/internal/models"
	"github.com/estimo-app/estimo/internal/plan"
	"gorm.io/gorm"
)

// Decision is the outcome of an entitlement check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Evaluator answers entitlement checks and commits usage.
type Evaluator struct {
	db  *gorm.DB
	clk clock.Clock
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(db *gorm.DB, clk clock.Clock) *Evaluator {
	return &Evaluator{db: db, clk: clk}
}

// CanPerform reports whether the user may generate a PDF now. A missing
// billing or usage row is the valid default state, not an error; denial is a
// normal result, never an error.
func (e *Evaluator) CanPerform(ctx context.Context, userID uint64) (Decision, error) {
	now := e.clk.Now()

	billing, errBilling := e.loadBilling(ctx, userID)
	if errBilling != nil {
		return Decision{}, errBilling
	}
	usage, errUsage := e.loadUsage(ctx, userID)
	if errUsage != nil {
		return Decision{}, errUsage
	}

	effPlan := effectivePlan(billing, now)
	daily := effectiveDailyCount(usage, now)
	total := 0
	if usage != nil {
		total = usage.TotalCount
	}

	if effPlan == plan.Free {
		if total < plan.FreeLifetimeAllowance {
			return Decision{Allowed: true}, nil
		}
		if daily >= plan.FreeDailyCap {
			return Decision{Reason: fmt.Sprintf("Daily free limit reached (%d/day).", plan.FreeDailyCap)}, nil
		}
		return Decision{Allowed: true}, nil
	}

	policy := plan.Caps(effPlan)
	if !policy.Unlimited && daily >= policy.DailyCap {
		return Decision{Reason: fmt.Sprintf("Daily limit reached (%d/day).", policy.DailyCap)}, nil
	}
	return Decision{Allowed: true}, nil
}

// Commit records one completed generation. Callers invoke it exactly once
// per successful PDF render, after the render; failed work is never charged.
//
// CanPerform and Commit are deliberately separate operations with no lock
// spanning the gap between them, so two concurrent requests can both pass
// the check before either commits and overshoot the cap by the number of
// in-flight requests. The counters themselves stay consistent: the whole
// load-increment-store runs in one transaction.
func (e *Evaluator) Commit(ctx context.Context, userID uint64) error {
	today := clock.DayOf(e.clk.Now())

	errTx := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var usage models.UserUsage
		errFind := tx.Where("user_id = ?", userID).First(&usage).Error
		if errFind != nil {
			if !errors.Is(errFind, gorm.ErrRecordNotFound) {
				return errFind
			}
			usage = models.UserUsage{
				UserID:     userID,
				WindowDate: today,
				DailyCount: 1,
				TotalCount: 1,
			}
			return tx.Create(&usage).Error
		}

		if usage.WindowDate != today {
			usage.WindowDate = today
			usage.DailyCount = 0
		}
		usage.DailyCount++
		usage.TotalCount++
		return tx.Save(&usage).Error
	})
	if errTx != nil {
		return fmt.Errorf("entitlement: commit usage: %w", errTx)
	}
	return nil
}

// loadBilling returns the user's billing row, or nil when absent.
func (e *Evaluator) loadBilling(ctx context.Context, userID uint64) (*models.UserBilling, error) {
	var billing models.UserBilling
	errFind := e.db.WithContext(ctx).Where("user_id = ?", userID).First(&billing).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("entitlement: load billing: %w", errFind)
	}
	return &billing, nil
}

// loadUsage returns the user's usage row, or nil when absent.
func (e *Evaluator) loadUsage(ctx context.Context, userID uint64) (*models.UserUsage, error) {
	var usage models.UserUsage
	errFind := e.db.WithContext(ctx).Where("user_id = ?", userID).First(&usage).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("entitlement: load usage: %w", errFind)
	}
	return &usage, nil
}

// effectivePlan resolves the plan used for a decision at the given instant.
// A nil record or an elapsed subscription period resolves to free. Pure; the
// stored row is left untouched.
func effectivePlan(billing *models.UserBilling, now time.Time) string {
	if billing == nil {
		return plan.Free
	}
	if billing.CurrentPeriodEndUTC != nil && billing.CurrentPeriodEndUTC.Before(now) {
		return plan.Free
	}
	return plan.Normalize(billing.Plan)
}

// effectiveDailyCount resolves the daily counter at the given instant,
// treating a stale window date as zero. Pure.
func effectiveDailyCount(usage *models.UserUsage, now time.Time) int {
	if usage == nil {
		return 0
	}
	if usage.WindowDate != clock.DayOf(now) {
		return 0
	}
	return usage.DailyCount
}
