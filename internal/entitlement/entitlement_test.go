package entitlement

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/estimo-app/estimo/internal/clock"
	"github.com/estimo-app/estimo/internal/db"
	"github.com/estimo-app/estimo/internal/models"
	"gorm.io/gorm"
)

func newTestEvaluator(t *testing.T) (*Evaluator, *gorm.DB, *clock.Fixed) {
	t.Helper()
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "entitlement-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	clk := &clock.Fixed{Time: time.Date(2025, 9, 16, 12, 0, 0, 0, time.UTC)}
	return NewEvaluator(conn, clk), conn, clk
}

func mustAllow(t *testing.T, e *Evaluator, userID uint64) {
	t.Helper()
	d, err := e.CanPerform(context.Background(), userID)
	if err != nil {
		t.Fatalf("CanPerform: %v", err)
	}
	if !d.Allowed {
		t.Fatalf("expected allowed, got denial: %q", d.Reason)
	}
}

func mustDeny(t *testing.T, e *Evaluator, userID uint64) Decision {
	t.Helper()
	d, err := e.CanPerform(context.Background(), userID)
	if err != nil {
		t.Fatalf("CanPerform: %v", err)
	}
	if d.Allowed {
		t.Fatalf("expected denial, got allowed")
	}
	return d
}

func TestCanPerformNewUserAllowed(t *testing.T) {
	e, _, _ := newTestEvaluator(t)
	mustAllow(t, e, 1)
}

func TestFreeLifetimeAllowanceThenDailyCap(t *testing.T) {
	e, conn, _ := newTestEvaluator(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		mustAllow(t, e, 1)
		if err := e.Commit(ctx, 1); err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
	}

	var usage models.UserUsage
	if err := conn.Where("user_id = ?", 1).First(&usage).Error; err != nil {
		t.Fatalf("load usage: %v", err)
	}
	if usage.TotalCount != 15 || usage.DailyCount != 15 {
		t.Fatalf("expected total=15 daily=15, got %+v", usage)
	}

	// Lifetime allowance is spent and 15 > 5 were already done today,
	// so the daily cap now denies.
	d := mustDeny(t, e, 1)
	if d.Reason != "Daily free limit reached (5/day)." {
		t.Fatalf("unexpected reason: %q", d.Reason)
	}
}

func TestFreeDailyCapResetsNextDay(t *testing.T) {
	e, conn, clk := newTestEvaluator(t)
	ctx := context.Background()

	seed := models.UserUsage{
		UserID:     1,
		WindowDate: clock.DayOf(clk.Now()),
		DailyCount: 5,
		TotalCount: 15,
	}
	if err := conn.Create(&seed).Error; err != nil {
		t.Fatalf("seed usage: %v", err)
	}

	d := mustDeny(t, e, 1)
	if d.Reason != "Daily free limit reached (5/day)." {
		t.Fatalf("unexpected reason: %q", d.Reason)
	}

	clk.Advance(24 * time.Hour)
	mustAllow(t, e, 1)

	if err := e.Commit(ctx, 1); err != nil {
		t.Fatalf("commit: %v", err)
	}
	var usage models.UserUsage
	if err := conn.Where("user_id = ?", 1).First(&usage).Error; err != nil {
		t.Fatalf("load usage: %v", err)
	}
	if usage.WindowDate != clock.DayOf(clk.Now()) {
		t.Fatalf("expected window advanced to %s, got %s", clock.DayOf(clk.Now()), usage.WindowDate)
	}
	if usage.DailyCount != 1 || usage.TotalCount != 16 {
		t.Fatalf("expected daily=1 total=16, got %+v", usage)
	}
}

func TestProPlanDailyCap(t *testing.T) {
	e, conn, clk := newTestEvaluator(t)

	if err := conn.Create(&models.UserBilling{UserID: 1, Plan: "pro"}).Error; err != nil {
		t.Fatalf("seed billing: %v", err)
	}
	if err := conn.Create(&models.UserUsage{
		UserID:     1,
		WindowDate: clock.DayOf(clk.Now()),
		DailyCount: 99,
		TotalCount: 500,
	}).Error; err != nil {
		t.Fatalf("seed usage: %v", err)
	}

	mustAllow(t, e, 1)

	if err := conn.Model(&models.UserUsage{}).Where("user_id = ?", 1).
		Update("daily_count", 100).Error; err != nil {
		t.Fatalf("bump usage: %v", err)
	}
	d := mustDeny(t, e, 1)
	if d.Reason != "Daily limit reached (100/day)." {
		t.Fatalf("unexpected reason: %q", d.Reason)
	}
}

func TestBusinessPlanUnlimited(t *testing.T) {
	e, conn, clk := newTestEvaluator(t)

	if err := conn.Create(&models.UserBilling{UserID: 1, Plan: "business"}).Error; err != nil {
		t.Fatalf("seed billing: %v", err)
	}
	if err := conn.Create(&models.UserUsage{
		UserID:     1,
		WindowDate: clock.DayOf(clk.Now()),
		DailyCount: 100000,
		TotalCount: 100000,
	}).Error; err != nil {
		t.Fatalf("seed usage: %v", err)
	}

	mustAllow(t, e, 1)
}

func TestExpiredSubscriptionBehavesAsFree(t *testing.T) {
	e, conn, clk := newTestEvaluator(t)

	periodEnd := clk.Now().Add(-time.Second)
	if err := conn.Create(&models.UserBilling{
		UserID:              1,
		Plan:                "pro",
		CurrentPeriodEndUTC: &periodEnd,
	}).Error; err != nil {
		t.Fatalf("seed billing: %v", err)
	}
	// Past the lifetime allowance and at the free daily cap.
	if err := conn.Create(&models.UserUsage{
		UserID:     1,
		WindowDate: clock.DayOf(clk.Now()),
		DailyCount: 5,
		TotalCount: 20,
	}).Error; err != nil {
		t.Fatalf("seed usage: %v", err)
	}

	d := mustDeny(t, e, 1)
	if d.Reason != "Daily free limit reached (5/day)." {
		t.Fatalf("expected free-plan denial, got %q", d.Reason)
	}

	// The stored plan is untouched; expiry is evaluated on read only.
	var billing models.UserBilling
	if err := conn.Where("user_id = ?", 1).First(&billing).Error; err != nil {
		t.Fatalf("load billing: %v", err)
	}
	if billing.Plan != "pro" {
		t.Fatalf("expected stored plan pro, got %q", billing.Plan)
	}
}

func TestCommitIncrementsByOneEachCall(t *testing.T) {
	e, conn, _ := newTestEvaluator(t)
	ctx := context.Background()

	if err := e.Commit(ctx, 1); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := e.Commit(ctx, 1); err != nil {
		t.Fatalf("commit: %v", err)
	}

	var usage models.UserUsage
	if err := conn.Where("user_id = ?", 1).First(&usage).Error; err != nil {
		t.Fatalf("load usage: %v", err)
	}
	if usage.DailyCount != 2 || usage.TotalCount != 2 {
		t.Fatalf("expected daily=2 total=2, got %+v", usage)
	}
}

// The check and the commit have no lock spanning them: concurrent requests
// may all pass CanPerform before any commits, overshooting the cap. This
// pins the documented behavior rather than asserting an enforced bound.
func TestCommitConcurrentOvershoot(t *testing.T) {
	e, conn, clk := newTestEvaluator(t)
	ctx := context.Background()

	// Free user one action below the daily cap.
	if err := conn.Create(&models.UserUsage{
		UserID:     1,
		WindowDate: clock.DayOf(clk.Now()),
		DailyCount: 4,
		TotalCount: 19,
	}).Error; err != nil {
		t.Fatalf("seed usage: %v", err)
	}

	const workers = 3
	decisions := make([]Decision, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := e.CanPerform(ctx, 1)
			if err != nil {
				t.Errorf("CanPerform: %v", err)
				return
			}
			decisions[i] = d
		}(i)
	}
	wg.Wait()

	allowed := 0
	for _, d := range decisions {
		if d.Allowed {
			allowed++
		}
	}
	// Every concurrent check saw daily=4 < 5 and passed.
	if allowed != workers {
		t.Fatalf("expected all %d checks to pass, got %d", workers, allowed)
	}

	for i := 0; i < allowed; i++ {
		if err := e.Commit(ctx, 1); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}
	var usage models.UserUsage
	if err := conn.Where("user_id = ?", 1).First(&usage).Error; err != nil {
		t.Fatalf("load usage: %v", err)
	}
	if usage.DailyCount != 4+workers {
		t.Fatalf("expected overshoot to daily=%d, got %d", 4+workers, usage.DailyCount)
	}
}
