// Package payments drives the two checkout life cycles against the external
// payment provider: one-off quote payments and recurring subscription
// purchases. Local state changes only on confirmation, after the provider
// reports a session as complete and paid.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/estimo-app/estimo/internal/clock"
	"github.com/estimo-app/estimo/internal/models"
	"github.com/estimo-app/estimo/internal/plan"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Provider status literals required for a successful confirmation. Compared
// case-insensitively; everything else in the status fields is opaque.
const (
	statusComplete = "complete"
	statusPaid     = "paid"
)

// PaymentLink is the result of creating a checkout session.
type PaymentLink struct {
	SessionID string
	URL       string
}

// SubscriptionResult is the durable outcome of a confirmed subscription.
type SubscriptionResult struct {
	Plan      string
	PeriodEnd time.Time
}

// Orchestrator creates checkout sessions and reconciles them against the
// provider's authoritative status.
type Orchestrator struct {
	db          *gorm.DB
	client      CheckoutClient
	clk         clock.Clock
	currency    string
	frontendURL string
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(db *gorm.DB, client CheckoutClient, clk clock.Clock, currency, frontendURL string) *Orchestrator {
	return &Orchestrator{
		db:          db,
		client:      client,
		clk:         clk,
		currency:    strings.ToLower(strings.TrimSpace(currency)),
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// CreateQuotePaymentSession opens a one-off checkout session for a quote the
// acting user owns and stores the session reference on the quote.
//
// Calling this twice before confirmation opens a second provider session and
// overwrites the stored reference; the first session is orphaned. There is
// no idempotency fence here.
func (o *Orchestrator) CreateQuotePaymentSession(ctx context.Context, quoteID, actingUserID uint64) (*PaymentLink, error) {
	var quote models.Quote
	errFind := o.db.WithContext(ctx).
		Joins("JOIN clients ON clients.id = quotes.client_id").
		Where("quotes.id = ? AND clients.owner_id = ?", quoteID, actingUserID).
		First(&quote).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("payments: load quote: %w", errFind)
	}

	// Gross total to minor units, half away from zero.
	unitAmount := int64(math.Round(quote.Total() * 100))

	sess, errCreate := o.client.CreateSession(ctx, CreateSessionParams{
		Mode: ModePayment,
		Item: LineItem{
			Name:       "Quote " + quote.Name,
			UnitAmount: unitAmount,
			Currency:   o.currency,
		},
		SuccessURL: fmt.Sprintf("%s/?pay=success&quoteId=%d&session_id={CHECKOUT_SESSION_ID}", o.frontendURL, quoteID),
		CancelURL:  fmt.Sprintf("%s/?pay=cancel&quoteId=%d", o.frontendURL, quoteID),
		Metadata: map[string]string{
			"userId":  strconv.FormatUint(actingUserID, 10),
			"quoteId": strconv.FormatUint(quoteID, 10),
		},
	})
	if errCreate != nil {
		return nil, &ProviderError{Op: "create session", Err: errCreate}
	}

	if errUpdate := o.db.WithContext(ctx).Model(&models.Quote{}).
		Where("id = ?", quote.ID).
		Updates(map[string]any{
			"payment_url":        sess.URL,
			"payment_session_id": sess.ID,
			"payment_status":     models.PaymentStatusPending,
		}).Error; errUpdate != nil {
		return nil, fmt.Errorf("payments: store session: %w", errUpdate)
	}

	o.recordEvent(ctx, actingUserID, models.CheckoutEventQuoteSessionCreated, sess.ID, map[string]any{
		"quote_id":    quote.ID,
		"unit_amount": unitAmount,
		"currency":    o.currency,
	})

	return &PaymentLink{SessionID: sess.ID, URL: sess.URL}, nil
}

// ConfirmQuotePayment reconciles a quote payment session: it requires the
// provider to report complete+paid, locates the quote by session id and
// owner, and marks it paid. Re-confirming an already paid quote rewrites
// paid; the transition is idempotent in effect.
func (o *Orchestrator) ConfirmQuotePayment(ctx context.Context, sessionID string, actingUserID uint64) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrEmptySessionID
	}

	sess, errGet := o.client.GetSession(ctx, sessionID, false)
	if errGet != nil {
		return &ProviderError{Op: "get session", Err: errGet}
	}
	if !strings.EqualFold(sess.Status, statusComplete) || !strings.EqualFold(sess.PaymentStatus, statusPaid) {
		return &NotPaidError{Status: sess.Status, PaymentStatus: sess.PaymentStatus}
	}

	// Unknown session and foreign owner are indistinguishable on purpose.
	var quote models.Quote
	errFind := o.db.WithContext(ctx).
		Joins("JOIN clients ON clients.id = quotes.client_id").
		Where("quotes.payment_session_id = ? AND clients.owner_id = ?", sessionID, actingUserID).
		First(&quote).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("payments: locate quote by session: %w", errFind)
	}

	if errUpdate := o.db.WithContext(ctx).Model(&models.Quote{}).
		Where("id = ?", quote.ID).
		Update("payment_status", models.PaymentStatusPaid).Error; errUpdate != nil {
		return fmt.Errorf("payments: mark paid: %w", errUpdate)
	}

	o.recordEvent(ctx, actingUserID, models.CheckoutEventQuotePaid, sessionID, map[string]any{
		"quote_id": quote.ID,
	})
	return nil
}

// CreateSubscriptionCheckout opens a recurring monthly checkout session for
// a paid plan. No local state changes until confirmation.
func (o *Orchestrator) CreateSubscriptionCheckout(ctx context.Context, requestedPlan string, actingUserID uint64) (*PaymentLink, error) {
	planName := plan.NormalizePaid(requestedPlan)

	sess, errCreate := o.client.CreateSession(ctx, CreateSessionParams{
		Mode: ModeSubscription,
		Item: LineItem{
			Name:       plan.DisplayName(planName),
			UnitAmount: plan.MonthPrice(planName),
			Currency:   o.currency,
			Recurring:  true,
		},
		SuccessURL: fmt.Sprintf("%s/?billing=success&plan=%s&session_id={CHECKOUT_SESSION_ID}", o.frontendURL, planName),
		CancelURL:  o.frontendURL + "/?billing=cancel",
		Metadata: map[string]string{
			"userId": strconv.FormatUint(actingUserID, 10),
			"plan":   planName,
		},
	})
	if errCreate != nil {
		return nil, &ProviderError{Op: "create subscription session", Err: errCreate}
	}

	o.recordEvent(ctx, actingUserID, models.CheckoutEventSubscriptionSessionCreated, sess.ID, map[string]any{
		"plan":        planName,
		"unit_amount": plan.MonthPrice(planName),
		"currency":    o.currency,
	})

	return &PaymentLink{SessionID: sess.ID, URL: sess.URL}, nil
}

// ConfirmSubscription reconciles a subscription checkout and persists the
// purchased plan with its period end. Re-confirmation leaves the record in
// the same or a later state.
func (o *Orchestrator) ConfirmSubscription(ctx context.Context, sessionID string, actingUserID uint64) (*SubscriptionResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}

	sess, errGet := o.client.GetSession(ctx, sessionID, true)
	if errGet != nil {
		return nil, &ProviderError{Op: "get session", Err: errGet}
	}
	if !strings.EqualFold(sess.Status, statusComplete) || !strings.EqualFold(sess.PaymentStatus, statusPaid) {
		return nil, &NotPaidError{Status: sess.Status, PaymentStatus: sess.PaymentStatus}
	}

	metaUser, errParse := strconv.ParseUint(strings.TrimSpace(sess.Metadata["userId"]), 10, 64)
	if errParse != nil || metaUser != actingUserID {
		return nil, ErrForbidden
	}

	planName := plan.NormalizePaid(sess.Metadata["plan"])
	periodEnd := o.resolvePeriodEnd(ctx, sess)

	now := o.clk.Now()
	billing := models.UserBilling{
		UserID:              actingUserID,
		Plan:                planName,
		CurrentPeriodEndUTC: &periodEnd,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if errUpsert := o.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"plan", "current_period_end_utc", "updated_at"}),
	}).Create(&billing).Error; errUpsert != nil {
		return nil, fmt.Errorf("payments: store billing: %w", errUpsert)
	}

	o.recordEvent(ctx, actingUserID, models.CheckoutEventSubscriptionConfirmed, sessionID, map[string]any{
		"plan":       planName,
		"period_end": periodEnd,
	})

	return &SubscriptionResult{Plan: planName, PeriodEnd: periodEnd}, nil
}

// resolvePeriodEnd asks the provider for the subscription's period end and
// falls back to now+1 month on any failure. The payment is already captured
// at this point; the local period end only gates entitlement, so a degraded
// lookup must not fail the confirmation.
func (o *Orchestrator) resolvePeriodEnd(ctx context.Context, sess *Session) time.Time {
	if sess.SubscriptionID != "" {
		periodEnd, errLookup := o.client.SubscriptionPeriodEnd(ctx, sess.SubscriptionID)
		if errLookup == nil && !periodEnd.IsZero() {
			return periodEnd.UTC()
		}
		if errLookup != nil {
			log.WithError(errLookup).WithField("session_id", sess.ID).
				Warn("subscription period end lookup failed, falling back to now+1 month")
		}
	}
	return o.clk.Now().AddDate(0, 1, 0)
}

// recordEvent appends a checkout audit row. Best effort: reconciliation does
// not depend on the audit trail, so failures are logged and swallowed.
func (o *Orchestrator) recordEvent(ctx context.Context, userID uint64, kind models.CheckoutEventKind, sessionID string, payload map[string]any) {
	raw, errMarshal := json.Marshal(payload)
	if errMarshal != nil {
		log.WithError(errMarshal).Warn("marshal checkout event payload")
		return
	}
	event := models.CheckoutEvent{
		UserID:    userID,
		Kind:      kind,
		SessionID: sessionID,
		Payload:   datatypes.JSON(raw),
	}
	if errCreate := o.db.WithContext(ctx).Create(&event).Error; errCreate != nil {
		log.WithError(errCreate).Warn("persist checkout event")
	}
}
