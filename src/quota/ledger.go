// Package quota enforces per-user message allowances against rolling
// windows. The check and the increment are one conditional UPDATE so two
// devices on the same account cannot both squeeze past the limit.
package quota

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/apperr"
	"github.com/janawaaz/janawaaz/src/types"
)

type Ledger struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewLedger(db *gorm.DB, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{db: db, loc: loc, now: time.Now}
}

// WithClock replaces the ledger's time source. Test seam.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

type Result struct {
	Allowed        bool
	RemainingAfter int
	ResetAt        time.Time
}

// TryConsume spends one unit of the (user, kind) allowance for the window
// containing now. Denial is reported in the result, not as an error;
// errors mean the store itself failed.
func (l *Ledger) TryConsume(ctx context.Context, userID string, kind WindowKind, limit int) (Result, error) {
	nowLocal := l.now().In(l.loc)
	wid := windowID(kind, nowLocal)
	reset := windowReset(kind, nowLocal)

	res, err := l.increment(ctx, userID, kind, wid, limit)
	if err != nil {
		return Result{}, err
	}
	res.ResetAt = reset
	return res, nil
}

// Remaining reports the unspent allowance without consuming anything.
func (l *Ledger) Remaining(ctx context.Context, userID string, kind WindowKind, limit int) (int, error) {
	nowLocal := l.now().In(l.loc)
	wid := windowID(kind, nowLocal)

	var c types.QuotaCounter
	err := l.db.WithContext(ctx).
		First(&c, "user_id = ? AND window_kind = ? AND window_id = ?", userID, string(kind), wid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return limit, nil
	}
	if err != nil {
		return 0, apperr.Unavailable("quota lookup failed", err)
	}
	if c.Count >= limit {
		return 0, nil
	}
	return limit - c.Count, nil
}

func (l *Ledger) increment(ctx context.Context, userID string, kind WindowKind, wid string, limit int) (Result, error) {
	// Conditional increment: only rows still under the limit are touched,
	// so concurrent consumers serialize on the row instead of both reading
	// a stale count.
	tx := l.db.WithContext(ctx).Model(&types.QuotaCounter{}).
		Where("user_id = ? AND window_kind = ? AND window_id = ? AND count < ?",
			userID, string(kind), wid, limit).
		UpdateColumn("count", gorm.Expr("count + 1"))
	if tx.Error != nil {
		return Result{}, apperr.Unavailable("quota update failed", tx.Error)
	}
	if tx.RowsAffected == 1 {
		return l.readRemaining(ctx, userID, kind, wid, limit)
	}

	// No row updated: either the counter is at the limit or it does not
	// exist yet for this window.
	var c types.QuotaCounter
	err := l.db.WithContext(ctx).
		First(&c, "user_id = ? AND window_kind = ? AND window_id = ?", userID, string(kind), wid).Error
	if err == nil {
		return Result{Allowed: false, RemainingAfter: 0}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{}, apperr.Unavailable("quota lookup failed", err)
	}

	if limit < 1 {
		return Result{Allowed: false, RemainingAfter: 0}, nil
	}

	c = types.QuotaCounter{UserID: userID, WindowKind: string(kind), WindowID: wid, Count: 1}
	if err := l.db.WithContext(ctx).Create(&c).Error; err != nil {
		// Lost the race with a concurrent first consumption of this
		// window; fall back to the conditional increment once.
		tx := l.db.WithContext(ctx).Model(&types.QuotaCounter{}).
			Where("user_id = ? AND window_kind = ? AND window_id = ? AND count < ?",
				userID, string(kind), wid, limit).
			UpdateColumn("count", gorm.Expr("count + 1"))
		if tx.Error != nil {
			return Result{}, apperr.Unavailable("quota update failed", tx.Error)
		}
		if tx.RowsAffected == 0 {
			return Result{Allowed: false, RemainingAfter: 0}, nil
		}
		return l.readRemaining(ctx, userID, kind, wid, limit)
	}
	return Result{Allowed: true, RemainingAfter: limit - 1}, nil
}

func (l *Ledger) readRemaining(ctx context.Context, userID string, kind WindowKind, wid string, limit int) (Result, error) {
	var c types.QuotaCounter
	if err := l.db.WithContext(ctx).
		First(&c, "user_id = ? AND window_kind = ? AND window_id = ?", userID, string(kind), wid).Error; err != nil {
		return Result{}, apperr.Unavailable("quota lookup failed", err)
	}
	remaining := limit - c.Count
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, RemainingAfter: remaining}, nil
}
