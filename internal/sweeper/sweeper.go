package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"mimicbot/pkg/logger"
	"mimicbot/pkg/session"
	"mimicbot/pkg/telemetry"
)

// Start launches the session expiry sweeper on the given cron schedule and
// returns a cancel func that stops it.
func Start(ctx context.Context, reg *session.Registry, cronExpr string) (context.CancelFunc, error) {
	if cronExpr == "" {
		cronExpr = "*/5 * * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("sweeper_invalid_cron", "cron", cronExpr)
		return nil, fmt.Errorf("invalid sweep cron expression: %s", cronExpr)
	}

	logger.Info("sweeper_enabled", "cron", cronExpr)
	ctx2, cancel := context.WithCancel(ctx)

	go runScheduler(ctx2, reg, cronExpr)

	logger.Info("sweeper_started")
	return cancel, nil
}

// runScheduler uses gronx to compute the next tick for the configured cron
// expression and sleeps until that time. This yields sharper scheduling and
// supports full cron syntax.
func runScheduler(ctx context.Context, reg *session.Registry, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("sweeper_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("sweeper_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				logger.Info("sweeper_stopping")
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			runOnce(reg)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				logger.Info("sweeper_stopping")
				return
			}
			continue
		}

		select {
		case <-time.After(wait):
			runOnce(reg)
		case <-ctx.Done():
			logger.Info("sweeper_stopping")
			return
		}
	}
}

func runOnce(reg *session.Registry) {
	expired := reg.Sweep(time.Now())
	if expired > 0 {
		telemetry.SessionsExpired.Add(float64(expired))
		logger.AuditEvent("sessions_swept", "expired", expired, "active", reg.Len())
	}
	telemetry.SessionsActive.Set(float64(reg.Len()))
	logger.Debug("sweep_complete", "expired", expired, "active", reg.Len())
}
